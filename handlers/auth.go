package handlers

import (
	"net/http"

	"homebite-api/middleware"
	"homebite-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required,oneof=customer cook"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new customer or cook account. Cook accounts start
// unapproved and wait for an admin; customers can order right away.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if result := h.db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		IsApproved:   req.Role != models.RoleCook,
		IsActive:     true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch req.Role {
		case models.RoleCook:
			return tx.Create(&models.CookProfile{UserID: user.ID}).Error
		default:
			return tx.Create(&models.CustomerProfile{UserID: user.ID}).Error
		}
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"is_approved": user.IsApproved,
		},
	})
}

// Login authenticates a user and returns a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"is_approved": user.IsApproved,
		},
	})
}

// GetProfile returns the authenticated user's profile with role details
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := gin.H{"user": user}
	switch user.Role {
	case models.RoleCook:
		var profile models.CookProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			resp["cook_profile"] = profile
		}
	case models.RoleCustomer:
		var profile models.CustomerProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			resp["customer_profile"] = profile
		}
	}
	c.JSON(http.StatusOK, resp)
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	// Cook fields
	KitchenAddress string   `json:"kitchen_address"`
	KitchenLat     *float64 `json:"kitchen_lat"`
	KitchenLng     *float64 `json:"kitchen_lng"`
	Bio            string   `json:"bio"`

	// Customer fields
	OfficeAddress string   `json:"office_address"`
	OfficeLat     *float64 `json:"office_lat"`
	OfficeLng     *float64 `json:"office_lng"`
}

// UpdateProfile updates basic details and the role-specific location used by
// the nearby-meal search.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	switch user.Role {
	case models.RoleCook:
		updates := map[string]interface{}{}
		if req.KitchenAddress != "" {
			updates["kitchen_address"] = req.KitchenAddress
		}
		if req.KitchenLat != nil && req.KitchenLng != nil {
			updates["kitchen_lat"] = *req.KitchenLat
			updates["kitchen_lng"] = *req.KitchenLng
		}
		if req.Bio != "" {
			updates["bio"] = req.Bio
		}
		if len(updates) > 0 {
			h.db.Model(&models.CookProfile{}).Where("user_id = ?", user.ID).Updates(updates)
		}
	case models.RoleCustomer:
		updates := map[string]interface{}{}
		if req.OfficeAddress != "" {
			updates["office_address"] = req.OfficeAddress
		}
		if req.OfficeLat != nil && req.OfficeLng != nil {
			updates["office_lat"] = *req.OfficeLat
			updates["office_lng"] = *req.OfficeLng
		}
		if len(updates) > 0 {
			h.db.Model(&models.CustomerProfile{}).Where("user_id = ?", user.ID).Updates(updates)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
