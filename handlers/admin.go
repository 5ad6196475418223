package handlers

import (
	"net/http"
	"time"

	"homebite-api/middleware"
	"homebite-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// GetAnalytics returns the aggregate dashboard: users, meals, orders,
// revenue, ratings, and top cooks.
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		q := h.db.Model(model)
		if query != "" {
			q = q.Where(query, args...)
		}
		q.Count(&n)
		return n
	}

	users := gin.H{
		"total":           count(&models.User{}, ""),
		"cooks":           count(&models.User{}, "role = ?", models.RoleCook),
		"customers":       count(&models.User{}, "role = ?", models.RoleCustomer),
		"approved_cooks":  count(&models.User{}, "role = ? AND is_approved = ?", models.RoleCook, true),
		"pending_cooks":   count(&models.User{}, "role = ? AND is_approved = ?", models.RoleCook, false),
		"signups_last_7":  count(&models.User{}, "created_at >= ?", weekAgo),
		"signups_last_30": count(&models.User{}, "created_at >= ?", monthAgo),
	}

	meals := gin.H{
		"total":        count(&models.Meal{}, ""),
		"active":       count(&models.Meal{}, "is_active = ?", true),
		"inactive":     count(&models.Meal{}, "is_active = ?", false),
		"with_dine_in": count(&models.Meal{}, "dine_in_available = ?", true),
	}

	orderSummary := map[string]int64{}
	for _, s := range []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusReady,
		models.StatusCompleted, models.StatusCancelled,
	} {
		orderSummary[string(s)] = count(&models.Order{}, "status = ?", s)
	}
	byType := map[string]int64{}
	for _, t := range []models.DeliveryType{models.DeliveryPickup, models.DeliveryCourier, models.DeliveryDineIn} {
		byType[string(t)] = count(&models.Order{}, "delivery_type = ?", t)
	}

	revenue := func(since *time.Time) float64 {
		var total float64
		q := h.db.Model(&models.Order{}).Where("status = ?", models.StatusCompleted)
		if since != nil {
			q = q.Where("created_at >= ?", *since)
		}
		q.Select("COALESCE(SUM(total_price), 0)").Scan(&total)
		return total
	}

	orders := gin.H{
		"total":      count(&models.Order{}, ""),
		"by_status":  orderSummary,
		"by_type":    byType,
		"last_7":     count(&models.Order{}, "created_at >= ?", weekAgo),
		"last_30":    count(&models.Order{}, "created_at >= ?", monthAgo),
		"revenue":    revenue(nil),
		"revenue_7":  revenue(&weekAgo),
		"revenue_30": revenue(&monthAgo),
	}

	var avgMeal, avgCook float64
	h.db.Model(&models.Rating{}).Select("COALESCE(AVG(meal_rating), 0)").Scan(&avgMeal)
	h.db.Model(&models.Rating{}).Select("COALESCE(AVG(cook_rating), 0)").Scan(&avgCook)
	ratings := gin.H{
		"total":           count(&models.Rating{}, ""),
		"avg_meal_rating": avgMeal,
		"avg_cook_rating": avgCook,
	}

	var topCooks []models.CookProfile
	h.db.Preload("User").Order("rating desc").Limit(5).Find(&topCooks)
	topCooksData := make([]gin.H, 0, len(topCooks))
	for _, cook := range topCooks {
		topCooksData = append(topCooksData, gin.H{
			"id":            cook.ID,
			"name":          cook.User.Name,
			"email":         cook.User.Email,
			"rating":        cook.Rating,
			"total_reviews": cook.TotalRatings,
			"total_orders":  cook.TotalOrders,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"meals":     meals,
		"orders":    orders,
		"ratings":   ratings,
		"top_cooks": topCooksData,
	})
}

// GetAllOrders returns all orders with full detail — admin only
func (h *AdminHandler) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	query := h.db.Preload("Meal").Preload("Customer").Preload("Cook.User").Preload("StatusHistory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if cookID := c.Query("cook_id"); cookID != "" {
		query = query.Where("cook_id = ?", cookID)
	}

	query.Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetAllUsers returns all users — admin only
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var users []models.User
	query := h.db
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// ApproveCook flips a cook account to approved so they can list meals
func (h *AdminHandler) ApproveCook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Role != models.RoleCook {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a cook"})
		return
	}
	if err := h.db.Model(&user).Update("is_approved", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve cook"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cook approved", "user_id": user.ID})
}

// ForceOrderStatus lets admin override any order state (emergency use).
// This deliberately bypasses the lifecycle state machine and is audit-logged.
func (h *AdminHandler) ForceOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required,oneof=pending confirmed ready completed cancelled"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	prevStatus := order.Status
	h.db.Model(&order).Update("status", req.Status)
	h.db.Create(&models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prevStatus,
		ToStatus:   req.Status,
		ChangedBy:  middleware.GetUserID(c),
		Note:       "[ADMIN OVERRIDE] " + req.Reason,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status force-updated by admin",
		"order_id":        order.ID,
		"previous_status": prevStatus,
		"new_status":      req.Status,
	})
}
