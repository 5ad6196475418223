package handlers

import (
	"context"
	"net/http"

	"homebite-api/middleware"
	"homebite-api/models"
	"homebite-api/services"

	"github.com/gin-gonic/gin"
)

type CookHandler struct {
	meals   *services.MealService
	orders  *services.OrderService
	ratings *services.RatingService
}

func NewCookHandler(meals *services.MealService, orders *services.OrderService, ratings *services.RatingService) *CookHandler {
	return &CookHandler{meals: meals, orders: orders, ratings: ratings}
}

type MealRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Price           float64  `json:"price" binding:"required,gt=0"`
	Quantity        int      `json:"quantity" binding:"required,min=1"`
	ReadyTime       string   `json:"ready_time"`
	DineInAvailable bool     `json:"dine_in_available"`
	DinePrice       *float64 `json:"dine_price"`
}

// CreateMeal lists a new meal (approved cook only)
func (h *CookHandler) CreateMeal(c *gin.Context) {
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.meals.Create(c.Request.Context(), middleware.Principal(c), services.MealInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Quantity:        req.Quantity,
		ReadyTime:       req.ReadyTime,
		DineInAvailable: req.DineInAvailable,
		DinePrice:       req.DinePrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meal listed successfully", "meal": meal})
}

// UpdateMeal edits one of the cook's meals
func (h *CookHandler) UpdateMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.meals.Update(c.Request.Context(), middleware.Principal(c), id, services.MealInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Quantity:        req.Quantity,
		ReadyTime:       req.ReadyTime,
		DineInAvailable: req.DineInAvailable,
		DinePrice:       req.DinePrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal updated", "meal": meal})
}

// DeactivateMeal takes a meal off the listing
func (h *CookHandler) DeactivateMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.meals.Deactivate(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deactivated"})
}

// GetMyMeals returns all of the cook's meals
func (h *CookHandler) GetMyMeals(c *gin.Context) {
	meals, err := h.meals.MyMeals(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(meals), "meals": meals})
}

// GetOrders returns orders for the cook's meals with a per-status summary
func (h *CookHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), middleware.Principal(c), services.ListOrdersFilter{
		Status: models.OrderStatus(c.Query("status")),
		Scope:  c.Query("scope"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// ConfirmOrder moves a pending order to confirmed
func (h *CookHandler) ConfirmOrder(c *gin.Context) {
	h.transition(c, h.orders.Confirm, "Order confirmed")
}

// MarkOrderReady moves a confirmed order to ready
func (h *CookHandler) MarkOrderReady(c *gin.Context) {
	h.transition(c, h.orders.MarkReady, "Order marked as ready")
}

// CompleteOrder moves a ready order to completed
func (h *CookHandler) CompleteOrder(c *gin.Context) {
	h.transition(c, h.orders.Complete, "Order completed")
}

func (h *CookHandler) transition(c *gin.Context, op func(ctx context.Context, p services.Principal, id uint) (*models.Order, error), message string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "order": order})
}

// GetReceivedRatings returns ratings for the cook's meals
func (h *CookHandler) GetReceivedRatings(c *gin.Context) {
	ratings, err := h.ratings.ListReceived(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ratings), "ratings": ratings})
}
