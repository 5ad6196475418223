package handlers

import (
	"net/http"
	"strconv"

	"homebite-api/middleware"
	"homebite-api/models"
	"homebite-api/services"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	orders  *services.OrderService
	meals   *services.MealService
	ratings *services.RatingService
}

func NewCustomerHandler(orders *services.OrderService, meals *services.MealService, ratings *services.RatingService) *CustomerHandler {
	return &CustomerHandler{orders: orders, meals: meals, ratings: ratings}
}

type PlaceOrderRequest struct {
	MealID       uint                `json:"meal_id" binding:"required"`
	Quantity     int                 `json:"quantity" binding:"required,min=1"`
	DeliveryType models.DeliveryType `json:"delivery_type" binding:"required,oneof=pickup delivery dine_in"`
	Notes        string              `json:"notes"`
	ClientToken  string              `json:"client_token"` // optional idempotency key for safe retries
}

// PlaceOrder creates a new order (customer only). A retried request carrying
// the same client_token returns the original order with 200 instead of
// creating a duplicate.
func (h *CustomerHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, created, err := h.orders.Create(c.Request.Context(), middleware.Principal(c), services.CreateOrderInput{
		MealID:       req.MealID,
		Quantity:     req.Quantity,
		DeliveryType: req.DeliveryType,
		Notes:        req.Notes,
		ClientToken:  req.ClientToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	message := "Order placed successfully"
	if !created {
		status = http.StatusOK
		message = "Order already placed"
	}
	c.JSON(status, gin.H{
		"message":   message,
		"order":     order,
		"reference": order.Reference(),
	})
}

// GetMyOrders returns the customer's orders, optionally scoped or filtered
// by status (?scope=active|history|completed, ?status=...)
func (h *CustomerHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), middleware.Principal(c), services.ListOrdersFilter{
		Status: models.OrderStatus(c.Query("status")),
		Scope:  c.Query("scope"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *CustomerHandler) GetOrderDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "reference": order.Reference()})
}

// CancelOrder cancels a pending or confirmed order
func (h *CustomerHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// NearbyMeals returns available meals close to the customer's office
// (?max_distance=km, default 2)
func (h *CustomerHandler) NearbyMeals(c *gin.Context) {
	maxKm := 2.0
	if v := c.Query("max_distance"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			maxKm = parsed
		}
	}
	meals, err := h.meals.Nearby(c.Request.Context(), middleware.Principal(c), maxKm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(meals), "max_distance_km": maxKm, "meals": meals})
}

type SubmitRatingRequest struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	MealRating int    `json:"meal_rating" binding:"required,min=1,max=5"`
	CookRating int    `json:"cook_rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

// SubmitRating rates a completed order exactly once
func (h *CustomerHandler) SubmitRating(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := h.ratings.Attach(c.Request.Context(), middleware.Principal(c), services.AttachRatingInput{
		OrderID:    req.OrderID,
		MealRating: req.MealRating,
		CookRating: req.CookRating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for your feedback!", "rating": rating})
}

// GetMyRatings returns ratings the customer has given
func (h *CustomerHandler) GetMyRatings(c *gin.Context) {
	ratings, err := h.ratings.ListGiven(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ratings), "ratings": ratings})
}
