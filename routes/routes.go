package routes

import (
	"homebite-api/handlers"
	"homebite-api/middleware"
	"homebite-api/models"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything SetupRoutes needs to wire.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Public   *handlers.PublicHandler
	Customer *handlers.CustomerHandler
	Cook     *handlers.CookHandler
	Admin    *handlers.AdminHandler
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)

		// Meal browsing (no auth needed)
		public.GET("/meals", h.Public.ListMeals)
		public.GET("/meals/:id", h.Public.GetMeal)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", h.Public.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", h.Auth.GetProfile)
		auth.PUT("/profile", h.Auth.UpdateProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.Customer.PlaceOrder)
		customer.GET("/orders", h.Customer.GetMyOrders)
		customer.GET("/orders/:id", h.Customer.GetOrderDetail)
		customer.POST("/orders/:id/cancel", h.Customer.CancelOrder)

		customer.GET("/meals/nearby", h.Customer.NearbyMeals)

		customer.POST("/ratings", h.Customer.SubmitRating)
		customer.GET("/ratings", h.Customer.GetMyRatings)
	}

	// ── Cook routes ────────────────────────────────────────────────
	cook := r.Group("/api/cook")
	cook.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCook))
	{
		// Meal management
		cook.POST("/meals", h.Cook.CreateMeal)
		cook.GET("/meals", h.Cook.GetMyMeals)
		cook.PUT("/meals/:id", h.Cook.UpdateMeal)
		cook.DELETE("/meals/:id", h.Cook.DeactivateMeal)

		// Order fulfillment
		cook.GET("/orders", h.Cook.GetOrders)
		cook.POST("/orders/:id/confirm", h.Cook.ConfirmOrder)
		cook.POST("/orders/:id/ready", h.Cook.MarkOrderReady)
		cook.POST("/orders/:id/complete", h.Cook.CompleteOrder)

		cook.GET("/ratings", h.Cook.GetReceivedRatings)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/analytics", h.Admin.GetAnalytics)
		admin.GET("/orders", h.Admin.GetAllOrders)
		admin.GET("/users", h.Admin.GetAllUsers)
		admin.PUT("/cooks/:id/approve", h.Admin.ApproveCook)
		admin.PUT("/orders/:id/status", h.Admin.ForceOrderStatus)
	}
}
