package main

import (
	"log"
	"net/http"
	"os"

	"homebite-api/config"
	"homebite-api/handlers"
	"homebite-api/routes"
	"homebite-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Load env + connect database
	config.Load()
	db := config.InitDB()

	// Services share one lock registry so order and stock critical
	// sections stay serialized across callers
	locks := services.NewLocks()
	orderService := services.NewOrderService(db, locks)
	ratingService := services.NewRatingService(db, locks)
	mealService := services.NewMealService(db)

	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(db),
		Public:   handlers.NewPublicHandler(mealService),
		Customer: handlers.NewCustomerHandler(orderService, mealService, ratingService),
		Cook:     handlers.NewCookHandler(mealService, orderService, ratingService),
		Admin:    handlers.NewAdminHandler(db),
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "HomeBite Order API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍲 Welcome to the HomeBite Local Meals API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "cook", "admin"},
		})
	})

	// Register all routes
	routes.SetupRoutes(r, h)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
