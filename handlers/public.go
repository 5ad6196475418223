package handlers

import (
	"net/http"
	"strconv"

	"homebite-api/services"
	"homebite-api/statemachine"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	meals *services.MealService
}

func NewPublicHandler(meals *services.MealService) *PublicHandler {
	return &PublicHandler{meals: meals}
}

// ListMeals returns all orderable meals (public browse)
func (h *PublicHandler) ListMeals(c *gin.Context) {
	filter := services.BrowseFilter{
		Search: c.Query("search"),
		DineIn: c.Query("dine_in") == "true",
	}
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}

	meals, err := h.meals.Browse(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(meals), "meals": meals})
}

// GetMeal returns a single meal with its cook
func (h *PublicHandler) GetMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	meal, err := h.meals.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// GetStateMachineInfo returns the full order state machine for informational purposes
func (h *PublicHandler) GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []string{"completed", "cancelled"},
		"description":     "HomeBite Order Lifecycle State Machine",
	})
}
