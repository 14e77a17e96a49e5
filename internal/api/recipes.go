package api

import (
	"net/http"

	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
)

// createRecipe handles recipe creation
func (h *Handler) createRecipe(c *gin.Context) {
	var req service.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// listRecipes handles listing an owner's recipes
func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// getRecipe handles get recipe by ID
func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id, owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// updateRecipe handles a partial recipe update
func (h *Handler) updateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// deleteRecipe handles recipe deletion
func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, owner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// triggerCostUpdate queues a recompute of every recipe depending on an
// ingredient. The recompute happens in the background worker; the request
// returns 202 as soon as the event is on the broker.
func (h *Handler) triggerCostUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ingredients.TriggerCostUpdate(c.Request.Context(), id, owner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":        "accepted",
		"ingredient_id": id,
	})
}
