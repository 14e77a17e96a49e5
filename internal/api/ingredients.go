package api

import (
	"net/http"

	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// createIngredient handles ingredient creation
func (h *Handler) createIngredient(c *gin.Context) {
	var req service.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ing, err := h.ingredients.CreateIngredient(c.Request.Context(), owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// listIngredients handles listing an owner's ingredients
func (h *Handler) listIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.ListIngredients(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// getIngredient handles get ingredient by ID
func (h *Handler) getIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ing, err := h.ingredients.GetIngredient(c.Request.Context(), id, owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// updateIngredient handles a partial ingredient update
func (h *Handler) updateIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ing, err := h.ingredients.UpdateIngredient(c.Request.Context(), id, owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// deleteIngredient handles ingredient deletion
func (h *Handler) deleteIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ingredients.DeleteIngredient(c.Request.Context(), id, owner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// adjustStock applies a signed stock delta from the quantity_change query
// parameter and returns the updated ingredient.
func (h *Handler) adjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	delta, err := decimal.NewFromString(c.Query("quantity_change"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity_change"})
		return
	}

	ing, err := h.inventory.AdjustStock(c.Request.Context(), id, owner(c), delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// runLowStockCheck scans the owner's inventory, sends alerts for items
// below threshold and returns them.
func (h *Handler) runLowStockCheck(c *gin.Context) {
	entries, err := h.inventory.RunLowStockCheck(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"low_stock_count": len(entries),
		"items":           entries,
	})
}
