package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/service"
	"bakery-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ownerHeader = "X-Owner-ID"

const ownerKey = "ownerID"

// Handler contains HTTP handlers
type Handler struct {
	ingredients *service.IngredientService
	recipes     *service.RecipeService
	inventory   *service.InventoryService
	orders      *service.OrderService
	quotes      *service.QuoteService
	expenses    *service.ExpenseService
	reports     *service.ReportService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingredients *service.IngredientService,
	recipes *service.RecipeService,
	inventory *service.InventoryService,
	orders *service.OrderService,
	quotes *service.QuoteService,
	expenses *service.ExpenseService,
	reports *service.ReportService,
) *Handler {
	return &Handler{
		ingredients: ingredients,
		recipes:     recipes,
		inventory:   inventory,
		orders:      orders,
		quotes:      quotes,
		expenses:    expenses,
		reports:     reports,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(ownerMiddleware())
	{
		v1.POST("/ingredients", h.createIngredient)
		v1.GET("/ingredients", h.listIngredients)
		v1.GET("/ingredients/:id", h.getIngredient)
		v1.PUT("/ingredients/:id", h.updateIngredient)
		v1.DELETE("/ingredients/:id", h.deleteIngredient)

		v1.POST("/recipes", h.createRecipe)
		v1.GET("/recipes", h.listRecipes)
		v1.GET("/recipes/:id", h.getRecipe)
		v1.PUT("/recipes/:id", h.updateRecipe)
		v1.DELETE("/recipes/:id", h.deleteRecipe)
		v1.POST("/recipes/trigger-cost-update/ingredient/:id", h.triggerCostUpdate)

		v1.POST("/inventory/ingredients/:id/adjust-stock", h.adjustStock)
		v1.POST("/inventory/run-low-stock-check", h.runLowStockCheck)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PUT("/orders/:id", h.updateOrder)
		v1.DELETE("/orders/:id", h.deleteOrder)

		v1.POST("/orders/quotes", h.createQuote)
		v1.GET("/orders/quotes", h.listQuotes)
		v1.GET("/orders/quotes/:id", h.getQuote)
		v1.PUT("/orders/quotes/:id", h.updateQuote)
		v1.DELETE("/orders/quotes/:id", h.deleteQuote)
		v1.POST("/orders/quotes/:id/convert-to-order", h.convertQuote)

		v1.POST("/expenses", h.createExpense)
		v1.GET("/expenses", h.listExpenses)
		v1.GET("/expenses/:id", h.getExpense)
		v1.DELETE("/expenses/:id", h.deleteExpense)

		v1.GET("/reports/profit-and-loss", h.profitAndLossReport)
		v1.GET("/reports/sales-by-product", h.salesReport)
		v1.GET("/reports/ingredient-usage", h.ingredientUsageReport)
		v1.GET("/reports/low-stock", h.lowStockReport)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// ownerMiddleware resolves the acting owner from the X-Owner-ID header.
// Every /api/v1 query is scoped to that owner; there is no cross-owner
// access path.
func ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ownerHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing " + ownerHeader + " header",
			})
			return
		}
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Invalid " + ownerHeader + " header",
			})
			return
		}
		c.Set(ownerKey, ownerID)
		c.Next()
	}
}

func owner(c *gin.Context) uuid.UUID {
	return c.MustGet(ownerKey).(uuid.UUID)
}

// pathID parses the :id path segment, responding 400 itself on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
