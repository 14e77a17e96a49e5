package api

import (
	"fmt"
	"net/http"
	"time"

	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
)

// createExpense handles recording an expense
func (h *Handler) createExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	exp, err := h.expenses.CreateExpense(c.Request.Context(), owner(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

// listExpenses handles listing an owner's expenses
func (h *Handler) listExpenses(c *gin.Context) {
	expenses, err := h.expenses.ListExpenses(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// getExpense handles get expense by ID
func (h *Handler) getExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	exp, err := h.expenses.GetExpense(c.Request.Context(), id, owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// deleteExpense handles expense deletion
func (h *Handler) deleteExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.expenses.DeleteExpense(c.Request.Context(), id, owner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reportParams pulls the shared report query parameters: an inclusive date
// range and an output format. Format and range are rejected here, before
// any aggregation runs.
func reportParams(c *gin.Context) (start, end time.Time, format string, ok bool) {
	const layout = "2006-01-02"

	var err error
	start, err = time.Parse(layout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing start_date, expected YYYY-MM-DD"})
		return
	}
	end, err = time.Parse(layout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing end_date, expected YYYY-MM-DD"})
		return
	}
	// Inclusive end date: extend to the last instant of the day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	format = c.DefaultQuery("output_format", service.FormatJSON)
	if err := service.ValidateFormat(format); err != nil {
		respondError(c, err)
		return
	}
	ok = true
	return
}

func reportFormat(c *gin.Context) (string, bool) {
	format := c.DefaultQuery("output_format", service.FormatJSON)
	if err := service.ValidateFormat(format); err != nil {
		respondError(c, err)
		return "", false
	}
	return format, true
}

// writeReport sends a rendered report, as an attachment for csv and pdf.
func writeReport(c *gin.Context, name, format, contentType string, payload []byte) {
	if format != service.FormatJSON {
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", name+"."+format))
	}
	c.Data(http.StatusOK, contentType, payload)
}

func reportCacheKey(c *gin.Context, report, format string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		owner(c), report, format, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// profitAndLossReport builds and renders the P&L report
func (h *Handler) profitAndLossReport(c *gin.Context) {
	start, end, format, ok := reportParams(c)
	if !ok {
		return
	}

	report, err := h.reports.ProfitAndLoss(c.Request.Context(), owner(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	key := reportCacheKey(c, "profit-and-loss", format, start, end)
	payload, contentType, err := h.reports.CachedRender(c.Request.Context(), key, report, "Profit and Loss", format)
	if err != nil {
		respondError(c, err)
		return
	}
	writeReport(c, "profit-and-loss", format, contentType, payload)
}

// salesReport builds and renders the sales-by-product report
func (h *Handler) salesReport(c *gin.Context) {
	start, end, format, ok := reportParams(c)
	if !ok {
		return
	}

	report, err := h.reports.Sales(c.Request.Context(), owner(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	key := reportCacheKey(c, "sales-by-product", format, start, end)
	payload, contentType, err := h.reports.CachedRender(c.Request.Context(), key, report, "Sales by Product", format)
	if err != nil {
		respondError(c, err)
		return
	}
	writeReport(c, "sales-by-product", format, contentType, payload)
}

// ingredientUsageReport builds and renders the ingredient usage report
func (h *Handler) ingredientUsageReport(c *gin.Context) {
	start, end, format, ok := reportParams(c)
	if !ok {
		return
	}

	report, err := h.reports.IngredientUsage(c.Request.Context(), owner(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	key := reportCacheKey(c, "ingredient-usage", format, start, end)
	payload, contentType, err := h.reports.CachedRender(c.Request.Context(), key, report, "Ingredient Usage", format)
	if err != nil {
		respondError(c, err)
		return
	}
	writeReport(c, "ingredient-usage", format, contentType, payload)
}

// lowStockReport builds and renders the current low-stock report. It is a
// point-in-time snapshot, so it takes no date range and skips the cache.
func (h *Handler) lowStockReport(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}

	report, err := h.reports.LowStock(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}

	payload, contentType, err := service.Render(report, "Low Stock", format)
	if err != nil {
		respondError(c, err)
		return
	}
	writeReport(c, "low-stock", format, contentType, payload)
}
