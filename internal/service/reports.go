package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/redisclient"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

const reportCacheTTL = 5 * time.Minute

type reportStore interface {
	CompletedRevenue(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	CompletedCOGS(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	ExpensesByCategory(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.CategoryTotalRow, error)
	SalesByProduct(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.ProductSalesRow, error)
	IngredientUsage(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.IngredientUsageRow, error)
}

// ReportService aggregates orders, expenses and inventory into the four
// reports. Rendered payloads are cached briefly in Redis; aggregation
// reads committed rows only, so a report is a consistent snapshot.
type ReportService struct {
	store     reportStore
	inventory *InventoryService
	redis     *redisclient.Client
	logger    *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store reportStore, inventory *InventoryService, redis *redisclient.Client) *ReportService {
	return &ReportService{
		store:     store,
		inventory: inventory,
		redis:     redis,
		logger:    util.GetLogger(),
	}
}

// ProfitAndLossReport is revenue minus cost of goods sold minus expenses
// over an inclusive date range.
type ProfitAndLossReport struct {
	StartDate          time.Time               `json:"start_date"`
	EndDate            time.Time               `json:"end_date"`
	Revenue            decimal.Decimal         `json:"revenue"`
	CostOfGoodsSold    decimal.Decimal         `json:"cost_of_goods_sold"`
	GrossProfit        decimal.Decimal         `json:"gross_profit"`
	ExpensesByCategory []store.CategoryTotalRow `json:"expenses_by_category"`
	TotalExpenses      decimal.Decimal         `json:"total_expenses"`
	NetProfit          decimal.Decimal         `json:"net_profit"`
}

// SalesReport lists product sales over a range, revenue descending.
type SalesReport struct {
	StartDate time.Time               `json:"start_date"`
	EndDate   time.Time               `json:"end_date"`
	Products  []store.ProductSalesRow `json:"products"`
}

// IngredientUsageReport lists ingredient consumption implied by completed
// orders over a range, heaviest usage first.
type IngredientUsageReport struct {
	StartDate   time.Time                  `json:"start_date"`
	EndDate     time.Time                  `json:"end_date"`
	Ingredients []store.IngredientUsageRow `json:"ingredients"`
}

// LowStockReport lists every tracked ingredient currently below threshold.
type LowStockReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Items       []models.LowStockEntry `json:"items"`
}

// ValidateFormat rejects unknown report formats before any aggregation.
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatCSV, FormatPDF:
		return nil
	}
	return fmt.Errorf("unknown report format %q: %w", format, errs.ErrValidation)
}

// ValidateRange rejects an inverted date range before any aggregation.
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("start date after end date: %w", errs.ErrValidation)
	}
	return nil
}

// ProfitAndLoss builds the P&L report for a date range.
func (rs *ReportService) ProfitAndLoss(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (*ProfitAndLossReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ProfitAndLoss")
	defer span.End()

	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	revenue, err := rs.store.CompletedRevenue(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	cogs, err := rs.store.CompletedCOGS(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cost of goods sold: %w", err)
	}
	expenses, err := rs.store.ExpensesByCategory(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	totalExpenses := decimal.Zero
	for _, row := range expenses {
		totalExpenses = totalExpenses.Add(row.Total)
	}
	grossProfit := revenue.Sub(cogs)

	return &ProfitAndLossReport{
		StartDate:          start,
		EndDate:            end,
		Revenue:            revenue,
		CostOfGoodsSold:    cogs,
		GrossProfit:        grossProfit,
		ExpensesByCategory: expenses,
		TotalExpenses:      totalExpenses,
		NetProfit:          grossProfit.Sub(totalExpenses),
	}, nil
}

// Sales builds the sales-by-product report for a date range.
func (rs *ReportService) Sales(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (*SalesReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Sales")
	defer span.End()

	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	rows, err := rs.store.SalesByProduct(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	return &SalesReport{StartDate: start, EndDate: end, Products: rows}, nil
}

// IngredientUsage builds the ingredient usage report for a date range.
func (rs *ReportService) IngredientUsage(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (*IngredientUsageReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.IngredientUsage")
	defer span.End()

	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	rows, err := rs.store.IngredientUsage(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ingredient usage: %w", err)
	}
	return &IngredientUsageReport{StartDate: start, EndDate: end, Ingredients: rows}, nil
}

// LowStock builds the current low-stock report. No alerts are sent.
func (rs *ReportService) LowStock(ctx context.Context, ownerID uuid.UUID) (*LowStockReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.LowStock")
	defer span.End()

	entries, err := rs.inventory.LowStockEntries(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &LowStockReport{GeneratedAt: time.Now(), Items: entries}, nil
}

// Render serializes a report into the requested format. The format is
// validated before the caller aggregates anything, so Render only ever
// sees a known one.
func Render(report interface{}, title, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		return payload, "application/json", err
	case FormatCSV:
		payload, err := renderCSV(report)
		return payload, "text/csv", err
	case FormatPDF:
		rows, err := csvRows(report)
		if err != nil {
			return nil, "", err
		}
		payload, err := renderPDF(title, rows)
		return payload, "application/pdf", err
	}
	return nil, "", fmt.Errorf("unknown report format %q: %w", format, errs.ErrValidation)
}

func renderCSV(report interface{}) ([]byte, error) {
	rows, err := csvRows(report)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvRows flattens a report into tabular rows. The P&L report becomes
// metric/amount pairs with one row per expense category.
func csvRows(report interface{}) ([][]string, error) {
	switch r := report.(type) {
	case *ProfitAndLossReport:
		rows := [][]string{
			{"Metric", "Amount"},
			{"Revenue", r.Revenue.StringFixed(2)},
			{"Cost of Goods Sold", r.CostOfGoodsSold.StringFixed(2)},
			{"Gross Profit", r.GrossProfit.StringFixed(2)},
		}
		for _, cat := range r.ExpensesByCategory {
			rows = append(rows, []string{"Expense: " + cat.Category, cat.Total.StringFixed(2)})
		}
		rows = append(rows,
			[]string{"Total Expenses", r.TotalExpenses.StringFixed(2)},
			[]string{"Net Profit", r.NetProfit.StringFixed(2)})
		return rows, nil
	case *SalesReport:
		rows := [][]string{{"Product", "Quantity Sold", "Revenue"}}
		for _, p := range r.Products {
			rows = append(rows, []string{
				p.ProductName,
				fmt.Sprintf("%d", p.TotalQuantity),
				p.TotalRevenue.StringFixed(2),
			})
		}
		return rows, nil
	case *IngredientUsageReport:
		rows := [][]string{{"Ingredient", "Unit", "Quantity Used"}}
		for _, i := range r.Ingredients {
			rows = append(rows, []string{i.Name, i.Unit, i.TotalUsed.String()})
		}
		return rows, nil
	case *LowStockReport:
		rows := [][]string{{"Ingredient", "Unit", "On Hand", "Threshold", "Shortfall"}}
		for _, item := range r.Items {
			rows = append(rows, []string{
				item.Name, item.Unit,
				item.OnHand.String(), item.Threshold.String(), item.Shortfall.String(),
			})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported report type %T", report)
}

// CachedRender renders a report through the Redis cache. Cache failures
// degrade to a direct render, never to an error.
func (rs *ReportService) CachedRender(ctx context.Context, cacheKey string, report interface{}, title, format string) ([]byte, string, error) {
	contentType := contentTypeFor(format)
	if rs.redis != nil {
		if payload, err := rs.redis.GetCachedReport(ctx, cacheKey); err != nil {
			rs.logger.Warn("Report cache read failed", zap.Error(err))
		} else if payload != nil {
			return payload, contentType, nil
		}
	}

	payload, contentType, err := Render(report, title, format)
	if err != nil {
		return nil, "", err
	}

	if rs.redis != nil {
		if err := rs.redis.CacheReport(ctx, cacheKey, payload, reportCacheTTL); err != nil {
			rs.logger.Warn("Report cache write failed", zap.Error(err))
		}
	}
	util.ReportsGeneratedTotal.WithLabelValues(title, format).Inc()
	return payload, contentType, nil
}

func contentTypeFor(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}
