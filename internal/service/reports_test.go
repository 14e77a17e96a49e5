package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportStore struct {
	revenue  decimal.Decimal
	cogs     decimal.Decimal
	expenses []store.CategoryTotalRow
	sales    []store.ProductSalesRow
	usage    []store.IngredientUsageRow
}

func (f *fakeReportStore) CompletedRevenue(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	return f.revenue, nil
}

func (f *fakeReportStore) CompletedCOGS(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	return f.cogs, nil
}

func (f *fakeReportStore) ExpensesByCategory(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.CategoryTotalRow, error) {
	return f.expenses, nil
}

func (f *fakeReportStore) SalesByProduct(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.ProductSalesRow, error) {
	return f.sales, nil
}

func (f *fakeReportStore) IngredientUsage(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]store.IngredientUsageRow, error) {
	return f.usage, nil
}

func testRange() (time.Time, time.Time) {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
}

func TestProfitAndLossMath(t *testing.T) {
	fs := &fakeReportStore{
		revenue: dec("1000.00"),
		cogs:    dec("250.00"),
		expenses: []store.CategoryTotalRow{
			{Category: "rent", Total: dec("300.00")},
			{Category: "utilities", Total: dec("75.50")},
		},
	}
	rs := NewReportService(fs, nil, nil)
	start, end := testRange()

	report, err := rs.ProfitAndLoss(context.Background(), uuid.New(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "750.00", report.GrossProfit.StringFixed(2))
	assert.Equal(t, "375.50", report.TotalExpenses.StringFixed(2))
	assert.Equal(t, "374.50", report.NetProfit.StringFixed(2))
}

func TestProfitAndLossCanBeNegative(t *testing.T) {
	fs := &fakeReportStore{
		revenue:  dec("100.00"),
		cogs:     dec("80.00"),
		expenses: []store.CategoryTotalRow{{Category: "rent", Total: dec("500.00")}},
	}
	rs := NewReportService(fs, nil, nil)
	start, end := testRange()

	report, err := rs.ProfitAndLoss(context.Background(), uuid.New(), start, end)
	require.NoError(t, err)
	assert.Equal(t, "-480.00", report.NetProfit.StringFixed(2))
}

func TestReportRejectsInvertedRange(t *testing.T) {
	rs := NewReportService(&fakeReportStore{}, nil, nil)
	start, end := testRange()

	_, err := rs.ProfitAndLoss(context.Background(), uuid.New(), end, start)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = rs.Sales(context.Background(), uuid.New(), end, start)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = rs.IngredientUsage(context.Background(), uuid.New(), end, start)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat(FormatJSON))
	assert.NoError(t, ValidateFormat(FormatCSV))
	assert.NoError(t, ValidateFormat(FormatPDF))
	assert.ErrorIs(t, ValidateFormat("xlsx"), errs.ErrValidation)
	assert.ErrorIs(t, ValidateFormat(""), errs.ErrValidation)
}

func TestProfitAndLossCSVFlattening(t *testing.T) {
	start, end := testRange()
	report := &ProfitAndLossReport{
		StartDate:       start,
		EndDate:         end,
		Revenue:         dec("1000.00"),
		CostOfGoodsSold: dec("250.00"),
		GrossProfit:     dec("750.00"),
		ExpensesByCategory: []store.CategoryTotalRow{
			{Category: "rent", Total: dec("300.00")},
		},
		TotalExpenses: dec("300.00"),
		NetProfit:     dec("450.00"),
	}

	payload, contentType, err := Render(report, "Profit and Loss", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Metric", "Amount"}, rows[0])
	assert.Equal(t, []string{"Revenue", "1000.00"}, rows[1])
	assert.Equal(t, []string{"Expense: rent", "300.00"}, rows[4])
	assert.Equal(t, []string{"Net Profit", "450.00"}, rows[6])
}

func TestSalesReportCSV(t *testing.T) {
	report := &SalesReport{
		Products: []store.ProductSalesRow{
			{ProductName: "Wedding Cake", TotalQuantity: 3, TotalRevenue: dec("750.00")},
			{ProductName: "Cupcakes", TotalQuantity: 48, TotalRevenue: dec("120.00")},
		},
	}

	payload, _, err := Render(report, "Sales by Product", FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Wedding Cake", "3", "750.00"}, rows[1])
}

func TestRenderJSON(t *testing.T) {
	report := &SalesReport{}

	payload, contentType, err := Render(report, "Sales by Product", FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, string(payload), "\"products\"")
}

func TestRenderPDFHasHeader(t *testing.T) {
	start, end := testRange()
	report := &ProfitAndLossReport{
		StartDate: start,
		EndDate:   end,
	}

	payload, contentType, err := Render(report, "Profit and Loss", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(payload, []byte("%%EOF\n")))
}

func TestRenderRejectsUnknownReportType(t *testing.T) {
	_, _, err := Render(struct{}{}, "Mystery", FormatCSV)
	assert.Error(t, err)
}
