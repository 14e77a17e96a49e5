package store

import (
	"context"
	"time"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryTotalRow is one expense category's total over a period.
type CategoryTotalRow struct {
	Category string          `db:"category"`
	Total    decimal.Decimal `db:"total"`
}

// ProductSalesRow aggregates completed-order items by item name.
type ProductSalesRow struct {
	ProductName   string          `db:"product_name"`
	TotalQuantity int64           `db:"total_quantity"`
	TotalRevenue  decimal.Decimal `db:"total_revenue"`
}

// IngredientUsageRow aggregates ingredient consumption implied by
// completed orders whose items link to recipes.
type IngredientUsageRow struct {
	IngredientID uuid.UUID       `db:"ingredient_id"`
	Name         string          `db:"ingredient_name"`
	Unit         string          `db:"unit"`
	TotalUsed    decimal.Decimal `db:"total_used"`
}

// CompletedRevenue sums total_amount for completed orders in an inclusive
// date range.
func (s *Store) CompletedRevenue(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := s.db.GetContext(ctx, &revenue, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE owner_id = $1 AND status = $2 AND order_date >= $3 AND order_date <= $4`,
		ownerID, models.OrderStatusCompleted, start, end)
	return revenue, err
}

// CompletedCOGS sums item quantity times the cost snapshot taken at the time
// the item was created, over completed orders in range.
func (s *Store) CompletedCOGS(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var cogs decimal.Decimal
	err := s.db.GetContext(ctx, &cogs, `
		SELECT COALESCE(SUM(oi.quantity * oi.unit_cost), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.owner_id = $1 AND o.status = $2 AND o.order_date >= $3 AND o.order_date <= $4`,
		ownerID, models.OrderStatusCompleted, start, end)
	return cogs, err
}

// SalesByProduct groups completed-order items by name, revenue descending
func (s *Store) SalesByProduct(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT oi.name AS product_name,
		       COALESCE(SUM(oi.quantity), 0) AS total_quantity,
		       COALESCE(SUM(oi.total_price), 0) AS total_revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.owner_id = $1 AND o.status = $2 AND o.order_date >= $3 AND o.order_date <= $4
		GROUP BY oi.name
		ORDER BY total_revenue DESC`,
		ownerID, models.OrderStatusCompleted, start, end)
	return rows, err
}

// IngredientUsage walks completed orders' recipe-linked items down to their
// ingredient links and sums item.quantity * link.quantity per ingredient.
func (s *Store) IngredientUsage(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]IngredientUsageRow, error) {
	var rows []IngredientUsageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT i.id AS ingredient_id,
		       i.name AS ingredient_name,
		       i.unit,
		       COALESCE(SUM(oi.quantity * ril.quantity), 0) AS total_used
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN recipe_ingredient_links ril ON ril.recipe_id = oi.recipe_id
		JOIN ingredients i ON i.id = ril.ingredient_id
		WHERE o.owner_id = $1 AND o.status = $2 AND o.order_date >= $3 AND o.order_date <= $4
		  AND oi.recipe_id IS NOT NULL
		GROUP BY i.id, i.name, i.unit
		ORDER BY total_used DESC`,
		ownerID, models.OrderStatusCompleted, start, end)
	return rows, err
}
