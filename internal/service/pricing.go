package service

import (
	"fmt"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested line for an order or quote.
type ItemRequest struct {
	RecipeID    *uuid.UUID      `json:"recipe_id,omitempty"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ValidateItems rejects empty or malformed item lists before any pricing.
func ValidateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("order needs at least one item: %w", errs.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %q quantity must be positive: %w", item.Name, errs.ErrValidation)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("item %q unit price must not be negative: %w", item.Name, errs.ErrValidation)
		}
	}
	return nil
}

// Subtotal sums quantity*unit_price over items, rounded half-up to cents.
func Subtotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

// Tax applies a flat rate to a subtotal. The rate is the pluggable hook;
// with the default zero rate the tax is zero.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// BalanceDue computes the remaining balance for a total and an optional
// deposit. A zero or absent deposit leaves the full total due.
func BalanceDue(total decimal.Decimal, deposit decimal.NullDecimal) decimal.Decimal {
	if deposit.Valid && deposit.Decimal.IsPositive() {
		return total.Sub(deposit.Decimal)
	}
	return total
}

// LineTotal computes a single item's extended price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
