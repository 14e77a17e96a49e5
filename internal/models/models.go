package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient represents a raw ingredient owned by a baker.
// StockQuantity and LowStockThreshold are nullable: a null stock
// quantity means the ingredient is not inventory-tracked.
type Ingredient struct {
	ID                uuid.UUID           `db:"id" json:"id"`
	OwnerID           uuid.UUID           `db:"owner_id" json:"owner_id"`
	Name              string              `db:"name" json:"name"`
	Unit              string              `db:"unit" json:"unit"`
	Description       string              `db:"description" json:"description,omitempty"`
	UnitCost          decimal.Decimal     `db:"unit_cost" json:"unit_cost"`
	Density           decimal.NullDecimal `db:"density" json:"density,omitempty"`
	StockQuantity     decimal.NullDecimal `db:"stock_quantity" json:"stock_quantity,omitempty"`
	LowStockThreshold decimal.NullDecimal `db:"low_stock_threshold" json:"low_stock_threshold,omitempty"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// IsLowStock reports whether the ingredient is below its threshold.
// Quantity exactly at the threshold is not low.
func (i *Ingredient) IsLowStock() bool {
	if !i.StockQuantity.Valid || !i.LowStockThreshold.Valid {
		return false
	}
	return i.StockQuantity.Decimal.LessThan(i.LowStockThreshold.Decimal)
}

// Recipe represents a recipe whose cost is derived from its ingredient links.
// CalculatedCost is denormalized: it is rewritten whenever the ingredient set
// or a referenced ingredient's unit cost changes, never computed at read time.
type Recipe struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OwnerID         uuid.UUID       `db:"owner_id" json:"owner_id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description,omitempty"`
	Instructions    string          `db:"instructions" json:"instructions"`
	PrepTimeMinutes int             `db:"prep_time_minutes" json:"prep_time_minutes,omitempty"`
	CookTimeMinutes int             `db:"cook_time_minutes" json:"cook_time_minutes,omitempty"`
	YieldQuantity   decimal.Decimal `db:"yield_quantity" json:"yield_quantity"`
	YieldUnit       string          `db:"yield_unit" json:"yield_unit"`
	CalculatedCost  decimal.Decimal `db:"calculated_cost" json:"calculated_cost"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`

	Links []RecipeIngredientLink `db:"-" json:"ingredients,omitempty"`
}

// RecipeIngredientLink ties a quantity of an ingredient to a recipe.
// Quantity is expressed in the ingredient's own unit; no conversion is done.
type RecipeIngredientLink struct {
	RecipeID     uuid.UUID       `db:"recipe_id" json:"recipe_id"`
	IngredientID uuid.UUID       `db:"ingredient_id" json:"ingredient_id"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Unit         string          `db:"unit" json:"unit"`
}

// LowStockEntry is one row of a low-stock scan.
type LowStockEntry struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Name         string          `json:"ingredient_name"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"quantity_on_hand"`
	Threshold    decimal.Decimal `json:"low_stock_threshold"`
	Shortfall    decimal.Decimal `json:"shortfall"`
}

// StockDeduction marks an order whose stock has already been deducted.
// Inserted in the same transaction as the decrements so a repeated
// confirmation cannot double-deduct.
type StockDeduction struct {
	OrderID    uuid.UUID `db:"order_id"`
	DeductedAt time.Time `db:"deducted_at"`
}
