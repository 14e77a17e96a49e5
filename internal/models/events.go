package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeIngredientCostChanged = "INGREDIENT_COST_CHANGED"
	EventTypeLowStockDetected      = "LOW_STOCK_DETECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// IngredientCostChangedEvent is published when an ingredient's unit cost
// changes. The worker consumes it and recomputes every dependent recipe.
type IngredientCostChangedEvent struct {
	BaseEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	OldUnitCost  decimal.Decimal `json:"old_unit_cost"`
	NewUnitCost  decimal.Decimal `json:"new_unit_cost"`
}

// LowStockDetectedEvent is published when a stock mutation leaves an
// ingredient below its threshold. Delivery of the alert is the worker's
// problem; the mutating request never waits on it.
type LowStockDetectedEvent struct {
	BaseEvent
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	OnHand         decimal.Decimal `json:"quantity_on_hand"`
	Threshold      decimal.Decimal `json:"low_stock_threshold"`
}
