package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/broker"
	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ingredientStore interface {
	CreateIngredient(ctx context.Context, ing *models.Ingredient) error
	GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *models.Ingredient) error
	DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) error
}

// IngredientService owns ingredient CRUD. A unit-cost change publishes an
// event so dependent recipe costs are recomputed asynchronously; a stock or
// threshold change re-runs the low-stock check inline.
type IngredientService struct {
	store          ingredientStore
	inventory      *InventoryService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewIngredientService creates a new ingredient service
func NewIngredientService(store ingredientStore, inventory *InventoryService, eventPublisher *broker.EventPublisher) *IngredientService {
	return &IngredientService{
		store:          store,
		inventory:      inventory,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateIngredientRequest carries a new ingredient's fields.
type CreateIngredientRequest struct {
	Name              string              `json:"name" binding:"required"`
	Unit              string              `json:"unit" binding:"required"`
	Description       string              `json:"description"`
	UnitCost          decimal.Decimal     `json:"unit_cost"`
	Density           decimal.NullDecimal `json:"density"`
	StockQuantity     decimal.NullDecimal `json:"stock_quantity"`
	LowStockThreshold decimal.NullDecimal `json:"low_stock_threshold"`
}

// UpdateIngredientRequest carries a partial update; nil fields are untouched.
type UpdateIngredientRequest struct {
	Name              *string              `json:"name"`
	Unit              *string              `json:"unit"`
	Description       *string              `json:"description"`
	UnitCost          *decimal.Decimal     `json:"unit_cost"`
	Density           *decimal.NullDecimal `json:"density"`
	StockQuantity     *decimal.NullDecimal `json:"stock_quantity"`
	LowStockThreshold *decimal.NullDecimal `json:"low_stock_threshold"`
}

func validateIngredient(name, unit string, unitCost decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("%w: ingredient name is required", errs.ErrValidation)
	}
	if unit == "" {
		return fmt.Errorf("%w: ingredient unit is required", errs.ErrValidation)
	}
	if unitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost cannot be negative", errs.ErrValidation)
	}
	return nil
}

// CreateIngredient validates and persists a new ingredient.
func (s *IngredientService) CreateIngredient(ctx context.Context, ownerID uuid.UUID, req *CreateIngredientRequest) (*models.Ingredient, error) {
	ctx, span := util.StartSpan(ctx, "IngredientService.CreateIngredient")
	defer span.End()

	if err := validateIngredient(req.Name, req.Unit, req.UnitCost); err != nil {
		return nil, err
	}

	ing := &models.Ingredient{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Name:              req.Name,
		Unit:              req.Unit,
		Description:       req.Description,
		UnitCost:          req.UnitCost,
		Density:           req.Density,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if err := s.store.CreateIngredient(ctx, ing); err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	s.logger.Info("Ingredient created",
		zap.String("ingredient_id", ing.ID.String()),
		zap.String("name", ing.Name))

	if s.inventory != nil {
		s.inventory.CheckAndNotifyLowStock(ctx, ing, ownerID)
	}
	return ing, nil
}

// GetIngredient fetches one ingredient scoped to its owner.
func (s *IngredientService) GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error) {
	return s.store.GetIngredient(ctx, id, ownerID)
}

// ListIngredients returns all of an owner's ingredients.
func (s *IngredientService) ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	return s.store.ListIngredients(ctx, ownerID)
}

// UpdateIngredient applies a partial update. A unit-cost change emits an
// INGREDIENT_COST_CHANGED event; the recompute of dependent recipes runs
// asynchronously off that event, not inside this call.
func (s *IngredientService) UpdateIngredient(ctx context.Context, id, ownerID uuid.UUID, req *UpdateIngredientRequest) (*models.Ingredient, error) {
	ctx, span := util.StartSpan(ctx, "IngredientService.UpdateIngredient")
	defer span.End()

	ing, err := s.store.GetIngredient(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	oldCost := ing.UnitCost
	stockTouched := false

	if req.Name != nil {
		ing.Name = *req.Name
	}
	if req.Unit != nil {
		ing.Unit = *req.Unit
	}
	if req.Description != nil {
		ing.Description = *req.Description
	}
	if req.UnitCost != nil {
		ing.UnitCost = *req.UnitCost
	}
	if req.Density != nil {
		ing.Density = *req.Density
	}
	if req.StockQuantity != nil {
		ing.StockQuantity = *req.StockQuantity
		stockTouched = true
	}
	if req.LowStockThreshold != nil {
		ing.LowStockThreshold = *req.LowStockThreshold
		stockTouched = true
	}

	if err := validateIngredient(ing.Name, ing.Unit, ing.UnitCost); err != nil {
		return nil, err
	}

	if err := s.store.UpdateIngredient(ctx, ing); err != nil {
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}

	if !oldCost.Equal(ing.UnitCost) {
		s.publishCostChanged(ctx, ing, oldCost)
	}
	if stockTouched && s.inventory != nil {
		s.inventory.CheckAndNotifyLowStock(ctx, ing, ownerID)
	}
	return ing, nil
}

// DeleteIngredient removes an ingredient. Recipe links referencing it stay
// behind; the cost engine skips them, and the stored cost corrects itself on
// the recipe's next recompute.
func (s *IngredientService) DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "IngredientService.DeleteIngredient")
	defer span.End()

	if err := s.store.DeleteIngredient(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.Info("Ingredient deleted", zap.String("ingredient_id", id.String()))
	return nil
}

// TriggerCostUpdate re-publishes a cost-changed event for an ingredient so
// dependent recipe costs are recomputed in the background. Used to repair
// stored costs after out-of-band data changes.
func (s *IngredientService) TriggerCostUpdate(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "IngredientService.TriggerCostUpdate")
	defer span.End()

	ing, err := s.store.GetIngredient(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if s.eventPublisher == nil {
		return fmt.Errorf("event publisher not configured: %w", errs.ErrConfiguration)
	}

	event := &models.IngredientCostChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeIngredientCostChanged,
			Timestamp: time.Now(),
		},
		IngredientID: ing.ID,
		OwnerID:      ing.OwnerID,
		OldUnitCost:  ing.UnitCost,
		NewUnitCost:  ing.UnitCost,
	}
	if err := s.eventPublisher.PublishIngredientCostChanged(ctx, event); err != nil {
		return fmt.Errorf("failed to publish cost update trigger: %w", err)
	}
	return nil
}

func (s *IngredientService) publishCostChanged(ctx context.Context, ing *models.Ingredient, oldCost decimal.Decimal) {
	if s.eventPublisher == nil {
		return
	}
	event := &models.IngredientCostChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeIngredientCostChanged,
			Timestamp: time.Now(),
		},
		IngredientID: ing.ID,
		OwnerID:      ing.OwnerID,
		OldUnitCost:  oldCost,
		NewUnitCost:  ing.UnitCost,
	}
	if err := s.eventPublisher.PublishIngredientCostChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish IngredientCostChanged event",
			zap.String("ingredient_id", ing.ID.String()),
			zap.Error(err))
		return
	}
	s.logger.Info("Ingredient cost changed",
		zap.String("ingredient_id", ing.ID.String()),
		zap.String("old_cost", oldCost.String()),
		zap.String("new_cost", ing.UnitCost.String()))
}
