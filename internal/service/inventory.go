package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/broker"
	"bakery-service/internal/models"
	"bakery-service/internal/redisclient"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// inventoryStore is the slice of the store the inventory service needs.
type inventoryStore interface {
	GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error)
	AdjustStock(ctx context.Context, id, ownerID uuid.UUID, delta decimal.Decimal) (*models.Ingredient, error)
	LowStockIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error)
	GetRecipeLinks(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredientLink, error)
	DeductStockForOrder(ctx context.Context, orderID, ownerID uuid.UUID, needs map[uuid.UUID]decimal.Decimal) (bool, []models.Ingredient, error)
}

// InventoryService mutates ingredient stock and raises low-stock signals.
// Alerts go through the event publisher; the mutating request never waits
// on delivery and never fails because of it.
type InventoryService struct {
	store          inventoryStore
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	alertTTL       time.Duration
	deductStatuses map[string]bool
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	store inventoryStore,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	alertTTL time.Duration,
	deductStatuses []string,
) *InventoryService {
	statuses := make(map[string]bool, len(deductStatuses))
	for _, s := range deductStatuses {
		statuses[s] = true
	}
	return &InventoryService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		alertTTL:       alertTTL,
		deductStatuses: statuses,
		logger:         util.GetLogger(),
	}
}

// AdjustStock adds delta (positive or negative) to an ingredient's stock and
// runs the low-stock check afterwards. Stock is not clamped at zero: a
// negative quantity represents a backorder.
func (is *InventoryService) AdjustStock(ctx context.Context, ingredientID, ownerID uuid.UUID, delta decimal.Decimal) (*models.Ingredient, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.AdjustStock")
	defer span.End()

	ing, err := is.store.AdjustStock(ctx, ingredientID, ownerID, delta)
	if err != nil {
		return nil, err
	}

	is.logger.Info("Stock adjusted",
		zap.String("ingredient_id", ingredientID.String()),
		zap.String("delta", delta.String()),
		zap.String("stock", ing.StockQuantity.Decimal.String()))

	is.CheckAndNotifyLowStock(ctx, ing, ownerID)
	return ing, nil
}

// DeductForOrder walks an order's recipe-linked items down to their
// ingredient links and applies every decrement as one atomic unit. Items
// without a linked recipe never move inventory. Returns false when the
// order's status does not trigger production or when the order was already
// deducted; deduction happens exactly once per order.
func (is *InventoryService) DeductForOrder(ctx context.Context, order *models.Order, ownerID uuid.UUID) (bool, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.DeductForOrder")
	defer span.End()

	if !is.deductStatuses[order.Status] {
		return false, nil
	}

	start := time.Now()
	defer func() {
		util.StockDeductionLatency.Observe(time.Since(start).Seconds())
	}()

	needs := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range order.Items {
		if item.RecipeID == nil {
			continue
		}
		links, err := is.store.GetRecipeLinks(ctx, *item.RecipeID)
		if err != nil {
			util.StockDeductionsFailed.WithLabelValues("links_unavailable").Inc()
			return false, fmt.Errorf("failed to resolve recipe %s: %w", *item.RecipeID, err)
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		for _, link := range links {
			needs[link.IngredientID] = needs[link.IngredientID].Add(link.Quantity.Mul(qty))
		}
	}

	if len(needs) == 0 {
		return false, nil
	}

	applied, updated, err := is.store.DeductStockForOrder(ctx, order.ID, ownerID, needs)
	if err != nil {
		util.StockDeductionsFailed.WithLabelValues("tx_failed").Inc()
		return false, fmt.Errorf("stock deduction for order %s: %w", order.ID, err)
	}
	if !applied {
		util.StockDeductionsSkipped.Inc()
		is.logger.Info("Stock already deducted for order",
			zap.String("order_id", order.ID.String()))
		return false, nil
	}

	util.StockDeductionsTotal.Inc()
	is.logger.Info("Stock deducted for order",
		zap.String("order_id", order.ID.String()),
		zap.Int("ingredients", len(updated)))

	for i := range updated {
		is.CheckAndNotifyLowStock(ctx, &updated[i], ownerID)
	}
	return true, nil
}

// CheckAndNotifyLowStock publishes a low-stock alert for an ingredient
// below its threshold. Redis deduplicates repeat alerts within the TTL;
// stock recovering above threshold re-arms the alert. Publish and dedup
// failures are logged, never propagated.
func (is *InventoryService) CheckAndNotifyLowStock(ctx context.Context, ing *models.Ingredient, ownerID uuid.UUID) {
	if !ing.IsLowStock() {
		if is.redis != nil && ing.StockQuantity.Valid && ing.LowStockThreshold.Valid {
			if err := is.redis.ReleaseAlert(ctx, ing.ID.String()); err != nil {
				is.logger.Warn("Failed to re-arm low stock alert", zap.Error(err))
			}
		}
		return
	}

	if is.redis != nil {
		claimed, err := is.redis.ClaimAlert(ctx, ing.ID.String(), is.alertTTL)
		if err != nil {
			is.logger.Warn("Alert dedup unavailable, sending anyway", zap.Error(err))
		} else if !claimed {
			return
		}
	}

	event := &models.LowStockDetectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeLowStockDetected,
			Timestamp: time.Now(),
		},
		IngredientID:   ing.ID,
		OwnerID:        ownerID,
		IngredientName: ing.Name,
		Unit:           ing.Unit,
		OnHand:         ing.StockQuantity.Decimal,
		Threshold:      ing.LowStockThreshold.Decimal,
	}

	if is.eventPublisher != nil {
		if err := is.eventPublisher.PublishLowStockDetected(ctx, event); err != nil {
			is.logger.Error("Failed to publish LowStockDetected event",
				zap.String("ingredient_id", ing.ID.String()),
				zap.Error(err))
			return
		}
	}

	util.LowStockAlertsTotal.Inc()
	is.logger.Warn("Ingredient low on stock",
		zap.String("ingredient", ing.Name),
		zap.String("on_hand", ing.StockQuantity.Decimal.String()),
		zap.String("threshold", ing.LowStockThreshold.Decimal.String()))
}

// LowStockEntries scans an owner's ingredients and returns every one below
// threshold, with the shortfall computed. No alerts are sent.
func (is *InventoryService) LowStockEntries(ctx context.Context, ownerID uuid.UUID) ([]models.LowStockEntry, error) {
	ingredients, err := is.store.LowStockIngredients(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan low stock: %w", err)
	}

	entries := make([]models.LowStockEntry, 0, len(ingredients))
	for _, ing := range ingredients {
		entries = append(entries, models.LowStockEntry{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			OnHand:       ing.StockQuantity.Decimal,
			Threshold:    ing.LowStockThreshold.Decimal,
			Shortfall:    ing.LowStockThreshold.Decimal.Sub(ing.StockQuantity.Decimal),
		})
	}
	return entries, nil
}

// RunLowStockCheck scans all of an owner's ingredients, sends one alert per
// low item, and returns the low entries. This is what a periodic external
// scheduler is expected to call.
func (is *InventoryService) RunLowStockCheck(ctx context.Context, ownerID uuid.UUID) ([]models.LowStockEntry, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.RunLowStockCheck")
	defer span.End()

	ingredients, err := is.store.LowStockIngredients(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan low stock: %w", err)
	}

	entries := make([]models.LowStockEntry, 0, len(ingredients))
	for i := range ingredients {
		ing := &ingredients[i]
		entries = append(entries, models.LowStockEntry{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			OnHand:       ing.StockQuantity.Decimal,
			Threshold:    ing.LowStockThreshold.Decimal,
			Shortfall:    ing.LowStockThreshold.Decimal.Sub(ing.StockQuantity.Decimal),
		})
		is.CheckAndNotifyLowStock(ctx, ing, ownerID)
	}
	return entries, nil
}
