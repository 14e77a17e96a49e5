package worker

import (
	"context"
	"errors"
	"log"

	"bakery-service/internal/broker"
	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/notify"
	"bakery-service/internal/service"
)

// InventoryWorker consumes inventory events off the broker. Cost changes
// fan out to dependent recipe recomputes; low-stock events are delivered
// to the notifier. Both run off the request path.
type InventoryWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewInventoryWorker creates a new inventory worker
func NewInventoryWorker(
	consumer *broker.Consumer,
	recipes *service.RecipeService,
	notifier *notify.Notifier,
) *InventoryWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnIngredientCostChanged(func(ctx context.Context, event *models.IngredientCostChangedEvent) error {
		return recipes.PropagateIngredientChange(ctx, event.IngredientID)
	})

	eventHandler.OnLowStockDetected(func(ctx context.Context, event *models.LowStockDetectedEvent) error {
		err := notifier.SendLowStockAlert(ctx, event)
		if errors.Is(err, errs.ErrConfiguration) {
			log.Printf("Skipping low stock alert for %s: notifications not configured", event.IngredientName)
			return nil
		}
		if err != nil {
			// Alert delivery is fire and forget; a failed webhook call is
			// logged, never retried through the consumer.
			log.Printf("Failed to deliver low stock alert for %s: %v", event.IngredientName, err)
		}
		return nil
	})

	return &InventoryWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *InventoryWorker) Start(ctx context.Context) error {
	log.Println("Starting inventory worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InventoryWorker) Stop() error {
	log.Println("Stopping inventory worker...")
	return w.consumer.Close()
}
