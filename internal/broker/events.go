package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"bakery-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishIngredientCostChanged publishes an IngredientCostChanged event
func (ep *EventPublisher) PublishIngredientCostChanged(ctx context.Context, event *models.IngredientCostChangedEvent) error {
	key := fmt.Sprintf("ingredient-%s", event.IngredientID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLowStockDetected publishes a LowStockDetected event
func (ep *EventPublisher) PublishLowStockDetected(ctx context.Context, event *models.LowStockDetectedEvent) error {
	key := fmt.Sprintf("ingredient-%s", event.IngredientID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming inventory events
type EventHandler struct {
	onCostChanged func(context.Context, *models.IngredientCostChangedEvent) error
	onLowStock    func(context.Context, *models.LowStockDetectedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnIngredientCostChanged registers a handler for IngredientCostChanged events
func (eh *EventHandler) OnIngredientCostChanged(handler func(context.Context, *models.IngredientCostChangedEvent) error) {
	eh.onCostChanged = handler
}

// OnLowStockDetected registers a handler for LowStockDetected events
func (eh *EventHandler) OnLowStockDetected(handler func(context.Context, *models.LowStockDetectedEvent) error) {
	eh.onLowStock = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeIngredientCostChanged:
		if eh.onCostChanged != nil {
			var event models.IngredientCostChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal IngredientCostChanged event: %w", err)
			}
			return eh.onCostChanged(ctx, &event)
		}

	case models.EventTypeLowStockDetected:
		if eh.onLowStock != nil {
			var event models.LowStockDetectedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal LowStockDetected event: %w", err)
			}
			return eh.onLowStock(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
