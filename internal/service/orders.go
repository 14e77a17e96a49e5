package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderStore interface {
	NextOrderSequence(ctx context.Context, ownerID uuid.UUID, day, prefix string) (int, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id, ownerID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order, newItems []models.OrderItem) error
	DeleteOrder(ctx context.Context, id, ownerID uuid.UUID) error
	GetQuote(ctx context.Context, id, ownerID uuid.UUID) (*models.Quote, error)
	ConvertQuote(ctx context.Context, quote *models.Quote, order *models.Order) error
	GetRecipeCost(ctx context.Context, recipeID uuid.UUID) (decimal.Decimal, error)
}

// OrderService owns the order lifecycle. All monetary fields are computed
// here at write time; confirmation hands the order to the inventory service
// for the one-time stock deduction.
type OrderService struct {
	store     orderStore
	inventory *InventoryService
	taxRate   decimal.Decimal
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store orderStore, inventory *InventoryService, taxRate decimal.Decimal) *OrderService {
	return &OrderService{
		store:     store,
		inventory: inventory,
		taxRate:   taxRate,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	OrderDate       *time.Time          `json:"order_date"`
	DueDate         time.Time           `json:"due_date" binding:"required"`
	DeliveryMethod  string              `json:"delivery_method"`
	Items           []ItemRequest       `json:"items" binding:"required"`
	DepositAmount   decimal.NullDecimal `json:"deposit_amount"`
	DepositDueDate  *time.Time          `json:"deposit_due_date"`
	BalanceDueDate  *time.Time          `json:"balance_due_date"`
	NotesToCustomer string              `json:"notes_to_customer"`
	InternalNotes   string              `json:"internal_notes"`
}

// UpdateOrderRequest represents a partial order update. A non-nil Items
// replaces the item list and triggers a full reprice.
type UpdateOrderRequest struct {
	Status          *string              `json:"status"`
	PaymentStatus   *string              `json:"payment_status"`
	DueDate         *time.Time           `json:"due_date"`
	DeliveryMethod  *string              `json:"delivery_method"`
	Items           []ItemRequest        `json:"items"`
	DepositAmount   *decimal.NullDecimal `json:"deposit_amount"`
	DepositDueDate  *time.Time           `json:"deposit_due_date"`
	BalanceDueDate  *time.Time           `json:"balance_due_date"`
	NotesToCustomer *string              `json:"notes_to_customer"`
	InternalNotes   *string              `json:"internal_notes"`
}

// numberPrefix derives the per-owner prefix embedded in order and quote
// numbers: the first 8 hex characters of the owner id, uppercased.
func numberPrefix(ownerID uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(ownerID.String(), "-", "")[:8])
}

// GenerateOrderNumber claims the next number in the owner's daily sequence.
// The sequence row is bumped atomically in the database, so two concurrent
// creations can never see the same number.
func (os *OrderService) GenerateOrderNumber(ctx context.Context, ownerID uuid.UUID) (string, error) {
	day := time.Now().Format("20060102")
	prefix := numberPrefix(ownerID)
	seq, err := os.store.NextOrderSequence(ctx, ownerID, day, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%03d", day, prefix, seq), nil
}

// priceItems turns requested lines into persisted order items, snapshotting
// each linked recipe's calculated cost as the line's unit cost. Lines
// without a recipe carry zero cost.
func (os *OrderService) priceItems(ctx context.Context, reqs []ItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		unitCost := decimal.Zero
		if r.RecipeID != nil {
			cost, err := os.store.GetRecipeCost(ctx, *r.RecipeID)
			if err != nil {
				return nil, fmt.Errorf("recipe %s for item %q: %w", *r.RecipeID, r.Name, err)
			}
			unitCost = cost
		}
		items = append(items, models.OrderItem{
			RecipeID:    r.RecipeID,
			Name:        r.Name,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			TotalPrice:  LineTotal(r.Quantity, r.UnitPrice),
			UnitCost:    unitCost,
		})
	}
	return items, nil
}

// reprice recomputes every derived monetary field from the item list.
func (os *OrderService) reprice(order *models.Order) {
	order.Subtotal = Subtotal(order.Items)
	order.Tax = Tax(order.Subtotal, os.taxRate)
	order.TotalAmount = order.Subtotal.Add(order.Tax)
	order.BalanceDue = BalanceDue(order.TotalAmount, order.DepositAmount)
}

// CreateOrder validates, prices and persists a new order, then deducts
// stock if the order is created directly in a production status.
func (os *OrderService) CreateOrder(ctx context.Context, ownerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := ValidateItems(req.Items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.OrderStatusInquiry
	}
	if !models.ValidOrderStatus(status) {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("unknown order status %q: %w", status, errs.ErrValidation)
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusUnpaid
	}

	items, err := os.priceItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("pricing").Inc()
		return nil, err
	}

	number, err := os.GenerateOrderNumber(ctx, ownerID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("sequence").Inc()
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := &models.Order{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		OrderNumber:     number,
		Status:          status,
		PaymentStatus:   paymentStatus,
		OrderDate:       orderDate,
		DueDate:         req.DueDate,
		DeliveryMethod:  req.DeliveryMethod,
		DepositAmount:   req.DepositAmount,
		DepositDueDate:  req.DepositDueDate,
		BalanceDueDate:  req.BalanceDueDate,
		NotesToCustomer: req.NotesToCustomer,
		InternalNotes:   req.InternalNotes,
		Items:           items,
	}
	os.reprice(order)

	// Deduct before the insert so a failed deduction leaves nothing behind
	// and the client can safely retry the creation.
	if os.inventory != nil {
		if _, err := os.inventory.DeductForOrder(ctx, order, ownerID); err != nil {
			util.OrdersFailedTotal.WithLabelValues("deduction").Inc()
			os.logger.Error("Stock deduction for new order failed",
				zap.String("order_id", order.ID.String()), zap.Error(err))
			return nil, err
		}
	}

	if err := os.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("store").Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	os.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status),
		zap.String("total", order.TotalAmount.String()))
	return order, nil
}

// GetOrder fetches one order scoped to its owner.
func (os *OrderService) GetOrder(ctx context.Context, id, ownerID uuid.UUID) (*models.Order, error) {
	return os.store.GetOrder(ctx, id, ownerID)
}

// ListOrders returns an owner's orders, optionally filtered by status.
func (os *OrderService) ListOrders(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Order, error) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q: %w", status, errs.ErrValidation)
	}
	return os.store.ListOrders(ctx, ownerID, status)
}

// UpdateOrder applies a partial update. A replaced item list triggers a
// full reprice. A transition into a production status deducts stock before
// the status change is persisted, so a failed deduction leaves the order
// untouched; the deduction marker keeps a retried confirmation from
// deducting twice.
func (os *OrderService) UpdateOrder(ctx context.Context, id, ownerID uuid.UUID, req *UpdateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer span.End()

	order, err := os.store.GetOrder(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	var newItems []models.OrderItem
	if req.Items != nil {
		if err := ValidateItems(req.Items); err != nil {
			return nil, err
		}
		newItems, err = os.priceItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		order.Items = newItems
	}

	if req.Status != nil {
		if !models.ValidOrderStatus(*req.Status) {
			return nil, fmt.Errorf("unknown order status %q: %w", *req.Status, errs.ErrValidation)
		}
		order.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.DueDate != nil {
		order.DueDate = *req.DueDate
	}
	if req.DeliveryMethod != nil {
		order.DeliveryMethod = *req.DeliveryMethod
	}
	if req.DepositAmount != nil {
		order.DepositAmount = *req.DepositAmount
	}
	if req.DepositDueDate != nil {
		order.DepositDueDate = req.DepositDueDate
	}
	if req.BalanceDueDate != nil {
		order.BalanceDueDate = req.BalanceDueDate
	}
	if req.NotesToCustomer != nil {
		order.NotesToCustomer = *req.NotesToCustomer
	}
	if req.InternalNotes != nil {
		order.InternalNotes = *req.InternalNotes
	}
	os.reprice(order)

	if os.inventory != nil {
		if _, err := os.inventory.DeductForOrder(ctx, order, ownerID); err != nil {
			return nil, err
		}
	}

	if err := os.store.UpdateOrder(ctx, order, newItems); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes an order. Deducted stock is not restored; a cancelled
// production run is reconciled through a manual stock adjustment.
func (os *OrderService) DeleteOrder(ctx context.Context, id, ownerID uuid.UUID) error {
	return os.store.DeleteOrder(ctx, id, ownerID)
}

// ConvertQuoteToOrderRequest carries the order-only fields a conversion needs.
type ConvertQuoteToOrderRequest struct {
	DueDate        time.Time           `json:"due_date" binding:"required"`
	DeliveryMethod string              `json:"delivery_method"`
	DepositAmount  decimal.NullDecimal `json:"deposit_amount"`
	DepositDueDate *time.Time          `json:"deposit_due_date"`
	BalanceDueDate *time.Time          `json:"balance_due_date"`
}

// ConvertQuoteToOrder turns an accepted quote into a confirmed order. The
// quote's lines and totals carry over; unit costs are snapshotted at
// conversion time, not quote time. Only accepted quotes convert, and a
// quote converts at most once.
func (os *OrderService) ConvertQuoteToOrder(ctx context.Context, quoteID, ownerID uuid.UUID, req *ConvertQuoteToOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConvertQuoteToOrder")
	defer span.End()

	quote, err := os.store.GetQuote(ctx, quoteID, ownerID)
	if err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteStatusAccepted {
		return nil, fmt.Errorf("quote %s is %s, only accepted quotes convert: %w",
			quote.ID, quote.Status, errs.ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(quote.Items))
	for _, qi := range quote.Items {
		unitCost := decimal.Zero
		if qi.RecipeID != nil {
			cost, err := os.store.GetRecipeCost(ctx, *qi.RecipeID)
			if err != nil {
				return nil, fmt.Errorf("recipe %s for item %q: %w", *qi.RecipeID, qi.Name, err)
			}
			unitCost = cost
		}
		items = append(items, models.OrderItem{
			RecipeID:    qi.RecipeID,
			Name:        qi.Name,
			Description: qi.Description,
			Quantity:    qi.Quantity,
			UnitPrice:   qi.UnitPrice,
			TotalPrice:  qi.TotalPrice,
			UnitCost:    unitCost,
		})
	}

	number, err := os.GenerateOrderNumber(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		OrderNumber:     number,
		Status:          models.OrderStatusConfirmed,
		PaymentStatus:   models.PaymentStatusUnpaid,
		OrderDate:       time.Now(),
		DueDate:         req.DueDate,
		DeliveryMethod:  req.DeliveryMethod,
		DepositAmount:   req.DepositAmount,
		DepositDueDate:  req.DepositDueDate,
		BalanceDueDate:  req.BalanceDueDate,
		NotesToCustomer: quote.Notes,
		Items:           items,
	}
	os.reprice(order)

	// Deduct before the conversion is persisted so a failed deduction
	// leaves the quote unconverted and no order behind.
	if os.inventory != nil {
		if _, err := os.inventory.DeductForOrder(ctx, order, ownerID); err != nil {
			os.logger.Error("Stock deduction for quote conversion failed",
				zap.String("quote_id", quote.ID.String()), zap.Error(err))
			return nil, err
		}
	}

	if err := os.store.ConvertQuote(ctx, quote, order); err != nil {
		return nil, err
	}

	util.QuotesConvertedTotal.Inc()
	os.logger.Info("Quote converted to order",
		zap.String("quote_id", quote.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber))
	return order, nil
}
