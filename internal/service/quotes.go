package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type quoteStore interface {
	NextOrderSequence(ctx context.Context, ownerID uuid.UUID, day, prefix string) (int, error)
	CreateQuote(ctx context.Context, quote *models.Quote) error
	GetQuote(ctx context.Context, id, ownerID uuid.UUID) (*models.Quote, error)
	ListQuotes(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Quote, error)
	UpdateQuote(ctx context.Context, quote *models.Quote, newItems []models.QuoteItem) error
	DeleteQuote(ctx context.Context, id, ownerID uuid.UUID) error
}

// QuoteService owns the quote lifecycle. Pricing matches orders line for
// line except that quotes carry no deposit or balance.
type QuoteService struct {
	store   quoteStore
	taxRate decimal.Decimal
	logger  *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(store quoteStore, taxRate decimal.Decimal) *QuoteService {
	return &QuoteService{
		store:   store,
		taxRate: taxRate,
		logger:  util.GetLogger(),
	}
}

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	Status     string        `json:"status"`
	QuoteDate  *time.Time    `json:"quote_date"`
	ExpiryDate *time.Time    `json:"expiry_date"`
	Notes      string        `json:"notes"`
	Items      []ItemRequest `json:"items" binding:"required"`
}

// UpdateQuoteRequest represents a partial quote update. A non-nil Items
// replaces the item list and triggers a full reprice.
type UpdateQuoteRequest struct {
	Status     *string       `json:"status"`
	ExpiryDate *time.Time    `json:"expiry_date"`
	Notes      *string       `json:"notes"`
	Items      []ItemRequest `json:"items"`
}

// GenerateQuoteNumber claims the next number in the owner's daily quote
// sequence. Quotes use their own Q-prefixed sequence, distinct from orders.
func (qs *QuoteService) GenerateQuoteNumber(ctx context.Context, ownerID uuid.UUID) (string, error) {
	day := time.Now().Format("20060102")
	prefix := numberPrefix(ownerID)
	seq, err := qs.store.NextOrderSequence(ctx, ownerID, day, "Q"+prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Q%s-%s-%03d", day, prefix, seq), nil
}

func toQuoteItems(reqs []ItemRequest) []models.QuoteItem {
	items := make([]models.QuoteItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, models.QuoteItem{
			RecipeID:    r.RecipeID,
			Name:        r.Name,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			TotalPrice:  LineTotal(r.Quantity, r.UnitPrice),
		})
	}
	return items
}

func (qs *QuoteService) reprice(quote *models.Quote) {
	total := decimal.Zero
	for _, item := range quote.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	quote.Subtotal = total.Round(2)
	quote.Tax = Tax(quote.Subtotal, qs.taxRate)
	quote.TotalAmount = quote.Subtotal.Add(quote.Tax)
}

// CreateQuote validates, prices and persists a new quote.
func (qs *QuoteService) CreateQuote(ctx context.Context, ownerID uuid.UUID, req *CreateQuoteRequest) (*models.Quote, error) {
	ctx, span := util.StartSpan(ctx, "QuoteService.CreateQuote")
	defer span.End()

	if err := ValidateItems(req.Items); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.QuoteStatusDraft
	}
	if !models.ValidQuoteStatus(status) {
		return nil, fmt.Errorf("unknown quote status %q: %w", status, errs.ErrValidation)
	}

	number, err := qs.GenerateQuoteNumber(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	quoteDate := time.Now()
	if req.QuoteDate != nil {
		quoteDate = *req.QuoteDate
	}

	quote := &models.Quote{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		QuoteNumber: number,
		Status:      status,
		QuoteDate:   quoteDate,
		ExpiryDate:  req.ExpiryDate,
		Notes:       req.Notes,
		Items:       toQuoteItems(req.Items),
	}
	qs.reprice(quote)

	if err := qs.store.CreateQuote(ctx, quote); err != nil {
		return nil, err
	}

	util.QuotesCreatedTotal.Inc()
	qs.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("total", quote.TotalAmount.String()))
	return quote, nil
}

// GetQuote fetches one quote scoped to its owner.
func (qs *QuoteService) GetQuote(ctx context.Context, id, ownerID uuid.UUID) (*models.Quote, error) {
	return qs.store.GetQuote(ctx, id, ownerID)
}

// ListQuotes returns an owner's quotes, optionally filtered by status.
func (qs *QuoteService) ListQuotes(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Quote, error) {
	if status != "" && !models.ValidQuoteStatus(status) {
		return nil, fmt.Errorf("unknown quote status %q: %w", status, errs.ErrValidation)
	}
	return qs.store.ListQuotes(ctx, ownerID, status)
}

// UpdateQuote applies a partial update. A converted quote is frozen.
func (qs *QuoteService) UpdateQuote(ctx context.Context, id, ownerID uuid.UUID, req *UpdateQuoteRequest) (*models.Quote, error) {
	ctx, span := util.StartSpan(ctx, "QuoteService.UpdateQuote")
	defer span.End()

	quote, err := qs.store.GetQuote(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if quote.Status == models.QuoteStatusConverted {
		return nil, fmt.Errorf("quote %s already converted: %w", quote.ID, errs.ErrConflict)
	}

	var newItems []models.QuoteItem
	if req.Items != nil {
		if err := ValidateItems(req.Items); err != nil {
			return nil, err
		}
		newItems = toQuoteItems(req.Items)
		quote.Items = newItems
	}
	if req.Status != nil {
		if !models.ValidQuoteStatus(*req.Status) {
			return nil, fmt.Errorf("unknown quote status %q: %w", *req.Status, errs.ErrValidation)
		}
		quote.Status = *req.Status
	}
	if req.ExpiryDate != nil {
		quote.ExpiryDate = req.ExpiryDate
	}
	if req.Notes != nil {
		quote.Notes = *req.Notes
	}
	qs.reprice(quote)

	if err := qs.store.UpdateQuote(ctx, quote, newItems); err != nil {
		return nil, err
	}
	return quote, nil
}

// DeleteQuote removes a quote.
func (qs *QuoteService) DeleteQuote(ctx context.Context, id, ownerID uuid.UUID) error {
	return qs.store.DeleteQuote(ctx, id, ownerID)
}
