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

type expenseStore interface {
	CreateExpense(ctx context.Context, exp *models.Expense) error
	GetExpense(ctx context.Context, id, ownerID uuid.UUID) (*models.Expense, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id, ownerID uuid.UUID) error
}

// ExpenseService records operating expenses. They are write-mostly input
// for the profit and loss report.
type ExpenseService struct {
	store  expenseStore
	logger *zap.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(store expenseStore) *ExpenseService {
	return &ExpenseService{store: store, logger: util.GetLogger()}
}

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"required"`
	Vendor      string          `json:"vendor"`
	Notes       string          `json:"notes"`
}

// CreateExpense validates and records an expense.
func (es *ExpenseService) CreateExpense(ctx context.Context, ownerID uuid.UUID, req *CreateExpenseRequest) (*models.Expense, error) {
	if !models.ValidExpenseCategory(req.Category) {
		return nil, fmt.Errorf("unknown expense category %q: %w", req.Category, errs.ErrValidation)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("expense amount must not be negative: %w", errs.ErrValidation)
	}

	exp := &models.Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
	}
	if err := es.store.CreateExpense(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	es.logger.Info("Expense recorded",
		zap.String("expense_id", exp.ID.String()),
		zap.String("category", exp.Category),
		zap.String("amount", exp.Amount.String()))
	return exp, nil
}

// GetExpense fetches one expense scoped to its owner.
func (es *ExpenseService) GetExpense(ctx context.Context, id, ownerID uuid.UUID) (*models.Expense, error) {
	return es.store.GetExpense(ctx, id, ownerID)
}

// ListExpenses returns an owner's expenses, newest first.
func (es *ExpenseService) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]models.Expense, error) {
	return es.store.ListExpenses(ctx, ownerID)
}

// DeleteExpense removes an expense.
func (es *ExpenseService) DeleteExpense(ctx context.Context, id, ownerID uuid.UUID) error {
	return es.store.DeleteExpense(ctx, id, ownerID)
}
