package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
)

// CreateExpense inserts an expense record
func (s *Store) CreateExpense(ctx context.Context, exp *models.Expense) error {
	if exp.ID == uuid.Nil {
		exp.ID = uuid.New()
	}
	query := `
		INSERT INTO expenses (id, owner_id, date, description, amount, category, vendor, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, exp, query,
		exp.ID, exp.OwnerID, exp.Date, exp.Description, exp.Amount,
		exp.Category, exp.Vendor, exp.Notes)
}

// GetExpense retrieves an expense owned by ownerID
func (s *Store) GetExpense(ctx context.Context, id, ownerID uuid.UUID) (*models.Expense, error) {
	var exp models.Expense
	err := s.db.GetContext(ctx, &exp,
		"SELECT * FROM expenses WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// ListExpenses retrieves expenses for an owner, newest first
func (s *Store) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.SelectContext(ctx, &expenses,
		"SELECT * FROM expenses WHERE owner_id = $1 ORDER BY date DESC", ownerID)
	return expenses, err
}

// DeleteExpense removes an expense
func (s *Store) DeleteExpense(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res, "expense", id)
}

// ExpensesByCategory sums expenses per category over an inclusive range
func (s *Store) ExpensesByCategory(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]CategoryTotalRow, error) {
	var rows []CategoryTotalRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT category, COALESCE(SUM(amount), 0) AS total
		FROM expenses
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
		GROUP BY category`,
		ownerID, start, end)
	return rows, err
}
