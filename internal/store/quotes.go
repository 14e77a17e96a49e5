package store

import (
	"context"
	"database/sql"
	"fmt"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CreateQuote inserts a quote and its items in one transaction
func (s *Store) CreateQuote(ctx context.Context, quote *models.Quote) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}

	query := `
		INSERT INTO quotes (id, owner_id, quote_number, status, quote_date, expiry_date,
		                    notes, subtotal, tax, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err = tx.GetContext(ctx, quote, query,
		quote.ID, quote.OwnerID, quote.QuoteNumber, quote.Status, quote.QuoteDate,
		quote.ExpiryDate, quote.Notes, quote.Subtotal, quote.Tax, quote.TotalAmount)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("quote number %s already taken: %w", quote.QuoteNumber, errs.ErrConflict)
		}
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := insertQuoteItems(ctx, tx, quote.ID, quote.Items); err != nil {
		return err
	}
	for i := range quote.Items {
		quote.Items[i].QuoteID = quote.ID
	}

	return tx.Commit()
}

// GetQuote retrieves a quote with its items
func (s *Store) GetQuote(ctx context.Context, id, ownerID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.GetContext(ctx, &quote,
		"SELECT * FROM quotes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quote %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.GetQuoteItems(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return &quote, nil
}

// ListQuotes retrieves all quotes for an owner, optionally filtered by status
func (s *Store) ListQuotes(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Quote, error) {
	var quotes []models.Quote
	var err error
	if status != "" {
		err = s.db.SelectContext(ctx, &quotes,
			"SELECT * FROM quotes WHERE owner_id = $1 AND status = $2 ORDER BY quote_date DESC",
			ownerID, status)
	} else {
		err = s.db.SelectContext(ctx, &quotes,
			"SELECT * FROM quotes WHERE owner_id = $1 ORDER BY quote_date DESC", ownerID)
	}
	return quotes, err
}

// UpdateQuote updates a quote; a non-nil newItems replaces the item list
func (s *Store) UpdateQuote(ctx context.Context, quote *models.Quote, newItems []models.QuoteItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE quotes
		SET status = $1, expiry_date = $2, notes = $3, subtotal = $4, tax = $5,
		    total_amount = $6, converted_to_order_id = $7, updated_at = NOW()
		WHERE id = $8 AND owner_id = $9`,
		quote.Status, quote.ExpiryDate, quote.Notes, quote.Subtotal, quote.Tax,
		quote.TotalAmount, quote.ConvertedToOrderID, quote.ID, quote.OwnerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "quote", quote.ID); err != nil {
		return err
	}

	if newItems != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM quote_items WHERE quote_id = $1", quote.ID); err != nil {
			return err
		}
		if err := insertQuoteItems(ctx, tx, quote.ID, newItems); err != nil {
			return err
		}
		quote.Items = newItems
		for i := range quote.Items {
			quote.Items[i].QuoteID = quote.ID
		}
	}

	return tx.Commit()
}

// DeleteQuote removes a quote and its items
func (s *Store) DeleteQuote(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM quote_items WHERE quote_id = $1", id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM quotes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "quote", id); err != nil {
		return err
	}

	return tx.Commit()
}

// GetQuoteItems retrieves all items for a quote
func (s *Store) GetQuoteItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteItem, error) {
	var items []models.QuoteItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM quote_items WHERE quote_id = $1", quoteID)
	return items, err
}

// ConvertQuote materializes an accepted quote into an order. The order
// insert, the quote's converted_to_order_id stamp and its status change all
// commit together; a concurrent conversion of the same quote loses on the
// status predicate and gets ErrConflict.
func (s *Store) ConvertQuote(ctx context.Context, quote *models.Quote, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE quotes
		SET status = $1, converted_to_order_id = $2, updated_at = NOW()
		WHERE id = $3 AND owner_id = $4 AND status = $5`,
		models.QuoteStatusConverted, order.ID, quote.ID, quote.OwnerID, models.QuoteStatusAccepted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("quote %s no longer accepted: %w", quote.ID, errs.ErrConflict)
	}

	query := `
		INSERT INTO orders (id, owner_id, order_number, status, payment_status, order_date,
		                    due_date, delivery_method, subtotal, tax, total_amount,
		                    deposit_amount, balance_due, deposit_due_date, balance_due_date,
		                    notes_to_customer, internal_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err = tx.GetContext(ctx, order, query,
		order.ID, order.OwnerID, order.OrderNumber, order.Status, order.PaymentStatus,
		order.OrderDate, order.DueDate, order.DeliveryMethod, order.Subtotal, order.Tax,
		order.TotalAmount, order.DepositAmount, order.BalanceDue, order.DepositDueDate,
		order.BalanceDueDate, order.NotesToCustomer, order.InternalNotes)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("order number %s already taken: %w", order.OrderNumber, errs.ErrConflict)
		}
		return fmt.Errorf("failed to insert converted order: %w", err)
	}

	if err := insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	quote.Status = models.QuoteStatusConverted
	quote.ConvertedToOrderID = &order.ID
	return nil
}

func insertQuoteItems(ctx context.Context, tx *sqlx.Tx, quoteID uuid.UUID, items []models.QuoteItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quote_items (id, quote_id, recipe_id, name, description, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			items[i].ID, quoteID, items[i].RecipeID, items[i].Name, items[i].Description,
			items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice)
		if err != nil {
			return fmt.Errorf("failed to insert quote item: %w", err)
		}
	}
	return nil
}
