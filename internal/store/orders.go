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
	"github.com/shopspring/decimal"
)

// NextOrderSequence atomically claims the next per-owner sequence number for
// a day and prefix. The upsert-returning form makes concurrent order
// creations by the same owner impossible to collide.
func (s *Store) NextOrderSequence(ctx context.Context, ownerID uuid.UUID, day, prefix string) (int, error) {
	var seq int
	err := s.db.GetContext(ctx, &seq, `
		INSERT INTO order_sequences (owner_id, day, prefix, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (owner_id, day, prefix)
		DO UPDATE SET seq = order_sequences.seq + 1
		RETURNING seq`,
		ownerID, day, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to claim order sequence: %w", err)
	}
	return seq, nil
}

// CreateOrder inserts an order and its items in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
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
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	return tx.Commit()
}

// GetOrder retrieves an order with its items
func (s *Store) GetOrder(ctx context.Context, id, ownerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// ListOrders retrieves all orders for an owner, optionally filtered by status
func (s *Store) ListOrders(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Order, error) {
	var orders []models.Order
	var err error
	if status != "" {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE owner_id = $1 AND status = $2 ORDER BY order_date DESC",
			ownerID, status)
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE owner_id = $1 ORDER BY order_date DESC", ownerID)
	}
	return orders, err
}

// UpdateOrder updates an order; a non-nil newItems replaces the whole item
// list (old items are discarded, not merged)
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order, newItems []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, due_date = $3, delivery_method = $4,
		    subtotal = $5, tax = $6, total_amount = $7, deposit_amount = $8,
		    balance_due = $9, deposit_due_date = $10, balance_due_date = $11,
		    notes_to_customer = $12, internal_notes = $13, updated_at = NOW()
		WHERE id = $14 AND owner_id = $15`,
		order.Status, order.PaymentStatus, order.DueDate, order.DeliveryMethod,
		order.Subtotal, order.Tax, order.TotalAmount, order.DepositAmount,
		order.BalanceDue, order.DepositDueDate, order.BalanceDueDate,
		order.NotesToCustomer, order.InternalNotes, order.ID, order.OwnerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "order", order.ID); err != nil {
		return err
	}

	if newItems != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM order_items WHERE order_id = $1", order.ID); err != nil {
			return err
		}
		if err := insertOrderItems(ctx, tx, order.ID, newItems); err != nil {
			return err
		}
		order.Items = newItems
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
	}

	return tx.Commit()
}

// DeleteOrder removes an order and its items
func (s *Store) DeleteOrder(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = $1", id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM orders WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "order", id); err != nil {
		return err
	}

	return tx.Commit()
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// DeductStockForOrder applies the given per-ingredient decrements as one
// atomic unit. Rows are locked FOR UPDATE in a stable order, and a deduction
// marker is inserted in the same transaction; if the marker already exists
// the order was deducted before and nothing is applied (applied=false).
// Returns the updated ingredient rows so the caller can run low-stock checks.
func (s *Store) DeductStockForOrder(ctx context.Context, orderID, ownerID uuid.UUID, needs map[uuid.UUID]decimal.Decimal) (bool, []models.Ingredient, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM stock_deductions WHERE order_id = $1)", orderID)
	if err != nil {
		return false, nil, err
	}
	if exists {
		return false, nil, nil
	}

	ids := sortedKeys(needs)
	updated := make([]models.Ingredient, 0, len(ids))
	for _, id := range ids {
		var ing models.Ingredient
		err := tx.GetContext(ctx, &ing,
			"SELECT * FROM ingredients WHERE id = $1 AND owner_id = $2 FOR UPDATE", id, ownerID)
		if err == sql.ErrNoRows {
			return false, nil, fmt.Errorf("ingredient %s during deduction: %w", id, errs.ErrConflict)
		}
		if err != nil {
			return false, nil, fmt.Errorf("failed to lock ingredient %s: %w", id, err)
		}

		err = tx.GetContext(ctx, &ing, `
			UPDATE ingredients
			SET stock_quantity = COALESCE(stock_quantity, 0) - $1, updated_at = NOW()
			WHERE id = $2
			RETURNING *`,
			needs[id], id)
		if err != nil {
			return false, nil, fmt.Errorf("failed to deduct stock for %s: %w", id, err)
		}
		updated = append(updated, ing)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO stock_deductions (order_id) VALUES ($1)", orderID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return false, nil, nil
		}
		return false, nil, err
	}

	if err := tx.Commit(); err != nil {
		return false, nil, err
	}
	return true, updated, nil
}

func insertOrderItems(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, items []models.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, recipe_id, name, description, quantity, unit_price, total_price, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			items[i].ID, orderID, items[i].RecipeID, items[i].Name, items[i].Description,
			items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice, items[i].UnitCost)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable lock order prevents deadlocks between concurrent confirmations.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j].String() < keys[j-1].String(); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
