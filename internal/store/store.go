package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateIngredient inserts a new ingredient
func (s *Store) CreateIngredient(ctx context.Context, ing *models.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, owner_id, name, unit, description, unit_cost, density, stock_quantity, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	if ing.ID == uuid.Nil {
		ing.ID = uuid.New()
	}
	return s.db.GetContext(ctx, ing, query,
		ing.ID, ing.OwnerID, ing.Name, ing.Unit, ing.Description,
		ing.UnitCost, ing.Density, ing.StockQuantity, ing.LowStockThreshold)
}

// GetIngredient retrieves an ingredient owned by ownerID
func (s *Store) GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.GetContext(ctx, &ing,
		"SELECT * FROM ingredients WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ingredient %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetIngredientsByIDs retrieves multiple ingredients by id. Missing ids are
// simply absent from the result; the cost engine tolerates orphaned links.
func (s *Store) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return []models.Ingredient{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM ingredients WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var ingredients []models.Ingredient
	err = s.db.SelectContext(ctx, &ingredients, query, args...)
	return ingredients, err
}

// ListIngredients retrieves all ingredients for an owner
func (s *Store) ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := s.db.SelectContext(ctx, &ingredients,
		"SELECT * FROM ingredients WHERE owner_id = $1 ORDER BY name", ownerID)
	return ingredients, err
}

// UpdateIngredient updates an ingredient's mutable fields
func (s *Store) UpdateIngredient(ctx context.Context, ing *models.Ingredient) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET name = $1, unit = $2, description = $3, unit_cost = $4, density = $5,
		    stock_quantity = $6, low_stock_threshold = $7, updated_at = NOW()
		WHERE id = $8 AND owner_id = $9`,
		ing.Name, ing.Unit, ing.Description, ing.UnitCost, ing.Density,
		ing.StockQuantity, ing.LowStockThreshold, ing.ID, ing.OwnerID)
	if err != nil {
		return err
	}
	return requireRow(res, "ingredient", ing.ID)
}

// DeleteIngredient removes an ingredient. Recipe links referencing it are
// left in place; the cost engine skips them with a warning.
func (s *Store) DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM ingredients WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res, "ingredient", id)
}

// AdjustStock atomically adds delta to an ingredient's stock quantity and
// returns the updated row. Null stock is treated as zero. No floor at zero:
// negative stock represents a backorder.
func (s *Store) AdjustStock(ctx context.Context, id, ownerID uuid.UUID, delta decimal.Decimal) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.GetContext(ctx, &ing, `
		UPDATE ingredients
		SET stock_quantity = COALESCE(stock_quantity, 0) + $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING *`,
		delta, id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ingredient %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// LowStockIngredients retrieves every ingredient currently below threshold
func (s *Store) LowStockIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := s.db.SelectContext(ctx, &ingredients, `
		SELECT * FROM ingredients
		WHERE owner_id = $1
		  AND stock_quantity IS NOT NULL
		  AND low_stock_threshold IS NOT NULL
		  AND stock_quantity < low_stock_threshold
		ORDER BY name`, ownerID)
	return ingredients, err
}

// requireRow converts a zero-row write into ErrNotFound.
func requireRow(res sql.Result, entity string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, errs.ErrNotFound)
	}
	return nil
}
