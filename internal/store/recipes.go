package store

import (
	"context"
	"database/sql"
	"fmt"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// insertLinks writes ingredient links for a recipe within tx. Negative
// quantities are rejected upstream; this only persists.
func insertLinks(ctx context.Context, tx *sqlx.Tx, recipeID uuid.UUID, links []models.RecipeIngredientLink) error {
	for _, link := range links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredient_links (recipe_id, ingredient_id, quantity, unit)
			VALUES ($1, $2, $3, $4)`,
			recipeID, link.IngredientID, link.Quantity, link.Unit)
		if err != nil {
			return fmt.Errorf("failed to insert recipe link: %w", err)
		}
	}
	return nil
}

// CreateRecipe inserts a recipe and its ingredient links in one transaction
func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	query := `
		INSERT INTO recipes (id, owner_id, name, description, instructions, prep_time_minutes,
		                     cook_time_minutes, yield_quantity, yield_unit, calculated_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err = tx.GetContext(ctx, recipe, query,
		recipe.ID, recipe.OwnerID, recipe.Name, recipe.Description, recipe.Instructions,
		recipe.PrepTimeMinutes, recipe.CookTimeMinutes, recipe.YieldQuantity,
		recipe.YieldUnit, recipe.CalculatedCost)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	if err := insertLinks(ctx, tx, recipe.ID, recipe.Links); err != nil {
		return err
	}
	for i := range recipe.Links {
		recipe.Links[i].RecipeID = recipe.ID
	}

	return tx.Commit()
}

// GetRecipe retrieves a recipe with its ingredient links
func (s *Store) GetRecipe(ctx context.Context, id, ownerID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.GetContext(ctx, &recipe,
		"SELECT * FROM recipes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recipe %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	links, err := s.GetRecipeLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.Links = links
	return &recipe, nil
}

// ListRecipes retrieves all recipes for an owner, links included
func (s *Store) ListRecipes(ctx context.Context, ownerID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.SelectContext(ctx, &recipes,
		"SELECT * FROM recipes WHERE owner_id = $1 ORDER BY name", ownerID)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return recipes, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	query, args, err := sqlx.In("SELECT * FROM recipe_ingredient_links WHERE recipe_id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var links []models.RecipeIngredientLink
	if err := s.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, err
	}

	byRecipe := make(map[uuid.UUID][]models.RecipeIngredientLink)
	for _, link := range links {
		byRecipe[link.RecipeID] = append(byRecipe[link.RecipeID], link)
	}
	for i := range recipes {
		recipes[i].Links = byRecipe[recipes[i].ID]
	}
	return recipes, nil
}

// UpdateRecipe updates a recipe; a non-nil newLinks replaces the whole
// ingredient set (old links are discarded, not merged)
func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe, newLinks []models.RecipeIngredientLink) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET name = $1, description = $2, instructions = $3, prep_time_minutes = $4,
		    cook_time_minutes = $5, yield_quantity = $6, yield_unit = $7,
		    calculated_cost = $8, updated_at = NOW()
		WHERE id = $9 AND owner_id = $10`,
		recipe.Name, recipe.Description, recipe.Instructions, recipe.PrepTimeMinutes,
		recipe.CookTimeMinutes, recipe.YieldQuantity, recipe.YieldUnit,
		recipe.CalculatedCost, recipe.ID, recipe.OwnerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "recipe", recipe.ID); err != nil {
		return err
	}

	if newLinks != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM recipe_ingredient_links WHERE recipe_id = $1", recipe.ID); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, recipe.ID, newLinks); err != nil {
			return err
		}
		recipe.Links = newLinks
		for i := range recipe.Links {
			recipe.Links[i].RecipeID = recipe.ID
		}
	}

	return tx.Commit()
}

// DeleteRecipe removes a recipe and its links
func (s *Store) DeleteRecipe(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM recipe_ingredient_links WHERE recipe_id = $1", id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM recipes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "recipe", id); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRecipeLinks retrieves the ingredient links for a recipe
func (s *Store) GetRecipeLinks(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredientLink, error) {
	var links []models.RecipeIngredientLink
	err := s.db.SelectContext(ctx, &links,
		"SELECT * FROM recipe_ingredient_links WHERE recipe_id = $1", recipeID)
	return links, err
}

// GetRecipeIDsByIngredient retrieves the distinct recipes referencing an
// ingredient. This is the fan-out set for cost propagation.
func (s *Store) GetRecipeIDsByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		"SELECT DISTINCT recipe_id FROM recipe_ingredient_links WHERE ingredient_id = $1", ingredientID)
	return ids, err
}

// GetRecipeCost retrieves only the cached cost of a recipe
func (s *Store) GetRecipeCost(ctx context.Context, recipeID uuid.UUID) (decimal.Decimal, error) {
	var cost decimal.Decimal
	err := s.db.GetContext(ctx, &cost,
		"SELECT calculated_cost FROM recipes WHERE id = $1", recipeID)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("recipe %s: %w", recipeID, errs.ErrNotFound)
	}
	return cost, err
}

// UpdateRecipeCost rewrites the cached calculated_cost of a recipe
func (s *Store) UpdateRecipeCost(ctx context.Context, recipeID uuid.UUID, cost decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE recipes SET calculated_cost = $1, updated_at = NOW() WHERE id = $2",
		cost, recipeID)
	return err
}
