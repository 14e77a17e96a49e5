package service

import (
	"context"
	"fmt"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// recipeStore is the slice of the store the recipe service needs.
type recipeStore interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipe(ctx context.Context, id, ownerID uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, ownerID uuid.UUID) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *models.Recipe, newLinks []models.RecipeIngredientLink) error
	DeleteRecipe(ctx context.Context, id, ownerID uuid.UUID) error
	GetRecipeLinks(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredientLink, error)
	GetRecipeIDsByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error)
	GetRecipeCost(ctx context.Context, recipeID uuid.UUID) (decimal.Decimal, error)
	UpdateRecipeCost(ctx context.Context, recipeID uuid.UUID, cost decimal.Decimal) error
	GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

// RecipeService owns recipes and their derived cost. The cached
// calculated_cost is rewritten whenever the ingredient set changes or a
// referenced ingredient's unit cost changes; reads never recompute.
type RecipeService struct {
	store  recipeStore
	logger *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(store recipeStore) *RecipeService {
	return &RecipeService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// LinkRequest is one requested ingredient line for a recipe.
type LinkRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit" binding:"required"`
}

// CreateRecipeRequest represents a request to create a recipe
type CreateRecipeRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Instructions    string          `json:"instructions"`
	PrepTimeMinutes int             `json:"prep_time_minutes"`
	CookTimeMinutes int             `json:"cook_time_minutes"`
	YieldQuantity   decimal.Decimal `json:"yield_quantity"`
	YieldUnit       string          `json:"yield_unit"`
	Ingredients     []LinkRequest   `json:"ingredients"`
}

// UpdateRecipeRequest represents a partial recipe update. A non-nil
// Ingredients replaces the whole ingredient set.
type UpdateRecipeRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Instructions    *string          `json:"instructions"`
	PrepTimeMinutes *int             `json:"prep_time_minutes"`
	CookTimeMinutes *int             `json:"cook_time_minutes"`
	YieldQuantity   *decimal.Decimal `json:"yield_quantity"`
	YieldUnit       *string          `json:"yield_unit"`
	Ingredients     []LinkRequest    `json:"ingredients"`
}

// validateLinks rejects malformed link quantities at the creation boundary.
func validateLinks(links []LinkRequest) error {
	for _, link := range links {
		if link.Quantity.IsNegative() {
			return fmt.Errorf("ingredient %s quantity must not be negative: %w",
				link.IngredientID, errs.ErrValidation)
		}
	}
	return nil
}

func toLinks(reqs []LinkRequest) []models.RecipeIngredientLink {
	links := make([]models.RecipeIngredientLink, 0, len(reqs))
	for _, r := range reqs {
		links = append(links, models.RecipeIngredientLink{
			IngredientID: r.IngredientID,
			Quantity:     r.Quantity,
			Unit:         r.Unit,
		})
	}
	return links
}

// ComputeCost derives the monetary cost of an ingredient composition:
// sum of link quantity times the ingredient's current unit cost, rounded
// half-up to cents. Links whose ingredient no longer exists are skipped
// with a warning; a recipe may reference deleted ingredients.
func (rs *RecipeService) ComputeCost(ctx context.Context, links []models.RecipeIngredientLink) (decimal.Decimal, error) {
	if len(links) == 0 {
		return decimal.Zero, nil
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.IngredientID)
	}

	ingredients, err := rs.store.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ingredients for costing: %w", err)
	}

	costByID := make(map[uuid.UUID]decimal.Decimal, len(ingredients))
	for _, ing := range ingredients {
		costByID[ing.ID] = ing.UnitCost
	}

	total := decimal.Zero
	for _, link := range links {
		unitCost, ok := costByID[link.IngredientID]
		if !ok {
			rs.logger.Warn("Skipping unresolvable ingredient in cost calculation",
				zap.String("ingredient_id", link.IngredientID.String()),
				zap.String("recipe_id", link.RecipeID.String()))
			continue
		}
		total = total.Add(unitCost.Mul(link.Quantity))
	}

	return total.Round(2), nil
}

// RecomputeAndStore recomputes a recipe's cost from its current links and
// persists it only if it changed. Safe to re-run: recomputation always
// starts from current ingredient costs, never from deltas.
func (rs *RecipeService) RecomputeAndStore(ctx context.Context, recipeID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := util.StartSpan(ctx, "RecipeService.RecomputeAndStore")
	defer span.End()

	links, err := rs.store.GetRecipeLinks(ctx, recipeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load recipe links: %w", err)
	}

	newCost, err := rs.ComputeCost(ctx, links)
	if err != nil {
		return decimal.Zero, err
	}

	current, err := rs.store.GetRecipeCost(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}

	if !current.Equal(newCost) {
		if err := rs.store.UpdateRecipeCost(ctx, recipeID, newCost); err != nil {
			return decimal.Zero, fmt.Errorf("failed to store recipe cost: %w", err)
		}
		util.RecipeCostRecomputesTotal.Inc()
		rs.logger.Info("Recipe cost updated",
			zap.String("recipe_id", recipeID.String()),
			zap.String("old_cost", current.String()),
			zap.String("new_cost", newCost.String()))
	}

	return newCost, nil
}

// PropagateIngredientChange recomputes every recipe referencing the
// ingredient. Each recipe's update is independent; a partial failure leaves
// the rest correct and the whole pass can simply be re-run.
func (rs *RecipeService) PropagateIngredientChange(ctx context.Context, ingredientID uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "RecipeService.PropagateIngredientChange")
	defer span.End()

	recipeIDs, err := rs.store.GetRecipeIDsByIngredient(ctx, ingredientID)
	if err != nil {
		return fmt.Errorf("failed to find dependent recipes: %w", err)
	}

	var firstErr error
	for _, recipeID := range recipeIDs {
		if _, err := rs.RecomputeAndStore(ctx, recipeID); err != nil {
			rs.logger.Error("Failed to recompute dependent recipe",
				zap.String("recipe_id", recipeID.String()),
				zap.String("ingredient_id", ingredientID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	util.RecipeCostPropagationsTotal.Inc()
	rs.logger.Info("Ingredient cost change propagated",
		zap.String("ingredient_id", ingredientID.String()),
		zap.Int("recipes", len(recipeIDs)))
	return firstErr
}

// CreateRecipe creates a recipe with its cost computed from the requested
// ingredient set.
func (rs *RecipeService) CreateRecipe(ctx context.Context, ownerID uuid.UUID, req *CreateRecipeRequest) (*models.Recipe, error) {
	ctx, span := util.StartSpan(ctx, "RecipeService.CreateRecipe")
	defer span.End()

	if err := validateLinks(req.Ingredients); err != nil {
		return nil, err
	}

	links := toLinks(req.Ingredients)
	cost, err := rs.ComputeCost(ctx, links)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		OwnerID:         ownerID,
		Name:            req.Name,
		Description:     req.Description,
		Instructions:    req.Instructions,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		YieldQuantity:   req.YieldQuantity,
		YieldUnit:       req.YieldUnit,
		CalculatedCost:  cost,
		Links:           links,
	}

	if err := rs.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	rs.logger.Info("Recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("cost", cost.String()))
	return recipe, nil
}

// GetRecipe retrieves a recipe with its links
func (rs *RecipeService) GetRecipe(ctx context.Context, id, ownerID uuid.UUID) (*models.Recipe, error) {
	return rs.store.GetRecipe(ctx, id, ownerID)
}

// ListRecipes retrieves all recipes for an owner
func (rs *RecipeService) ListRecipes(ctx context.Context, ownerID uuid.UUID) ([]models.Recipe, error) {
	return rs.store.ListRecipes(ctx, ownerID)
}

// UpdateRecipe applies a partial update. Replacing the ingredient set
// recomputes the cached cost in the same write.
func (rs *RecipeService) UpdateRecipe(ctx context.Context, id, ownerID uuid.UUID, req *UpdateRecipeRequest) (*models.Recipe, error) {
	ctx, span := util.StartSpan(ctx, "RecipeService.UpdateRecipe")
	defer span.End()

	recipe, err := rs.store.GetRecipe(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Instructions != nil {
		recipe.Instructions = *req.Instructions
	}
	if req.PrepTimeMinutes != nil {
		recipe.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.CookTimeMinutes != nil {
		recipe.CookTimeMinutes = *req.CookTimeMinutes
	}
	if req.YieldQuantity != nil {
		recipe.YieldQuantity = *req.YieldQuantity
	}
	if req.YieldUnit != nil {
		recipe.YieldUnit = *req.YieldUnit
	}

	var newLinks []models.RecipeIngredientLink
	if req.Ingredients != nil {
		if err := validateLinks(req.Ingredients); err != nil {
			return nil, err
		}
		newLinks = toLinks(req.Ingredients)
		cost, err := rs.ComputeCost(ctx, newLinks)
		if err != nil {
			return nil, err
		}
		recipe.CalculatedCost = cost
	}

	if err := rs.store.UpdateRecipe(ctx, recipe, newLinks); err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe and its links
func (rs *RecipeService) DeleteRecipe(ctx context.Context, id, ownerID uuid.UUID) error {
	return rs.store.DeleteRecipe(ctx, id, ownerID)
}
