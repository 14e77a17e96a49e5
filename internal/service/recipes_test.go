package service

import (
	"context"
	"testing"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecipeStore struct {
	ingredients map[uuid.UUID]models.Ingredient
	recipes     map[uuid.UUID]*models.Recipe
	links       map[uuid.UUID][]models.RecipeIngredientLink
	costWrites  int
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{
		ingredients: make(map[uuid.UUID]models.Ingredient),
		recipes:     make(map[uuid.UUID]*models.Recipe),
		links:       make(map[uuid.UUID][]models.RecipeIngredientLink),
	}
}

func (f *fakeRecipeStore) addIngredient(name, cost string) models.Ingredient {
	ing := models.Ingredient{ID: uuid.New(), Name: name, Unit: "kg", UnitCost: dec(cost)}
	f.ingredients[ing.ID] = ing
	return ing
}

func (f *fakeRecipeStore) addRecipe(cost string, links ...models.RecipeIngredientLink) *models.Recipe {
	r := &models.Recipe{ID: uuid.New(), CalculatedCost: dec(cost)}
	for i := range links {
		links[i].RecipeID = r.ID
	}
	f.recipes[r.ID] = r
	f.links[r.ID] = links
	return r
}

func (f *fakeRecipeStore) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	f.recipes[recipe.ID] = recipe
	f.links[recipe.ID] = recipe.Links
	return nil
}

func (f *fakeRecipeStore) GetRecipe(ctx context.Context, id, ownerID uuid.UUID) (*models.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecipeStore) ListRecipes(ctx context.Context, ownerID uuid.UUID) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, r := range f.recipes {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecipeStore) UpdateRecipe(ctx context.Context, recipe *models.Recipe, newLinks []models.RecipeIngredientLink) error {
	f.recipes[recipe.ID] = recipe
	if newLinks != nil {
		f.links[recipe.ID] = newLinks
	}
	return nil
}

func (f *fakeRecipeStore) DeleteRecipe(ctx context.Context, id, ownerID uuid.UUID) error {
	delete(f.recipes, id)
	delete(f.links, id)
	return nil
}

func (f *fakeRecipeStore) GetRecipeLinks(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredientLink, error) {
	return f.links[recipeID], nil
}

func (f *fakeRecipeStore) GetRecipeIDsByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for recipeID, links := range f.links {
		for _, link := range links {
			if link.IngredientID == ingredientID {
				ids = append(ids, recipeID)
				break
			}
		}
	}
	return ids, nil
}

func (f *fakeRecipeStore) GetRecipeCost(ctx context.Context, recipeID uuid.UUID) (decimal.Decimal, error) {
	r, ok := f.recipes[recipeID]
	if !ok {
		return decimal.Zero, errs.ErrNotFound
	}
	return r.CalculatedCost, nil
}

func (f *fakeRecipeStore) UpdateRecipeCost(ctx context.Context, recipeID uuid.UUID, cost decimal.Decimal) error {
	r, ok := f.recipes[recipeID]
	if !ok {
		return errs.ErrNotFound
	}
	r.CalculatedCost = cost
	f.costWrites++
	return nil
}

func (f *fakeRecipeStore) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, id := range ids {
		if ing, ok := f.ingredients[id]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

func TestComputeCost(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	sugar := store.addIngredient("Sugar", "3.49")
	rs := NewRecipeService(store)

	links := []models.RecipeIngredientLink{
		{IngredientID: flour.ID, Quantity: dec("2"), Unit: "kg"},
		{IngredientID: sugar.ID, Quantity: dec("1"), Unit: "kg"},
	}

	cost, err := rs.ComputeCost(context.Background(), links)
	require.NoError(t, err)
	assert.Equal(t, "9.47", cost.StringFixed(2))
}

func TestComputeCostEmptyLinks(t *testing.T) {
	rs := NewRecipeService(newFakeRecipeStore())

	cost, err := rs.ComputeCost(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestComputeCostSkipsMissingIngredient(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	rs := NewRecipeService(store)

	links := []models.RecipeIngredientLink{
		{IngredientID: flour.ID, Quantity: dec("2"), Unit: "kg"},
		{IngredientID: uuid.New(), Quantity: dec("5"), Unit: "kg"},
	}

	cost, err := rs.ComputeCost(context.Background(), links)
	require.NoError(t, err)
	assert.Equal(t, "5.98", cost.StringFixed(2))
}

func TestRecomputeAndStorePersistsOnlyOnChange(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	recipe := store.addRecipe("9.47",
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("2"), Unit: "kg"})
	rs := NewRecipeService(store)

	// Current stored cost disagrees with the links, so one write happens.
	cost, err := rs.RecomputeAndStore(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.98", cost.StringFixed(2))
	assert.Equal(t, 1, store.costWrites)

	// Re-running with nothing changed writes nothing.
	cost, err = rs.RecomputeAndStore(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.98", cost.StringFixed(2))
	assert.Equal(t, 1, store.costWrites)
}

func TestPropagateIngredientChange(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	sugar := store.addIngredient("Sugar", "3.49")

	cake := store.addRecipe("9.47",
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("2"), Unit: "kg"},
		models.RecipeIngredientLink{IngredientID: sugar.ID, Quantity: dec("1"), Unit: "kg"})
	bread := store.addRecipe("2.99",
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("1"), Unit: "kg"})
	cookies := store.addRecipe("3.49",
		models.RecipeIngredientLink{IngredientID: sugar.ID, Quantity: dec("1"), Unit: "kg"})

	rs := NewRecipeService(store)

	// Flour goes from 2.99 to 3.49 a kilo.
	ing := store.ingredients[flour.ID]
	ing.UnitCost = dec("3.49")
	store.ingredients[flour.ID] = ing

	require.NoError(t, rs.PropagateIngredientChange(context.Background(), flour.ID))

	assert.Equal(t, "10.47", store.recipes[cake.ID].CalculatedCost.StringFixed(2))
	assert.Equal(t, "3.49", store.recipes[bread.ID].CalculatedCost.StringFixed(2))
	// Recipes not referencing flour stay put.
	assert.Equal(t, "3.49", store.recipes[cookies.ID].CalculatedCost.StringFixed(2))
	assert.Equal(t, 2, store.costWrites)

	// Propagation is idempotent: a second pass finds nothing to write.
	require.NoError(t, rs.PropagateIngredientChange(context.Background(), flour.ID))
	assert.Equal(t, 2, store.costWrites)
}

func TestCreateRecipeComputesCost(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	rs := NewRecipeService(store)

	recipe, err := rs.CreateRecipe(context.Background(), uuid.New(), &CreateRecipeRequest{
		Name: "Bread",
		Ingredients: []LinkRequest{
			{IngredientID: flour.ID, Quantity: dec("3"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "8.97", recipe.CalculatedCost.StringFixed(2))
}

func TestCreateRecipeRejectsNegativeQuantity(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	rs := NewRecipeService(store)

	_, err := rs.CreateRecipe(context.Background(), uuid.New(), &CreateRecipeRequest{
		Name: "Bread",
		Ingredients: []LinkRequest{
			{IngredientID: flour.ID, Quantity: dec("-1"), Unit: "kg"},
		},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateRecipeReplacingLinksRecomputesCost(t *testing.T) {
	store := newFakeRecipeStore()
	flour := store.addIngredient("Flour", "2.99")
	sugar := store.addIngredient("Sugar", "3.49")
	recipe := store.addRecipe("2.99",
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("1"), Unit: "kg"})
	rs := NewRecipeService(store)

	updated, err := rs.UpdateRecipe(context.Background(), recipe.ID, uuid.Nil, &UpdateRecipeRequest{
		Ingredients: []LinkRequest{
			{IngredientID: sugar.ID, Quantity: dec("2"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "6.98", updated.CalculatedCost.StringFixed(2))
	assert.Len(t, store.links[recipe.ID], 1)
	assert.Equal(t, sugar.ID, store.links[recipe.ID][0].IngredientID)
}
