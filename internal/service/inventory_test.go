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

type fakeInventoryStore struct {
	ingredients map[uuid.UUID]*models.Ingredient
	links       map[uuid.UUID][]models.RecipeIngredientLink
	deducted    map[uuid.UUID]bool
	deductCalls int
}

func newFakeInventoryStore() *fakeInventoryStore {
	return &fakeInventoryStore{
		ingredients: make(map[uuid.UUID]*models.Ingredient),
		links:       make(map[uuid.UUID][]models.RecipeIngredientLink),
		deducted:    make(map[uuid.UUID]bool),
	}
}

func (f *fakeInventoryStore) addIngredient(name, stock, threshold string) *models.Ingredient {
	ing := &models.Ingredient{
		ID:                uuid.New(),
		Name:              name,
		Unit:              "kg",
		StockQuantity:     nullDec(stock),
		LowStockThreshold: nullDec(threshold),
	}
	f.ingredients[ing.ID] = ing
	return ing
}

func (f *fakeInventoryStore) addRecipe(links ...models.RecipeIngredientLink) uuid.UUID {
	id := uuid.New()
	f.links[id] = links
	return id
}

func (f *fakeInventoryStore) GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error) {
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return ing, nil
}

func (f *fakeInventoryStore) ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, ing := range f.ingredients {
		out = append(out, *ing)
	}
	return out, nil
}

func (f *fakeInventoryStore) AdjustStock(ctx context.Context, id, ownerID uuid.UUID, delta decimal.Decimal) (*models.Ingredient, error) {
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	current := decimal.Zero
	if ing.StockQuantity.Valid {
		current = ing.StockQuantity.Decimal
	}
	ing.StockQuantity = decimal.NullDecimal{Decimal: current.Add(delta), Valid: true}
	return ing, nil
}

func (f *fakeInventoryStore) LowStockIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, ing := range f.ingredients {
		if ing.IsLowStock() {
			out = append(out, *ing)
		}
	}
	return out, nil
}

func (f *fakeInventoryStore) GetRecipeLinks(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredientLink, error) {
	return f.links[recipeID], nil
}

func (f *fakeInventoryStore) DeductStockForOrder(ctx context.Context, orderID, ownerID uuid.UUID, needs map[uuid.UUID]decimal.Decimal) (bool, []models.Ingredient, error) {
	f.deductCalls++
	if f.deducted[orderID] {
		return false, nil, nil
	}
	var updated []models.Ingredient
	for id, qty := range needs {
		ing, ok := f.ingredients[id]
		if !ok {
			return false, nil, errs.ErrConflict
		}
		current := decimal.Zero
		if ing.StockQuantity.Valid {
			current = ing.StockQuantity.Decimal
		}
		ing.StockQuantity = decimal.NullDecimal{Decimal: current.Sub(qty), Valid: true}
		updated = append(updated, *ing)
	}
	f.deducted[orderID] = true
	return true, updated, nil
}

func newTestInventoryService(store *fakeInventoryStore) *InventoryService {
	return NewInventoryService(store, nil, nil, 0,
		[]string{models.OrderStatusConfirmed, models.OrderStatusInProgress})
}

func confirmedOrder(recipeID uuid.UUID, qty int) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		Status: models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{RecipeID: &recipeID, Name: "Cake", Quantity: qty},
		},
	}
}

func TestDeductForOrderMultipliesItemAndLinkQuantities(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "10", "5")
	recipeID := store.addRecipe(
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("3.5"), Unit: "kg"})
	is := newTestInventoryService(store)

	applied, err := is.DeductForOrder(context.Background(), confirmedOrder(recipeID, 2), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, applied)
	// 10 - 2*3.5 = 3
	assert.Equal(t, "3", flour.StockQuantity.Decimal.String())
	assert.True(t, flour.IsLowStock())
}

func TestDeductForOrderAggregatesAcrossItems(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "20", "5")
	cake := store.addRecipe(
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("2"), Unit: "kg"})
	bread := store.addRecipe(
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("1"), Unit: "kg"})
	is := newTestInventoryService(store)

	order := &models.Order{
		ID:     uuid.New(),
		Status: models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{RecipeID: &cake, Name: "Cake", Quantity: 3},
			{RecipeID: &bread, Name: "Bread", Quantity: 4},
		},
	}

	applied, err := is.DeductForOrder(context.Background(), order, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, applied)
	// 20 - (3*2 + 4*1) = 10
	assert.Equal(t, "10", flour.StockQuantity.Decimal.String())
}

func TestDeductForOrderSkipsNonProductionStatus(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "10", "5")
	recipeID := store.addRecipe(
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("3.5"), Unit: "kg"})
	is := newTestInventoryService(store)

	order := confirmedOrder(recipeID, 2)
	order.Status = models.OrderStatusInquiry

	applied, err := is.DeductForOrder(context.Background(), order, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "10", flour.StockQuantity.Decimal.String())
	assert.Equal(t, 0, store.deductCalls)
}

func TestDeductForOrderRunsOncePerOrder(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "10", "2")
	recipeID := store.addRecipe(
		models.RecipeIngredientLink{IngredientID: flour.ID, Quantity: dec("3.5"), Unit: "kg"})
	is := newTestInventoryService(store)

	order := confirmedOrder(recipeID, 2)

	applied, err := is.DeductForOrder(context.Background(), order, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, applied)

	// A repeated confirmation must not deduct again.
	applied, err = is.DeductForOrder(context.Background(), order, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "3", flour.StockQuantity.Decimal.String())
}

func TestDeductForOrderIgnoresCustomItems(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "10", "5")
	is := newTestInventoryService(store)

	order := &models.Order{
		ID:     uuid.New(),
		Status: models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{Name: "Custom topper", Quantity: 1},
		},
	}

	applied, err := is.DeductForOrder(context.Background(), order, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "10", flour.StockQuantity.Decimal.String())
}

func TestAdjustStockAllowsNegativeResult(t *testing.T) {
	store := newFakeInventoryStore()
	flour := store.addIngredient("Flour", "2", "5")
	is := newTestInventoryService(store)

	ing, err := is.AdjustStock(context.Background(), flour.ID, uuid.Nil, dec("-3"))
	require.NoError(t, err)
	assert.Equal(t, "-1", ing.StockQuantity.Decimal.String())
}

func TestLowStockEntriesComputesShortfall(t *testing.T) {
	store := newFakeInventoryStore()
	store.addIngredient("Flour", "3", "5")
	store.addIngredient("Sugar", "10", "5")
	is := newTestInventoryService(store)

	entries, err := is.LowStockEntries(context.Background(), uuid.Nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Flour", entries[0].Name)
	assert.Equal(t, "2", entries[0].Shortfall.String())
}

func TestStockAtThresholdIsNotLow(t *testing.T) {
	ing := models.Ingredient{
		StockQuantity:     nullDec("5"),
		LowStockThreshold: nullDec("5"),
	}
	assert.False(t, ing.IsLowStock())

	ing.StockQuantity = nullDec("4.99")
	assert.True(t, ing.IsLowStock())
}

func TestUntrackedIngredientIsNeverLow(t *testing.T) {
	ing := models.Ingredient{LowStockThreshold: nullDec("5")}
	assert.False(t, ing.IsLowStock())

	ing = models.Ingredient{StockQuantity: nullDec("1")}
	assert.False(t, ing.IsLowStock())
}
