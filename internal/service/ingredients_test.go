package service

import (
	"context"
	"testing"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngredientStore struct {
	ingredients map[uuid.UUID]*models.Ingredient
}

func newFakeIngredientStore() *fakeIngredientStore {
	return &fakeIngredientStore{ingredients: make(map[uuid.UUID]*models.Ingredient)}
}

func (f *fakeIngredientStore) CreateIngredient(ctx context.Context, ing *models.Ingredient) error {
	f.ingredients[ing.ID] = ing
	return nil
}

func (f *fakeIngredientStore) GetIngredient(ctx context.Context, id, ownerID uuid.UUID) (*models.Ingredient, error) {
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return ing, nil
}

func (f *fakeIngredientStore) ListIngredients(ctx context.Context, ownerID uuid.UUID) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, ing := range f.ingredients {
		out = append(out, *ing)
	}
	return out, nil
}

func (f *fakeIngredientStore) UpdateIngredient(ctx context.Context, ing *models.Ingredient) error {
	if _, ok := f.ingredients[ing.ID]; !ok {
		return errs.ErrNotFound
	}
	f.ingredients[ing.ID] = ing
	return nil
}

func (f *fakeIngredientStore) DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) error {
	if _, ok := f.ingredients[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.ingredients, id)
	return nil
}

func TestCreateIngredient(t *testing.T) {
	s := NewIngredientService(newFakeIngredientStore(), nil, nil)

	ing, err := s.CreateIngredient(context.Background(), uuid.New(), &CreateIngredientRequest{
		Name:          "Flour",
		Unit:          "kg",
		UnitCost:      dec("2.99"),
		StockQuantity: nullDec("20"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ing.ID)
	assert.Equal(t, "2.99", ing.UnitCost.StringFixed(2))
}

func TestCreateIngredientRejectsNegativeCost(t *testing.T) {
	s := NewIngredientService(newFakeIngredientStore(), nil, nil)

	_, err := s.CreateIngredient(context.Background(), uuid.New(), &CreateIngredientRequest{
		Name:     "Flour",
		Unit:     "kg",
		UnitCost: dec("-1"),
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateIngredientRequiresNameAndUnit(t *testing.T) {
	s := NewIngredientService(newFakeIngredientStore(), nil, nil)

	_, err := s.CreateIngredient(context.Background(), uuid.New(), &CreateIngredientRequest{
		Unit: "kg",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.CreateIngredient(context.Background(), uuid.New(), &CreateIngredientRequest{
		Name: "Flour",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateIngredientPartial(t *testing.T) {
	store := newFakeIngredientStore()
	s := NewIngredientService(store, nil, nil)
	ownerID := uuid.New()

	ing, err := s.CreateIngredient(context.Background(), ownerID, &CreateIngredientRequest{
		Name:     "Flour",
		Unit:     "kg",
		UnitCost: dec("2.99"),
	})
	require.NoError(t, err)

	newCost := dec("3.49")
	updated, err := s.UpdateIngredient(context.Background(), ing.ID, ownerID, &UpdateIngredientRequest{
		UnitCost: &newCost,
	})
	require.NoError(t, err)
	assert.Equal(t, "3.49", updated.UnitCost.StringFixed(2))
	// Untouched fields survive a partial update.
	assert.Equal(t, "Flour", updated.Name)
	assert.Equal(t, "kg", updated.Unit)
}

func TestUpdateIngredientUnknownID(t *testing.T) {
	s := NewIngredientService(newFakeIngredientStore(), nil, nil)

	_, err := s.UpdateIngredient(context.Background(), uuid.New(), uuid.New(), &UpdateIngredientRequest{})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
