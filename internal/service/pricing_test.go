package service

import (
	"testing"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func TestSubtotal(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2, UnitPrice: dec("45.00")},
		{Quantity: 1, UnitPrice: dec("3.50")},
	}

	assert.True(t, dec("93.50").Equal(Subtotal(items)))
}

func TestSubtotalRoundsHalfUp(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 3, UnitPrice: dec("0.335")},
	}

	// 1.005 rounds up to 1.01
	assert.Equal(t, "1.01", Subtotal(items).StringFixed(2))
}

func TestTax(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Tax(dec("93.50"), decimal.Zero)))
	assert.Equal(t, "7.48", Tax(dec("93.50"), dec("0.08")).StringFixed(2))
}

func TestBalanceDue(t *testing.T) {
	total := dec("120.00")

	assert.True(t, dec("80.00").Equal(BalanceDue(total, nullDec("40.00"))))
	assert.True(t, total.Equal(BalanceDue(total, decimal.NullDecimal{})))
	assert.True(t, total.Equal(BalanceDue(total, nullDec("0"))))
}

func TestLineTotal(t *testing.T) {
	assert.True(t, dec("90.00").Equal(LineTotal(2, dec("45.00"))))
}

func TestValidateItemsRejectsEmptyList(t *testing.T) {
	err := ValidateItems(nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestValidateItemsRejectsBadQuantity(t *testing.T) {
	err := ValidateItems([]ItemRequest{
		{Name: "Cake", Quantity: 0, UnitPrice: dec("45.00")},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestValidateItemsRejectsNegativePrice(t *testing.T) {
	err := ValidateItems([]ItemRequest{
		{Name: "Cake", Quantity: 1, UnitPrice: dec("-1.00")},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestValidateItemsAcceptsZeroPrice(t *testing.T) {
	err := ValidateItems([]ItemRequest{
		{Name: "Sample", Quantity: 1, UnitPrice: decimal.Zero},
	})
	assert.NoError(t, err)
}
