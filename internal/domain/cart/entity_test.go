package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshloaf/storefront-backend/internal/domain/catalog"
)

func testRates() Rates {
	return Rates{
		TaxRate:     decimal.RequireFromString("0.05"),
		DeliveryFee: decimal.RequireFromString("2.50"),
	}
}

func mustItem(t *testing.T, id int) *catalog.Item {
	t.Helper()
	item, err := catalog.ItemByID(id)
	require.NoError(t, err)
	return item
}

func TestAddMergesSameItem(t *testing.T) {
	c := &Cart{}
	item := mustItem(t, 1)

	c.Add(item)
	c.Add(item)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddKeepsDistinctLines(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 1))
	c.Add(mustItem(t, 2))

	assert.Len(t, c.Lines, 2)
}

func TestIncreaseAndDecrease(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 1))

	c.Increase(1)
	c.Increase(1)
	assert.Equal(t, 3, c.Lines[0].Quantity)

	c.Decrease(1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestDecreaseFloorsAtOne(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 1))

	c.Decrease(1)
	c.Decrease(1)

	require.Len(t, c.Lines, 1, "decrease must never remove a line")
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestIncreaseAbsentItemIsNoop(t *testing.T) {
	c := &Cart{}
	c.Increase(1)
	c.Decrease(1)
	assert.True(t, c.IsEmpty())
}

func TestRemoveDeletesLineRegardlessOfQuantity(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 1))
	c.Increase(1)
	c.Increase(1)
	c.Add(mustItem(t, 2))

	c.Remove(1)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].ItemID)
}

func TestClear(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 1))
	c.Add(mustItem(t, 2))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal().IsZero())
}

func TestTotalsScenario(t *testing.T) {
	// One 10.00 item: tax 0.50, delivery 2.50, total 13.00.
	c := &Cart{}
	c.Add(mustItem(t, 13))

	rates := testRates()
	assert.Equal(t, "10.00", c.Subtotal().StringFixed(2))
	assert.Equal(t, "0.50", c.Tax(rates).StringFixed(2))
	assert.Equal(t, "2.50", c.DeliveryFee(rates).StringFixed(2))
	assert.Equal(t, "13.00", c.Total(rates).StringFixed(2))
}

func TestEmptyCartTotalsAreZero(t *testing.T) {
	c := &Cart{}
	rates := testRates()

	assert.True(t, c.Subtotal().IsZero())
	assert.True(t, c.Tax(rates).IsZero())
	assert.True(t, c.DeliveryFee(rates).IsZero(), "no delivery fee on an empty cart")
	assert.True(t, c.Total(rates).IsZero())
}

func TestSubtotalRecomputesAfterMutation(t *testing.T) {
	c := &Cart{}
	c.Add(mustItem(t, 13)) // 10.00
	c.Add(mustItem(t, 3))  // 2.50

	assert.Equal(t, "12.50", c.Subtotal().StringFixed(2))

	c.Increase(3)
	assert.Equal(t, "15.00", c.Subtotal().StringFixed(2))

	c.Remove(13)
	assert.Equal(t, "5.00", c.Subtotal().StringFixed(2))
}

func TestLineTotal(t *testing.T) {
	line := Line{
		ItemID:   4,
		Price:    decimal.RequireFromString("8.75"),
		Quantity: 3,
	}
	assert.Equal(t, "26.25", line.LineTotal().StringFixed(2))
}
