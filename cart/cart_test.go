package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) (*Cart, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return New(context.Background(), store, "user:1"), store
}

func TestAddItemSameItemUpdatesOneLine(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Drone battery", 10, ""), 2, 0))
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Drone battery", 10, ""), 3, 0))

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, "product-1", c.Lines()[0].ID)
	assert.Equal(t, 5, c.Lines()[0].Quantity)
	assert.Equal(t, 50.0, c.Lines()[0].LineTotal)
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(3, "Charger", 25, ""), 1, 0))
	require.NoError(t, c.AddItem(ctx, EquipmentItem(7, "Excavator", 200, ""), 1, 2))
	require.NoError(t, c.AddItem(ctx, ProductItem(3, "Charger", 25, ""), 1, 0))

	require.Len(t, c.Lines(), 2)
	assert.Equal(t, "product-3", c.Lines()[0].ID)
	assert.Equal(t, "equipment-7", c.Lines()[1].ID)
}

func TestGrandTotalMatchesLineSum(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 9.99, ""), 3, 0))
	require.NoError(t, c.AddItem(ctx, EquipmentItem(2, "Generator", 49.5, ""), 2, 4))
	require.NoError(t, c.UpdateQuantity(ctx, "product-1", 7))
	require.NoError(t, c.UpdateRentalDays(ctx, "equipment-2", 2))

	var sum float64
	for _, l := range c.Lines() {
		sum += l.LineTotal
	}
	assert.Equal(t, sum, c.GrandTotal())
}

func TestLineTotalsAreRoundedToCents(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	// 0.1 * 3 is not representable exactly in binary floating point.
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Washer", 0.1, ""), 3, 0))
	require.NoError(t, c.AddItem(ctx, EquipmentItem(2, "Sander", 19.99, ""), 3, 3))

	assert.Equal(t, 0.3, c.Lines()[0].LineTotal)
	assert.Equal(t, 179.91, c.Lines()[1].LineTotal)
	assert.Equal(t, 180.21, c.GrandTotal())
}

func TestZeroOrBelowQuantityRemovesLine(t *testing.T) {
	ctx := context.Background()

	for _, quantity := range []int{0, -5} {
		c, _ := newTestCart(t)
		require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 2, 0))
		require.NoError(t, c.UpdateQuantity(ctx, "product-1", quantity))
		assert.Empty(t, c.Lines())
	}
}

func TestZeroOrBelowDaysRemovesLine(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, EquipmentItem(5, "Crane", 100, ""), 1, 3))
	require.NoError(t, c.UpdateRentalDays(ctx, "equipment-5", -1))
	assert.Empty(t, c.Lines())
}

func TestEquipmentDefaultsToOneDay(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	// No explicit days: the stored field stays unset but pricing treats the
	// absence as a single day, not zero.
	require.NoError(t, c.AddItem(ctx, EquipmentItem(4, "Mixer", 15, ""), 2, 0))

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 0, c.Lines()[0].RentalDays)
	assert.Equal(t, 30.0, c.Lines()[0].LineTotal)
	assert.Equal(t, 30.0, c.GrandTotal())
}

func TestUpdateDaysOnProductLineIsAccepted(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(9, "Helmet", 30, ""), 1, 0))
	require.NoError(t, c.UpdateRentalDays(ctx, "product-9", 5))

	// The product formula ignores days, the total must not change.
	assert.Equal(t, 30.0, c.GrandTotal())
}

func TestRemoveMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 1, 0))
	require.NoError(t, c.RemoveItem(ctx, "equipment-99"))
	assert.Len(t, c.Lines(), 1)
}

func TestSnapshotReplacedOnAdd(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 1, 0))
	// Catalog price changed before the second add: the snapshot is replaced,
	// so both units price at the new value.
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 12, ""), 1, 0))

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 12.0, c.Lines()[0].Item.Price)
	assert.Equal(t, 24.0, c.Lines()[0].LineTotal)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := New(ctx, store, "user:7")
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 2, 0))
	require.NoError(t, c.AddItem(ctx, EquipmentItem(5, "Crane", 15, ""), 1, 3))

	reloaded := New(ctx, store, "user:7")
	require.Equal(t, c.Lines(), reloaded.Lines())
	assert.Equal(t, c.GrandTotal(), reloaded.GrandTotal())
}

func TestCorruptStoredCartYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SeedRaw("user:3", []byte("{not json"))

	c := New(ctx, store, "user:3")
	assert.Empty(t, c.Lines())
	assert.Equal(t, 0.0, c.GrandTotal())

	// The next mutation overwrites the broken blob entirely.
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 1, 0))
	reloaded := New(ctx, store, "user:3")
	assert.Len(t, reloaded.Lines(), 1)
}

func TestClearEmptiesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := New(ctx, store, "user:2")
	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 2, 0))
	require.NoError(t, c.Clear(ctx))

	assert.Empty(t, c.Lines())
	reloaded := New(ctx, store, "user:2")
	assert.Empty(t, reloaded.Lines())
}

func TestMergeSumsQuantitiesAndKeepsLongerRental(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	session := New(ctx, store, "session:abc")
	require.NoError(t, session.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 2, 0))
	require.NoError(t, session.AddItem(ctx, EquipmentItem(5, "Crane", 15, ""), 1, 2))

	user := New(ctx, store, "user:9")
	require.NoError(t, user.AddItem(ctx, EquipmentItem(5, "Crane", 15, ""), 1, 5))

	require.NoError(t, user.Merge(ctx, session.Lines()))

	require.Len(t, user.Lines(), 2)
	assert.Equal(t, "equipment-5", user.Lines()[0].ID)
	assert.Equal(t, 2, user.Lines()[0].Quantity)
	assert.Equal(t, 5, user.Lines()[0].RentalDays)
	assert.Equal(t, "product-1", user.Lines()[1].ID)
	assert.Equal(t, 2, user.Lines()[1].Quantity)
}

func TestLineCountVersusItemCount(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 3, 0))
	require.NoError(t, c.AddItem(ctx, EquipmentItem(5, "Crane", 15, ""), 2, 1))

	assert.Equal(t, 2, c.LineCount())
	assert.Equal(t, 5, c.ItemCount())
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(ctx, ProductItem(1, "Battery", 10, ""), 2, 0))
	assert.Equal(t, 20.0, c.GrandTotal())

	require.NoError(t, c.AddItem(ctx, EquipmentItem(5, "Crane", 15, ""), 1, 3))
	assert.Equal(t, 65.0, c.GrandTotal())

	require.NoError(t, c.UpdateQuantity(ctx, "product-1", 0))
	assert.Equal(t, 45.0, c.GrandTotal())
	assert.Len(t, c.Lines(), 1)
}
