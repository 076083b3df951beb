package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func newTestStore(t *testing.T) (*DB, *ItemStore) {
	t.Helper()
	database, err := OpenAndInit(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database, NewItemStore(database)
}

func sampleItems() []crafting.Item {
	return []crafting.Item{
		{ID: "gold_ore", Group: "tambang", SellPrice: 6},
		{ID: "gold_ingot", Group: "tambang", SellPrice: 25, Requirements: []crafting.Requirement{
			{ItemID: "coal", Quantity: 1},
			{ItemID: "gold_ore", Quantity: 3},
		}},
		{ID: "gold_ring", Group: "perhiasan", SellPrice: 120, Requirements: []crafting.Requirement{
			{ItemID: "gold_ingot", Quantity: 4},
		}},
	}
}

func TestItemStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	items, err := store.GetAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"gold_ingot", "gold_ore", "gold_ring"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, sampleItems()[1], items[0])
	assert.Empty(t, items[1].Requirements)

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestItemStore_GetItem(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	it, err := store.GetItem(ctx, "gold_ring")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "perhiasan", it.Group)
	assert.Equal(t, []crafting.Requirement{{ItemID: "gold_ingot", Quantity: 4}}, it.Requirements)

	missing, err := store.GetItem(ctx, "platinum_ore")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemStore_FindItemsUsing(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	ids, err := store.FindItemsUsing(ctx, "gold_ore")
	require.NoError(t, err)
	assert.Equal(t, []string{"gold_ingot"}, ids)

	ids, err = store.FindItemsUsing(ctx, "coal")
	require.NoError(t, err)
	assert.Equal(t, []string{"gold_ingot"}, ids, "unknown requirement IDs are stored")
}

func TestItemStore_ReinsertReplacesRequirements(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	require.NoError(t, store.BulkInsertItems(ctx, []crafting.Item{
		{ID: "gold_ring", Group: "perhiasan", SellPrice: 150, Requirements: []crafting.Requirement{
			{ItemID: "gold_ingot", Quantity: 2},
		}},
	}))

	it, err := store.GetItem(ctx, "gold_ring")
	require.NoError(t, err)
	assert.Equal(t, 150.0, it.SellPrice)
	assert.Equal(t, []crafting.Requirement{{ItemID: "gold_ingot", Quantity: 2}}, it.Requirements)
}

func TestItemStore_ClearItemsCascades(t *testing.T) {
	ctx := context.Background()
	database, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	require.NoError(t, store.ClearItems(ctx))

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	var reqs int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_requirements`).Scan(&reqs))
	assert.Zero(t, reqs)
}

func TestItemStore_ReplaceItems(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	require.NoError(t, store.ReplaceItems(ctx, []crafting.Item{{ID: "silver_ore", SellPrice: 3}}))

	items, err := store.GetAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "silver_ore", items[0].ID)
}

func TestItemStore_ReplaceItemsKeepsOldCatalogOnFailure(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	require.NoError(t, store.BulkInsertItems(ctx, sampleItems()))

	err := store.ReplaceItems(ctx, []crafting.Item{
		{ID: "silver_ore", SellPrice: 3},
		{ID: "bad", Requirements: []crafting.Requirement{{ItemID: "silver_ore", Quantity: 0}}},
	})
	require.Error(t, err)

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleItems()), count)

	ring, err := store.GetItem(ctx, "gold_ring")
	require.NoError(t, err)
	require.NotNil(t, ring)
	assert.Equal(t, []crafting.Requirement{{ItemID: "gold_ingot", Quantity: 4}}, ring.Requirements)
}

func TestItemStore_RejectsInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	err := store.BulkInsertItems(ctx, []crafting.Item{
		{ID: "bad", Requirements: []crafting.Requirement{{ItemID: "ore", Quantity: 0}}},
	})
	require.Error(t, err)

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed transaction is rolled back")
}

func TestSyncMetadata(t *testing.T) {
	ctx := context.Background()
	database, _ := newTestStore(t)

	value, err := database.GetSyncMetadata(ctx, "catalog_last_sync")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_last_sync", "2026-10-01T00:00:00Z"))
	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_last_sync", "2026-10-02T00:00:00Z"))

	value, err = database.GetSyncMetadata(ctx, "catalog_last_sync")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-02T00:00:00Z", value)
}
