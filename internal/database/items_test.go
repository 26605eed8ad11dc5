package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)
	assert.NotZero(t, item.ID)

	found, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", found.Name)
	assert.Equal(t, owner.ID, found.OwnerID)
	assert.True(t, found.Available)
	assert.Nil(t, found.RequestID)

	found.Available = false
	found.Description = "Cordless drill"
	require.NoError(t, db.UpdateItem(ctx, found))

	found, err = db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, found.Available)
	assert.Equal(t, "Cordless drill", found.Description)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	_, err = db.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteItem(ctx, item.ID), ErrNotFound)
}

func TestListItemsByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ann := createTestUser(t, db, "Ann", "ann@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	first := createTestItem(t, db, ann.ID, "Drill", true)
	createTestItem(t, db, bob.ID, "Saw", true)
	second := createTestItem(t, db, ann.ID, "Ladder", false)

	items, err := db.ListItemsByOwner(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	drill := createTestItem(t, db, owner.ID, "Power Drill", true)
	createTestItem(t, db, owner.ID, "Old drill", false)
	saw := &models.Item{OwnerID: owner.ID, Name: "Saw", Description: "Cuts like a DRILL would not", Available: true}
	require.NoError(t, db.CreateItem(ctx, saw))
	createTestItem(t, db, owner.ID, "Ladder", true)

	items, err := db.SearchAvailableItems(ctx, "dRiLl")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, drill.ID, items[0].ID)
	assert.Equal(t, saw.ID, items[1].ID)

	items, err = db.SearchAvailableItems(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchAvailableItemsUnicodeCase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Иван", "ivan@example.com")
	drill := &models.Item{OwnerID: owner.ID, Name: "Дрель", Description: "Аккумуляторная", Available: true}
	require.NoError(t, db.CreateItem(ctx, drill))

	for _, text := range []string{"дрель", "Дрель", "ДРЕЛЬ", "аккумулятор", "Аккумуляторная"} {
		items, err := db.SearchAvailableItems(ctx, text)
		require.NoError(t, err, text)
		require.Len(t, items, 1, text)
		assert.Equal(t, drill.ID, items[0].ID)
	}
}

func TestItemsByRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requester := createTestUser(t, db, "Req", "req@example.com")
	owner := createTestUser(t, db, "Owner", "owner@example.com")

	req := &models.ItemRequest{RequesterID: requester.ID, Description: "need a drill", Created: time.Now()}
	require.NoError(t, db.CreateRequest(ctx, req))

	a := &models.Item{OwnerID: owner.ID, Name: "Drill", Description: "d", Available: true, RequestID: &req.ID}
	b := &models.Item{OwnerID: owner.ID, Name: "Drill 2", Description: "d", Available: true, RequestID: &req.ID}
	require.NoError(t, db.CreateItem(ctx, a))
	require.NoError(t, db.CreateItem(ctx, b))
	createTestItem(t, db, owner.ID, "Unrelated", true)

	items, err := db.ListItemsByRequests(ctx, []int64{req.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	require.NotNil(t, items[0].RequestID)
	assert.Equal(t, req.ID, *items[0].RequestID)

	items, err = db.ListItemsByRequests(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
