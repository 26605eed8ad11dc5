package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDs(views []models.RequestView) []int64 {
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestRequestService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.user(t, "requester")
	owner := env.user(t, "owner")

	req, err := env.requests.CreateRequest(ctx, requester.ID, "Need a tent")
	require.NoError(t, err)
	assert.Equal(t, "Need a tent", req.Description)
	assert.Equal(t, requester.ID, req.Requester)
	assert.True(t, req.Created.Equal(baseTime))
	assert.NotNil(t, req.Items)
	assert.Empty(t, req.Items)

	first, err := env.items.AddItem(ctx, owner.ID, models.ItemInput{
		Name: strPtr("Tent"), Description: strPtr("Two person"), Available: boolPtr(true), RequestID: idPtr(req.ID),
	})
	require.NoError(t, err)
	second, err := env.items.AddItem(ctx, owner.ID, models.ItemInput{
		Name: strPtr("Big tent"), Description: strPtr("Six person"), Available: boolPtr(false), RequestID: idPtr(req.ID),
	})
	require.NoError(t, err)

	got, err := env.requests.GetRequest(ctx, owner.ID, req.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, second.ID, got.Items[0].ID)
	assert.Equal(t, first.ID, got.Items[1].ID)
	require.NotNil(t, got.Items[0].RequestID)
	assert.Equal(t, req.ID, *got.Items[0].RequestID)

	_, err = env.requests.GetRequest(ctx, owner.ID, 999)
	requireKind(t, err, KindNotFound)

	_, err = env.requests.GetRequest(ctx, 999, req.ID)
	requireKind(t, err, KindNotFound)
}

func TestRequestService_CreateRejections(t *testing.T) {
	env := newTestEnv(t)
	requester := env.user(t, "requester")

	_, err := env.requests.CreateRequest(context.Background(), 999, "Need a tent")
	requireKind(t, err, KindNotFound)

	_, err = env.requests.CreateRequest(context.Background(), requester.ID, "  ")
	requireKind(t, err, KindInvalidArgument)
}

func TestRequestService_ListOwnRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	older, err := env.requests.CreateRequest(ctx, alice.ID, "Need a kayak")
	require.NoError(t, err)
	env.now = baseTime.Add(time.Hour)
	newer, err := env.requests.CreateRequest(ctx, alice.ID, "Need a paddle")
	require.NoError(t, err)
	_, err = env.requests.CreateRequest(ctx, bob.ID, "Need a tent")
	require.NoError(t, err)

	own, err := env.requests.ListOwnRequests(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{newer.ID, older.ID}, requestIDs(own))

	_, err = env.requests.ListOwnRequests(ctx, 999)
	requireKind(t, err, KindNotFound)
}

func TestRequestService_ListOtherRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	var bobs []int64
	for i, text := range []string{"Need a tent", "Need a stove", "Need a lamp"} {
		env.now = baseTime.Add(time.Duration(i) * time.Hour)
		r, err := env.requests.CreateRequest(ctx, bob.ID, text)
		require.NoError(t, err)
		bobs = append([]int64{r.ID}, bobs...)
	}
	_, err := env.requests.CreateRequest(ctx, alice.ID, "Need a kayak")
	require.NoError(t, err)

	all, err := env.requests.ListOtherRequests(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, bobs, requestIDs(all))

	// from is rounded down to a whole page
	page, err := env.requests.ListOtherRequests(ctx, alice.ID, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, bobs[2:], requestIDs(page))

	page, err = env.requests.ListOtherRequests(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, bobs[:2], requestIDs(page))

	empty, err := env.requests.ListOtherRequests(ctx, bob.ID, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = env.requests.ListOtherRequests(ctx, alice.ID, -1, 10)
	requireKind(t, err, KindInvalidArgument)

	_, err = env.requests.ListOtherRequests(ctx, alice.ID, 0, 0)
	requireKind(t, err, KindInvalidArgument)

	_, err = env.requests.ListOtherRequests(ctx, 999, 0, 10)
	requireKind(t, err, KindNotFound)
}
