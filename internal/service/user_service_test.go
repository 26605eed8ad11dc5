package service

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.CreateUser(ctx, models.UserInput{Name: strPtr(" Alice "), Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Alice", u.Name)

	_, err = env.users.CreateUser(ctx, models.UserInput{Name: strPtr("Other Alice"), Email: strPtr("alice@example.com")})
	requireKind(t, err, KindConflict)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = env.users.CreateUser(ctx, models.UserInput{Name: strPtr("Nobody")})
	requireKind(t, err, KindInvalidArgument)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	u, err := env.users.UpdateUser(ctx, alice.ID, models.UserPatch{Name: strPtr("Alice Cooper")})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)

	u, err = env.users.UpdateUser(ctx, alice.ID, models.UserPatch{Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	u, err = env.users.UpdateUser(ctx, alice.ID, models.UserPatch{Email: strPtr("cooper@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "cooper@example.com", u.Email)

	_, err = env.users.UpdateUser(ctx, alice.ID, models.UserPatch{Email: strPtr(bob.Email)})
	requireKind(t, err, KindConflict)

	_, err = env.users.UpdateUser(ctx, 999, models.UserPatch{Name: strPtr("Ghost")})
	requireKind(t, err, KindNotFound)

	got, err := env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "cooper@example.com", got.Email)
	assert.Equal(t, "Alice Cooper", got.Name)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	require.NoError(t, env.users.DeleteUser(ctx, alice.ID))

	_, err := env.users.GetUser(ctx, alice.ID)
	requireKind(t, err, KindNotFound)
	assert.Equal(t, "user with id=1 not found", err.Error())

	err = env.users.DeleteUser(ctx, alice.ID)
	requireKind(t, err, KindNotFound)

	// the email is free again
	env.user(t, "alice")
}
