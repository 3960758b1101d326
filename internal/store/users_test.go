package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(username string) *User {
	return &User{
		Username:     username,
		PasswordHash: "$2a$12$fakehashfakehashfakehashfakehash",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "555-0100",
		JoinAt:       time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	retrieved, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "Test", retrieved.FirstName)
	assert.Equal(t, "User", retrieved.LastName)
	assert.Equal(t, "555-0100", retrieved.Phone)
	assert.Equal(t, user.JoinAt, retrieved.JoinAt)
	assert.Nil(t, retrieved.LastLoginAt)
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	err := store.CreateUser(ctx, testUser("alice"))
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetUserCredentials(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	hash, err := store.GetUserCredentials(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, hash)

	_, err = store.GetUserCredentials(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("carol")))
	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateUser(ctx, testUser("bob")))

	profiles, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	// Ordered by username
	assert.Equal(t, "alice", profiles[0].Username)
	assert.Equal(t, "bob", profiles[1].Username)
	assert.Equal(t, "carol", profiles[2].Username)
}

func TestStore_ListUsers_Empty(t *testing.T) {
	store := setupTestStore(t)

	profiles, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestStore_UpdateLastLogin(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	require.NoError(t, store.UpdateLastLogin(ctx, "alice"))

	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *user.LastLoginAt, 5*time.Second)
}

func TestStore_UpdateLastLogin_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateLastLogin(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
