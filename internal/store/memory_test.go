package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flocknet/flocknet-backend/internal/models"
)

func newUser(t *testing.T, s *MemoryStore, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, Password: "digest"}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestMemoryCreateUnique(t *testing.T) {
	s := NewMemoryStore()
	newUser(t, s, "alice_01", "a@b.com")

	err := s.Create(context.Background(), &models.User{Username: "alice_01", Email: "x@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = s.Create(context.Background(), &models.User{Username: "other_01", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryFollowReciprocity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	alice := newUser(t, s, "alice_01", "a@b.com")
	bob := newUser(t, s, "bob_02", "b@b.com")

	require.NoError(t, s.Follow(ctx, alice.ID, bob.ID))
	// Follow is a set operation: repeating it adds nothing.
	require.NoError(t, s.Follow(ctx, alice.ID, bob.ID))

	a, err := s.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	b, err := s.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, a.Following)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, b.Followers)

	require.NoError(t, s.Unfollow(ctx, alice.ID, bob.ID))
	a, err = s.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	b, err = s.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)
}

func TestMemoryUnfollowPreservesSnapshots(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	alice := newUser(t, s, "alice_01", "a@b.com")
	bob := newUser(t, s, "bob_02", "b@b.com")
	carol := newUser(t, s, "carol_03", "c@b.com")

	require.NoError(t, s.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, s.Follow(ctx, alice.ID, carol.ID))

	snapshot, err := s.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{bob.ID, carol.ID}, snapshot.Following)

	require.NoError(t, s.Unfollow(ctx, alice.ID, bob.ID))

	// A clone handed out before the unfollow keeps its contents.
	assert.Equal(t, []primitive.ObjectID{bob.ID, carol.ID}, snapshot.Following)

	current, err := s.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{carol.ID}, current.Following)
}

func TestMemorySuggestedExcludes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	alice := newUser(t, s, "alice_01", "a@b.com")
	bob := newUser(t, s, "bob_02", "b@b.com")
	carol := newUser(t, s, "carol_03", "c@b.com")

	got, err := s.Suggested(ctx, []primitive.ObjectID{alice.ID, bob.ID}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, carol.ID, got[0].ID)
	assert.Empty(t, got[0].Password)
}

func TestMemoryUpdateCollision(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	alice := newUser(t, s, "alice_01", "a@b.com")
	newUser(t, s, "bob_02", "b@b.com")

	alice.Username = "bob_02"
	assert.ErrorIs(t, s.Update(ctx, alice), ErrDuplicateKey)
}
