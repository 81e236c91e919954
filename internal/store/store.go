package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flocknet/flocknet-backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when an insert or update violates a
	// unique index (username or email already taken).
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserStore is the persistence boundary for user records. The Mongo
// implementation backs the server; an in-memory implementation backs the
// tests.
type UserStore interface {
	// Create inserts a new user, assigning its ID and timestamps.
	// Returns ErrDuplicateKey when username or email is already taken.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Update persists changed profile fields and bumps updated_at.
	// Returns ErrDuplicateKey when a changed username or email collides.
	Update(ctx context.Context, user *models.User) error
	// Follow adds target to follower's following set and follower to
	// target's followers set. Both sides are set operations, so repeated
	// calls never produce duplicates.
	Follow(ctx context.Context, follower, target primitive.ObjectID) error
	// Unfollow removes the reciprocal entries added by Follow.
	Unfollow(ctx context.Context, follower, target primitive.ObjectID) error
	// Suggested returns up to limit random users whose IDs are not in
	// exclude. Password digests are never populated.
	Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error)
}

// NotificationStore persists follow/unfollow notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListForUser returns the user's notifications, newest first.
	ListForUser(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, to primitive.ObjectID) error
}
