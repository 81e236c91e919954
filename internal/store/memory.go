package store

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flocknet/flocknet-backend/internal/models"
)

// MemoryStore is an in-memory UserStore/NotificationStore with the same
// semantics as the Mongo implementation, including unique username/email
// enforcement. It exists so handlers and the auth gate can be tested
// without a running database.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*models.User
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) findBy(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateKey
		}
	}

	user.UpdatedAt = time.Now().UTC()
	user.Followers = existing.Followers
	user.Following = existing.Following
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) Follow(_ context.Context, follower, target primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.users[follower]
	if !ok {
		return ErrNotFound
	}
	t, ok := s.users[target]
	if !ok {
		return ErrNotFound
	}

	f.Following = addToSet(f.Following, target)
	t.Followers = addToSet(t.Followers, follower)
	return nil
}

func (s *MemoryStore) Unfollow(_ context.Context, follower, target primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.users[follower]
	if !ok {
		return ErrNotFound
	}
	t, ok := s.users[target]
	if !ok {
		return ErrNotFound
	}

	f.Following = removeFromSet(f.Following, target)
	t.Followers = removeFromSet(t.Followers, follower)
	return nil
}

func (s *MemoryStore) Suggested(_ context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var candidates []models.User
	for _, u := range s.users {
		if excluded[u.ID] {
			continue
		}
		clone := *u
		clone.Password = ""
		candidates = append(candidates, clone)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (s *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *MemoryStore) ListForUser(_ context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Notification
	// Newest first.
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].To == to {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].To == to {
			s.notifications[i].Read = true
		}
	}
	return nil
}

// Notifications adapts the MemoryStore to the NotificationStore interface.
func (s *MemoryStore) Notifications() NotificationStore {
	return memoryNotifications{s}
}

type memoryNotifications struct{ s *MemoryStore }

func (m memoryNotifications) Create(ctx context.Context, n *models.Notification) error {
	return m.s.CreateNotification(ctx, n)
}

func (m memoryNotifications) ListForUser(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	return m.s.ListForUser(ctx, to)
}

func (m memoryNotifications) MarkAllRead(ctx context.Context, to primitive.ObjectID) error {
	return m.s.MarkAllRead(ctx, to)
}

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range set {
		if v == id {
			return set
		}
	}
	return append(set, id)
}

func removeFromSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	// A fresh slice, not an in-place compaction: clones handed out by the
	// find methods share the old backing array.
	out := make([]primitive.ObjectID, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
