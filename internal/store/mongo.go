package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flocknet/flocknet-backend/internal/models"
)

const (
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// MongoStore implements UserStore and NotificationStore on a MongoDB
// database.
type MongoStore struct {
	users         *mongo.Collection
	notifications *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:         db.Collection(usersCollection),
		notifications: db.Collection(notificationsCollection),
	}
}

// EnsureIndexes creates the unique indexes on username and email. Uniqueness
// enforcement relies on these; the signup pre-check alone is racy.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"username":      user.Username,
		"email":         user.Email,
		"password":      user.Password,
		"profile_image": user.ProfileImage,
		"cover_image":   user.CoverImage,
		"bio":           user.Bio,
		"link":          user.Link,
		"updated_at":    user.UpdatedAt,
	}}

	res, err := s.users.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow keeps the reciprocity invariant with two idempotent $addToSet
// updates. Multi-document transactions require a replica set, which this
// deployment does not assume.
func (s *MongoStore) Follow(ctx context.Context, follower, target primitive.ObjectID) error {
	if err := s.adjustEdge(ctx, follower, "following", "$addToSet", target); err != nil {
		return err
	}
	return s.adjustEdge(ctx, target, "followers", "$addToSet", follower)
}

func (s *MongoStore) Unfollow(ctx context.Context, follower, target primitive.ObjectID) error {
	if err := s.adjustEdge(ctx, follower, "following", "$pull", target); err != nil {
		return err
	}
	return s.adjustEdge(ctx, target, "followers", "$pull", follower)
}

func (s *MongoStore) adjustEdge(ctx context.Context, id primitive.ObjectID, field, op string, value primitive.ObjectID) error {
	res, err := s.users.UpdateByID(ctx, id, bson.M{
		op:     bson.M{field: value},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": exclude}}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
		{{Key: "$project", Value: bson.M{"password": 0}}},
	}

	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	res, err := s.notifications.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	n.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) ListForUser(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.notifications.Find(ctx, bson.M{"to": to}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, to primitive.ObjectID) error {
	_, err := s.notifications.UpdateMany(ctx,
		bson.M{"to": to, "read": false},
		bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}},
	)
	return err
}

// Notifications adapts the MongoStore to the NotificationStore interface,
// whose Create would otherwise collide with UserStore's.
func (s *MongoStore) Notifications() NotificationStore {
	return mongoNotifications{s}
}

type mongoNotifications struct{ s *MongoStore }

func (m mongoNotifications) Create(ctx context.Context, n *models.Notification) error {
	return m.s.CreateNotification(ctx, n)
}

func (m mongoNotifications) ListForUser(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	return m.s.ListForUser(ctx, to)
}

func (m mongoNotifications) MarkAllRead(ctx context.Context, to primitive.ObjectID) error {
	return m.s.MarkAllRead(ctx, to)
}
