package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types written by the follow/unfollow handler. Like and
// comment exist for parity with clients that render them; nothing in this
// backend emits them yet.
const (
	NotificationFollow   = "follow"
	NotificationUnfollow = "unfollow"
	NotificationLike     = "like"
	NotificationComment  = "comment"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	From primitive.ObjectID `bson:"from" json:"from"`
	To   primitive.ObjectID `bson:"to" json:"to"`
	Type string             `bson:"type" json:"type"`
	Read bool               `bson:"read" json:"read"`
}
