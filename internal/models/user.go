package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Don't return password in JSON

	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`

	ProfileImage string `bson:"profile_image" json:"profile_image"`
	CoverImage   string `bson:"cover_image" json:"cover_image"`
	Bio          string `bson:"bio,omitempty" json:"bio,omitempty"`
	Link         string `bson:"link,omitempty" json:"link,omitempty"`
}

// Sanitized returns a copy of the user with the password digest cleared.
// Anything attached to a request context or serialized for a client goes
// through this first.
func (u *User) Sanitized() *User {
	clone := *u
	clone.Password = ""
	return &clone
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}
