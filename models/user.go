package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a farmer account. Cases are stored per user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username"      json:"username"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"passwordHash"  json:"-"`
	Region       string             `bson:"region,omitempty"   json:"region,omitempty"`
	Language     string             `bson:"language,omitempty" json:"language,omitempty"` // language code, empty = auto
	CreatedAt    time.Time          `bson:"createdAt"     json:"createdAt"`
}
