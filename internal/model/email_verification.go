package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// EmailVerification is the persisted state of an email-ownership proof
// challenge. At most one record exists per user, enforced by a unique
// index on user_id.
type EmailVerification struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID `bson:"user_id"       json:"user_id"`
	Email     string        `bson:"email"         json:"email"`
	Secret    string        `bson:"secret"        json:"secret"`
	Verified  bool          `bson:"verified"      json:"verified"`
	CreatedAt time.Time     `bson:"created_at"    json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"    json:"updated_at"`
}
