package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account principal. PublicKey holds the PEM-encoded
// public half of the user's keypair; the private half is never stored.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"  json:"id"`
	Email        string        `bson:"email"          json:"email"`
	PasswordHash string        `bson:"password_hash"  json:"-"`
	Description  string        `bson:"description"    json:"description"`
	PublicKey    string        `bson:"public_key"     json:"public_key"`
	Role         int           `bson:"role"           json:"role"`
	Verified     bool          `bson:"verified"       json:"verified"`
	CreatedAt    time.Time     `bson:"created_at"     json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"     json:"updated_at"`
}
