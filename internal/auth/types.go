package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the users collection, keyed by the identity
// provider's user id. The password hash is storage-only and never leaves
// the server.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"uid"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// RegisterInput is the sign-up request body.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the sign-in request body.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the response to a successful register or login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
