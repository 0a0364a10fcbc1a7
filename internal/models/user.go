package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in the users collection.
type User struct {
	ID           primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	UserName     string             `json:"userName"  bson:"userName"`
	PasswordHash string             `json:"-"         bson:"password"` // never serialize
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// SignUpRequest is the JSON body for POST /api/auth/signup.
type SignUpRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// SignInRequest is the JSON body for POST /api/auth/signin.
type SignInRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}
