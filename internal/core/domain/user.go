package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already taken")
var ErrInvalidInput = errors.New("invalid input")

// User is the directory's core entity. ID is generated by the service at
// creation time and never changes; Email is unique across all users after
// normalization. Construction and mutation go through the UserService only.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NormalizeEmail canonicalizes an email for comparison and storage.
// Uniqueness is case-insensitive: "A@x.com" and "a@x.com" are the same address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
