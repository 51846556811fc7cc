package ports

import (
	"context"
)

// CreateUserInput carries the data needed to create a directory user.
// Validation tags are enforced both at the transport boundary and again by
// the service itself.
type CreateUserInput struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
}

// UpdateUserInput carries a full replacement of a user's mutable fields.
// All three fields are required; sparse updates are not supported.
type UpdateUserInput struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
}

// UserView is the projection of a user returned across the service boundary.
// It is deliberately separate from domain.User so the wire shape and the
// persistence shape can diverge independently.
type UserView struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// UserService defines the directory's use-case operations.
//
// Lookup misses surface as domain.ErrUserNotFound (Delete reports them as
// false instead, since absence there is an ordinary outcome). Business
// failures surface as errors wrapping domain.ErrInvalidInput or
// domain.ErrEmailTaken; anything else is an infrastructure fault.
type UserService interface {
	GetAll(ctx context.Context) ([]UserView, error)
	GetByID(ctx context.Context, id string) (*UserView, error)
	Create(ctx context.Context, input CreateUserInput) (*UserView, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*UserView, error)
	// Delete reports whether the user existed. (false, nil) means there was
	// nothing to delete.
	Delete(ctx context.Context, id string) (bool, error)
}
