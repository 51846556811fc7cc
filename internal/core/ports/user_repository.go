package ports

import (
	"context"

	"github.com/userdesk/user-directory/internal/core/domain"
)

// UserRepository defines the persistence operations the user service depends
// on. Implementations translate their storage-level not-found and duplicate
// conditions into domain.ErrUserNotFound and domain.ErrEmailTaken; any other
// error is treated as an infrastructure fault and propagated untouched.
//
// GetAll makes no ordering guarantee; ordering is a storage concern.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	// Add persists a new user and returns the stored value.
	Add(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update persists changes to an existing user and returns the stored value.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
