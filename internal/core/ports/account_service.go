package ports

import (
	"context"

	"github.com/userdesk/user-directory/internal/core/domain"
)

// AccountService defines operator registration and login.
type AccountService interface {
	Register(ctx context.Context, username, password, role string) (*domain.Account, error)
	// Login returns a signed JWT and the authenticated account.
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
}
