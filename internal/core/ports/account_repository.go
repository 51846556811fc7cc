package ports

import (
	"context"

	"github.com/userdesk/user-directory/internal/core/domain"
)

// AccountRepository defines persistence for operator accounts.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
