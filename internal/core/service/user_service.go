package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-directory/internal/core/domain"
	"github.com/userdesk/user-directory/internal/core/ports"
)

// UserService implements ports.UserService. It is stateless between calls
// and safe for concurrent use as long as the repository is.
type UserService struct {
	repo     ports.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetAll returns a view of every user in the directory, possibly empty.
func (s *UserService) GetAll(ctx context.Context) ([]ports.UserView, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ports.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toView(u))
	}
	return views, nil
}

// GetByID returns the view of a single user, or domain.ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*ports.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := toView(user)
	return &v, nil
}

// Create validates the input, enforces email uniqueness, and persists a new
// user with a freshly generated id. The uniqueness pre-check here is a fast
// path; both repository backends also hold a unique constraint on email and
// report a racing duplicate as domain.ErrEmailTaken.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*ports.UserView, error) {
	// Normalize before validating so padded-but-valid addresses pass the
	// email tag and conflicts are checked against the canonical form.
	input.Email = domain.NormalizeEmail(input.Email)
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	if err := s.checkEmailFree(ctx, input.Email, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.repo.Add(ctx, user)
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", stored.ID).Str("email", stored.Email).Msg("user created")

	v := toView(stored)
	return &v, nil
}

// Update replaces a user's mutable fields. Lookup misses surface as
// domain.ErrUserNotFound before any validation or write is attempted;
// changing the email to one owned by a different user fails with
// domain.ErrEmailTaken, while keeping the current email is never a conflict.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*ports.UserView, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Email = domain.NormalizeEmail(input.Email)
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	if input.Email != existing.Email {
		if err := s.checkEmailFree(ctx, input.Email, existing.ID); err != nil {
			return nil, err
		}
	}

	existing.FirstName = input.FirstName
	existing.LastName = input.LastName
	existing.Email = input.Email
	existing.UpdatedAt = time.Now().UTC()

	stored, err := s.repo.Update(ctx, existing)
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", stored.ID).Msg("user updated")

	v := toView(stored)
	return &v, nil
}

// Delete removes a user and reports whether it existed. No delete is issued
// for an absent id.
func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	found, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return false, err
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return true, nil
}

// checkInput re-validates structural constraints defensively; the transport
// layer runs the same tags before the service is ever called.
func (s *UserService) checkInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("%w: field %s failed on %q", domain.ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// checkEmailFree fails with domain.ErrEmailTaken when email belongs to a user
// other than ownerID. An empty ownerID means any owner is a conflict.
func (s *UserService) checkEmailFree(ctx context.Context, email, ownerID string) error {
	owner, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if owner.ID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
}

func toView(u *domain.User) ports.UserView {
	return ports.UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
