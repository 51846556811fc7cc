package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/userdesk/user-directory/internal/core/domain"
	"github.com/userdesk/user-directory/internal/core/ports"
	"github.com/userdesk/user-directory/internal/infrastructure/db/sqlite"
)

// Verify the repositories satisfy the ports at compile time.
var _ ports.UserRepository = (*sqlite.UserRepository)(nil)
var _ ports.AccountRepository = (*sqlite.AccountRepository)(nil)

func newTestRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return sqlite.NewUserRepository(db)
}

func seedUser(t *testing.T, repo *sqlite.UserRepository, email string) *domain.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	user := &domain.User{
		ID:        uuid.NewString(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := repo.Add(context.Background(), user); err != nil {
		t.Fatalf("Add %s: %v", email, err)
	}
	return user
}

func TestUserRepository_AddAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "ada@example.com")

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != user.Email || got.FirstName != user.FirstName {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, byEmail.ID)
	}
}

func TestUserRepository_Add_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "dup@example.com")

	dup := &domain.User{
		ID:        uuid.NewString(),
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "dup@example.com",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := repo.Add(ctx, dup)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_GetAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "a@example.com")
	seedUser(t, repo, "b@example.com")

	users, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUserRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "ada@example.com")
	user.FirstName = "Augusta"
	user.Email = "countess@example.com"
	user.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	if _, err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Augusta" || got.Email != "countess@example.com" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestUserRepository_Update_EmailConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "ada@example.com")
	other := seedUser(t, repo, "grace@example.com")

	other.Email = "ada@example.com"
	_, err := repo.Update(ctx, other)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepository_Update_Missing(t *testing.T) {
	repo := newTestRepo(t)

	ghost := &domain.User{ID: "missing", FirstName: "G", LastName: "H", Email: "g@example.com", UpdatedAt: time.Now().UTC()}
	_, err := repo.Update(context.Background(), ghost)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_DeleteAndExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "ada@example.com")

	found, err := repo.Exists(ctx, user.ID)
	if err != nil || !found {
		t.Fatalf("Exists before delete: %v %v", found, err)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err = repo.Exists(ctx, user.ID)
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if found {
		t.Fatal("user still exists after delete")
	}
}
