package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-directory/internal/core/domain"
	"github.com/userdesk/user-directory/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserService struct {
	getAllFn  func(ctx context.Context) ([]ports.UserView, error)
	getByIDFn func(ctx context.Context, id string) (*ports.UserView, error)
	createFn  func(ctx context.Context, input ports.CreateUserInput) (*ports.UserView, error)
	updateFn  func(ctx context.Context, id string, input ports.UpdateUserInput) (*ports.UserView, error)
	deleteFn  func(ctx context.Context, id string) (bool, error)

	createCalls int
}

func (s *stubUserService) GetAll(ctx context.Context) ([]ports.UserView, error) {
	return s.getAllFn(ctx)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*ports.UserView, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, input ports.CreateUserInput) (*ports.UserView, error) {
	s.createCalls++
	return s.createFn(ctx, input)
}

func (s *stubUserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*ports.UserView, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubUserService) Delete(ctx context.Context, id string) (bool, error) {
	return s.deleteFn(ctx, id)
}

type stubIdemStore struct {
	keys map[string]string
}

func (s *stubIdemStore) Lookup(_ context.Context, key string) (string, bool, error) {
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdemStore) Remember(_ context.Context, key, userID string) error {
	s.keys[key] = userID
	return nil
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var adaView = ports.UserView{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

// ---------------------------------------------------------------------------
// List / Get
// ---------------------------------------------------------------------------

func TestUserHandler_List_Success(t *testing.T) {
	svc := &stubUserService{
		getAllFn: func(context.Context) ([]ports.UserView, error) {
			return []ports.UserView{adaView}, nil
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodGet, "/v1/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Email != "ada@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_List_Empty(t *testing.T) {
	svc := &stubUserService{
		getAllFn: func(context.Context) ([]ports.UserView, error) { return nil, nil },
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodGet, "/v1/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[]}` {
		t.Fatalf("empty list must serialize as [], got %s", got)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(_ context.Context, id string) (*ports.UserView, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, _ := newTestContext(t, http.MethodGet, "/v1/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound to propagate, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserHandler_Create_Success(t *testing.T) {
	svc := &stubUserService{
		createFn: func(_ context.Context, input ports.CreateUserInput) (*ports.UserView, error) {
			if input.FirstName != "Ada" || input.Email != "ada@example.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			v := adaView
			return &v, nil
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/users",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "u-1" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Create_ValidationRejects(t *testing.T) {
	svc := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserView, error) {
			t.Fatal("service must not be called for invalid payload")
			return nil, nil
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, _ := newTestContext(t, http.MethodPost, "/v1/users",
		`{"first_name":"","last_name":"Lovelace","email":"nope"}`)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Create_Conflict(t *testing.T) {
	svc := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserView, error) {
			return nil, fmt.Errorf("%w: ada@example.com", domain.ErrEmailTaken)
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, _ := newTestContext(t, http.MethodPost, "/v1/users",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`)

	if err := h.Create(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken to propagate, got %v", err)
	}
}

func TestUserHandler_Create_IdempotentReplay(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(_ context.Context, id string) (*ports.UserView, error) {
			if id != "u-1" {
				t.Fatalf("unexpected lookup id %q", id)
			}
			v := adaView
			return &v, nil
		},
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserView, error) {
			t.Fatal("create must not run on replay")
			return nil, nil
		},
	}
	idem := &stubIdemStore{keys: map[string]string{"key-abc": "u-1"}}
	h := NewUserHandler(svc, idem, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/users",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`)
	c.Request().Header.Set("Idempotency-Key", "key-abc")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("replay must return 200, got %d", rec.Code)
	}
}

func TestUserHandler_Create_RecordsIdempotencyKey(t *testing.T) {
	svc := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserView, error) {
			v := adaView
			return &v, nil
		},
	}
	idem := &stubIdemStore{keys: map[string]string{}}
	h := NewUserHandler(svc, idem, zerolog.Nop())

	c, _ := newTestContext(t, http.MethodPost, "/v1/users",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`)
	c.Request().Header.Set("Idempotency-Key", "key-new")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if idem.keys["key-new"] != "u-1" {
		t.Fatalf("key not recorded: %+v", idem.keys)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestUserHandler_Update_Success(t *testing.T) {
	svc := &stubUserService{
		updateFn: func(_ context.Context, id string, input ports.UpdateUserInput) (*ports.UserView, error) {
			if id != "u-1" || input.FirstName != "Augusta" {
				t.Fatalf("unexpected args: %s %+v", id, input)
			}
			v := adaView
			v.FirstName = "Augusta"
			return &v, nil
		},
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodPut, "/v1/users/u-1",
		`{"first_name":"Augusta","last_name":"King","email":"ada@example.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("u-1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_Existing(t *testing.T) {
	svc := &stubUserService{
		deleteFn: func(_ context.Context, id string) (bool, error) { return true, nil },
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, rec := newTestContext(t, http.MethodDelete, "/v1/users/u-1", "")
	c.SetParamNames("id")
	c.SetParamValues("u-1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_Missing(t *testing.T) {
	svc := &stubUserService{
		deleteFn: func(_ context.Context, id string) (bool, error) { return false, nil },
	}
	h := NewUserHandler(svc, nil, zerolog.Nop())

	c, _ := newTestContext(t, http.MethodDelete, "/v1/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Delete(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
