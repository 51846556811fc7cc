package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-directory/internal/api/metrics"
	"github.com/userdesk/user-directory/internal/core/domain"
	"github.com/userdesk/user-directory/internal/core/ports"
)

// IdempotencyStore remembers which Idempotency-Key already produced a user,
// so a replayed create returns the original record instead of a 409.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (userID string, found bool, err error)
	Remember(ctx context.Context, key, userID string) error
}

// UserHandler handles HTTP requests for directory operations.
type UserHandler struct {
	service ports.UserService
	idem    IdempotencyStore // optional; nil disables Idempotency-Key support
	logger  zerolog.Logger
}

func NewUserHandler(service ports.UserService, idem IdempotencyStore, logger zerolog.Logger) *UserHandler {
	return &UserHandler{service: service, idem: idem, logger: logger}
}

// List handles GET /v1/users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	views, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]userResponse, 0, len(views))
	for _, v := range views {
		data = append(data, toUserResponse(v))
	}
	return c.JSON(http.StatusOK, listUsersResponse{Data: data})
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	view, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// Create handles POST /v1/users.
//
// @Summary      Create a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to make retries safe"
// @Param        body             body      createUserRequest  true   "User details"
// @Success      201              {object}  userResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	key := c.Request().Header.Get("Idempotency-Key")

	if resp, ok := h.replay(ctx, key); ok {
		return c.JSON(http.StatusOK, resp)
	}

	view, err := h.service.Create(ctx, ports.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.ConflictsTotal.WithLabelValues("create").Inc()
		}
		return err
	}

	metrics.UsersCreatedTotal.Inc()

	if h.idem != nil && key != "" {
		if err := h.idem.Remember(ctx, key, view.ID); err != nil {
			h.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to record idempotency key")
		}
	}

	return c.JSON(http.StatusCreated, toUserResponse(*view))
}

// replay returns the previously created user for a seen Idempotency-Key.
// Store failures degrade to a normal create rather than failing the request.
func (h *UserHandler) replay(ctx context.Context, key string) (userResponse, bool) {
	if h.idem == nil || key == "" {
		return userResponse{}, false
	}

	userID, found, err := h.idem.Lookup(ctx, key)
	if err != nil {
		h.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return userResponse{}, false
	}
	if !found {
		return userResponse{}, false
	}

	view, err := h.service.GetByID(ctx, userID)
	if err != nil {
		// Key known but the user is gone (deleted since); fall through.
		return userResponse{}, false
	}

	metrics.IdempotentReplaysTotal.Inc()
	h.logger.Info().Str("idempotency_key", key).Str("user_id", userID).Msg("idempotent replay")
	return toUserResponse(*view), true
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Replace a user's fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Replacement fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.ConflictsTotal.WithLabelValues("update").Inc()
		}
		return err
	}

	metrics.UsersUpdatedTotal.Inc()
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	existed, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !existed {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	metrics.UsersDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

func toUserResponse(v ports.UserView) userResponse {
	return userResponse{
		ID:        v.ID,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		Email:     v.Email,
	}
}
