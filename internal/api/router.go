package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/userdesk/user-directory/docs"
	"github.com/userdesk/user-directory/internal/api/handler"
	"github.com/userdesk/user-directory/internal/api/middleware"
	"github.com/userdesk/user-directory/internal/core/domain"
	"github.com/userdesk/user-directory/internal/core/ports"
	"github.com/userdesk/user-directory/internal/core/service"
)

// Dependencies carries everything the router needs to wire handlers.
// MongoDB and Redis are optional: Mongo is nil when the SQLite backend is
// active, Redis is nil when idempotency support is disabled.
type Dependencies struct {
	UserRepo    ports.UserRepository
	AccountRepo ports.AccountRepository
	Idempotency handler.IdempotencyStore
	Mongo       *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	TokenTTL    time.Duration
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userdir"))

	// --- Services and handlers ---
	userService := service.NewUserService(deps.UserRepo, deps.Logger)
	userHandler := handler.NewUserHandler(userService, deps.Idempotency, deps.Logger)

	accountService := service.NewAccountService(deps.AccountRepo, deps.JWTSecret, deps.TokenTTL)
	accountHandler := handler.NewAccountHandler(accountService)

	// --- Auth routes ---
	e.POST("/auth/register", accountHandler.Register)
	e.POST("/auth/login", accountHandler.Login)

	// --- Directory routes ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	anyOperator := middleware.RequireRole(domain.RoleAdmin, domain.RoleViewer)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	v1.GET("/users", userHandler.List, anyOperator)
	v1.GET("/users/:id", userHandler.Get, anyOperator)
	v1.POST("/users", userHandler.Create, adminOnly)
	v1.PUT("/users/:id", userHandler.Update, adminOnly)
	v1.DELETE("/users/:id", userHandler.Delete, adminOnly)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
