// @title        User Directory API
// @version      1.0
// @description  CRUD service for directory users with operator authentication.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userdesk/user-directory/internal/api"
	"github.com/userdesk/user-directory/internal/infrastructure/config"
	mongodb "github.com/userdesk/user-directory/internal/infrastructure/db/mongo"
	redisdb "github.com/userdesk/user-directory/internal/infrastructure/db/redis"
	sqlitedb "github.com/userdesk/user-directory/internal/infrastructure/db/sqlite"
	"github.com/userdesk/user-directory/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	deps := api.Dependencies{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Logger:    log,
	}

	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqlitedb.Open(cfg.SQLite.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite database")
		}
		defer db.Close()

		if err := sqlitedb.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run sqlite migrations")
		}

		deps.UserRepo = sqlitedb.NewUserRepository(db)
		deps.AccountRepo = sqlitedb.NewAccountRepository(db)
		log.Info().Str("path", cfg.SQLite.Path).Msg("using sqlite backend")

	case "mongo":
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()

		userRepo := mongodb.NewUserRepository(db)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure user indexes")
		}
		accountRepo := mongodb.NewAccountRepository(db)
		if err := accountRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure account indexes")
		}

		deps.UserRepo = userRepo
		deps.AccountRepo = accountRepo
		deps.Mongo = db
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongodb backend")

	default:
		log.Fatal().Str("driver", cfg.DBDriver).Msg("unknown DB_DRIVER")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		deps.Redis = rdb
		deps.Idempotency = redisdb.NewIdempotencyStore(rdb)
	} else {
		log.Warn().Msg("redis disabled, Idempotency-Key support is off")
	}

	e := api.NewRouter(deps)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
