package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	// DBDriver selects the user repository backend: "mongo" or "sqlite".
	DBDriver string `env:"DB_DRIVER, default=mongo"`

	Mongo  MongoConfig
	SQLite SQLiteConfig
	Redis  RedisConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=user_directory"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=user_directory.db"`
}

type RedisConfig struct {
	// Addr empty disables Redis (and with it Idempotency-Key support).
	Addr    string        `env:"REDIS_ADDR"`
	DB      int           `env:"REDIS_DB,      default=0"`
	Timeout time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
