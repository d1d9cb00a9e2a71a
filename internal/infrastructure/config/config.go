package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret has no default on purpose: deployments must supply their
	// own signing key. Absence is fatal at startup.
	JWTSecret string `env:"JWT_SECRET"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=file"`
	Path    string `env:"STORE_PATH,    default=./data/identities.json"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_system"`
}

type RedisConfig struct {
	// Addr left empty disables the Redis-backed login throttle.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendFile, BackendMemory, BackendMongo:
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
