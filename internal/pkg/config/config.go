package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers accepted by SESSION_STORE.
const (
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port          string `env:"PORT,          default=8080"`
	Env           string `env:"ENV,           default=development"`
	LogLevel      string `env:"LOG_LEVEL,     default=info"`
	LogoutWorkers int    `env:"LOGOUT_WORKERS, default=4"`

	Session SessionConfig
	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,  default=true"`
	Store        string        `env:"SESSION_STORE,  default=redis"`
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     required"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=condominio_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the portal runs in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Session.Store {
	case StoreRedis, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("config: SESSION_STORE must be one of redis, mongo, memory; got %q", cfg.Session.Store)
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes")
	}
	return &cfg, nil
}
