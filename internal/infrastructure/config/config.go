package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth     AuthConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Seed     SeedConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET,  required"`
	TokenTTL   time.Duration `env:"JWT_TTL,     default=24h"`
	Issuer     string        `env:"JWT_ISSUER,  default=bookstore-api"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bookstore"`
}

type PostgresConfig struct {
	DSN      string `env:"POSTGRES_DSN"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig configures the book cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	CacheTTL time.Duration `env:"CACHE_TTL,       default=10m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type SeedConfig struct {
	Enabled       bool   `env:"SEED_ENABLED,        default=true"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD, default=admin123"`
	UserPassword  string `env:"SEED_USER_PASSWORD,  default=user123"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}
