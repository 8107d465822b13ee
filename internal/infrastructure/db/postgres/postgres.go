package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxConns = 10

	codeUniqueViolation = "23505"

	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
	constraintISBN     = "books_isbn_key"
)

// Config captures the settings for a PostgreSQL connection pool.
type Config struct {
	DSN      string
	MaxConns int32
	Timeout  time.Duration
}

// Connect creates a pgx pool and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.ConnConfig.ConnectTimeout = timeout

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(50)  NOT NULL,
	email         VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role          VARCHAR(10)  NOT NULL CHECK (role IN ('USER', 'ADMIN')),
	created_at    TIMESTAMPTZ  NOT NULL,
	updated_at    TIMESTAMPTZ  NOT NULL,
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS books (
	id             BIGSERIAL PRIMARY KEY,
	title          VARCHAR(100)   NOT NULL,
	author         VARCHAR(50)    NOT NULL,
	published_date DATE           NOT NULL,
	genre          VARCHAR(50)    NOT NULL DEFAULT '',
	price          NUMERIC(12, 2) NOT NULL CHECK (price > 0),
	isbn           VARCHAR(13)    NOT NULL,
	created_at     TIMESTAMPTZ    NOT NULL,
	updated_at     TIMESTAMPTZ    NOT NULL,
	CONSTRAINT books_isbn_key UNIQUE (isbn)
);

CREATE TABLE IF NOT EXISTS audit_events (
	id          BIGSERIAL PRIMARY KEY,
	action      VARCHAR(40) NOT NULL,
	entity      VARCHAR(20) NOT NULL,
	entity_id   BIGINT      NOT NULL,
	actor_id    BIGINT      NOT NULL,
	actor       VARCHAR(50) NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	details     JSONB,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_events (entity, entity_id, occurred_at);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// uniqueViolation returns the violated constraint name, or "" when err is
// not a unique violation.
func uniqueViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
