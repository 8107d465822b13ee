// @title                       Bookstore API
// @version                     1.0
// @description                 Book catalog with JWT authentication and role-based access.
// @BasePath                    /
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

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/api"
	"github.com/closedigit/bookstore-api/internal/api/handler"
	"github.com/closedigit/bookstore-api/internal/core/ports"
	"github.com/closedigit/bookstore-api/internal/core/security"
	"github.com/closedigit/bookstore-api/internal/core/service"
	"github.com/closedigit/bookstore-api/internal/infrastructure/config"
	mongostore "github.com/closedigit/bookstore-api/internal/infrastructure/db/mongo"
	pgstore "github.com/closedigit/bookstore-api/internal/infrastructure/db/postgres"
	rediscache "github.com/closedigit/bookstore-api/internal/infrastructure/db/redis"
	"github.com/closedigit/bookstore-api/internal/infrastructure/queue"
	"github.com/closedigit/bookstore-api/pkg/logger"
)

const serviceName = "bookstore-api"

// store bundles the repositories of one storage driver.
type store struct {
	users ports.UserRepository
	books ports.BookRepository
	audit ports.AuditRepository
	ping  handler.PingFunc
	close func(context.Context)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: serviceName})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	readiness := map[string]handler.PingFunc{cfg.Store.Driver: st.ping}

	var cache service.BookCache
	if cfg.Redis.Addr != "" {
		rdb, err := rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = rediscache.NewBookCache(rdb, cfg.Redis.CacheTTL)
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("book cache enabled")
	}

	// Audit workers outlive the request context so that queued events are
	// flushed after the HTTP server has stopped.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, st.audit, logger.Component("audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	identity, err := service.NewIdentityService(st.users, hasher, tokens, dispatcher, logger.Component("identity"))
	if err != nil {
		return err
	}
	catalog := service.NewCatalogService(st.books, cache, dispatcher, logger.Component("catalog"))

	if cfg.Seed.Enabled {
		seeder := service.NewSeeder(st.users, st.books, hasher, cfg.Seed.AdminPassword, cfg.Seed.UserPassword, logger.Component("seeder"))
		if err := seeder.Run(ctx); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Identity:  identity,
		Catalog:   catalog,
		Tokens:    tokens,
		Readiness: readiness,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &store{
			users: pgstore.NewUserRepository(pool),
			books: pgstore.NewBookRepository(pool),
			audit: pgstore.NewAuditRepository(pool),
			ping:  pool.Ping,
			close: func(context.Context) { pool.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		books := mongostore.NewBookRepository(db)
		audit := mongostore.NewAuditRepository(db)
		for _, idx := range []interface{ EnsureIndexes(context.Context) error }{users, books, audit} {
			if err := idx.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		return &store{
			users: users,
			books: books,
			audit: audit,
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil
	}
}
