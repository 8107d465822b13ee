package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/closedigit/bookstore-api/docs"
	"github.com/closedigit/bookstore-api/internal/api/handler"
	"github.com/closedigit/bookstore-api/internal/api/middleware"
	"github.com/closedigit/bookstore-api/internal/core/authz"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

const metricsSubsystem = "bookstore"

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Identity  ports.IdentityService
	Catalog   ports.CatalogService
	Tokens    ports.TokenIssuer
	Readiness map[string]handler.PingFunc
	Log       zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMiddlewareConfig(d.Registry)))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Identity)
	bookHandler := handler.NewBookHandler(d.Catalog)
	userHandler := handler.NewUserHandler(d.Identity)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", promHandler(d.Registry))      // prometheus scrape target
	e.GET("/swagger/*", echoSwagger.WrapHandler)    // API documentation

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	gate := middleware.RequireOperation

	// --- Catalog routes ---
	books := e.Group("/api/books", middleware.Auth(d.Tokens))
	books.GET("", bookHandler.List, gate(authz.CatalogList))
	books.GET("/:id", bookHandler.Get, gate(authz.CatalogRead))
	books.POST("", bookHandler.Create, gate(authz.CatalogCreate))
	books.PUT("/:id", bookHandler.Update, gate(authz.CatalogUpdate))
	books.DELETE("/:id", bookHandler.Delete, gate(authz.CatalogDelete))

	// --- User routes ---
	users := e.Group("/api/users", middleware.Auth(d.Tokens))
	users.GET("/profile", userHandler.Profile, gate(authz.IdentityProfile))
	users.GET("", userHandler.List, gate(authz.IdentityList))
	users.GET("/count", userHandler.Count, gate(authz.IdentityCount))
	users.GET("/count/role/:role", userHandler.CountByRole, gate(authz.IdentityCount))
	users.GET("/role/:role", userHandler.ListByRole, gate(authz.IdentityList))
	users.GET("/:id", userHandler.Get, gate(authz.IdentityRead))
	users.PUT("/:id/role", userHandler.ChangeRole, gate(authz.IdentityChangeRole))
	users.DELETE("/:id", userHandler.Delete, gate(authz.IdentityDelete))

	return e
}

func promMiddlewareConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: metricsSubsystem}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func promHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
