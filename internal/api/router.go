package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/roombook/identity-system/internal/api/handler"
	"github.com/roombook/identity-system/internal/api/middleware"
	"github.com/roombook/identity-system/internal/core/ports"
)

// Dependencies carries everything the router needs. MongoDB and Redis are
// optional and only referenced by the readiness probe.
type Dependencies struct {
	AuthService     ports.AuthService
	IdentityService ports.IdentityService
	Mongo           *mongo.Database
	Redis           *redis.Client
	Log             zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity_http"))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	identityHandler := handler.NewIdentityHandler(deps.IdentityService)
	authRequired := middleware.Auth(deps.AuthService)
	adminOnly := middleware.RequireAdmin()

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authRequired)
	e.PUT("/auth/password", authHandler.ChangePassword, authRequired)

	// --- Identity management ---
	identities := e.Group("/identities", authRequired)
	identities.GET("", identityHandler.List)
	identities.GET("/:id", identityHandler.Get)
	identities.PUT("/:id/name", identityHandler.Rename)
	identities.PUT("/:id/role", identityHandler.SetRole, adminOnly)
	identities.POST("/:id/deactivate", identityHandler.Deactivate, adminOnly)
	identities.POST("/:id/activate", identityHandler.Activate, adminOnly)

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
