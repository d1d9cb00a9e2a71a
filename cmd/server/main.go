package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/roombook/identity-system/internal/api"
	"github.com/roombook/identity-system/internal/core/auth"
	"github.com/roombook/identity-system/internal/core/ports"
	"github.com/roombook/identity-system/internal/core/service"
	"github.com/roombook/identity-system/internal/infrastructure/config"
	filestore "github.com/roombook/identity-system/internal/infrastructure/db/file"
	memorystore "github.com/roombook/identity-system/internal/infrastructure/db/memory"
	mongostore "github.com/roombook/identity-system/internal/infrastructure/db/mongo"
	redisstore "github.com/roombook/identity-system/internal/infrastructure/db/redis"
	"github.com/roombook/identity-system/internal/infrastructure/queue"
	"github.com/roombook/identity-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// A missing signing key is a fatal misconfiguration: the token service
	// cannot start without one, and there is no safe default.
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token service")
	}

	var (
		store   ports.IdentityStore
		mongoDB *gomongo.Database
	)
	switch cfg.Store.Backend {
	case config.BackendFile:
		repo := filestore.NewIdentityRepository(cfg.Store.Path)
		if err := repo.Init(ctx); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to initialize identity store")
		}
		store = repo
		log.Info().Str("path", cfg.Store.Path).Msg("file identity store ready")
	case config.BackendMemory:
		store = memorystore.NewIdentityRepository()
		log.Warn().Msg("using in-memory identity store, identities will not survive restart")
	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo := mongostore.NewIdentityRepository(db)
		if err := repo.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize MongoDB identity store")
		}
		store = repo
		mongoDB = db
		log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB identity store ready")
	}

	var (
		throttle    service.LoginThrottle
		redisClient *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer func() { _ = redisClient.Close() }()
		throttle = redisstore.NewLoginThrottle(redisClient)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	}

	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, log)
	audit.Start(ctx)

	authService := service.NewAuthService(store, tokens, throttle, audit, log)
	identityService := service.NewIdentityService(store, audit, log)

	// First run against an empty store seeds the demo administrator and
	// logs its first-access token.
	if _, err := service.SeedAdmin(ctx, store, authService, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed administrator")
	}

	e := api.NewRouter(api.Dependencies{
		AuthService:     authService,
		IdentityService: identityService,
		Mongo:           mongoDB,
		Redis:           redisClient,
		Log:             log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("identity server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
