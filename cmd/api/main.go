package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-goals/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-goals/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-goals/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-goals/internal/config"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
	"github.com/comitanigiacomo/kanso-goals/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// @title                       Kanso Goals API
// @version                     1.0
// @description                 Recurring goals with daily, weekly and monthly schedules.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("kanso goals stopped")
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Setup(logger.Config{Level: cfg.LogLevel, Console: cfg.IsDevelopment()})
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.GinWriter{Logger: log.Logger}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(context.Background(), cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()

		store.goals = repository.NewCachedGoalRepository(store.goals, redisClient)
	} else {
		log.Info().Msg("redis disabled, no goal cache or rate limiting")
	}

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, store.users)
	authService := services.NewAuthService(store.users, tokenService)
	goalService := services.NewGoalService(store.goals, services.WithDefaultLocation(cfg.Timezone))

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(authService),
		GoalHandler:  adapterHTTP.NewGoalHandler(goalService, cfg.Timezone),
		TokenService: tokenService,
		Redis:        redisClient,
		StartTime:    startTime,
	}
	if store.db != nil {
		deps.DB = store.db
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      adapterHTTP.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.Storage).
			Str("timezone", cfg.Timezone.String()).
			Msg("kanso goals listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("stop signal received, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

type storage struct {
	goals domain.GoalRepository
	users domain.UserRepository
	// db is nil for in-memory storage.
	db *sqlx.DB
}

func (s *storage) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStorage(cfg *config.Config) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			goals: repository.NewInMemoryGoalRepository(),
			users: repository.NewInMemoryUserRepository(),
		}, nil
	}

	log.Info().Str("driver", cfg.DBDriver).Str("host", cfg.DBHost).Msg("connecting to database")

	db, err := sqlx.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.RunMigrations(db.DB, cfg.DBDriver); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Msg("database connected")

	return &storage{
		goals: repository.NewPostgresGoalRepository(db),
		users: repository.NewPostgresUserRepository(db),
		db:    db,
	}, nil
}
