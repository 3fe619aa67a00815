package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-console/cmd/console/infrastructure"
	"user-admin-console/internal/adapter/cache"
	"user-admin-console/internal/adapter/db/postgres"
	ginhandler "user-admin-console/internal/adapter/gin/handler"
	"user-admin-console/internal/adapter/gin/middleware"
	"user-admin-console/internal/adapter/gin/router"
	"user-admin-console/internal/adapter/repository/cached"
	"user-admin-console/internal/config"
	"user-admin-console/internal/usecase/user"
	redisclient "user-admin-console/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *gorm.DB
	RedisClient    *redisclient.Client
	UserUC         user.Usecase
	RateLimiter    *middleware.RateLimiter
	UserHandler    *ginhandler.UserHandler
	ConsoleHandler *ginhandler.ConsoleHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// userCache stays a nil interface when Redis is off.
	var userCache cache.UserCache
	var limiterClient *redis.Client
	if rdb != nil {
		userCache = cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		limiterClient = rdb.Client
	}

	dbRepo := postgres.NewUserRepoPG(db, l)
	repo := cached.NewUserRepository(dbRepo, userCache, l)

	userUC := user.New(repo, l)

	rateLimiter := middleware.NewRateLimiter(
		limiterClient,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	consoleHandler := ginhandler.NewConsoleHandler(userUC, l, ginhandler.ConsoleConfig{
		LoadWait:      cfg.App.LoadWait(),
		SubmitWait:    cfg.App.SubmitWait(),
		SubmissionTTL: cfg.App.SubmissionTTL(),
	})

	return &Container{
		Config:         cfg,
		Logger:         l,
		DB:             db,
		RedisClient:    rdb,
		UserUC:         userUC,
		RateLimiter:    rateLimiter,
		UserHandler:    ginhandler.NewUserHandler(userUC, l),
		ConsoleHandler: consoleHandler,
	}, nil
}

// Probes returns the dependency checks behind /health and the gRPC health service.
func (c *Container) Probes() map[string]router.Probe {
	probes := map[string]router.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.RedisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}
	}
	return probes
}

// RouterOptions assembles what the HTTP router serves.
func (c *Container) RouterOptions() router.Options {
	return router.Options{
		Console:     c.ConsoleHandler,
		API:         c.UserHandler,
		RateLimiter: c.RateLimiter,
		Probes:      c.Probes(),
		Swagger:     c.Config.App.SwaggerEnabled,
		ServiceName: c.Config.Logger.ServiceName,
		Log:         c.Logger,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
