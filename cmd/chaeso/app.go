package main

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/chaeso/delivery-api/internal/core/ports"
	"github.com/chaeso/delivery-api/internal/core/service"
	"github.com/chaeso/delivery-api/internal/infrastructure/config"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/mongo"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/postgres"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/redis"
	"github.com/chaeso/delivery-api/pkg/logger"
)

// app holds the process-wide connections shared by every subcommand.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	db    *gorm.DB
	mongo *mongodriver.Client
	mdb   *mongodriver.Database
	redis *goredis.Client
}

// boot loads configuration, initialises the logger and connects to the stores
// the caller asks for. Postgres is always opened.
func boot(ctx context.Context, withMongo, withRedis bool) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.LogPretty,
			Service: "chaeso",
		}),
	}

	a.db, err = postgres.Connect(ctx, postgres.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}

	if withMongo {
		a.mongo, a.mdb, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			a.close()
			return nil, err
		}
	}

	if withRedis {
		a.redis, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.close()
			return nil, err
		}
	}

	a.log.Info().
		Str("env", cfg.Env).
		Str("db_driver", cfg.Database.Driver).
		Bool("mongo", withMongo).
		Bool("redis", withRedis).
		Msg("connected to backing stores")
	return a, nil
}

// close releases every open connection, logging failures.
func (a *app) close() {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.mongo != nil {
		errs = append(errs, mongo.Disconnect(a.mongo))
	}
	if a.db != nil {
		errs = append(errs, postgres.Close(a.db))
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Error().Err(err).Msg("closing connections")
	}
}

// authService builds the identity service. A nil Redis client is only valid
// for commands that never issue tokens.
func (a *app) authService() *service.AuthService {
	var sessions ports.SessionStore
	if a.redis != nil {
		sessions = redis.NewSessionStore(a.redis)
	}
	return service.NewAuthService(
		postgres.NewUserRepository(a.db),
		postgres.NewClientRepository(a.db),
		postgres.NewTransporterRepository(a.db),
		sessions,
		service.AuthConfig{JWTSecret: a.jwtSecret(), TokenTTL: a.cfg.TokenTTL},
		a.log.With().Str("component", "auth").Logger(),
	)
}

func (a *app) jwtSecret() string {
	if a.cfg.JWTSecret == "" && a.cfg.IsDevelopment() {
		a.log.Warn().Msg("JWT_SECRET is empty; using an insecure development secret")
		return "chaeso-development-secret"
	}
	return a.cfg.JWTSecret
}

func requireArg(name, value string) error {
	if value == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
