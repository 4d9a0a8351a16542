package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chaeso/delivery-api/internal/api"
	"github.com/chaeso/delivery-api/internal/core/ports"
	"github.com/chaeso/delivery-api/internal/core/service"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/mongo"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/postgres"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/redis"
	"github.com/chaeso/delivery-api/internal/infrastructure/http/handlers"
	"github.com/chaeso/delivery-api/internal/infrastructure/queue"
	"github.com/chaeso/delivery-api/internal/infrastructure/storage"
)

const shutdownTimeout = 10 * time.Second

// chaeso serve: start the HTTP API and the audit-event workers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	a, err := boot(ctx, true, true)
	if err != nil {
		return err
	}
	defer a.close()

	sentryEnabled := initSentry(a)
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	// --- Repositories ---
	users := postgres.NewUserRepository(a.db)
	clients := postgres.NewClientRepository(a.db)
	transporters := postgres.NewTransporterRepository(a.db)
	products := postgres.NewProductRepository(a.db)
	orders := postgres.NewOrderRepository(a.db)
	tx := postgres.NewTransactor(a.db)
	events := mongo.NewOrderEventRepository(a.mdb)
	sessions := redis.NewSessionStore(a.redis)

	// --- Audit pipeline ---
	eventService := service.NewEventService(events, redis.NewDedupChecker(a.redis), a.log.With().Str("component", "events").Logger())
	dispatcher := queue.NewDispatcher(a.cfg.Orders.EventWorkers, eventService, a.log.With().Str("component", "dispatcher").Logger())

	// --- Services ---
	authService := a.authService()

	var photos ports.PhotoStore
	if a.cfg.S3.Bucket != "" {
		store, err := storage.NewS3PhotoStore(ctx, storage.S3Config{
			Bucket:   a.cfg.S3.Bucket,
			Region:   a.cfg.S3.Region,
			Endpoint: a.cfg.S3.Endpoint,
			Key:      a.cfg.S3.Key,
			Secret:   a.cfg.S3.Secret,
			BaseURL:  a.cfg.S3.BaseURL,
		})
		if err != nil {
			return err
		}
		photos = store
	} else {
		a.log.Info().Msg("S3_BUCKET not set; product photo uploads are disabled")
	}

	svc := api.Services{
		Auth: authService,
		Profiles: service.NewProfileService(service.ProfileDeps{
			Tx:           tx,
			Users:        users,
			Clients:      clients,
			Transporters: transporters,
			Orders:       orders,
			Sessions:     sessions,
			Events:       dispatcher,
		}, a.log.With().Str("component", "profiles").Logger()),
		Catalog: service.NewCatalogService(products, photos, a.log.With().Str("component", "catalog").Logger()),
		Orders: service.NewOrderService(service.OrderDeps{
			Tx:           tx,
			Orders:       orders,
			Products:     products,
			Transporters: transporters,
			Identities:   authService,
			Events:       events,
			Publisher:    dispatcher,
			Idempotency:  redis.NewIdempotencyStore(a.redis, a.cfg.Orders.IdempotencyTTL),
		}, service.OrderConfig{
			InitialStatus:   a.cfg.Orders.InitialStatus,
			DeliveredStatus: a.cfg.Orders.DeliveredStatus,
		}, a.log.With().Str("component", "orders").Logger()),
		Statistics: service.NewStatisticsService(orders, transporters, authService, a.log.With().Str("component", "statistics").Logger()),
	}

	e := api.NewRouter(svc, a.log, api.RouterOptions{
		Sentry: sentryEnabled,
		Readiness: []handlers.Dependency{
			{Name: "postgres", Check: func(ctx context.Context) error { return postgres.Ping(ctx, a.db) }},
			{Name: "mongodb", Check: func(ctx context.Context) error { return a.mongo.Ping(ctx, nil) }},
			{Name: "redis", Check: func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }},
		},
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// Requests are done publishing; let the workers flush what is queued.
		stopWorkers()
		dispatcher.Wait()
		a.log.Info().Msg("audit workers stopped")
		return err
	})

	return g.Wait()
}

func initSentry(a *app) bool {
	if a.cfg.SentryDSN == "" {
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              a.cfg.SentryDSN,
		Environment:      a.cfg.Env,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	}); err != nil {
		a.log.Error().Err(err).Msg("sentry init failed")
		return false
	}
	return true
}
