// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"venuehub/internal/allocation"
	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/config"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
	"venuehub/internal/observability"
	"venuehub/internal/stats"
	"venuehub/internal/storage/memory"
	"venuehub/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(ctx, "venuehub", cfg.Tracing.Endpoint)
		if err != nil {
			logger.Fatal("failed to init tracing", zap.Error(err))
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("trace shutdown", zap.Error(err))
			}
		}()
	}

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer cleanup()

	clk := clock.NewSystem()

	venueSvc := calendar.NewService(store, store, clk)
	materialSvc := inventory.NewService(store, clk)
	identitySvc := identity.NewService(store, []byte(cfg.JWTSecret), clk)
	applicationSvc := application.NewService(store, venueSvc, materialSvc, clk)
	coordinator := allocation.NewCoordinator(store, venueSvc, materialSvc, clk, logger,
		allocation.WithLockTimeout(time.Duration(cfg.LockTimeout)))
	statsSvc := stats.NewService(venueSvc, materialSvc, store, clk)

	router := buildRouter(
		identitySvc,
		identity.NewHandler(identitySvc),
		calendar.NewHandler(venueSvc),
		inventory.NewHandler(materialSvc),
		application.NewHandler(applicationSvc),
		allocation.NewHandler(coordinator),
		stats.NewHandler(statsSvc),
	)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting API server", zap.String("addr", cfg.Listen), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// store is the single backend behind every domain store interface.
type store interface {
	calendar.VenueStore
	calendar.IntervalStore
	inventory.MaterialStore
	identity.UserStore
	application.Store
}

func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	if cfg.Store == "postgres" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), func() { db.Close() }, nil
	}
	return memory.NewStore(), func() {}, nil
}

func buildRouter(
	identitySvc identity.Service,
	identityHandler *identity.Handler,
	venueHandler *calendar.Handler,
	materialHandler *inventory.Handler,
	applicationHandler *application.Handler,
	allocationHandler *allocation.Handler,
	statsHandler *stats.Handler,
) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", identityHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireAuth(identitySvc))

			r.Route("/venues", func(r chi.Router) {
				venueHandler.Register(r)
				r.Group(func(r chi.Router) {
					r.Use(identity.RequireRole(identity.RoleAdmin))
					venueHandler.RegisterAdmin(r)
				})
			})

			r.Route("/materials", func(r chi.Router) {
				materialHandler.Register(r)
				r.Group(func(r chi.Router) {
					r.Use(identity.RequireRole(identity.RoleAdmin))
					materialHandler.RegisterAdmin(r)
				})
			})

			r.Route("/applications", func(r chi.Router) {
				applicationHandler.Register(r)
				allocationHandler.Register(r)
			})

			r.Route("/stats", statsHandler.Register)

			r.Route("/review", func(r chi.Router) {
				r.Use(identity.RequireRole(identity.RoleReviewer, identity.RoleAdmin))
				applicationHandler.RegisterReview(r)
				allocationHandler.RegisterReview(r)
				statsHandler.RegisterReview(r)
			})
		})
	})

	return r
}
