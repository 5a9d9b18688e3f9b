package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realaddress_backend/internal/addresses"
	"realaddress_backend/internal/countries"
	"realaddress_backend/internal/geocode"
	apphttp "realaddress_backend/internal/http"
	"realaddress_backend/internal/http/router"
	"realaddress_backend/internal/persona"
	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/metrics"
	"realaddress_backend/platform/validator"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	collector, err := metrics.New(nil)
	if err != nil {
		log.Error("failed to register metrics", "error", err)
		panic("failed to register metrics: " + err.Error())
	}

	table, err := countries.Load()
	if err != nil {
		log.Error("failed to load country table", "error", err)
		panic("failed to load country table: " + err.Error())
	}
	log.Info("country table loaded", "codes", len(table.Codes()), "names", table.Len())

	personas, err := persona.New(table, log, collector)
	if err != nil {
		log.Error("failed to load persona data", "error", err)
		panic("failed to load persona data: " + err.Error())
	}

	// One client per process: its throttle is the shared provider budget.
	nominatim := geocode.NewClient(cfg, log, collector)
	log.Info("geocode client ready", "url", cfg.GetNominatimURL(), "min_interval", nominatim.Interval())

	resolver := geocode.NewResolver(nominatim, personas, log)
	resolver.SetMetrics(collector)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	addressesModule := addresses.NewModule(table, resolver, personas, validator.New(), cfg, log)

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Metrics: collector,
		Modules: []apphttp.Module{
			addressesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
		// A full cascade can take several throttled provider calls.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
