package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"addisstay/internal/infra/config"
	"addisstay/internal/infra/fixtures"
	ginserver "addisstay/internal/infra/http/gin"
	"addisstay/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	metrics := obs.NewMetrics()

	app, err := buildApplication(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	fixturesPath := cfg.FixturesPath
	if fixturesPath == "" {
		fixturesPath = fixtures.DefaultPath()
	}
	summary, err := app.fixtures.LoadFile(ctx, fixturesPath)
	if err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	} else if summary.Hosts+summary.Listings > 0 {
		logger.Info("listing fixtures loaded", "hosts", summary.Hosts, "listings", summary.Listings, "path", fixturesPath)
	}

	app.startBackground(ctx)

	server := ginserver.NewServer(
		ginserver.Options{Env: cfg.Env, Addr: cfg.HTTPAddr, CORSOrigins: cfg.CORSOrigins},
		obs.Middleware{Logger: logger, Metrics: metrics},
		app.health,
		app.handlers,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "messaging", cfg.MessagingStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
		app.wait()
		app.close()
		os.Exit(1)
	}
	app.wait()
	logger.Info("HTTP server stopped")
}
