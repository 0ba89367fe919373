package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketclock/internal/config"
	"marketclock/internal/httpapi"
	"marketclock/internal/i18n"
	"marketclock/internal/poller"
	"marketclock/internal/session"
	"marketclock/internal/store"
	"marketclock/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/marketclock.yaml"
	if p := os.Getenv("MARKETCLOCK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	markets, err := cfg.MarketTable()
	if err != nil {
		log.Fatalf("loading market table: %v", err)
	}

	// Transition journal and day archive are optional; an empty path
	// disables the corresponding endpoints.
	var journal store.TransitionStore
	if cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening transition journal: %v", err)
		}
		defer db.Close()
		journal = db
	}
	var archive *store.ParquetStore
	if cfg.Storage.DataDir != "" {
		archive = store.NewParquetStore(cfg.Storage.DataDir)
	}

	calc := session.New(session.NewZoneResolver())
	catalog := i18n.NewCatalog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := httpapi.NewHub()
	go hub.Run(ctx)

	srv := httpapi.NewServer(markets, calc, catalog, journal, archive, hub, cfg.Clock.Locale(), logger)

	// Roll completed journal days into the archive at day rollover.
	var opts []poller.Option
	if journal != nil && archive != nil {
		opts = append(opts, poller.WithArchiver(store.NewDayArchiver(journal, archive)))
	}

	p := poller.New(
		poller.Config{Interval: cfg.Clock.Interval()},
		markets,
		calc,
		srv,
		journal,
		logger,
		opts...,
	)

	if err := p.Start(ctx); err != nil {
		log.Fatalf("starting poller: %v", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("market clock server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down market clock server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Error("stopping poller", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
