// Package main provides the read API entry point, serving entity lookups
// over the store the indexer writes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cask-indexer/internal/api"
	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/storage"
	"github.com/cask-indexer/internal/types"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("failed to load configuration")
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	log := logging.GetGlobalLogger()
	log.Info("cask API server starting")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer postgres.Close()

	// The server reads one chain's projection; default to the first
	// enabled chain.
	chainID := types.ChainEthereum
	if len(cfg.Chains.Enabled) > 0 {
		chainID = cfg.Chains.Enabled[0]
	}
	store := storage.NewPostgresStore(postgres, chainID)

	server := api.NewServer(&cfg.Server, store, log)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithError(err).Fatal("server failed")
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}
