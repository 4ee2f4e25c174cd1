// Package main provides the indexer entry point: one log worker per enabled
// chain, projecting contract events into the entity store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cask-indexer/internal/chain"
	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/projector"
	"github.com/cask-indexer/internal/storage"
	"github.com/cask-indexer/internal/worker"
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
	log.Info("cask indexer starting")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer postgres.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := postgres.ApplySchema(ctx); err != nil {
		log.WithError(err).Fatal("failed to apply schema")
	}

	var clickhouse *storage.ClickHouseDB
	if cfg.Database.ClickHouse.Enabled {
		clickhouse, err = storage.NewClickHouseDB(&cfg.Database.ClickHouse)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		defer clickhouse.Close()
		if err := clickhouse.EnsureArchiveTables(ctx); err != nil {
			log.WithError(err).Fatal("failed to create ClickHouse archive tables")
		}
		log.Info("ClickHouse event archive enabled")
	}

	checkpoints, err := storage.NewRedisCheckpoints(&cfg.Database.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer checkpoints.Close()

	log.Info("database connections established")

	var workers []*worker.Worker
	for _, chainID := range cfg.Chains.Enabled {
		chainCfg, ok := cfg.Chains.Chains[chainID]
		if !ok {
			log.WithField("chain", string(chainID)).Warn("skipping chain: no configuration found")
			continue
		}
		if chainCfg.RPCURL == "" {
			log.WithField("chain", string(chainID)).Warn("skipping chain: no RPC endpoint configured")
			continue
		}

		client, err := chain.Dial(chainCfg.RPCURL)
		if err != nil {
			log.WithError(err).WithField("chain", string(chainID)).Fatal("failed to dial RPC")
		}
		defer client.Close()

		decoder, err := worker.NewDecoder(chainCfg.Contracts)
		if err != nil {
			log.WithError(err).WithField("chain", string(chainID)).Fatal("failed to build decoder")
		}

		var store storage.Store = storage.NewPostgresStore(postgres, chainID)
		if clickhouse != nil {
			store = storage.NewArchivingStore(store, clickhouse, chainID)
		}

		w, err := worker.New(&worker.Config{
			Chain:        chainID,
			Client:       client,
			Decoder:      decoder,
			Projector:    projector.New(store, client, log),
			Checkpoints:  checkpoints,
			PollInterval: chainCfg.PollInterval,
			StartBlock:   chainCfg.StartBlock,
			RPCRateLimit: chainCfg.RPCRateLimit,
			Logger:       log,
		})
		if err != nil {
			log.WithError(err).WithField("chain", string(chainID)).Fatal("failed to build worker")
		}

		if err := w.Start(ctx); err != nil {
			log.WithError(err).WithField("chain", string(chainID)).Fatal("failed to start worker")
		}
		workers = append(workers, w)
	}

	if len(workers) == 0 {
		log.Fatal("no chains configured, nothing to index")
	}
	log.WithField("chains", len(workers)).Info("all workers started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down")

	cancel()
	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			w.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("all workers stopped")
	case <-time.After(30 * time.Second):
		log.Warn("shutdown timed out")
	}
}
