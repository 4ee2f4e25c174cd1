package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/chain"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/projector"
	"github.com/cask-indexer/internal/storage"
	"github.com/cask-indexer/internal/types"
)

func newTestCheckpoints(t *testing.T) *storage.RedisCheckpoints {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisCheckpointsFromClient(client)
}

func newTestWorkerConfig(t *testing.T) *Config {
	t.Helper()
	client, err := chain.NewClient(nil)
	require.NoError(t, err)
	decoder, err := NewDecoder(testContracts)
	require.NoError(t, err)
	log := logging.NewLogger(logging.LevelFatal, logging.FormatText)
	return &Config{
		Chain:       types.ChainEthereum,
		Client:      client,
		Decoder:     decoder,
		Projector:   projector.New(storage.NewMemoryStore(), nil, log),
		Checkpoints: newTestCheckpoints(t),
		Logger:      log,
	}
}

func TestNewWorkerValidatesConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := newTestWorkerConfig(t)
	cfg.Client = nil
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = newTestWorkerConfig(t)
	cfg.Decoder = nil
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = newTestWorkerConfig(t)
	cfg.Checkpoints = nil
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNewWorkerAppliesDefaults(t *testing.T) {
	w, err := New(newTestWorkerConfig(t))
	require.NoError(t, err)
	assert.Equal(t, defaultPollInterval, w.pollInterval)
	assert.Equal(t, uint64(defaultMaxBlocksPerPoll), w.maxBlocksPerPoll)

	cfg := newTestWorkerConfig(t)
	cfg.PollInterval = 3 * time.Second
	cfg.MaxBlocksPerPoll = 50
	w, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, w.pollInterval)
	assert.Equal(t, uint64(50), w.maxBlocksPerPoll)
}

func TestWorkerStatusBeforeStart(t *testing.T) {
	w, err := New(newTestWorkerConfig(t))
	require.NoError(t, err)

	status := w.GetStatus()
	assert.Equal(t, types.ChainEthereum, status.Chain)
	assert.False(t, status.Running)
	assert.Zero(t, status.LastBlockProcessed)
}

func TestResumePointPrefersCheckpoint(t *testing.T) {
	cfg := newTestWorkerConfig(t)
	cfg.StartBlock = 100
	w, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cfg.Checkpoints.SetLastBlock(ctx, types.ChainEthereum, 5000))

	last, err := w.resumePoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), last)
}

func TestResumePointUsesStartBlock(t *testing.T) {
	cfg := newTestWorkerConfig(t)
	cfg.StartBlock = 100
	w, err := New(cfg)
	require.NoError(t, err)

	last, err := w.resumePoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(99), last)
}
