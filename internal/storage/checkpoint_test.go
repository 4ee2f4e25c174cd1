package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/types"
)

func setupTestCheckpoints(t *testing.T) *RedisCheckpoints {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCheckpointsFromClient(client)
}

func TestCheckpointsRoundTrip(t *testing.T) {
	cp := setupTestCheckpoints(t)
	ctx := context.Background()

	block, found, err := cp.LastBlock(ctx, types.ChainEthereum)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, uint64(0), block)

	require.NoError(t, cp.SetLastBlock(ctx, types.ChainEthereum, 15000000))

	block, found, err = cp.LastBlock(ctx, types.ChainEthereum)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(15000000), block)

	// Advancing overwrites
	require.NoError(t, cp.SetLastBlock(ctx, types.ChainEthereum, 15000001))
	block, _, err = cp.LastBlock(ctx, types.ChainEthereum)
	require.NoError(t, err)
	assert.Equal(t, uint64(15000001), block)
}

func TestCheckpointsPerChainIsolation(t *testing.T) {
	cp := setupTestCheckpoints(t)
	ctx := context.Background()

	require.NoError(t, cp.SetLastBlock(ctx, types.ChainEthereum, 100))
	require.NoError(t, cp.SetLastBlock(ctx, types.ChainPolygon, 200))

	ethBlock, found, err := cp.LastBlock(ctx, types.ChainEthereum)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(100), ethBlock)

	polyBlock, found, err := cp.LastBlock(ctx, types.ChainPolygon)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(200), polyBlock)

	_, found, err = cp.LastBlock(ctx, types.ChainAvalanche)
	require.NoError(t, err)
	assert.False(t, found)
}
