package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/models"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user, err := store.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Nil(t, user)

	cask, err := store.GetCask(ctx)
	require.NoError(t, err)
	assert.Nil(t, cask)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := models.NewUser("0xabc", 1000)
	user.DepositCount = 1
	require.NoError(t, store.PutUser(ctx, user))

	// Mutating a loaded entity must not leak into the store
	loaded, err := store.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	loaded.DepositCount = 99

	reloaded, err := store.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.DepositCount)

	// Mutating the original after Put must not either
	user.DepositCount = 42
	reloaded, err = store.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.DepositCount)
}

func TestMemoryStoreAppendOverwritesSameID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	txn := &models.Transaction{
		ID:        "0xdead-1",
		Type:      "AssetDeposited",
		Timestamp: 1000,
		Consumer:  "0xabc",
		Amount:    decimal.NewFromInt(5),
	}
	require.NoError(t, store.AppendTransaction(ctx, txn))
	require.NoError(t, store.AppendTransaction(ctx, txn))

	assert.Equal(t, 1, store.TransactionCount())
	got, ok := store.Transaction("0xdead-1")
	require.True(t, ok)
	assert.Equal(t, "AssetDeposited", got.Type)
	assert.True(t, decimal.NewFromInt(5).Equal(got.Amount))
}
