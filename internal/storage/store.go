// Package storage provides the entity store implementations backing the
// projection engine: an in-memory store for tests, a Postgres store for
// durable state, a ClickHouse archive for append-only event records, and a
// Redis checkpoint repository for log delivery progress.
package storage

import (
	"context"

	"github.com/cask-indexer/internal/models"
)

// Store is the entity store consumed by the projection engine. Lookups are
// by primary key only; Get methods return (nil, nil) when the entity does
// not exist. Writes are last-write-wins: processing is serialized per chain,
// so no concurrent writer exists.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PutUser(ctx context.Context, user *models.User) error

	GetConsumer(ctx context.Context, id string) (*models.Consumer, error)
	PutConsumer(ctx context.Context, consumer *models.Consumer) error

	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	PutProvider(ctx context.Context, provider *models.Provider) error

	GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	PutPlan(ctx context.Context, plan *models.SubscriptionPlan) error

	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	PutSubscription(ctx context.Context, subscription *models.Subscription) error

	GetDiscount(ctx context.Context, id string) (*models.Discount, error)
	PutDiscount(ctx context.Context, discount *models.Discount) error

	GetDCA(ctx context.Context, id string) (*models.DCA, error)
	PutDCA(ctx context.Context, dca *models.DCA) error

	GetP2P(ctx context.Context, id string) (*models.P2P, error)
	PutP2P(ctx context.Context, p2p *models.P2P) error

	GetChainlinkTopup(ctx context.Context, id string) (*models.ChainlinkTopup, error)
	PutChainlinkTopup(ctx context.Context, topup *models.ChainlinkTopup) error

	GetCask(ctx context.Context) (*models.Cask, error)
	PutCask(ctx context.Context, cask *models.Cask) error

	GetMetric(ctx context.Context, id string) (*models.Metric, error)
	PutMetric(ctx context.Context, metric *models.Metric) error

	// Append-only event records. Re-appending the same record id during a
	// replay overwrites the identical row rather than erroring.
	AppendTransaction(ctx context.Context, txn *models.Transaction) error
	AppendSubscriptionEvent(ctx context.Context, ev *models.SubscriptionEvent) error
	AppendDCAEvent(ctx context.Context, ev *models.DCAEvent) error
	AppendChainlinkTopupEvent(ctx context.Context, ev *models.ChainlinkTopupEvent) error
}
