package storage

import (
	"context"
	"fmt"

	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/types"
)

// ArchivingStore tees append-only event records into ClickHouse while
// delegating everything, entity state included, to the primary store.
// Archive writes happen after the primary write succeeds; an archive
// failure fails the append so the worker retries the whole block.
type ArchivingStore struct {
	Store
	ch    *ClickHouseDB
	chain types.ChainID
}

// NewArchivingStore wraps primary with a ClickHouse event archive.
func NewArchivingStore(primary Store, ch *ClickHouseDB, chain types.ChainID) *ArchivingStore {
	return &ArchivingStore{Store: primary, ch: ch, chain: chain}
}

func (s *ArchivingStore) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := s.Store.AppendTransaction(ctx, txn); err != nil {
		return err
	}
	err := s.ch.Exec(ctx, `
		INSERT INTO archive_transactions
			(chain, id, type, timestamp, consumer, provider, asset_address, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.chain), txn.ID, txn.Type, txn.Timestamp, txn.Consumer,
		txn.Provider, txn.AssetAddress, txn.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to archive transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (s *ArchivingStore) AppendSubscriptionEvent(ctx context.Context, ev *models.SubscriptionEvent) error {
	if err := s.Store.AppendSubscriptionEvent(ctx, ev); err != nil {
		return err
	}
	err := s.ch.Exec(ctx, `
		INSERT INTO archive_subscription_events
			(chain, id, type, txn_id, timestamp, consumer, provider, subscription_id, plan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.chain), ev.ID, ev.Type, ev.TxnID, ev.Timestamp, ev.Consumer,
		ev.Provider, ev.SubscriptionID, ev.PlanID)
	if err != nil {
		return fmt.Errorf("failed to archive subscription event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *ArchivingStore) AppendDCAEvent(ctx context.Context, ev *models.DCAEvent) error {
	if err := s.Store.AppendDCAEvent(ctx, ev); err != nil {
		return err
	}
	err := s.ch.Exec(ctx, `
		INSERT INTO archive_dca_events
			(chain, id, type, dca_id, txn_id, timestamp, user_id, asset_address,
			 amount, buy_qty, fee, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.chain), ev.ID, ev.Type, ev.DCAID, ev.TxnID, ev.Timestamp,
		ev.User, ev.AssetAddress, ev.Amount.String(), ev.BuyQty.String(),
		ev.Fee.String(), string(ev.SkipReason))
	if err != nil {
		return fmt.Errorf("failed to archive dca event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *ArchivingStore) AppendChainlinkTopupEvent(ctx context.Context, ev *models.ChainlinkTopupEvent) error {
	if err := s.Store.AppendChainlinkTopupEvent(ctx, ev); err != nil {
		return err
	}
	err := s.ch.Exec(ctx, `
		INSERT INTO archive_chainlink_topup_events
			(chain, id, type, topup_id, target_id, registry, topup_type, txn_id,
			 timestamp, user_id, amount, buy_qty, fee, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.chain), ev.ID, ev.Type, ev.TopupID, ev.TargetID, ev.Registry,
		string(ev.TopupType), ev.TxnID, ev.Timestamp, ev.User,
		ev.Amount.String(), ev.BuyQty.String(), ev.Fee.String(), string(ev.SkipReason))
	if err != nil {
		return fmt.Errorf("failed to archive chainlink topup event %s: %w", ev.ID, err)
	}
	return nil
}
