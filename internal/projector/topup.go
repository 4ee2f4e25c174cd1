package projector

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/chain"
	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/types"
	"github.com/cask-indexer/internal/units"
)

// topupRecordParams is the event parameter set every top-up log carries.
type topupRecordParams struct {
	TopupID   common.Hash
	User      common.Address
	TargetID  string
	Registry  common.Address
	TopupType uint8
}

func (p *Projector) newTopupRecord(hdr *events.Header, typ string, params topupRecordParams) *models.ChainlinkTopupEvent {
	return &models.ChainlinkTopupEvent{
		ID:        hdr.RecordID(),
		Type:      typ,
		TopupID:   hashID(params.TopupID),
		TargetID:  params.TargetID,
		Registry:  addrID(params.Registry),
		TopupType: types.TopupTypeFromCode(params.TopupType),
		TxnID:     hdr.TxHash.Hex(),
		Timestamp: hdr.Timestamp,
		User:      addrID(params.User),
	}
}

func (p *Projector) appendTopupRecord(ctx context.Context, rec *models.ChainlinkTopupEvent) error {
	if err := p.store.AppendChainlinkTopupEvent(ctx, rec); err != nil {
		return caskerrors.NewStore("chainlink_topup_event", rec.ID, err)
	}
	return nil
}

func (p *Projector) readTopup(ctx context.Context, hdr *events.Header, topupID common.Hash) (*chain.TopupInfo, bool, error) {
	info, err := p.reader.GetChainlinkTopup(ctx, hdr.Contract, topupID)
	if err != nil {
		if caskerrors.IsNotFound(err) {
			p.log.WithField("chainlinkTopupId", hashID(topupID)).
				WithField("txHash", hdr.TxHash.Hex()).
				Warn("chainlink topup not readable on chain, skipping projection")
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.User == (common.Address{}) {
		p.log.WithField("chainlinkTopupId", hashID(topupID)).
			WithField("txHash", hdr.TxHash.Hex()).
			Warn("chainlink topup has no user on chain, skipping projection")
		return nil, false, nil
	}
	return info, true, nil
}

func (p *Projector) saveTopup(ctx context.Context, topup *models.ChainlinkTopup) error {
	if err := p.store.PutChainlinkTopup(ctx, topup); err != nil {
		return caskerrors.NewStore("chainlink_topup", topup.ID, err)
	}
	return nil
}

func (p *Projector) adjustActiveTopupCount(ctx context.Context, user common.Address, ts int64, delta int64) error {
	consumer, err := p.findOrCreateConsumer(ctx, addrID(user), ts)
	if err != nil {
		return err
	}
	consumer.ActiveChainlinkTopupCount += delta
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}
	return nil
}

func (p *Projector) handleChainlinkTopupCreated(ctx context.Context, ev *events.ChainlinkTopupCreated) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupCreated", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.User = addrID(info.User)
	topup.LowBalance = decimal.NewFromBigInt(info.LowBalance, 0)
	topup.TopupAmount = units.ScaleDown(info.TopupAmount, units.VaultDecimals)
	topup.Registry = addrID(info.Registry)
	topup.TargetID = info.TargetId.String()
	topup.TopupType = types.TopupTypeFromCode(info.TopupType)
	topup.CreatedAt = int64(info.CreatedAt)
	topup.Status = types.TopupStatusFromCode(info.Status)
	if err := p.saveTopup(ctx, topup); err != nil {
		return err
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.User), ev.Timestamp)
	if err != nil {
		return err
	}
	consumer.TotalChainlinkTopupCount++
	consumer.ActiveChainlinkTopupCount++
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}

	return p.incrementMetric(ctx, "cltu.created", ev.Timestamp)
}

func (p *Projector) handleChainlinkTopupPaused(ctx context.Context, ev *events.ChainlinkTopupPaused) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupPaused", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.Status = types.TopupStatusFromCode(info.Status)
	topup.PausedAt = ev.Timestamp
	if err := p.saveTopup(ctx, topup); err != nil {
		return err
	}
	return p.adjustActiveTopupCount(ctx, ev.User, ev.Timestamp, -1)
}

func (p *Projector) handleChainlinkTopupResumed(ctx context.Context, ev *events.ChainlinkTopupResumed) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupResumed", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.Status = types.TopupStatusFromCode(info.Status)
	topup.NumSkips = info.NumSkips.Int64()
	if err := p.saveTopup(ctx, topup); err != nil {
		return err
	}
	return p.adjustActiveTopupCount(ctx, ev.User, ev.Timestamp, 1)
}

func (p *Projector) handleChainlinkTopupSkipped(ctx context.Context, ev *events.ChainlinkTopupSkipped) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupSkipped", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	rec.SkipReason = types.TopupSkipReasonFromCode(ev.SkipReason)
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.Status = types.TopupStatusFromCode(info.Status)
	topup.NumSkips = info.NumSkips.Int64()
	topup.LastSkippedAt = ev.Timestamp
	return p.saveTopup(ctx, topup)
}

func (p *Projector) handleChainlinkTopupProcessed(ctx context.Context, ev *events.ChainlinkTopupProcessed) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupProcessed", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	rec.Amount = units.ScaleDown(ev.Amount, units.VaultDecimals)
	rec.BuyQty = decimal.NewFromBigInt(ev.BuyQty, 0)
	rec.Fee = units.ScaleDown(ev.Fee, units.VaultDecimals)
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.Status = types.TopupStatusFromCode(info.Status)
	topup.NumTopups = info.NumTopups.Int64()
	topup.NumSkips = info.NumSkips.Int64()
	topup.CurrentAmount = units.ScaleDown(info.CurrentAmount, units.VaultDecimals)
	topup.CurrentBuyQty = decimal.NewFromBigInt(info.CurrentBuyQty, 0)
	topup.CurrentFees = topup.CurrentFees.Add(units.ScaleDown(ev.Fee, units.VaultDecimals))
	topup.LastProcessedAt = ev.Timestamp
	if err := p.saveTopup(ctx, topup); err != nil {
		return err
	}

	return p.incrementMetric(ctx, "cltu.processed", ev.Timestamp)
}

func (p *Projector) handleChainlinkTopupCanceled(ctx context.Context, ev *events.ChainlinkTopupCanceled) error {
	rec := p.newTopupRecord(ev.Hdr(), "ChainlinkTopupCanceled", topupRecordParams{
		TopupID:   ev.TopupID,
		User:      ev.User,
		TargetID:  ev.TargetID.String(),
		Registry:  ev.Registry,
		TopupType: ev.TopupType,
	})
	if err := p.appendTopupRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readTopup(ctx, ev.Hdr(), ev.TopupID)
	if err != nil || !ok {
		return err
	}

	topup, err := p.findOrCreateChainlinkTopup(ctx, hashID(ev.TopupID))
	if err != nil {
		return err
	}
	topup.Status = types.TopupStatusFromCode(info.Status)
	topup.CanceledAt = ev.Timestamp
	if err := p.saveTopup(ctx, topup); err != nil {
		return err
	}
	return p.adjustActiveTopupCount(ctx, ev.User, ev.Timestamp, -1)
}
