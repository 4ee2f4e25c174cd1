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

func (p *Projector) appendDCARecord(ctx context.Context, rec *models.DCAEvent) error {
	if err := p.store.AppendDCAEvent(ctx, rec); err != nil {
		return caskerrors.NewStore("dca_event", rec.ID, err)
	}
	return nil
}

func (p *Projector) newDCARecord(hdr *events.Header, typ string, dcaID common.Hash, user common.Address) *models.DCAEvent {
	return &models.DCAEvent{
		ID:        hdr.RecordID(),
		Type:      typ,
		DCAID:     hashID(dcaID),
		TxnID:     hdr.TxHash.Hex(),
		Timestamp: hdr.Timestamp,
		User:      addrID(user),
	}
}

// readDCA reads the schedule back from the contract. A reverted call or a
// zero user address means the schedule is not on chain yet.
func (p *Projector) readDCA(ctx context.Context, hdr *events.Header, dcaID common.Hash) (*chain.DCAInfo, bool, error) {
	info, err := p.reader.GetDCA(ctx, hdr.Contract, dcaID)
	if err != nil {
		if caskerrors.IsNotFound(err) {
			p.log.WithField("dcaId", hashID(dcaID)).
				WithField("txHash", hdr.TxHash.Hex()).
				Warn("dca not readable on chain, skipping projection")
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.User == (common.Address{}) {
		p.log.WithField("dcaId", hashID(dcaID)).
			WithField("txHash", hdr.TxHash.Hex()).
			Warn("dca has no user on chain, skipping projection")
		return nil, false, nil
	}
	return info, true, nil
}

func (p *Projector) loadDCA(ctx context.Context, id string) (*models.DCA, error) {
	dca, err := p.store.GetDCA(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("dca", id, err)
	}
	return dca, nil
}

func (p *Projector) saveDCA(ctx context.Context, dca *models.DCA) error {
	if err := p.store.PutDCA(ctx, dca); err != nil {
		return caskerrors.NewStore("dca", dca.ID, err)
	}
	return nil
}

func (p *Projector) adjustActiveDCACount(ctx context.Context, user common.Address, ts int64, delta int64) error {
	consumer, err := p.findOrCreateConsumer(ctx, addrID(user), ts)
	if err != nil {
		return err
	}
	consumer.ActiveDCACount += delta
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}
	return nil
}

func (p *Projector) handleDCACreated(ctx context.Context, ev *events.DCACreated) error {
	rec := p.newDCARecord(ev.Hdr(), "DCACreated", ev.DCAID, ev.User)
	rec.AssetAddress = addrID(ev.OutputAsset)
	rec.Amount = units.ScaleDown(ev.Amount, units.VaultDecimals)
	if err := p.appendDCARecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readDCA(ctx, ev.Hdr(), ev.DCAID)
	if err != nil || !ok {
		return err
	}

	dca, err := p.findOrCreateDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	dca.User = addrID(info.User)
	dca.To = addrID(info.To)
	dca.Router = addrID(info.Router)
	dca.PriceFeed = addrID(info.PriceFeed)
	if len(info.Path) > 0 {
		dca.InputAsset = addrID(info.Path[0])
		dca.OutputAsset = addrID(info.Path[len(info.Path)-1])
	}
	dca.Amount = units.ScaleDown(info.Amount, units.VaultDecimals)
	dca.TotalAmount = units.ScaleDown(info.TotalAmount, units.VaultDecimals)
	dca.MinPrice = decimal.NewFromBigInt(info.MinPrice, 0)
	dca.MaxPrice = decimal.NewFromBigInt(info.MaxPrice, 0)
	dca.MaxSlippageBps = info.MaxSlippageBps.Int64()
	dca.Period = int64(info.Period)
	dca.CreatedAt = int64(info.CreatedAt)
	dca.ProcessAt = int64(info.ProcessAt)
	dca.Status = types.FlowActive
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.User), ev.Timestamp)
	if err != nil {
		return err
	}
	consumer.TotalDCACount++
	consumer.ActiveDCACount++
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}

	return p.incrementMetric(ctx, "dca.created", ev.Timestamp)
}

func (p *Projector) handleDCAPaused(ctx context.Context, ev *events.DCAPaused) error {
	if err := p.appendDCARecord(ctx, p.newDCARecord(ev.Hdr(), "DCAPaused", ev.DCAID, ev.User)); err != nil {
		return err
	}

	dca, err := p.loadDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	if dca == nil {
		p.log.WithField("dcaId", hashID(ev.DCAID)).Warn("pause for unknown dca")
		return nil
	}

	info, ok, err := p.readDCA(ctx, ev.Hdr(), ev.DCAID)
	if err != nil || !ok {
		return err
	}

	dca.Status = types.DCAStatusFromCode(info.Status)
	dca.PausedAt = ev.Timestamp
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}
	return p.adjustActiveDCACount(ctx, ev.User, ev.Timestamp, -1)
}

func (p *Projector) handleDCAResumed(ctx context.Context, ev *events.DCAResumed) error {
	if err := p.appendDCARecord(ctx, p.newDCARecord(ev.Hdr(), "DCAResumed", ev.DCAID, ev.User)); err != nil {
		return err
	}

	dca, err := p.loadDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	if dca == nil {
		p.log.WithField("dcaId", hashID(ev.DCAID)).Warn("resume for unknown dca")
		return nil
	}

	info, ok, err := p.readDCA(ctx, ev.Hdr(), ev.DCAID)
	if err != nil || !ok {
		return err
	}

	dca.Status = types.DCAStatusFromCode(info.Status)
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}
	return p.adjustActiveDCACount(ctx, ev.User, ev.Timestamp, 1)
}

func (p *Projector) handleDCASkipped(ctx context.Context, ev *events.DCASkipped) error {
	rec := p.newDCARecord(ev.Hdr(), "DCASkipped", ev.DCAID, ev.User)
	rec.SkipReason = types.DCASkipReasonFromCode(ev.SkipReason)
	if err := p.appendDCARecord(ctx, rec); err != nil {
		return err
	}

	dca, err := p.loadDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	if dca == nil {
		p.log.WithField("dcaId", hashID(ev.DCAID)).Warn("skip for unknown dca")
		return nil
	}

	info, ok, err := p.readDCA(ctx, ev.Hdr(), ev.DCAID)
	if err != nil || !ok {
		return err
	}

	dca.Status = types.DCAStatusFromCode(info.Status)
	dca.NumSkips = info.NumSkips.Int64()
	dca.ProcessAt = int64(info.ProcessAt)
	dca.LastSkippedAt = ev.Timestamp
	return p.saveDCA(ctx, dca)
}

func (p *Projector) handleDCAProcessed(ctx context.Context, ev *events.DCAProcessed) error {
	rec := p.newDCARecord(ev.Hdr(), "DCAProcessed", ev.DCAID, ev.User)
	rec.Amount = units.ScaleDown(ev.Amount, units.VaultDecimals)
	rec.BuyQty = decimal.NewFromBigInt(ev.BuyQty, 0)
	rec.Fee = units.ScaleDown(ev.Fee, units.VaultDecimals)
	if err := p.appendDCARecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readDCA(ctx, ev.Hdr(), ev.DCAID)
	if err != nil || !ok {
		return err
	}

	dca, err := p.findOrCreateDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	dca.Status = types.DCAStatusFromCode(info.Status)
	dca.NumBuys = info.NumBuys.Int64()
	dca.NumSkips = info.NumSkips.Int64()
	dca.ProcessAt = int64(info.ProcessAt)
	dca.CurrentAmount = units.ScaleDown(info.CurrentAmount, units.VaultDecimals)
	dca.CurrentFees = dca.CurrentFees.Add(units.ScaleDown(ev.Fee, units.VaultDecimals))
	dca.CurrentQty = decimal.NewFromBigInt(info.CurrentQty, 0)
	dca.LastProcessedAt = ev.Timestamp
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}

	return p.incrementMetric(ctx, "dca.processed", ev.Timestamp)
}

func (p *Projector) handleDCACanceled(ctx context.Context, ev *events.DCACanceled) error {
	if err := p.appendDCARecord(ctx, p.newDCARecord(ev.Hdr(), "DCACanceled", ev.DCAID, ev.User)); err != nil {
		return err
	}

	dca, err := p.loadDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	if dca == nil {
		p.log.WithField("dcaId", hashID(ev.DCAID)).Warn("cancel for unknown dca")
		return nil
	}

	dca.Status = types.FlowCanceled
	dca.CanceledAt = ev.Timestamp
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}
	return p.adjustActiveDCACount(ctx, ev.User, ev.Timestamp, -1)
}

func (p *Projector) handleDCACompleted(ctx context.Context, ev *events.DCACompleted) error {
	if err := p.appendDCARecord(ctx, p.newDCARecord(ev.Hdr(), "DCACompleted", ev.DCAID, ev.User)); err != nil {
		return err
	}

	dca, err := p.loadDCA(ctx, hashID(ev.DCAID))
	if err != nil {
		return err
	}
	if dca == nil {
		p.log.WithField("dcaId", hashID(ev.DCAID)).Warn("complete for unknown dca")
		return nil
	}

	dca.Status = types.FlowComplete
	dca.CompletedAt = ev.Timestamp
	if err := p.saveDCA(ctx, dca); err != nil {
		return err
	}
	return p.adjustActiveDCACount(ctx, ev.User, ev.Timestamp, -1)
}
