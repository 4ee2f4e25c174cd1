package projector

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cask-indexer/internal/chain"
	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/types"
	"github.com/cask-indexer/internal/units"
)

// P2P lifecycle activity shares the vault transaction record table; the
// schedule id is not part of the record, only the acting user and amount.
func (p *Projector) newP2PRecord(hdr *events.Header, typ string, user common.Address) *models.Transaction {
	return &models.Transaction{
		ID:        hdr.RecordID(),
		Type:      typ,
		Timestamp: hdr.Timestamp,
		Consumer:  addrID(user),
	}
}

func (p *Projector) appendP2PRecord(ctx context.Context, rec *models.Transaction) error {
	if err := p.store.AppendTransaction(ctx, rec); err != nil {
		return caskerrors.NewStore("transaction", rec.ID, err)
	}
	return nil
}

func (p *Projector) readP2P(ctx context.Context, hdr *events.Header, p2pID common.Hash) (*chain.P2PInfo, bool, error) {
	info, err := p.reader.GetP2P(ctx, hdr.Contract, p2pID)
	if err != nil {
		if caskerrors.IsNotFound(err) {
			p.log.WithField("p2pId", hashID(p2pID)).
				WithField("txHash", hdr.TxHash.Hex()).
				Warn("p2p not readable on chain, skipping projection")
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.User == (common.Address{}) {
		p.log.WithField("p2pId", hashID(p2pID)).
			WithField("txHash", hdr.TxHash.Hex()).
			Warn("p2p has no user on chain, skipping projection")
		return nil, false, nil
	}
	return info, true, nil
}

func (p *Projector) loadP2P(ctx context.Context, id string) (*models.P2P, error) {
	p2p, err := p.store.GetP2P(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("p2p", id, err)
	}
	return p2p, nil
}

func (p *Projector) saveP2P(ctx context.Context, p2p *models.P2P) error {
	if err := p.store.PutP2P(ctx, p2p); err != nil {
		return caskerrors.NewStore("p2p", p2p.ID, err)
	}
	return nil
}

func (p *Projector) adjustActiveP2PCount(ctx context.Context, user common.Address, ts int64, delta int64) error {
	consumer, err := p.findOrCreateConsumer(ctx, addrID(user), ts)
	if err != nil {
		return err
	}
	consumer.ActiveP2PCount += delta
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}
	return nil
}

func (p *Projector) handleP2PCreated(ctx context.Context, ev *events.P2PCreated) error {
	rec := p.newP2PRecord(ev.Hdr(), "P2PCreated", ev.User)
	rec.Amount = units.ScaleDown(ev.Amount, units.VaultDecimals)
	if err := p.appendP2PRecord(ctx, rec); err != nil {
		return err
	}

	info, ok, err := p.readP2P(ctx, ev.Hdr(), ev.P2PID)
	if err != nil || !ok {
		return err
	}

	p2p := models.NewP2P(hashID(ev.P2PID))
	p2p.User = addrID(info.User)
	p2p.To = addrID(info.To)
	p2p.Amount = units.ScaleDown(info.Amount, units.VaultDecimals)
	p2p.TotalAmount = units.ScaleDown(info.TotalAmount, units.VaultDecimals)
	p2p.Period = int64(info.Period)
	p2p.CreatedAt = int64(info.CreatedAt)
	p2p.ProcessAt = int64(info.ProcessAt)
	p2p.Status = types.FlowActive
	if err := p.saveP2P(ctx, p2p); err != nil {
		return err
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.User), ev.Timestamp)
	if err != nil {
		return err
	}
	consumer.TotalP2PCount++
	consumer.ActiveP2PCount++
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}
	return nil
}

func (p *Projector) handleP2PPaused(ctx context.Context, ev *events.P2PPaused) error {
	if err := p.appendP2PRecord(ctx, p.newP2PRecord(ev.Hdr(), "P2PPaused", ev.User)); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("pause for unknown p2p")
		return nil
	}

	info, ok, err := p.readP2P(ctx, ev.Hdr(), ev.P2PID)
	if err != nil || !ok {
		return err
	}

	p2p.Status = types.P2PStatusFromCode(info.Status)
	if err := p.saveP2P(ctx, p2p); err != nil {
		return err
	}
	return p.adjustActiveP2PCount(ctx, ev.User, ev.Timestamp, -1)
}

func (p *Projector) handleP2PResumed(ctx context.Context, ev *events.P2PResumed) error {
	if err := p.appendP2PRecord(ctx, p.newP2PRecord(ev.Hdr(), "P2PResumed", ev.User)); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("resume for unknown p2p")
		return nil
	}

	info, ok, err := p.readP2P(ctx, ev.Hdr(), ev.P2PID)
	if err != nil || !ok {
		return err
	}

	p2p.Status = types.P2PStatusFromCode(info.Status)
	if err := p.saveP2P(ctx, p2p); err != nil {
		return err
	}
	return p.adjustActiveP2PCount(ctx, ev.User, ev.Timestamp, 1)
}

func (p *Projector) handleP2PSkipped(ctx context.Context, ev *events.P2PSkipped) error {
	if err := p.appendP2PRecord(ctx, p.newP2PRecord(ev.Hdr(), "P2PSkipped", ev.User)); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("skip for unknown p2p")
		return nil
	}

	info, ok, err := p.readP2P(ctx, ev.Hdr(), ev.P2PID)
	if err != nil || !ok {
		return err
	}

	p2p.Status = types.P2PStatusFromCode(info.Status)
	p2p.NumSkips = info.NumSkips.Int64()
	return p.saveP2P(ctx, p2p)
}

func (p *Projector) handleP2PProcessed(ctx context.Context, ev *events.P2PProcessed) error {
	rec := p.newP2PRecord(ev.Hdr(), "P2PProcessed", ev.User)
	rec.Amount = units.ScaleDown(ev.Amount, units.VaultDecimals)
	if err := p.appendP2PRecord(ctx, rec); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("process for unknown p2p")
		return nil
	}

	info, ok, err := p.readP2P(ctx, ev.Hdr(), ev.P2PID)
	if err != nil || !ok {
		return err
	}

	p2p.Status = types.P2PStatusFromCode(info.Status)
	p2p.NumPayments = info.NumPayments.Int64()
	p2p.NumSkips = info.NumSkips.Int64()
	p2p.CurrentAmount = units.ScaleDown(info.CurrentAmount, units.VaultDecimals)
	return p.saveP2P(ctx, p2p)
}

func (p *Projector) handleP2PCanceled(ctx context.Context, ev *events.P2PCanceled) error {
	if err := p.appendP2PRecord(ctx, p.newP2PRecord(ev.Hdr(), "P2PCanceled", ev.User)); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("cancel for unknown p2p")
		return nil
	}

	p2p.Status = types.FlowCanceled
	if err := p.saveP2P(ctx, p2p); err != nil {
		return err
	}
	return p.adjustActiveP2PCount(ctx, ev.User, ev.Timestamp, -1)
}

func (p *Projector) handleP2PCompleted(ctx context.Context, ev *events.P2PCompleted) error {
	if err := p.appendP2PRecord(ctx, p.newP2PRecord(ev.Hdr(), "P2PCompleted", ev.User)); err != nil {
		return err
	}

	p2p, err := p.loadP2P(ctx, hashID(ev.P2PID))
	if err != nil {
		return err
	}
	if p2p == nil {
		p.log.WithField("p2pId", hashID(ev.P2PID)).Warn("complete for unknown p2p")
		return nil
	}

	p2p.Status = types.FlowComplete
	if err := p.saveP2P(ctx, p2p); err != nil {
		return err
	}
	return p.adjustActiveP2PCount(ctx, ev.User, ev.Timestamp, -1)
}
