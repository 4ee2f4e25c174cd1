package projector

import (
	"context"

	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/types"
)

func (p *Projector) handleProviderSetProfile(ctx context.Context, ev *events.ProviderSetProfile) error {
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
	if err != nil {
		return err
	}
	provider.ProfileCID = ev.CID
	provider.ProfileNonce = ev.Nonce.Int64()
	provider.PaymentAddress = addrID(ev.PaymentAddress)
	if err := p.store.PutProvider(ctx, provider); err != nil {
		return caskerrors.NewStore("provider", provider.ID, err)
	}
	return nil
}

func (p *Projector) setPlanStatus(ctx context.Context, provider string, planID uint32, status types.PlanStatus) error {
	plan, err := p.findOrCreatePlan(ctx, provider, planID)
	if err != nil {
		return err
	}
	plan.Status = status
	if err := p.store.PutPlan(ctx, plan); err != nil {
		return caskerrors.NewStore("plan", plan.ID, err)
	}
	return nil
}

func (p *Projector) handlePlanEnabled(ctx context.Context, ev *events.PlanEnabled) error {
	return p.setPlanStatus(ctx, addrID(ev.Provider), uint32(ev.PlanID.Uint64()), types.PlanEnabled)
}

func (p *Projector) handlePlanDisabled(ctx context.Context, ev *events.PlanDisabled) error {
	return p.setPlanStatus(ctx, addrID(ev.Provider), uint32(ev.PlanID.Uint64()), types.PlanDisabled)
}

func (p *Projector) handlePlanRetired(ctx context.Context, ev *events.PlanRetired) error {
	return p.setPlanStatus(ctx, addrID(ev.Provider), uint32(ev.PlanID.Uint64()), types.PlanEndOfLife)
}
