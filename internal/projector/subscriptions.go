package projector

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cask-indexer/internal/chain"
	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/plandata"
	"github.com/cask-indexer/internal/types"
)

// appendSubscriptionRecord writes the append-only record for a subscription
// lifecycle log. Records are written before any state mutation and survive
// even when the handler later skips the mutation.
func (p *Projector) appendSubscriptionRecord(ctx context.Context, hdr *events.Header, typ string, consumer, provider common.Address, subscriptionID, planID *big.Int) error {
	var pid uint32
	if planID != nil {
		pid = uint32(planID.Uint64())
	}
	rec := &models.SubscriptionEvent{
		ID:             hdr.RecordID(),
		Type:           typ,
		TxnID:          hdr.TxHash.Hex(),
		Timestamp:      hdr.Timestamp,
		Consumer:       addrID(consumer),
		Provider:       addrID(provider),
		SubscriptionID: bigID(subscriptionID),
		PlanID:         pid,
	}
	if err := p.store.AppendSubscriptionEvent(ctx, rec); err != nil {
		return caskerrors.NewStore("subscription_event", rec.ID, err)
	}
	return nil
}

// readSubscription reads the subscription back from the contract. A reverted
// call or a zero provider address means the subscription is not on chain;
// the second return value is false and the caller skips the mutation.
func (p *Projector) readSubscription(ctx context.Context, hdr *events.Header, subscriptionID *big.Int) (*chain.SubscriptionInfo, common.Address, bool, error) {
	info, owner, err := p.reader.GetSubscription(ctx, hdr.Contract, subscriptionID)
	if err != nil {
		if caskerrors.IsNotFound(err) {
			p.log.WithField("subscriptionId", bigID(subscriptionID)).
				WithField("txHash", hdr.TxHash.Hex()).
				Warn("subscription not readable on chain, skipping projection")
			return nil, common.Address{}, false, nil
		}
		return nil, common.Address{}, false, err
	}
	if info.Provider == (common.Address{}) {
		p.log.WithField("subscriptionId", bigID(subscriptionID)).
			WithField("txHash", hdr.TxHash.Hex()).
			Warn("subscription has no provider on chain, skipping projection")
		return nil, common.Address{}, false, nil
	}
	return info, owner, true, nil
}

// loadSubscription fetches a previously projected subscription, or nil if the
// creation event was skipped.
func (p *Projector) loadSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := p.store.GetSubscription(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("subscription", id, err)
	}
	return sub, nil
}

func (p *Projector) saveSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := p.store.PutSubscription(ctx, sub); err != nil {
		return caskerrors.NewStore("subscription", sub.ID, err)
	}
	return nil
}

func (p *Projector) saveSubscriptionParties(ctx context.Context, consumer *models.Consumer, provider *models.Provider, plan *models.SubscriptionPlan) error {
	if err := p.store.PutConsumer(ctx, consumer); err != nil {
		return caskerrors.NewStore("consumer", consumer.ID, err)
	}
	if err := p.store.PutProvider(ctx, provider); err != nil {
		return caskerrors.NewStore("provider", provider.ID, err)
	}
	if err := p.store.PutPlan(ctx, plan); err != nil {
		return caskerrors.NewStore("plan", plan.ID, err)
	}
	return nil
}

func (p *Projector) handleSubscriptionCreated(ctx context.Context, ev *events.SubscriptionCreated) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionCreated", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	info, owner, ok, err := p.readSubscription(ctx, ev.Hdr(), ev.SubscriptionID)
	if err != nil || !ok {
		return err
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
	if err != nil {
		return err
	}
	plan, err := p.findOrCreatePlan(ctx, provider.ID, info.PlanId)
	if err != nil {
		return err
	}

	planInfo := plandata.Parse(info.PlanData[:])

	sub := models.NewSubscription(bigID(ev.SubscriptionID))
	sub.Status = types.SubscriptionStatusFromCode(info.Status)
	sub.CurrentOwner = addrID(owner)
	sub.Provider = provider.ID
	sub.Plan = plan.ID
	sub.Ref = common.Hash(info.Ref).Hex()
	sub.PlanData = info.PlanData[:]
	sub.Price = planInfo.Price
	sub.Period = planInfo.Period
	sub.FreeTrial = planInfo.FreeTrial
	sub.MaxActive = planInfo.MaxActive
	sub.MinPeriods = planInfo.MinPeriods
	sub.GracePeriod = planInfo.GracePeriod
	sub.CanPause = planInfo.CanPause
	sub.CanTransfer = planInfo.CanTransfer
	sub.DiscountData = info.DiscountData[:]
	sub.DiscountID = common.Hash(info.DiscountId).Hex()
	sub.CID = info.Cid
	sub.CreatedAt = int64(info.CreatedAt)
	sub.RenewAt = int64(info.RenewAt)
	sub.CancelAt = int64(info.CancelAt)

	consumer.TotalSubscriptionCount++
	provider.TotalSubscriptionCount++
	plan.TotalSubscriptionCount++
	switch sub.Status {
	case types.SubscriptionActive:
		consumer.ActiveSubscriptionCount++
		provider.ActiveSubscriptionCount++
		plan.ActiveSubscriptionCount++
		provider.ConvertedSubscriptionCount++
		plan.ConvertedSubscriptionCount++
	case types.SubscriptionTrialing:
		provider.TrialingSubscriptionCount++
		plan.TrialingSubscriptionCount++
	}

	if common.Hash(info.DiscountId) != zeroHash {
		discount, err := p.findOrCreateDiscount(ctx, provider.ID, common.Hash(info.DiscountId).Hex())
		if err != nil {
			return err
		}
		discount.Redemptions++
		if err := p.store.PutDiscount(ctx, discount); err != nil {
			return caskerrors.NewStore("discount", discount.ID, err)
		}
	}

	if err := p.saveSubscription(ctx, sub); err != nil {
		return err
	}
	if err := p.saveSubscriptionParties(ctx, consumer, provider, plan); err != nil {
		return err
	}

	if err := p.incrementMetric(ctx, AddressMetricName("subscription.created", ev.Provider), ev.Timestamp); err != nil {
		return err
	}
	return p.incrementMetric(ctx, "subscription.created", ev.Timestamp)
}

func (p *Projector) handleSubscriptionPendingChangePlan(ctx context.Context, ev *events.SubscriptionPendingChangePlan) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionPendingChangePlan", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("pending plan change for unknown subscription")
		return nil
	}

	info, _, ok, err := p.readSubscription(ctx, ev.Hdr(), ev.SubscriptionID)
	if err != nil || !ok {
		return err
	}

	sub.Status = types.SubscriptionStatusFromCode(info.Status)
	sub.CID = info.Cid
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionChangedPlan(ctx context.Context, ev *events.SubscriptionChangedPlan) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionChangedPlan", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("plan change for unknown subscription")
		return nil
	}

	info, _, ok, err := p.readSubscription(ctx, ev.Hdr(), ev.SubscriptionID)
	if err != nil || !ok {
		return err
	}

	providerID := addrID(ev.Provider)
	prevPlan, err := p.findOrCreatePlan(ctx, providerID, uint32(ev.PrevPlanID.Uint64()))
	if err != nil {
		return err
	}
	plan, err := p.findOrCreatePlan(ctx, providerID, info.PlanId)
	if err != nil {
		return err
	}

	// Membership counters move from the previous plan to the new one based on
	// the subscription's current status. Total counts only the new plan.
	switch sub.Status {
	case types.SubscriptionActive:
		prevPlan.ActiveSubscriptionCount--
		plan.TotalSubscriptionCount++
		plan.ActiveSubscriptionCount++
	case types.SubscriptionTrialing:
		prevPlan.TrialingSubscriptionCount--
		plan.TotalSubscriptionCount++
		plan.TrialingSubscriptionCount++
	}

	discountID := common.Hash(info.DiscountId).Hex()
	if common.Hash(info.DiscountId) != zeroHash && discountID != sub.DiscountID {
		discount, err := p.findOrCreateDiscount(ctx, providerID, discountID)
		if err != nil {
			return err
		}
		discount.Redemptions++
		if err := p.store.PutDiscount(ctx, discount); err != nil {
			return caskerrors.NewStore("discount", discount.ID, err)
		}
	}

	planInfo := plandata.Parse(info.PlanData[:])
	sub.Status = types.SubscriptionStatusFromCode(info.Status)
	sub.Plan = plan.ID
	sub.PlanData = info.PlanData[:]
	sub.Price = planInfo.Price
	sub.Period = planInfo.Period
	sub.FreeTrial = planInfo.FreeTrial
	sub.MaxActive = planInfo.MaxActive
	sub.MinPeriods = planInfo.MinPeriods
	sub.GracePeriod = planInfo.GracePeriod
	sub.CanPause = planInfo.CanPause
	sub.CanTransfer = planInfo.CanTransfer
	sub.DiscountData = info.DiscountData[:]
	sub.DiscountID = discountID
	sub.CID = info.Cid
	sub.RenewAt = int64(info.RenewAt)

	if err := p.store.PutPlan(ctx, prevPlan); err != nil {
		return caskerrors.NewStore("plan", prevPlan.ID, err)
	}
	if err := p.store.PutPlan(ctx, plan); err != nil {
		return caskerrors.NewStore("plan", plan.ID, err)
	}
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionPaused(ctx context.Context, ev *events.SubscriptionPaused) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionPaused", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("pause for unknown subscription")
		return nil
	}

	if sub.Status != types.SubscriptionPaused {
		consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
		if err != nil {
			return err
		}
		provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
		if err != nil {
			return err
		}
		plan, err := p.findOrCreatePlan(ctx, provider.ID, uint32(ev.PlanID.Uint64()))
		if err != nil {
			return err
		}
		consumer.ActiveSubscriptionCount--
		provider.ActiveSubscriptionCount--
		plan.ActiveSubscriptionCount--
		provider.PausedSubscriptionCount++
		plan.PausedSubscriptionCount++
		if err := p.saveSubscriptionParties(ctx, consumer, provider, plan); err != nil {
			return err
		}
	}

	sub.Status = types.SubscriptionPaused
	sub.PausedAt = ev.Timestamp
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionPendingPause(ctx context.Context, ev *events.SubscriptionPendingPause) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionPendingPause", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("pending pause for unknown subscription")
		return nil
	}

	sub.Status = types.SubscriptionPendingPause
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionResumed(ctx context.Context, ev *events.SubscriptionResumed) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionResumed", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("resume for unknown subscription")
		return nil
	}

	// PendingPause resumes without counter movement, only a real pause does.
	if sub.Status == types.SubscriptionPaused {
		consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
		if err != nil {
			return err
		}
		provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
		if err != nil {
			return err
		}
		plan, err := p.findOrCreatePlan(ctx, provider.ID, uint32(ev.PlanID.Uint64()))
		if err != nil {
			return err
		}
		consumer.ActiveSubscriptionCount++
		provider.ActiveSubscriptionCount++
		plan.ActiveSubscriptionCount++
		provider.PausedSubscriptionCount--
		plan.PausedSubscriptionCount--
		if err := p.saveSubscriptionParties(ctx, consumer, provider, plan); err != nil {
			return err
		}
	}

	sub.Status = types.SubscriptionActive
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionRenewed(ctx context.Context, ev *events.SubscriptionRenewed) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionRenewed", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("renewal for unknown subscription")
		return nil
	}

	info, _, ok, err := p.readSubscription(ctx, ev.Hdr(), ev.SubscriptionID)
	if err != nil || !ok {
		return err
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
	if err != nil {
		return err
	}
	plan, err := p.findOrCreatePlan(ctx, provider.ID, uint32(ev.PlanID.Uint64()))
	if err != nil {
		return err
	}

	switch sub.Status {
	case types.SubscriptionTrialing:
		provider.TrialingSubscriptionCount--
		plan.TrialingSubscriptionCount--
		provider.ConvertedSubscriptionCount++
		plan.ConvertedSubscriptionCount++
	case types.SubscriptionPastDue:
		provider.PastDueSubscriptionCount--
		plan.PastDueSubscriptionCount--
	}
	if sub.Status != types.SubscriptionActive {
		consumer.ActiveSubscriptionCount++
		provider.ActiveSubscriptionCount++
		plan.ActiveSubscriptionCount++
	}

	sub.Status = types.SubscriptionStatusFromCode(info.Status)
	sub.LastRenewedAt = ev.Timestamp
	sub.RenewAt = int64(info.RenewAt)
	sub.RenewCount++

	if err := p.saveSubscription(ctx, sub); err != nil {
		return err
	}
	if err := p.saveSubscriptionParties(ctx, consumer, provider, plan); err != nil {
		return err
	}

	if err := p.incrementMetric(ctx, AddressMetricName("subscription.renewed", ev.Provider), ev.Timestamp); err != nil {
		return err
	}
	return p.incrementMetric(ctx, "subscription.renewed", ev.Timestamp)
}

func (p *Projector) handleSubscriptionPastDue(ctx context.Context, ev *events.SubscriptionPastDue) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionPastDue", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("past due for unknown subscription")
		return nil
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
	if err != nil {
		return err
	}
	plan, err := p.findOrCreatePlan(ctx, provider.ID, uint32(ev.PlanID.Uint64()))
	if err != nil {
		return err
	}

	switch sub.Status {
	case types.SubscriptionActive:
		consumer.ActiveSubscriptionCount--
		provider.ActiveSubscriptionCount--
		plan.ActiveSubscriptionCount--
	case types.SubscriptionTrialing:
		provider.TrialingSubscriptionCount--
		plan.TrialingSubscriptionCount--
	}
	if sub.Status != types.SubscriptionPastDue {
		provider.PastDueSubscriptionCount++
		plan.PastDueSubscriptionCount++
	}

	sub.Status = types.SubscriptionPastDue
	sub.PastDueAt = ev.Timestamp

	if err := p.saveSubscription(ctx, sub); err != nil {
		return err
	}
	return p.saveSubscriptionParties(ctx, consumer, provider, plan)
}

func (p *Projector) handleSubscriptionPendingCancel(ctx context.Context, ev *events.SubscriptionPendingCancel) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionPendingCancel", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("pending cancel for unknown subscription")
		return nil
	}

	sub.CancelAt = ev.CancelAt.Int64()
	return p.saveSubscription(ctx, sub)
}

func (p *Projector) handleSubscriptionCanceled(ctx context.Context, ev *events.SubscriptionCanceled) error {
	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionCanceled", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.SubscriptionID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.SubscriptionID)).Warn("cancel for unknown subscription")
		return nil
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Consumer), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.Provider), ev.Timestamp)
	if err != nil {
		return err
	}
	plan, err := p.findOrCreatePlan(ctx, provider.ID, uint32(ev.PlanID.Uint64()))
	if err != nil {
		return err
	}

	switch sub.Status {
	case types.SubscriptionActive:
		consumer.ActiveSubscriptionCount--
		provider.ActiveSubscriptionCount--
		plan.ActiveSubscriptionCount--
	case types.SubscriptionTrialing:
		provider.TrialingSubscriptionCount--
		plan.TrialingSubscriptionCount--
	case types.SubscriptionPastDue:
		provider.PastDueSubscriptionCount--
		plan.PastDueSubscriptionCount--
	}
	if sub.Status != types.SubscriptionCanceled {
		provider.CanceledSubscriptionCount++
		plan.CanceledSubscriptionCount++
	}

	sub.Status = types.SubscriptionCanceled
	sub.CanceledAt = ev.Timestamp

	if err := p.saveSubscription(ctx, sub); err != nil {
		return err
	}
	return p.saveSubscriptionParties(ctx, consumer, provider, plan)
}

func (p *Projector) handleSubscriptionTrialEnded(ctx context.Context, ev *events.SubscriptionTrialEnded) error {
	return p.appendSubscriptionRecord(ctx, ev.Hdr(), "SubscriptionTrialEnded", ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID)
}

func (p *Projector) handleSubscriptionTransfer(ctx context.Context, ev *events.SubscriptionTransfer) error {
	// Mints and burns also emit Transfer; only owner changes are projected.
	if ev.From == (common.Address{}) || ev.To == (common.Address{}) {
		return nil
	}

	if err := p.appendSubscriptionRecord(ctx, ev.Hdr(), "Transfer", ev.From, common.Address{}, ev.TokenID, nil); err != nil {
		return err
	}

	sub, err := p.loadSubscription(ctx, bigID(ev.TokenID))
	if err != nil {
		return err
	}
	if sub == nil {
		p.log.WithField("subscriptionId", bigID(ev.TokenID)).Warn("transfer for unknown subscription")
		return nil
	}

	sub.CurrentOwner = addrID(ev.To)
	sub.TransferCount++
	return p.saveSubscription(ctx, sub)
}
