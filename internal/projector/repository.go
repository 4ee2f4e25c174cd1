package projector

import (
	"context"

	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/models"
)

// Find-or-create accessors. Actor entities (user, consumer, provider) and
// their aggregates are created on the first event that mentions them; the
// freshly created entity is persisted immediately so a later store failure
// cannot lose the first-seen timestamp.

func (p *Projector) findOrCreateUser(ctx context.Context, id string, appearedAt int64) (*models.User, error) {
	user, err := p.store.GetUser(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("user", id, err)
	}
	if user == nil {
		user = models.NewUser(id, appearedAt)
		if err := p.store.PutUser(ctx, user); err != nil {
			return nil, caskerrors.NewStore("user", id, err)
		}
	}
	return user, nil
}

func (p *Projector) findOrCreateConsumer(ctx context.Context, id string, appearedAt int64) (*models.Consumer, error) {
	consumer, err := p.store.GetConsumer(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("consumer", id, err)
	}
	if consumer == nil {
		consumer = models.NewConsumer(id, appearedAt)
		if err := p.store.PutConsumer(ctx, consumer); err != nil {
			return nil, caskerrors.NewStore("consumer", id, err)
		}
	}
	return consumer, nil
}

func (p *Projector) findOrCreateProvider(ctx context.Context, id string, appearedAt int64) (*models.Provider, error) {
	provider, err := p.store.GetProvider(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("provider", id, err)
	}
	if provider == nil {
		provider = models.NewProvider(id, appearedAt)
		if err := p.store.PutProvider(ctx, provider); err != nil {
			return nil, caskerrors.NewStore("provider", id, err)
		}
	}
	return provider, nil
}

func (p *Projector) findOrCreatePlan(ctx context.Context, provider string, planID uint32) (*models.SubscriptionPlan, error) {
	key := models.PlanKey(provider, planID)
	plan, err := p.store.GetPlan(ctx, key)
	if err != nil {
		return nil, caskerrors.NewStore("plan", key, err)
	}
	if plan == nil {
		plan = models.NewSubscriptionPlan(provider, planID)
		if err := p.store.PutPlan(ctx, plan); err != nil {
			return nil, caskerrors.NewStore("plan", key, err)
		}
	}
	return plan, nil
}

func (p *Projector) findOrCreateDiscount(ctx context.Context, provider, discountID string) (*models.Discount, error) {
	key := models.DiscountKey(provider, discountID)
	discount, err := p.store.GetDiscount(ctx, key)
	if err != nil {
		return nil, caskerrors.NewStore("discount", key, err)
	}
	if discount == nil {
		discount = models.NewDiscount(provider, discountID)
	}
	return discount, nil
}

func (p *Projector) findOrCreateDCA(ctx context.Context, id string) (*models.DCA, error) {
	dca, err := p.store.GetDCA(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("dca", id, err)
	}
	if dca == nil {
		dca = models.NewDCA(id)
	}
	return dca, nil
}

func (p *Projector) findOrCreateChainlinkTopup(ctx context.Context, id string) (*models.ChainlinkTopup, error) {
	topup, err := p.store.GetChainlinkTopup(ctx, id)
	if err != nil {
		return nil, caskerrors.NewStore("chainlink_topup", id, err)
	}
	if topup == nil {
		topup = models.NewChainlinkTopup(id)
	}
	return topup, nil
}

// loadCask returns the protocol-wide aggregate singleton, creating the zero
// value on first touch.
func (p *Projector) loadCask(ctx context.Context) (*models.Cask, error) {
	cask, err := p.store.GetCask(ctx)
	if err != nil {
		return nil, caskerrors.NewStore("cask", models.CaskID, err)
	}
	if cask == nil {
		cask = models.NewCask()
	}
	return cask, nil
}
