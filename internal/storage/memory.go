package storage

import (
	"context"

	"github.com/cask-indexer/internal/models"
)

// MemoryStore is a map-backed Store. It is the reference implementation used
// by handler tests and by the indexer in dry-run mode. Get returns a copy so
// in-progress mutations only become visible through Put, matching the
// read-modify-write contract of the durable stores.
type MemoryStore struct {
	users         map[string]models.User
	consumers     map[string]models.Consumer
	providers     map[string]models.Provider
	plans         map[string]models.SubscriptionPlan
	subscriptions map[string]models.Subscription
	discounts     map[string]models.Discount
	dcas          map[string]models.DCA
	p2ps          map[string]models.P2P
	topups        map[string]models.ChainlinkTopup
	cask          *models.Cask
	metrics       map[string]models.Metric

	transactions       map[string]models.Transaction
	subscriptionEvents map[string]models.SubscriptionEvent
	dcaEvents          map[string]models.DCAEvent
	topupEvents        map[string]models.ChainlinkTopupEvent
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:              make(map[string]models.User),
		consumers:          make(map[string]models.Consumer),
		providers:          make(map[string]models.Provider),
		plans:              make(map[string]models.SubscriptionPlan),
		subscriptions:      make(map[string]models.Subscription),
		discounts:          make(map[string]models.Discount),
		dcas:               make(map[string]models.DCA),
		p2ps:               make(map[string]models.P2P),
		topups:             make(map[string]models.ChainlinkTopup),
		metrics:            make(map[string]models.Metric),
		transactions:       make(map[string]models.Transaction),
		subscriptionEvents: make(map[string]models.SubscriptionEvent),
		dcaEvents:          make(map[string]models.DCAEvent),
		topupEvents:        make(map[string]models.ChainlinkTopupEvent),
	}
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutUser(_ context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetConsumer(_ context.Context, id string) (*models.Consumer, error) {
	if c, ok := s.consumers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutConsumer(_ context.Context, consumer *models.Consumer) error {
	s.consumers[consumer.ID] = *consumer
	return nil
}

func (s *MemoryStore) GetProvider(_ context.Context, id string) (*models.Provider, error) {
	if p, ok := s.providers[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutProvider(_ context.Context, provider *models.Provider) error {
	s.providers[provider.ID] = *provider
	return nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id string) (*models.SubscriptionPlan, error) {
	if p, ok := s.plans[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutPlan(_ context.Context, plan *models.SubscriptionPlan) error {
	s.plans[plan.ID] = *plan
	return nil
}

func (s *MemoryStore) GetSubscription(_ context.Context, id string) (*models.Subscription, error) {
	if sub, ok := s.subscriptions[id]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutSubscription(_ context.Context, subscription *models.Subscription) error {
	s.subscriptions[subscription.ID] = *subscription
	return nil
}

func (s *MemoryStore) GetDiscount(_ context.Context, id string) (*models.Discount, error) {
	if d, ok := s.discounts[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutDiscount(_ context.Context, discount *models.Discount) error {
	s.discounts[discount.ID] = *discount
	return nil
}

func (s *MemoryStore) GetDCA(_ context.Context, id string) (*models.DCA, error) {
	if d, ok := s.dcas[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutDCA(_ context.Context, dca *models.DCA) error {
	s.dcas[dca.ID] = *dca
	return nil
}

func (s *MemoryStore) GetP2P(_ context.Context, id string) (*models.P2P, error) {
	if p, ok := s.p2ps[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutP2P(_ context.Context, p2p *models.P2P) error {
	s.p2ps[p2p.ID] = *p2p
	return nil
}

func (s *MemoryStore) GetChainlinkTopup(_ context.Context, id string) (*models.ChainlinkTopup, error) {
	if t, ok := s.topups[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutChainlinkTopup(_ context.Context, topup *models.ChainlinkTopup) error {
	s.topups[topup.ID] = *topup
	return nil
}

func (s *MemoryStore) GetCask(_ context.Context) (*models.Cask, error) {
	if s.cask == nil {
		return nil, nil
	}
	cask := *s.cask
	return &cask, nil
}

func (s *MemoryStore) PutCask(_ context.Context, cask *models.Cask) error {
	cp := *cask
	s.cask = &cp
	return nil
}

func (s *MemoryStore) GetMetric(_ context.Context, id string) (*models.Metric, error) {
	if m, ok := s.metrics[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutMetric(_ context.Context, metric *models.Metric) error {
	s.metrics[metric.ID] = *metric
	return nil
}

func (s *MemoryStore) AppendTransaction(_ context.Context, txn *models.Transaction) error {
	s.transactions[txn.ID] = *txn
	return nil
}

func (s *MemoryStore) AppendSubscriptionEvent(_ context.Context, ev *models.SubscriptionEvent) error {
	s.subscriptionEvents[ev.ID] = *ev
	return nil
}

func (s *MemoryStore) AppendDCAEvent(_ context.Context, ev *models.DCAEvent) error {
	s.dcaEvents[ev.ID] = *ev
	return nil
}

func (s *MemoryStore) AppendChainlinkTopupEvent(_ context.Context, ev *models.ChainlinkTopupEvent) error {
	s.topupEvents[ev.ID] = *ev
	return nil
}

// Record-count helpers for tests and the read API.

// TransactionCount returns the number of appended transaction records.
func (s *MemoryStore) TransactionCount() int { return len(s.transactions) }

// SubscriptionEventCount returns the number of appended subscription events.
func (s *MemoryStore) SubscriptionEventCount() int { return len(s.subscriptionEvents) }

// DCAEventCount returns the number of appended DCA events.
func (s *MemoryStore) DCAEventCount() int { return len(s.dcaEvents) }

// ChainlinkTopupEventCount returns the number of appended top-up events.
func (s *MemoryStore) ChainlinkTopupEventCount() int { return len(s.topupEvents) }

// Transaction returns one appended transaction record by id.
func (s *MemoryStore) Transaction(id string) (*models.Transaction, bool) {
	if t, ok := s.transactions[id]; ok {
		return &t, true
	}
	return nil, false
}

// SubscriptionEvent returns one appended subscription event by id.
func (s *MemoryStore) SubscriptionEvent(id string) (*models.SubscriptionEvent, bool) {
	if e, ok := s.subscriptionEvents[id]; ok {
		return &e, true
	}
	return nil, false
}

// DCAEvent returns one appended DCA event by id.
func (s *MemoryStore) DCAEvent(id string) (*models.DCAEvent, bool) {
	if e, ok := s.dcaEvents[id]; ok {
		return &e, true
	}
	return nil, false
}

// ChainlinkTopupEvent returns one appended top-up event by id.
func (s *MemoryStore) ChainlinkTopupEvent(id string) (*models.ChainlinkTopupEvent, bool) {
	if e, ok := s.topupEvents[id]; ok {
		return &e, true
	}
	return nil, false
}
