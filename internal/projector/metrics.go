package projector

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/models"
)

// AddressMetricName builds the per-address variant of a metric name.
func AddressMetricName(name string, address common.Address) string {
	return name + "." + addrID(address)
}

func (p *Projector) findOrCreateMetric(ctx context.Context, name string, timestamp int64) (*models.Metric, error) {
	key := models.MetricKey(name, timestamp)
	metric, err := p.store.GetMetric(ctx, key)
	if err != nil {
		return nil, caskerrors.NewStore("metric", key, err)
	}
	if metric == nil {
		metric = models.NewMetric(name, timestamp)
	}
	return metric, nil
}

// incrementMetric adds one to the named metric's day bucket.
func (p *Projector) incrementMetric(ctx context.Context, name string, timestamp int64) error {
	return p.addMetric(ctx, name, timestamp, decimal.NewFromInt(1))
}

// addMetric adds value to the named metric's day bucket.
func (p *Projector) addMetric(ctx context.Context, name string, timestamp int64, value decimal.Decimal) error {
	metric, err := p.findOrCreateMetric(ctx, name, timestamp)
	if err != nil {
		return err
	}
	metric.Value = metric.Value.Add(value)
	if err := p.store.PutMetric(ctx, metric); err != nil {
		return caskerrors.NewStore("metric", metric.ID, err)
	}
	return nil
}

// setMetric replaces the named metric's day bucket value.
func (p *Projector) setMetric(ctx context.Context, name string, timestamp int64, value decimal.Decimal) error {
	metric, err := p.findOrCreateMetric(ctx, name, timestamp)
	if err != nil {
		return err
	}
	metric.Value = value
	if err := p.store.PutMetric(ctx, metric); err != nil {
		return caskerrors.NewStore("metric", metric.ID, err)
	}
	return nil
}
