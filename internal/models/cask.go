package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CaskID is the fixed key of the protocol-wide aggregate singleton.
const CaskID = "1"

// Cask holds protocol-wide totals across the whole indexed history of one
// chain. It is a dependency-injected handle, not a package global, so
// handlers stay testable in isolation.
type Cask struct {
	ID                    string          `json:"id" db:"id"`
	TotalDepositCount     int64           `json:"totalDepositCount" db:"total_deposit_count"`
	TotalDepositAmount    decimal.Decimal `json:"totalDepositAmount" db:"total_deposit_amount"`
	TotalWithdrawCount    int64           `json:"totalWithdrawCount" db:"total_withdraw_count"`
	TotalWithdrawAmount   decimal.Decimal `json:"totalWithdrawAmount" db:"total_withdraw_amount"`
	TotalProtocolPayments decimal.Decimal `json:"totalProtocolPayments" db:"total_protocol_payments"`
	TotalProtocolFees     decimal.Decimal `json:"totalProtocolFees" db:"total_protocol_fees"`
	TotalNetworkFees      decimal.Decimal `json:"totalNetworkFees" db:"total_network_fees"`
}

// NewCask constructs the zero-valued aggregate singleton.
func NewCask() *Cask {
	return &Cask{ID: CaskID}
}

// Metric is one day-bucketed counter or gauge.
type Metric struct {
	ID    string          `json:"id" db:"id"`
	Name  string          `json:"name" db:"name"`
	Date  int64           `json:"date" db:"date"`
	Value decimal.Decimal `json:"value" db:"value"`
}

// MetricBucket floors a unix timestamp to its UTC day.
func MetricBucket(timestamp int64) int64 {
	return timestamp - timestamp%86400
}

// MetricKey builds the metric's natural key from its name and UTC day bucket.
func MetricKey(name string, timestamp int64) string {
	return name + "." + strconv.FormatInt(MetricBucket(timestamp), 10)
}

// NewMetric constructs a zero-valued metric for the day containing timestamp.
func NewMetric(name string, timestamp int64) *Metric {
	return &Metric{
		ID:   MetricKey(name, timestamp),
		Name: name,
		Date: MetricBucket(timestamp),
	}
}
