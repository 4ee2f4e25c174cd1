package models

import (
	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/types"
)

// User is the vault-level projection of an address: balance and
// deposit/withdraw running totals. An address can be a User, a Consumer and
// a Provider at the same time; the three entities are keyed by the same
// lowercase hex address.
type User struct {
	ID             string              `json:"id" db:"id"`
	AppearedAt     int64               `json:"appearedAt" db:"appeared_at"`
	Balance        decimal.Decimal     `json:"balance" db:"balance"`
	DepositCount   int64               `json:"depositCount" db:"deposit_count"`
	DepositAmount  decimal.Decimal     `json:"depositAmount" db:"deposit_amount"`
	WithdrawCount  int64               `json:"withdrawCount" db:"withdraw_count"`
	WithdrawAmount decimal.Decimal     `json:"withdrawAmount" db:"withdraw_amount"`
	FundingSource  types.FundingSource `json:"fundingSource" db:"funding_source"`
	FundingAsset   string              `json:"fundingAsset" db:"funding_asset"`
}

// NewUser constructs a zero-valued user first seen at the given timestamp.
func NewUser(id string, appearedAt int64) *User {
	return &User{ID: id, AppearedAt: appearedAt, FundingSource: types.FundingNone}
}

// Consumer is the subscriber-side projection of an address, carrying the
// per-subsystem total and active counters.
type Consumer struct {
	ID                       string          `json:"id" db:"id"`
	AppearedAt               int64           `json:"appearedAt" db:"appeared_at"`
	Balance                  decimal.Decimal `json:"balance" db:"balance"`
	DepositCount             int64           `json:"depositCount" db:"deposit_count"`
	DepositAmount            decimal.Decimal `json:"depositAmount" db:"deposit_amount"`
	WithdrawCount            int64           `json:"withdrawCount" db:"withdraw_count"`
	WithdrawAmount           decimal.Decimal `json:"withdrawAmount" db:"withdraw_amount"`
	TotalSubscriptionCount   int64           `json:"totalSubscriptionCount" db:"total_subscription_count"`
	ActiveSubscriptionCount  int64           `json:"activeSubscriptionCount" db:"active_subscription_count"`
	TotalDCACount            int64           `json:"totalDcaCount" db:"total_dca_count"`
	ActiveDCACount           int64           `json:"activeDcaCount" db:"active_dca_count"`
	TotalP2PCount            int64           `json:"totalP2pCount" db:"total_p2p_count"`
	ActiveP2PCount           int64           `json:"activeP2pCount" db:"active_p2p_count"`
	TotalChainlinkTopupCount int64           `json:"totalChainlinkTopupCount" db:"total_chainlink_topup_count"`
	ActiveChainlinkTopupCount int64          `json:"activeChainlinkTopupCount" db:"active_chainlink_topup_count"`
}

// NewConsumer constructs a zero-valued consumer first seen at the given
// timestamp.
func NewConsumer(id string, appearedAt int64) *Consumer {
	return &Consumer{ID: id, AppearedAt: appearedAt}
}

// Provider is the merchant-side projection of an address: payment totals,
// per-status subscription counters, and the published profile.
type Provider struct {
	ID                         string          `json:"id" db:"id"`
	AppearedAt                 int64           `json:"appearedAt" db:"appeared_at"`
	TotalPaymentsReceived      decimal.Decimal `json:"totalPaymentsReceived" db:"total_payments_received"`
	TotalSubscriptionCount     int64           `json:"totalSubscriptionCount" db:"total_subscription_count"`
	ActiveSubscriptionCount    int64           `json:"activeSubscriptionCount" db:"active_subscription_count"`
	TrialingSubscriptionCount  int64           `json:"trialingSubscriptionCount" db:"trialing_subscription_count"`
	ConvertedSubscriptionCount int64           `json:"convertedSubscriptionCount" db:"converted_subscription_count"`
	CanceledSubscriptionCount  int64           `json:"canceledSubscriptionCount" db:"canceled_subscription_count"`
	PausedSubscriptionCount    int64           `json:"pausedSubscriptionCount" db:"paused_subscription_count"`
	PastDueSubscriptionCount   int64           `json:"pastDueSubscriptionCount" db:"past_due_subscription_count"`
	ProfileCID                 string          `json:"profileCid" db:"profile_cid"`
	ProfileNonce               int64           `json:"profileNonce" db:"profile_nonce"`
	PaymentAddress             string          `json:"paymentAddress" db:"payment_address"`
}

// NewProvider constructs a zero-valued provider first seen at the given
// timestamp.
func NewProvider(id string, appearedAt int64) *Provider {
	return &Provider{ID: id, AppearedAt: appearedAt}
}
