package models

import (
	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/types"
)

// Subscription is one subscription NFT and its decoded plan terms. Status
// transitions are driven by named events; the previous status is always
// consulted before counters move, so replaying an event cannot double-count.
type Subscription struct {
	ID            string                   `json:"id" db:"id"`
	Status        types.SubscriptionStatus `json:"status" db:"status"`
	CurrentOwner  string                   `json:"currentOwner" db:"current_owner"`
	Provider      string                   `json:"provider" db:"provider"`
	Plan          string                   `json:"plan" db:"plan"`
	Ref           string                   `json:"ref" db:"ref"`
	PlanData      []byte                   `json:"planData" db:"plan_data"`
	Price         decimal.Decimal          `json:"price" db:"price"`
	Period        uint32                   `json:"period" db:"period"`
	FreeTrial     uint32                   `json:"freeTrial" db:"free_trial"`
	MaxActive     uint32                   `json:"maxActive" db:"max_active"`
	MinPeriods    uint16                   `json:"minPeriods" db:"min_periods"`
	GracePeriod   uint8                    `json:"gracePeriod" db:"grace_period"`
	CanPause      bool                     `json:"canPause" db:"can_pause"`
	CanTransfer   bool                     `json:"canTransfer" db:"can_transfer"`
	DiscountData  []byte                   `json:"discountData" db:"discount_data"`
	DiscountID    string                   `json:"discountId" db:"discount_id"`
	CID           string                   `json:"cid" db:"cid"`
	CreatedAt     int64                    `json:"createdAt" db:"created_at"`
	RenewAt       int64                    `json:"renewAt" db:"renew_at"`
	CancelAt      int64                    `json:"cancelAt" db:"cancel_at"`
	PausedAt      int64                    `json:"pausedAt" db:"paused_at"`
	CanceledAt    int64                    `json:"canceledAt" db:"canceled_at"`
	PastDueAt     int64                    `json:"pastDueAt" db:"past_due_at"`
	LastRenewedAt int64                    `json:"lastRenewedAt" db:"last_renewed_at"`
	RenewCount    int64                    `json:"renewCount" db:"renew_count"`
	TransferCount int64                    `json:"transferCount" db:"transfer_count"`
}

// NewSubscription constructs a zero-valued subscription.
func NewSubscription(id string) *Subscription {
	return &Subscription{ID: id, Status: types.SubscriptionNone}
}
