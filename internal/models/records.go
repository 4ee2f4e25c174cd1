package models

import (
	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/types"
)

// Event record types. One row per on-chain log, keyed txHash-logIndex.
// Records are append-only and never rolled back: a handler that fails its
// read-back after writing the record leaves the record in place.

// Transaction is the event record for vault and P2P activity.
type Transaction struct {
	ID           string          `json:"id" db:"id"`
	Type         string          `json:"type" db:"type"`
	Timestamp    int64           `json:"timestamp" db:"timestamp"`
	Consumer     string          `json:"consumer" db:"consumer"`
	Provider     string          `json:"provider" db:"provider"`
	AssetAddress string          `json:"assetAddress" db:"asset_address"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
}

// SubscriptionEvent is the event record for subscription lifecycle activity.
type SubscriptionEvent struct {
	ID             string `json:"id" db:"id"`
	Type           string `json:"type" db:"type"`
	TxnID          string `json:"txnId" db:"txn_id"`
	Timestamp      int64  `json:"timestamp" db:"timestamp"`
	Consumer       string `json:"consumer" db:"consumer"`
	Provider       string `json:"provider" db:"provider"`
	SubscriptionID string `json:"subscriptionId" db:"subscription_id"`
	PlanID         uint32 `json:"planId" db:"plan_id"`
}

// DCAEvent is the event record for DCA lifecycle activity.
type DCAEvent struct {
	ID           string           `json:"id" db:"id"`
	Type         string           `json:"type" db:"type"`
	DCAID        string           `json:"dcaId" db:"dca_id"`
	TxnID        string           `json:"txnId" db:"txn_id"`
	Timestamp    int64            `json:"timestamp" db:"timestamp"`
	User         string           `json:"user" db:"user_id"`
	AssetAddress string           `json:"assetAddress" db:"asset_address"`
	Amount       decimal.Decimal  `json:"amount" db:"amount"`
	BuyQty       decimal.Decimal  `json:"buyQty" db:"buy_qty"`
	Fee          decimal.Decimal  `json:"fee" db:"fee"`
	SkipReason   types.SkipReason `json:"skipReason" db:"skip_reason"`
}

// ChainlinkTopupEvent is the event record for top-up lifecycle activity.
type ChainlinkTopupEvent struct {
	ID         string           `json:"id" db:"id"`
	Type       string           `json:"type" db:"type"`
	TopupID    string           `json:"topupId" db:"topup_id"`
	TargetID   string           `json:"targetId" db:"target_id"`
	Registry   string           `json:"registry" db:"registry"`
	TopupType  types.TopupType  `json:"topupType" db:"topup_type"`
	TxnID      string           `json:"txnId" db:"txn_id"`
	Timestamp  int64            `json:"timestamp" db:"timestamp"`
	User       string           `json:"user" db:"user_id"`
	Amount     decimal.Decimal  `json:"amount" db:"amount"`
	BuyQty     decimal.Decimal  `json:"buyQty" db:"buy_qty"`
	Fee        decimal.Decimal  `json:"fee" db:"fee"`
	SkipReason types.SkipReason `json:"skipReason" db:"skip_reason"`
}
