package models

import (
	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/types"
)

// DCA is one dollar-cost-averaging schedule. Price limits and quantities are
// kept in raw output-asset units; amounts are vault base-asset decimals.
type DCA struct {
	ID              string           `json:"id" db:"id"`
	User            string           `json:"user" db:"user_id"`
	To              string           `json:"to" db:"to_address"`
	Router          string           `json:"router" db:"router"`
	PriceFeed       string           `json:"priceFeed" db:"price_feed"`
	InputAsset      string           `json:"inputAsset" db:"input_asset"`
	OutputAsset     string           `json:"outputAsset" db:"output_asset"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	TotalAmount     decimal.Decimal  `json:"totalAmount" db:"total_amount"`
	CurrentAmount   decimal.Decimal  `json:"currentAmount" db:"current_amount"`
	CurrentFees     decimal.Decimal  `json:"currentFees" db:"current_fees"`
	CurrentQty      decimal.Decimal  `json:"currentQty" db:"current_qty"`
	MinPrice        decimal.Decimal  `json:"minPrice" db:"min_price"`
	MaxPrice        decimal.Decimal  `json:"maxPrice" db:"max_price"`
	MaxSlippageBps  int64            `json:"maxSlippageBps" db:"max_slippage_bps"`
	Period          int64            `json:"period" db:"period"`
	NumBuys         int64            `json:"numBuys" db:"num_buys"`
	NumSkips        int64            `json:"numSkips" db:"num_skips"`
	Status          types.FlowStatus `json:"status" db:"status"`
	CreatedAt       int64            `json:"createdAt" db:"created_at"`
	ProcessAt       int64            `json:"processAt" db:"process_at"`
	PausedAt        int64            `json:"pausedAt" db:"paused_at"`
	CanceledAt      int64            `json:"canceledAt" db:"canceled_at"`
	CompletedAt     int64            `json:"completedAt" db:"completed_at"`
	LastProcessedAt int64            `json:"lastProcessedAt" db:"last_processed_at"`
	LastSkippedAt   int64            `json:"lastSkippedAt" db:"last_skipped_at"`
}

// NewDCA constructs a zero-valued DCA schedule.
func NewDCA(id string) *DCA {
	return &DCA{ID: id, Status: types.FlowNone}
}

// P2P is one recurring peer-to-peer payment schedule.
type P2P struct {
	ID            string           `json:"id" db:"id"`
	User          string           `json:"user" db:"user_id"`
	To            string           `json:"to" db:"to_address"`
	Amount        decimal.Decimal  `json:"amount" db:"amount"`
	TotalAmount   decimal.Decimal  `json:"totalAmount" db:"total_amount"`
	CurrentAmount decimal.Decimal  `json:"currentAmount" db:"current_amount"`
	Period        int64            `json:"period" db:"period"`
	NumPayments   int64            `json:"numPayments" db:"num_payments"`
	NumSkips      int64            `json:"numSkips" db:"num_skips"`
	Status        types.FlowStatus `json:"status" db:"status"`
	CreatedAt     int64            `json:"createdAt" db:"created_at"`
	ProcessAt     int64            `json:"processAt" db:"process_at"`
}

// NewP2P constructs a zero-valued P2P schedule.
func NewP2P(id string) *P2P {
	return &P2P{ID: id, Status: types.FlowNone}
}

// ChainlinkTopup is one Chainlink service top-up schedule. LowBalance and
// quantities stay in raw LINK units; amounts are vault base-asset decimals.
type ChainlinkTopup struct {
	ID              string           `json:"id" db:"id"`
	User            string           `json:"user" db:"user_id"`
	LowBalance      decimal.Decimal  `json:"lowBalance" db:"low_balance"`
	TopupAmount     decimal.Decimal  `json:"topupAmount" db:"topup_amount"`
	Registry        string           `json:"registry" db:"registry"`
	TargetID        string           `json:"targetId" db:"target_id"`
	TopupType       types.TopupType  `json:"topupType" db:"topup_type"`
	CurrentAmount   decimal.Decimal  `json:"currentAmount" db:"current_amount"`
	CurrentBuyQty   decimal.Decimal  `json:"currentBuyQty" db:"current_buy_qty"`
	CurrentFees     decimal.Decimal  `json:"currentFees" db:"current_fees"`
	NumTopups       int64            `json:"numTopups" db:"num_topups"`
	NumSkips        int64            `json:"numSkips" db:"num_skips"`
	Status          types.FlowStatus `json:"status" db:"status"`
	CreatedAt       int64            `json:"createdAt" db:"created_at"`
	PausedAt        int64            `json:"pausedAt" db:"paused_at"`
	CanceledAt      int64            `json:"canceledAt" db:"canceled_at"`
	LastProcessedAt int64            `json:"lastProcessedAt" db:"last_processed_at"`
	LastSkippedAt   int64            `json:"lastSkippedAt" db:"last_skipped_at"`
}

// NewChainlinkTopup constructs a zero-valued top-up schedule.
func NewChainlinkTopup(id string) *ChainlinkTopup {
	return &ChainlinkTopup{ID: id, Status: types.FlowNone, TopupType: types.TopupTypeNone}
}
