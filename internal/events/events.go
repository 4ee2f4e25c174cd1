// Package events defines the decoded on-chain event types consumed by the
// projection engine. The log delivery worker produces these in canonical chain
// order (block number, transaction index, log index); the engine is a pure
// consumer and never re-orders them.
package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cask-indexer/internal/types"
)

// Header carries the log coordinates shared by every event.
type Header struct {
	Chain       types.ChainID
	Contract    common.Address // emitting contract
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
	TxHash      common.Hash
	Timestamp   int64 // block timestamp, unix seconds
}

// Hdr returns the header. Embedding Header gives every event this method.
func (h *Header) Hdr() *Header { return h }

// RecordID returns the append-only event record key. The log index makes the
// key unique even for multiple events within one transaction.
func (h *Header) RecordID() string {
	return h.TxHash.Hex() + "-" + strconv.FormatUint(uint64(h.LogIndex), 10)
}

// Event is any decoded contract log.
type Event interface {
	Hdr() *Header
}

// Vault events

type AssetDeposited struct {
	Header
	Participant     common.Address
	Asset           common.Address
	AssetAmount     *big.Int
	BaseAssetAmount *big.Int
}

type AssetWithdrawn struct {
	Header
	Participant     common.Address
	Asset           common.Address
	AssetAmount     *big.Int
	BaseAssetAmount *big.Int
}

type Payment struct {
	Header
	From            common.Address
	To              common.Address
	BaseAssetAmount *big.Int
	Shares          *big.Int
	ProtocolFee     *big.Int
	NetworkFee      *big.Int
}

type TransferValue struct {
	Header
	From            common.Address
	To              common.Address
	BaseAssetAmount *big.Int
	Shares          *big.Int
}

type SetFundingSource struct {
	Header
	Participant   common.Address
	FundingSource uint8
	FundingAsset  common.Address
}

// Subscription events

type SubscriptionCreated struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
	DiscountID     common.Hash
}

type SubscriptionChangedPlan struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PrevPlanID     *big.Int
	PlanID         *big.Int
	DiscountID     common.Hash
}

type SubscriptionPendingChangePlan struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PrevPlanID     *big.Int
	PlanID         *big.Int
}

type SubscriptionPaused struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionPendingPause struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionResumed struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionRenewed struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionPastDue struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionPendingCancel struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
	CancelAt       *big.Int
}

type SubscriptionCanceled struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

type SubscriptionTrialEnded struct {
	Header
	Consumer       common.Address
	Provider       common.Address
	SubscriptionID *big.Int
	Ref            common.Hash
	PlanID         *big.Int
}

// SubscriptionTransfer is the ERC-721 Transfer of the subscription NFT.
type SubscriptionTransfer struct {
	Header
	From    common.Address
	To      common.Address
	TokenID *big.Int
}

// Subscription plan events

type ProviderSetProfile struct {
	Header
	Provider       common.Address
	PaymentAddress common.Address
	Nonce          *big.Int
	CID            string
}

type PlanEnabled struct {
	Header
	Provider common.Address
	PlanID   *big.Int
}

type PlanDisabled struct {
	Header
	Provider common.Address
	PlanID   *big.Int
}

type PlanRetired struct {
	Header
	Provider common.Address
	PlanID   *big.Int
}

// DCA events

type DCACreated struct {
	Header
	DCAID       common.Hash
	User        common.Address
	To          common.Address
	InputAsset  common.Address
	OutputAsset common.Address
	Amount      *big.Int
	TotalAmount *big.Int
	Period      uint32
}

type DCAPaused struct {
	Header
	DCAID common.Hash
	User  common.Address
}

type DCAResumed struct {
	Header
	DCAID common.Hash
	User  common.Address
}

type DCAProcessed struct {
	Header
	DCAID  common.Hash
	User   common.Address
	Amount *big.Int
	BuyQty *big.Int
	Fee    *big.Int
}

type DCASkipped struct {
	Header
	DCAID      common.Hash
	User       common.Address
	SkipReason uint8
}

type DCACanceled struct {
	Header
	DCAID common.Hash
	User  common.Address
}

type DCACompleted struct {
	Header
	DCAID common.Hash
	User  common.Address
}

// P2P events

type P2PCreated struct {
	Header
	P2PID       common.Hash
	User        common.Address
	To          common.Address
	Amount      *big.Int
	TotalAmount *big.Int
	Period      uint32
}

type P2PPaused struct {
	Header
	P2PID common.Hash
	User  common.Address
}

type P2PResumed struct {
	Header
	P2PID common.Hash
	User  common.Address
}

type P2PProcessed struct {
	Header
	P2PID  common.Hash
	User   common.Address
	Amount *big.Int
	Fee    *big.Int
}

type P2PSkipped struct {
	Header
	P2PID common.Hash
	User  common.Address
}

type P2PCanceled struct {
	Header
	P2PID common.Hash
	User  common.Address
}

type P2PCompleted struct {
	Header
	P2PID common.Hash
	User  common.Address
}

// Chainlink top-up events

type ChainlinkTopupCreated struct {
	Header
	TopupID   common.Hash
	User      common.Address
	TargetID  *big.Int
	Registry  common.Address
	TopupType uint8
}

type ChainlinkTopupPaused struct {
	Header
	TopupID   common.Hash
	User      common.Address
	TargetID  *big.Int
	Registry  common.Address
	TopupType uint8
}

type ChainlinkTopupResumed struct {
	Header
	TopupID   common.Hash
	User      common.Address
	TargetID  *big.Int
	Registry  common.Address
	TopupType uint8
}

type ChainlinkTopupProcessed struct {
	Header
	TopupID   common.Hash
	User      common.Address
	TargetID  *big.Int
	Registry  common.Address
	TopupType uint8
	Amount    *big.Int
	BuyQty    *big.Int
	Fee       *big.Int
}

type ChainlinkTopupSkipped struct {
	Header
	TopupID    common.Hash
	User       common.Address
	TargetID   *big.Int
	Registry   common.Address
	TopupType  uint8
	SkipReason uint8
}

type ChainlinkTopupCanceled struct {
	Header
	TopupID   common.Hash
	User      common.Address
	TargetID  *big.Int
	Registry  common.Address
	TopupType uint8
}
