// Package types provides common type definitions for the Cask protocol indexer.
package types

// ChainID represents supported blockchain networks
type ChainID string

const (
	// ChainEthereum represents the Ethereum mainnet
	ChainEthereum ChainID = "ethereum"
	// ChainPolygon represents the Polygon network
	ChainPolygon ChainID = "polygon"
	// ChainAvalanche represents the Avalanche C-Chain
	ChainAvalanche ChainID = "avalanche"
	// ChainFantom represents the Fantom Opera network
	ChainFantom ChainID = "fantom"
	// ChainArbitrum represents the Arbitrum network
	ChainArbitrum ChainID = "arbitrum"
	// ChainOptimism represents the Optimism network
	ChainOptimism ChainID = "optimism"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionNone         SubscriptionStatus = "None"
	SubscriptionTrialing     SubscriptionStatus = "Trialing"
	SubscriptionActive       SubscriptionStatus = "Active"
	SubscriptionPaused       SubscriptionStatus = "Paused"
	SubscriptionCanceled     SubscriptionStatus = "Canceled"
	SubscriptionPastDue      SubscriptionStatus = "PastDue"
	SubscriptionPendingPause SubscriptionStatus = "PendingPause"
)

// SubscriptionStatusFromCode maps the on-chain status code to a status.
// Unknown codes resolve to SubscriptionNone rather than faulting so
// projection can proceed.
func SubscriptionStatusFromCode(code uint8) SubscriptionStatus {
	switch code {
	case 1:
		return SubscriptionTrialing
	case 2:
		return SubscriptionActive
	case 3:
		return SubscriptionPaused
	case 4:
		return SubscriptionCanceled
	case 5:
		return SubscriptionPastDue
	case 6:
		return SubscriptionPendingPause
	default:
		return SubscriptionNone
	}
}

// PlanStatus represents the lifecycle state of a subscription plan
type PlanStatus string

const (
	PlanEnabled   PlanStatus = "Enabled"
	PlanDisabled  PlanStatus = "Disabled"
	PlanEndOfLife PlanStatus = "EndOfLife"
)

// PlanStatusFromCode maps the on-chain plan status code to a status.
// The zero code and unknown codes mean the plan is usable.
func PlanStatusFromCode(code uint8) PlanStatus {
	switch code {
	case 1:
		return PlanDisabled
	case 2:
		return PlanEndOfLife
	default:
		return PlanEnabled
	}
}

// FlowStatus represents the lifecycle state of a recurring flow
// (DCA, P2P payment, Chainlink top-up).
type FlowStatus string

const (
	FlowNone     FlowStatus = "None"
	FlowActive   FlowStatus = "Active"
	FlowPaused   FlowStatus = "Paused"
	FlowCanceled FlowStatus = "Canceled"
	FlowComplete FlowStatus = "Complete"
)

// DCAStatusFromCode maps the on-chain DCA status code to a status.
func DCAStatusFromCode(code uint8) FlowStatus {
	switch code {
	case 1:
		return FlowActive
	case 2:
		return FlowPaused
	case 3:
		return FlowCanceled
	case 4:
		return FlowComplete
	default:
		return FlowNone
	}
}

// P2PStatusFromCode maps the on-chain P2P status code to a status.
func P2PStatusFromCode(code uint8) FlowStatus {
	switch code {
	case 1:
		return FlowActive
	case 2:
		return FlowPaused
	case 3:
		return FlowCanceled
	case 4:
		return FlowComplete
	default:
		return FlowNone
	}
}

// TopupStatusFromCode maps the on-chain Chainlink top-up status code to a
// status. Top-ups have no Complete state.
func TopupStatusFromCode(code uint8) FlowStatus {
	switch code {
	case 1:
		return FlowActive
	case 2:
		return FlowPaused
	case 3:
		return FlowCanceled
	default:
		return FlowNone
	}
}

// SkipReason represents why a scheduled flow processing was skipped
type SkipReason string

const (
	SkipNone              SkipReason = "None"
	SkipAssetNotAllowed   SkipReason = "AssetNotAllowed"
	SkipPaymentFailed     SkipReason = "PaymentFailed"
	SkipOutsideLimits     SkipReason = "OutsideLimits"
	SkipExcessiveSlippage SkipReason = "ExcessiveSlippage"
	SkipSwapFailed        SkipReason = "SwapFailed"
)

// DCASkipReasonFromCode maps the on-chain DCA skip reason code to a reason.
func DCASkipReasonFromCode(code uint8) SkipReason {
	switch code {
	case 1:
		return SkipAssetNotAllowed
	case 2:
		return SkipPaymentFailed
	case 3:
		return SkipOutsideLimits
	case 4:
		return SkipExcessiveSlippage
	case 5:
		return SkipSwapFailed
	default:
		return SkipNone
	}
}

// TopupSkipReasonFromCode maps the on-chain top-up skip reason code to a
// reason. The top-up table is narrower than the DCA one.
func TopupSkipReasonFromCode(code uint8) SkipReason {
	switch code {
	case 1:
		return SkipPaymentFailed
	case 2:
		return SkipSwapFailed
	default:
		return SkipNone
	}
}

// TopupType represents the kind of Chainlink service being topped up
type TopupType string

const (
	TopupTypeNone       TopupType = "None"
	TopupTypeAutomation TopupType = "Automation"
	TopupTypeVRF        TopupType = "VRF"
	TopupTypeDirect     TopupType = "Direct"
)

// TopupTypeFromCode maps the on-chain top-up type code to a type.
func TopupTypeFromCode(code uint8) TopupType {
	switch code {
	case 1:
		return TopupTypeAutomation
	case 2:
		return TopupTypeVRF
	case 3:
		return TopupTypeDirect
	default:
		return TopupTypeNone
	}
}

// FundingSource represents where a user's payments are funded from
type FundingSource string

const (
	FundingNone     FundingSource = "None"
	FundingCask     FundingSource = "Cask"
	FundingPersonal FundingSource = "Personal"
)

// FundingSourceFromCode maps the on-chain funding source code to a source.
func FundingSourceFromCode(code uint8) FundingSource {
	switch code {
	case 1:
		return FundingCask
	case 2:
		return FundingPersonal
	default:
		return FundingNone
	}
}
