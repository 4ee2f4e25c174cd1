package worker

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/types"
)

// Event definitions for the six Cask contracts. Only the events the
// projection consumes are listed; logs with any other topic are skipped.

const vaultEventsABI = `[
{"type":"event","name":"AssetDeposited","anonymous":false,"inputs":[{"name":"participant","type":"address","indexed":true},{"name":"asset","type":"address","indexed":true},{"name":"assetAmount","type":"uint256","indexed":false},{"name":"baseAssetAmount","type":"uint256","indexed":false}]},
{"type":"event","name":"AssetWithdrawn","anonymous":false,"inputs":[{"name":"participant","type":"address","indexed":true},{"name":"asset","type":"address","indexed":true},{"name":"assetAmount","type":"uint256","indexed":false},{"name":"baseAssetAmount","type":"uint256","indexed":false}]},
{"type":"event","name":"Payment","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"baseAssetAmount","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false},{"name":"protocolFee","type":"uint256","indexed":false},{"name":"networkFee","type":"uint256","indexed":false}]},
{"type":"event","name":"TransferValue","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"baseAssetAmount","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false}]},
{"type":"event","name":"SetFundingSource","anonymous":false,"inputs":[{"name":"participant","type":"address","indexed":true},{"name":"fundingSource","type":"uint8","indexed":false},{"name":"fundingAsset","type":"address","indexed":false}]}
]`

const subscriptionsEventsABI = `[
{"type":"event","name":"SubscriptionCreated","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false},{"name":"discountId","type":"bytes32","indexed":false}]},
{"type":"event","name":"SubscriptionChangedPlan","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"prevPlanId","type":"uint256","indexed":false},{"name":"planId","type":"uint256","indexed":false},{"name":"discountId","type":"bytes32","indexed":false}]},
{"type":"event","name":"SubscriptionPendingChangePlan","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"prevPlanId","type":"uint256","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionPaused","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionPendingPause","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionResumed","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionRenewed","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionPastDue","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionPendingCancel","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false},{"name":"cancelAt","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionCanceled","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"SubscriptionTrialEnded","anonymous":false,"inputs":[{"name":"consumer","type":"address","indexed":true},{"name":"provider","type":"address","indexed":true},{"name":"subscriptionId","type":"uint256","indexed":true},{"name":"ref","type":"bytes32","indexed":false},{"name":"planId","type":"uint256","indexed":false}]},
{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]}
]`

const plansEventsABI = `[
{"type":"event","name":"ProviderSetProfile","anonymous":false,"inputs":[{"name":"provider","type":"address","indexed":true},{"name":"paymentAddress","type":"address","indexed":false},{"name":"nonce","type":"uint256","indexed":false},{"name":"cid","type":"string","indexed":false}]},
{"type":"event","name":"PlanEnabled","anonymous":false,"inputs":[{"name":"provider","type":"address","indexed":true},{"name":"planId","type":"uint256","indexed":true}]},
{"type":"event","name":"PlanDisabled","anonymous":false,"inputs":[{"name":"provider","type":"address","indexed":true},{"name":"planId","type":"uint256","indexed":true}]},
{"type":"event","name":"PlanRetired","anonymous":false,"inputs":[{"name":"provider","type":"address","indexed":true},{"name":"planId","type":"uint256","indexed":true}]}
]`

const dcaEventsABI = `[
{"type":"event","name":"DCACreated","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"inputAsset","type":"address","indexed":false},{"name":"outputAsset","type":"address","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAmount","type":"uint256","indexed":false},{"name":"period","type":"uint32","indexed":false}]},
{"type":"event","name":"DCAPaused","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"DCAResumed","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"DCASkipped","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"skipReason","type":"uint8","indexed":false}]},
{"type":"event","name":"DCAProcessed","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"buyQty","type":"uint256","indexed":false},{"name":"fee","type":"uint256","indexed":false}]},
{"type":"event","name":"DCACanceled","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"DCACompleted","anonymous":false,"inputs":[{"name":"dcaId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]}
]`

const p2pEventsABI = `[
{"type":"event","name":"P2PCreated","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAmount","type":"uint256","indexed":false},{"name":"period","type":"uint32","indexed":false}]},
{"type":"event","name":"P2PPaused","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"P2PResumed","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"P2PSkipped","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"P2PProcessed","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"fee","type":"uint256","indexed":false}]},
{"type":"event","name":"P2PCanceled","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]},
{"type":"event","name":"P2PCompleted","anonymous":false,"inputs":[{"name":"p2pId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true}]}
]`

const topupEventsABI = `[
{"type":"event","name":"ChainlinkTopupCreated","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false}]},
{"type":"event","name":"ChainlinkTopupPaused","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false}]},
{"type":"event","name":"ChainlinkTopupResumed","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false}]},
{"type":"event","name":"ChainlinkTopupSkipped","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false},{"name":"skipReason","type":"uint8","indexed":false}]},
{"type":"event","name":"ChainlinkTopupProcessed","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"buyQty","type":"uint256","indexed":false},{"name":"fee","type":"uint256","indexed":false}]},
{"type":"event","name":"ChainlinkTopupCanceled","anonymous":false,"inputs":[{"name":"chainlinkTopupId","type":"bytes32","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"targetId","type":"uint256","indexed":false},{"name":"registry","type":"address","indexed":false},{"name":"topupType","type":"uint8","indexed":false}]}
]`

// Decoder turns raw contract logs into typed events. It is stateless after
// construction and safe for concurrent use.
type Decoder struct {
	contracts config.ContractAddresses

	vaultABI         abi.ABI
	subscriptionsABI abi.ABI
	plansABI         abi.ABI
	dcaABI           abi.ABI
	p2pABI           abi.ABI
	topupABI         abi.ABI
}

// NewDecoder parses the contract event definitions for one chain's address
// registry.
func NewDecoder(contracts config.ContractAddresses) (*Decoder, error) {
	d := &Decoder{contracts: contracts}
	for _, entry := range []struct {
		name string
		raw  string
		dest *abi.ABI
	}{
		{"vault", vaultEventsABI, &d.vaultABI},
		{"subscriptions", subscriptionsEventsABI, &d.subscriptionsABI},
		{"subscription plans", plansEventsABI, &d.plansABI},
		{"dca", dcaEventsABI, &d.dcaABI},
		{"p2p", p2pEventsABI, &d.p2pABI},
		{"chainlink topup", topupEventsABI, &d.topupABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(entry.raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s events ABI: %w", entry.name, err)
		}
		*entry.dest = parsed
	}
	return d, nil
}

// Addresses returns the contract addresses the worker filters logs on.
func (d *Decoder) Addresses() []common.Address {
	return []common.Address{
		d.contracts.Vault,
		d.contracts.Subscriptions,
		d.contracts.SubscriptionPlans,
		d.contracts.DCA,
		d.contracts.P2P,
		d.contracts.ChainlinkTopup,
	}
}

// Decode maps one log to its typed event. Logs from unknown contracts or
// with unknown topics decode to (nil, nil) and are skipped by the worker.
func (d *Decoder) Decode(chainID types.ChainID, lg ethtypes.Log, timestamp int64) (events.Event, error) {
	if len(lg.Topics) == 0 {
		return nil, nil
	}

	hdr := events.Header{
		Chain:       chainID,
		Contract:    lg.Address,
		BlockNumber: lg.BlockNumber,
		TxIndex:     lg.TxIndex,
		LogIndex:    lg.Index,
		TxHash:      lg.TxHash,
		Timestamp:   timestamp,
	}

	switch lg.Address {
	case d.contracts.Vault:
		return d.decodeVault(hdr, lg)
	case d.contracts.Subscriptions:
		return d.decodeSubscriptions(hdr, lg)
	case d.contracts.SubscriptionPlans:
		return d.decodePlans(hdr, lg)
	case d.contracts.DCA:
		return d.decodeDCA(hdr, lg)
	case d.contracts.P2P:
		return d.decodeP2P(hdr, lg)
	case d.contracts.ChainlinkTopup:
		return d.decodeTopup(hdr, lg)
	default:
		return nil, nil
	}
}

// unpackLog fills out from both the data segment and the indexed topics,
// the way abigen-generated bindings do.
func unpackLog(a abi.ABI, name string, out interface{}, lg ethtypes.Log) error {
	if len(lg.Data) > 0 {
		if err := a.UnpackIntoInterface(out, name, lg.Data); err != nil {
			return fmt.Errorf("failed to unpack %s data: %w", name, err)
		}
	}
	var indexed abi.Arguments
	for _, arg := range a.Events[name].Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) == 0 {
		return nil
	}
	if err := abi.ParseTopics(out, indexed, lg.Topics[1:]); err != nil {
		return fmt.Errorf("failed to parse %s topics: %w", name, err)
	}
	return nil
}

func (d *Decoder) decodeVault(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.vaultABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "AssetDeposited":
		var raw struct {
			Participant     common.Address
			Asset           common.Address
			AssetAmount     *big.Int
			BaseAssetAmount *big.Int
		}
		if err := unpackLog(d.vaultABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.AssetDeposited{
			Header: hdr, Participant: raw.Participant, Asset: raw.Asset,
			AssetAmount: raw.AssetAmount, BaseAssetAmount: raw.BaseAssetAmount,
		}, nil
	case "AssetWithdrawn":
		var raw struct {
			Participant     common.Address
			Asset           common.Address
			AssetAmount     *big.Int
			BaseAssetAmount *big.Int
		}
		if err := unpackLog(d.vaultABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.AssetWithdrawn{
			Header: hdr, Participant: raw.Participant, Asset: raw.Asset,
			AssetAmount: raw.AssetAmount, BaseAssetAmount: raw.BaseAssetAmount,
		}, nil
	case "Payment":
		var raw struct {
			From            common.Address
			To              common.Address
			BaseAssetAmount *big.Int
			Shares          *big.Int
			ProtocolFee     *big.Int
			NetworkFee      *big.Int
		}
		if err := unpackLog(d.vaultABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.Payment{
			Header: hdr, From: raw.From, To: raw.To,
			BaseAssetAmount: raw.BaseAssetAmount, Shares: raw.Shares,
			ProtocolFee: raw.ProtocolFee, NetworkFee: raw.NetworkFee,
		}, nil
	case "TransferValue":
		var raw struct {
			From            common.Address
			To              common.Address
			BaseAssetAmount *big.Int
			Shares          *big.Int
		}
		if err := unpackLog(d.vaultABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.TransferValue{
			Header: hdr, From: raw.From, To: raw.To,
			BaseAssetAmount: raw.BaseAssetAmount, Shares: raw.Shares,
		}, nil
	case "SetFundingSource":
		var raw struct {
			Participant   common.Address
			FundingSource uint8
			FundingAsset  common.Address
		}
		if err := unpackLog(d.vaultABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SetFundingSource{
			Header: hdr, Participant: raw.Participant,
			FundingSource: raw.FundingSource, FundingAsset: raw.FundingAsset,
		}, nil
	default:
		return nil, nil
	}
}

func (d *Decoder) decodeSubscriptions(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.subscriptionsABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	if ev.Name == "Transfer" {
		var raw struct {
			From    common.Address
			To      common.Address
			TokenId *big.Int
		}
		if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SubscriptionTransfer{Header: hdr, From: raw.From, To: raw.To, TokenID: raw.TokenId}, nil
	}

	switch ev.Name {
	case "SubscriptionCreated":
		var raw struct {
			Consumer       common.Address
			Provider       common.Address
			SubscriptionId *big.Int
			Ref            [32]byte
			PlanId         *big.Int
			DiscountId     [32]byte
		}
		if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SubscriptionCreated{
			Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider,
			SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref),
			PlanID: raw.PlanId, DiscountID: common.Hash(raw.DiscountId),
		}, nil
	case "SubscriptionChangedPlan":
		var raw struct {
			Consumer       common.Address
			Provider       common.Address
			SubscriptionId *big.Int
			Ref            [32]byte
			PrevPlanId     *big.Int
			PlanId         *big.Int
			DiscountId     [32]byte
		}
		if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SubscriptionChangedPlan{
			Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider,
			SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref),
			PrevPlanID: raw.PrevPlanId, PlanID: raw.PlanId, DiscountID: common.Hash(raw.DiscountId),
		}, nil
	case "SubscriptionPendingChangePlan":
		var raw struct {
			Consumer       common.Address
			Provider       common.Address
			SubscriptionId *big.Int
			Ref            [32]byte
			PrevPlanId     *big.Int
			PlanId         *big.Int
		}
		if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SubscriptionPendingChangePlan{
			Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider,
			SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref),
			PrevPlanID: raw.PrevPlanId, PlanID: raw.PlanId,
		}, nil
	case "SubscriptionPendingCancel":
		var raw struct {
			Consumer       common.Address
			Provider       common.Address
			SubscriptionId *big.Int
			Ref            [32]byte
			PlanId         *big.Int
			CancelAt       *big.Int
		}
		if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.SubscriptionPendingCancel{
			Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider,
			SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref),
			PlanID: raw.PlanId, CancelAt: raw.CancelAt,
		}, nil
	}

	// Remaining subscription lifecycle events share one shape.
	var raw struct {
		Consumer       common.Address
		Provider       common.Address
		SubscriptionId *big.Int
		Ref            [32]byte
		PlanId         *big.Int
	}
	if err := unpackLog(d.subscriptionsABI, ev.Name, &raw, lg); err != nil {
		return nil, err
	}

	switch ev.Name {
	case "SubscriptionPaused":
		return &events.SubscriptionPaused{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionPendingPause":
		return &events.SubscriptionPendingPause{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionResumed":
		return &events.SubscriptionResumed{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionRenewed":
		return &events.SubscriptionRenewed{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionPastDue":
		return &events.SubscriptionPastDue{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionCanceled":
		return &events.SubscriptionCanceled{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	case "SubscriptionTrialEnded":
		return &events.SubscriptionTrialEnded{Header: hdr, Consumer: raw.Consumer, Provider: raw.Provider, SubscriptionID: raw.SubscriptionId, Ref: common.Hash(raw.Ref), PlanID: raw.PlanId}, nil
	default:
		return nil, nil
	}
}

func (d *Decoder) decodePlans(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.plansABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	if ev.Name == "ProviderSetProfile" {
		var raw struct {
			Provider       common.Address
			PaymentAddress common.Address
			Nonce          *big.Int
			Cid            string
		}
		if err := unpackLog(d.plansABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.ProviderSetProfile{
			Header: hdr, Provider: raw.Provider, PaymentAddress: raw.PaymentAddress,
			Nonce: raw.Nonce, CID: raw.Cid,
		}, nil
	}

	var raw struct {
		Provider common.Address
		PlanId   *big.Int
	}
	if err := unpackLog(d.plansABI, ev.Name, &raw, lg); err != nil {
		return nil, err
	}

	switch ev.Name {
	case "PlanEnabled":
		return &events.PlanEnabled{Header: hdr, Provider: raw.Provider, PlanID: raw.PlanId}, nil
	case "PlanDisabled":
		return &events.PlanDisabled{Header: hdr, Provider: raw.Provider, PlanID: raw.PlanId}, nil
	case "PlanRetired":
		return &events.PlanRetired{Header: hdr, Provider: raw.Provider, PlanID: raw.PlanId}, nil
	default:
		return nil, nil
	}
}

func (d *Decoder) decodeDCA(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.dcaABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "DCACreated":
		var raw struct {
			DcaId       [32]byte
			User        common.Address
			To          common.Address
			InputAsset  common.Address
			OutputAsset common.Address
			Amount      *big.Int
			TotalAmount *big.Int
			Period      uint32
		}
		if err := unpackLog(d.dcaABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.DCACreated{
			Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User, To: raw.To,
			InputAsset: raw.InputAsset, OutputAsset: raw.OutputAsset,
			Amount: raw.Amount, TotalAmount: raw.TotalAmount, Period: raw.Period,
		}, nil
	case "DCASkipped":
		var raw struct {
			DcaId      [32]byte
			User       common.Address
			SkipReason uint8
		}
		if err := unpackLog(d.dcaABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.DCASkipped{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User, SkipReason: raw.SkipReason}, nil
	case "DCAProcessed":
		var raw struct {
			DcaId  [32]byte
			User   common.Address
			Amount *big.Int
			BuyQty *big.Int
			Fee    *big.Int
		}
		if err := unpackLog(d.dcaABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.DCAProcessed{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User, Amount: raw.Amount, BuyQty: raw.BuyQty, Fee: raw.Fee}, nil
	}

	var raw struct {
		DcaId [32]byte
		User  common.Address
	}
	if err := unpackLog(d.dcaABI, ev.Name, &raw, lg); err != nil {
		return nil, err
	}

	switch ev.Name {
	case "DCAPaused":
		return &events.DCAPaused{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User}, nil
	case "DCAResumed":
		return &events.DCAResumed{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User}, nil
	case "DCACanceled":
		return &events.DCACanceled{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User}, nil
	case "DCACompleted":
		return &events.DCACompleted{Header: hdr, DCAID: common.Hash(raw.DcaId), User: raw.User}, nil
	default:
		return nil, nil
	}
}

func (d *Decoder) decodeP2P(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.p2pABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "P2PCreated":
		var raw struct {
			P2pId       [32]byte
			User        common.Address
			To          common.Address
			Amount      *big.Int
			TotalAmount *big.Int
			Period      uint32
		}
		if err := unpackLog(d.p2pABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.P2PCreated{
			Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User, To: raw.To,
			Amount: raw.Amount, TotalAmount: raw.TotalAmount, Period: raw.Period,
		}, nil
	case "P2PProcessed":
		var raw struct {
			P2pId  [32]byte
			User   common.Address
			Amount *big.Int
			Fee    *big.Int
		}
		if err := unpackLog(d.p2pABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.P2PProcessed{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User, Amount: raw.Amount, Fee: raw.Fee}, nil
	}

	var raw struct {
		P2pId [32]byte
		User  common.Address
	}
	if err := unpackLog(d.p2pABI, ev.Name, &raw, lg); err != nil {
		return nil, err
	}

	switch ev.Name {
	case "P2PPaused":
		return &events.P2PPaused{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User}, nil
	case "P2PResumed":
		return &events.P2PResumed{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User}, nil
	case "P2PSkipped":
		return &events.P2PSkipped{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User}, nil
	case "P2PCanceled":
		return &events.P2PCanceled{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User}, nil
	case "P2PCompleted":
		return &events.P2PCompleted{Header: hdr, P2PID: common.Hash(raw.P2pId), User: raw.User}, nil
	default:
		return nil, nil
	}
}

func (d *Decoder) decodeTopup(hdr events.Header, lg ethtypes.Log) (events.Event, error) {
	ev, err := d.topupABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "ChainlinkTopupSkipped":
		var raw struct {
			ChainlinkTopupId [32]byte
			User             common.Address
			TargetId         *big.Int
			Registry         common.Address
			TopupType        uint8
			SkipReason       uint8
		}
		if err := unpackLog(d.topupABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.ChainlinkTopupSkipped{
			Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User,
			TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType,
			SkipReason: raw.SkipReason,
		}, nil
	case "ChainlinkTopupProcessed":
		var raw struct {
			ChainlinkTopupId [32]byte
			User             common.Address
			TargetId         *big.Int
			Registry         common.Address
			TopupType        uint8
			Amount           *big.Int
			BuyQty           *big.Int
			Fee              *big.Int
		}
		if err := unpackLog(d.topupABI, ev.Name, &raw, lg); err != nil {
			return nil, err
		}
		return &events.ChainlinkTopupProcessed{
			Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User,
			TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType,
			Amount: raw.Amount, BuyQty: raw.BuyQty, Fee: raw.Fee,
		}, nil
	}

	var raw struct {
		ChainlinkTopupId [32]byte
		User             common.Address
		TargetId         *big.Int
		Registry         common.Address
		TopupType        uint8
	}
	if err := unpackLog(d.topupABI, ev.Name, &raw, lg); err != nil {
		return nil, err
	}

	switch ev.Name {
	case "ChainlinkTopupCreated":
		return &events.ChainlinkTopupCreated{Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User, TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType}, nil
	case "ChainlinkTopupPaused":
		return &events.ChainlinkTopupPaused{Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User, TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType}, nil
	case "ChainlinkTopupResumed":
		return &events.ChainlinkTopupResumed{Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User, TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType}, nil
	case "ChainlinkTopupCanceled":
		return &events.ChainlinkTopupCanceled{Header: hdr, TopupID: common.Hash(raw.ChainlinkTopupId), User: raw.User, TargetID: raw.TargetId, Registry: raw.Registry, TopupType: raw.TopupType}, nil
	default:
		return nil, nil
	}
}
