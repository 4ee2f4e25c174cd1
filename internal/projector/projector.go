// Package projector turns decoded contract logs into entity state. One
// Projector instance serves one chain; events must arrive in canonical
// chain order (block number, transaction index, log index) and are applied
// strictly one at a time.
//
// Every handler follows the same shape: resolve the acting addresses,
// append the immutable event record, then mutate the subject entity and
// its counters. Counter moves are guarded by the previous status, so
// replaying a block after a crash cannot double-count.
package projector

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cask-indexer/internal/chain"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/storage"
)

// Projector applies decoded events to the entity store for one chain.
type Projector struct {
	store  storage.Store
	reader chain.Reader
	log    *logging.Logger
}

// New creates a projector. The reader may be nil only if no read-back
// event will ever be applied (tests exercise this with a stub instead).
func New(store storage.Store, reader chain.Reader, log *logging.Logger) *Projector {
	return &Projector{store: store, reader: reader, log: log}
}

// Apply projects one event. A nil return means the event is fully
// accounted for, including the handled-locally cases where the subject was
// missing or the read-back reverted. A non-nil return means the store or
// transport failed and the caller should retry the block.
func (p *Projector) Apply(ctx context.Context, ev events.Event) error {
	switch ev := ev.(type) {
	case *events.AssetDeposited:
		return p.handleAssetDeposited(ctx, ev)
	case *events.AssetWithdrawn:
		return p.handleAssetWithdrawn(ctx, ev)
	case *events.Payment:
		return p.handlePayment(ctx, ev)
	case *events.TransferValue:
		return p.handleTransferValue(ctx, ev)
	case *events.SetFundingSource:
		return p.handleSetFundingSource(ctx, ev)

	case *events.SubscriptionCreated:
		return p.handleSubscriptionCreated(ctx, ev)
	case *events.SubscriptionPendingChangePlan:
		return p.handleSubscriptionPendingChangePlan(ctx, ev)
	case *events.SubscriptionChangedPlan:
		return p.handleSubscriptionChangedPlan(ctx, ev)
	case *events.SubscriptionPaused:
		return p.handleSubscriptionPaused(ctx, ev)
	case *events.SubscriptionPendingPause:
		return p.handleSubscriptionPendingPause(ctx, ev)
	case *events.SubscriptionResumed:
		return p.handleSubscriptionResumed(ctx, ev)
	case *events.SubscriptionRenewed:
		return p.handleSubscriptionRenewed(ctx, ev)
	case *events.SubscriptionPastDue:
		return p.handleSubscriptionPastDue(ctx, ev)
	case *events.SubscriptionPendingCancel:
		return p.handleSubscriptionPendingCancel(ctx, ev)
	case *events.SubscriptionCanceled:
		return p.handleSubscriptionCanceled(ctx, ev)
	case *events.SubscriptionTrialEnded:
		return p.handleSubscriptionTrialEnded(ctx, ev)
	case *events.SubscriptionTransfer:
		return p.handleSubscriptionTransfer(ctx, ev)

	case *events.ProviderSetProfile:
		return p.handleProviderSetProfile(ctx, ev)
	case *events.PlanEnabled:
		return p.handlePlanEnabled(ctx, ev)
	case *events.PlanDisabled:
		return p.handlePlanDisabled(ctx, ev)
	case *events.PlanRetired:
		return p.handlePlanRetired(ctx, ev)

	case *events.DCACreated:
		return p.handleDCACreated(ctx, ev)
	case *events.DCAPaused:
		return p.handleDCAPaused(ctx, ev)
	case *events.DCAResumed:
		return p.handleDCAResumed(ctx, ev)
	case *events.DCASkipped:
		return p.handleDCASkipped(ctx, ev)
	case *events.DCAProcessed:
		return p.handleDCAProcessed(ctx, ev)
	case *events.DCACanceled:
		return p.handleDCACanceled(ctx, ev)
	case *events.DCACompleted:
		return p.handleDCACompleted(ctx, ev)

	case *events.P2PCreated:
		return p.handleP2PCreated(ctx, ev)
	case *events.P2PPaused:
		return p.handleP2PPaused(ctx, ev)
	case *events.P2PResumed:
		return p.handleP2PResumed(ctx, ev)
	case *events.P2PSkipped:
		return p.handleP2PSkipped(ctx, ev)
	case *events.P2PProcessed:
		return p.handleP2PProcessed(ctx, ev)
	case *events.P2PCanceled:
		return p.handleP2PCanceled(ctx, ev)
	case *events.P2PCompleted:
		return p.handleP2PCompleted(ctx, ev)

	case *events.ChainlinkTopupCreated:
		return p.handleChainlinkTopupCreated(ctx, ev)
	case *events.ChainlinkTopupPaused:
		return p.handleChainlinkTopupPaused(ctx, ev)
	case *events.ChainlinkTopupResumed:
		return p.handleChainlinkTopupResumed(ctx, ev)
	case *events.ChainlinkTopupSkipped:
		return p.handleChainlinkTopupSkipped(ctx, ev)
	case *events.ChainlinkTopupProcessed:
		return p.handleChainlinkTopupProcessed(ctx, ev)
	case *events.ChainlinkTopupCanceled:
		return p.handleChainlinkTopupCanceled(ctx, ev)

	default:
		return fmt.Errorf("unhandled event type %T", ev)
	}
}

// addrID normalizes an address into the lowercase hex entity key.
func addrID(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// bigID renders a numeric on-chain id as minimal 0x hex, the key format
// used for subscription ids.
func bigID(v *big.Int) string {
	return hexutil.EncodeBig(v)
}

// hashID renders a bytes32 on-chain id as 0x hex.
func hashID(h common.Hash) string {
	return h.Hex()
}

var zeroHash = common.Hash{}
