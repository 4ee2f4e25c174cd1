package projector

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/chain"
	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/storage"
	"github.com/cask-indexer/internal/types"
)

type stubReader struct {
	sub      *chain.SubscriptionInfo
	owner    common.Address
	subErr   error
	dca      *chain.DCAInfo
	dcaErr   error
	p2p      *chain.P2PInfo
	p2pErr   error
	topup    *chain.TopupInfo
	topupErr error
}

func (r *stubReader) GetSubscription(_ context.Context, _ common.Address, _ *big.Int) (*chain.SubscriptionInfo, common.Address, error) {
	if r.subErr != nil {
		return nil, common.Address{}, r.subErr
	}
	return r.sub, r.owner, nil
}

func (r *stubReader) GetDCA(_ context.Context, _ common.Address, _ common.Hash) (*chain.DCAInfo, error) {
	if r.dcaErr != nil {
		return nil, r.dcaErr
	}
	return r.dca, nil
}

func (r *stubReader) GetP2P(_ context.Context, _ common.Address, _ common.Hash) (*chain.P2PInfo, error) {
	if r.p2pErr != nil {
		return nil, r.p2pErr
	}
	return r.p2p, nil
}

func (r *stubReader) GetChainlinkTopup(_ context.Context, _ common.Address, _ common.Hash) (*chain.TopupInfo, error) {
	if r.topupErr != nil {
		return nil, r.topupErr
	}
	return r.topup, nil
}

func newTestProjector() (*Projector, *storage.MemoryStore, *stubReader) {
	store := storage.NewMemoryStore()
	reader := &stubReader{}
	log := logging.NewLogger(logging.LevelFatal, logging.FormatText)
	return New(store, reader, log), store, reader
}

var (
	consumerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	providerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherAddr    = common.HexToAddress("0x3333333333333333333333333333333333333333")
	usdcAddr     = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

const testTimestamp = int64(1650000000)

func testHeader(logIndex uint) events.Header {
	return events.Header{
		Chain:       types.ChainEthereum,
		Contract:    common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"),
		BlockNumber: 14600000,
		TxIndex:     3,
		LogIndex:    logIndex,
		TxHash:      common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001"),
		Timestamp:   testTimestamp,
	}
}

func packPlan(price uint64, planID, period, freeTrial, maxActive uint32, minPeriods uint16, gracePeriod, options uint8) [32]byte {
	var b [32]byte
	new(big.Int).SetUint64(price).FillBytes(b[0:12])
	binary.BigEndian.PutUint32(b[12:16], planID)
	binary.BigEndian.PutUint32(b[16:20], period)
	binary.BigEndian.PutUint32(b[20:24], freeTrial)
	binary.BigEndian.PutUint32(b[24:28], maxActive)
	binary.BigEndian.PutUint16(b[28:30], minPeriods)
	b[30] = gracePeriod
	b[31] = options
	return b
}

func activeSubscriptionInfo(statusCode uint8) *chain.SubscriptionInfo {
	return &chain.SubscriptionInfo{
		PlanData:  packPlan(5_000000, 10, 2592000, 0, 0, 0, 7, 0x03),
		Ref:       [32]byte{},
		PlanId:    10,
		CreatedAt: uint32(testTimestamp),
		RenewAt:   uint32(testTimestamp) + 2592000,
		Provider:  providerAddr,
		Status:    statusCode,
		Cid:       "QmSubCid",
	}
}

func createdEvent(logIndex uint, subID int64) *events.SubscriptionCreated {
	return &events.SubscriptionCreated{
		Header:         testHeader(logIndex),
		Consumer:       consumerAddr,
		Provider:       providerAddr,
		SubscriptionID: big.NewInt(subID),
		PlanID:         big.NewInt(10),
	}
}

func TestSubscriptionCreatedProjectsEntities(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(2)
	reader.owner = consumerAddr

	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	subID := hexutil.EncodeBig(big.NewInt(77))
	sub, err := store.GetSubscription(ctx, subID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, types.SubscriptionActive, sub.Status)
	assert.Equal(t, addrID(consumerAddr), sub.CurrentOwner)
	assert.Equal(t, addrID(providerAddr), sub.Provider)
	assert.Equal(t, models.PlanKey(addrID(providerAddr), 10), sub.Plan)
	assert.True(t, sub.Price.Equal(decimal.RequireFromString("5")), "price %s", sub.Price)
	assert.Equal(t, uint32(2592000), sub.Period)
	assert.True(t, sub.CanPause)
	assert.True(t, sub.CanTransfer)
	assert.Equal(t, "QmSubCid", sub.CID)

	consumer, err := store.GetConsumer(ctx, addrID(consumerAddr))
	require.NoError(t, err)
	require.NotNil(t, consumer)
	assert.Equal(t, int64(1), consumer.TotalSubscriptionCount)
	assert.Equal(t, int64(1), consumer.ActiveSubscriptionCount)

	provider, err := store.GetProvider(ctx, addrID(providerAddr))
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Equal(t, int64(1), provider.TotalSubscriptionCount)
	assert.Equal(t, int64(1), provider.ActiveSubscriptionCount)
	assert.Equal(t, int64(1), provider.ConvertedSubscriptionCount)

	plan, err := store.GetPlan(ctx, models.PlanKey(addrID(providerAddr), 10))
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, int64(1), plan.TotalSubscriptionCount)
	assert.Equal(t, int64(1), plan.ActiveSubscriptionCount)

	assert.Equal(t, 1, store.SubscriptionEventCount())

	metric, err := store.GetMetric(ctx, models.MetricKey("subscription.created", testTimestamp))
	require.NoError(t, err)
	require.NotNil(t, metric)
	assert.True(t, metric.Value.Equal(decimal.NewFromInt(1)))

	perProvider, err := store.GetMetric(ctx, models.MetricKey(AddressMetricName("subscription.created", providerAddr), testTimestamp))
	require.NoError(t, err)
	require.NotNil(t, perProvider)
	assert.True(t, perProvider.Value.Equal(decimal.NewFromInt(1)))
}

func TestSubscriptionCreatedKeepsRecordWhenReadBackReverts(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.subErr = caskerrors.NewReverted("getSubscription", "0xcc", errors.New("execution reverted"))

	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	// The append-only record survives; nothing else is projected.
	assert.Equal(t, 1, store.SubscriptionEventCount())

	sub, err := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	require.NoError(t, err)
	assert.Nil(t, sub)

	consumer, err := store.GetConsumer(ctx, addrID(consumerAddr))
	require.NoError(t, err)
	assert.Nil(t, consumer)
}

func TestSubscriptionCreatedSkipsZeroProvider(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = &chain.SubscriptionInfo{Status: 2}

	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	assert.Equal(t, 1, store.SubscriptionEventCount())
	sub, err := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestSubscriptionPausedReplayMovesCountersOnce(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(2)
	reader.owner = consumerAddr
	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	pause := func(logIndex uint) *events.SubscriptionPaused {
		return &events.SubscriptionPaused{
			Header:         testHeader(logIndex),
			Consumer:       consumerAddr,
			Provider:       providerAddr,
			SubscriptionID: big.NewInt(77),
			PlanID:         big.NewInt(10),
		}
	}
	require.NoError(t, p.Apply(ctx, pause(2)))
	require.NoError(t, p.Apply(ctx, pause(2)))

	sub, err := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, types.SubscriptionPaused, sub.Status)
	assert.Equal(t, testTimestamp, sub.PausedAt)

	consumer, _ := store.GetConsumer(ctx, addrID(consumerAddr))
	assert.Equal(t, int64(0), consumer.ActiveSubscriptionCount)

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	assert.Equal(t, int64(0), provider.ActiveSubscriptionCount)
	assert.Equal(t, int64(1), provider.PausedSubscriptionCount)

	plan, _ := store.GetPlan(ctx, models.PlanKey(addrID(providerAddr), 10))
	assert.Equal(t, int64(0), plan.ActiveSubscriptionCount)
	assert.Equal(t, int64(1), plan.PausedSubscriptionCount)
}

func TestSubscriptionResumedRestoresActiveCounters(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(2)
	reader.owner = consumerAddr
	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))
	require.NoError(t, p.Apply(ctx, &events.SubscriptionPaused{
		Header: testHeader(2), Consumer: consumerAddr, Provider: providerAddr,
		SubscriptionID: big.NewInt(77), PlanID: big.NewInt(10),
	}))
	require.NoError(t, p.Apply(ctx, &events.SubscriptionResumed{
		Header: testHeader(3), Consumer: consumerAddr, Provider: providerAddr,
		SubscriptionID: big.NewInt(77), PlanID: big.NewInt(10),
	}))

	sub, _ := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	assert.Equal(t, types.SubscriptionActive, sub.Status)

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	assert.Equal(t, int64(1), provider.ActiveSubscriptionCount)
	assert.Equal(t, int64(0), provider.PausedSubscriptionCount)
}

func TestSubscriptionRenewedConvertsTrial(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(1) // Trialing
	reader.owner = consumerAddr
	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	require.Equal(t, int64(1), provider.TrialingSubscriptionCount)
	require.Equal(t, int64(0), provider.ActiveSubscriptionCount)

	reader.sub = activeSubscriptionInfo(2) // Active after renewal
	require.NoError(t, p.Apply(ctx, &events.SubscriptionRenewed{
		Header: testHeader(2), Consumer: consumerAddr, Provider: providerAddr,
		SubscriptionID: big.NewInt(77), PlanID: big.NewInt(10),
	}))

	sub, _ := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	assert.Equal(t, types.SubscriptionActive, sub.Status)
	assert.Equal(t, int64(1), sub.RenewCount)
	assert.Equal(t, testTimestamp, sub.LastRenewedAt)

	provider, _ = store.GetProvider(ctx, addrID(providerAddr))
	assert.Equal(t, int64(0), provider.TrialingSubscriptionCount)
	assert.Equal(t, int64(1), provider.ConvertedSubscriptionCount)
	assert.Equal(t, int64(1), provider.ActiveSubscriptionCount)

	metric, _ := store.GetMetric(ctx, models.MetricKey("subscription.renewed", testTimestamp))
	require.NotNil(t, metric)
	assert.True(t, metric.Value.Equal(decimal.NewFromInt(1)))
}

func TestSubscriptionCanceledFromActive(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(2)
	reader.owner = consumerAddr
	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))
	require.NoError(t, p.Apply(ctx, &events.SubscriptionCanceled{
		Header: testHeader(2), Consumer: consumerAddr, Provider: providerAddr,
		SubscriptionID: big.NewInt(77), PlanID: big.NewInt(10),
	}))

	sub, _ := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	assert.Equal(t, types.SubscriptionCanceled, sub.Status)
	assert.Equal(t, testTimestamp, sub.CanceledAt)

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	assert.Equal(t, int64(0), provider.ActiveSubscriptionCount)
	assert.Equal(t, int64(1), provider.CanceledSubscriptionCount)
}

func TestSubscriptionCreatedRedeemsDiscount(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	discountID := common.HexToHash("0xdddd000000000000000000000000000000000000000000000000000000000001")
	info := activeSubscriptionInfo(2)
	info.DiscountId = discountID
	reader.sub = info
	reader.owner = consumerAddr

	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	discount, err := store.GetDiscount(ctx, models.DiscountKey(addrID(providerAddr), discountID.Hex()))
	require.NoError(t, err)
	require.NotNil(t, discount)
	assert.Equal(t, int64(1), discount.Redemptions)

	sub, _ := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	assert.Equal(t, discountID.Hex(), sub.DiscountID)
}

func TestSubscriptionTransferSkipsMint(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, &events.SubscriptionTransfer{
		Header: testHeader(1), From: common.Address{}, To: consumerAddr, TokenID: big.NewInt(77),
	}))
	assert.Equal(t, 0, store.SubscriptionEventCount())
}

func TestSubscriptionTransferUpdatesOwner(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.sub = activeSubscriptionInfo(2)
	reader.owner = consumerAddr
	require.NoError(t, p.Apply(ctx, createdEvent(1, 77)))

	require.NoError(t, p.Apply(ctx, &events.SubscriptionTransfer{
		Header: testHeader(2), From: consumerAddr, To: otherAddr, TokenID: big.NewInt(77),
	}))

	sub, _ := store.GetSubscription(ctx, hexutil.EncodeBig(big.NewInt(77)))
	assert.Equal(t, addrID(otherAddr), sub.CurrentOwner)
	assert.Equal(t, int64(1), sub.TransferCount)
	assert.Equal(t, 2, store.SubscriptionEventCount())
}

func TestVaultDepositAndWithdraw(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, &events.AssetDeposited{
		Header: testHeader(1), Participant: consumerAddr, Asset: usdcAddr,
		AssetAmount: big.NewInt(25_000000), BaseAssetAmount: big.NewInt(25_000000),
	}))
	require.NoError(t, p.Apply(ctx, &events.AssetWithdrawn{
		Header: testHeader(2), Participant: consumerAddr, Asset: usdcAddr,
		AssetAmount: big.NewInt(10_000000), BaseAssetAmount: big.NewInt(10_000000),
	}))

	user, err := store.GetUser(ctx, addrID(consumerAddr))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Balance.Equal(decimal.RequireFromString("15")), "balance %s", user.Balance)
	assert.Equal(t, int64(1), user.DepositCount)
	assert.Equal(t, int64(1), user.WithdrawCount)
	assert.True(t, user.DepositAmount.Equal(decimal.RequireFromString("25")))
	assert.True(t, user.WithdrawAmount.Equal(decimal.RequireFromString("10")))

	cask, err := store.GetCask(ctx)
	require.NoError(t, err)
	require.NotNil(t, cask)
	assert.Equal(t, int64(1), cask.TotalDepositCount)
	assert.True(t, cask.TotalDepositAmount.Equal(decimal.RequireFromString("25")))
	assert.True(t, cask.TotalWithdrawAmount.Equal(decimal.RequireFromString("10")))

	assert.Equal(t, 2, store.TransactionCount())
	hdr1 := testHeader(1)
	rec, ok := store.Transaction(hdr1.RecordID())
	require.True(t, ok)
	assert.Equal(t, "AssetDeposit", rec.Type)
	assert.Equal(t, addrID(usdcAddr), rec.AssetAddress)
}

func TestPaymentMovesBalancesAndFees(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, &events.Payment{
		Header: testHeader(1), From: consumerAddr, To: providerAddr,
		BaseAssetAmount: big.NewInt(10_000000),
		ProtocolFee:     big.NewInt(300000),
		NetworkFee:      big.NewInt(200000),
	}))

	from, _ := store.GetUser(ctx, addrID(consumerAddr))
	assert.True(t, from.Balance.Equal(decimal.RequireFromString("-10")))

	to, _ := store.GetUser(ctx, addrID(providerAddr))
	assert.True(t, to.Balance.Equal(decimal.RequireFromString("9.5")), "balance %s", to.Balance)

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	assert.True(t, provider.TotalPaymentsReceived.Equal(decimal.RequireFromString("10")))

	cask, _ := store.GetCask(ctx)
	assert.True(t, cask.TotalProtocolPayments.Equal(decimal.RequireFromString("10")))
	assert.True(t, cask.TotalProtocolFees.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, cask.TotalNetworkFees.Equal(decimal.RequireFromString("0.2")))
}

func dcaInfo(statusCode uint8) *chain.DCAInfo {
	return &chain.DCAInfo{
		User:           consumerAddr,
		To:             consumerAddr,
		Router:         otherAddr,
		PriceFeed:      otherAddr,
		Path:           []common.Address{usdcAddr, otherAddr},
		Status:         statusCode,
		Amount:         big.NewInt(100_000000),
		TotalAmount:    big.NewInt(1200_000000),
		CurrentAmount:  big.NewInt(0),
		CurrentQty:     big.NewInt(0),
		NumBuys:        big.NewInt(0),
		NumSkips:       big.NewInt(0),
		MaxSlippageBps: big.NewInt(100),
		MinPrice:       big.NewInt(0),
		MaxPrice:       big.NewInt(0),
		Period:         604800,
		CreatedAt:      uint32(testTimestamp),
		ProcessAt:      uint32(testTimestamp),
	}
}

func TestDCACreatedProjectsSchedule(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.dca = dcaInfo(1)

	dcaID := common.HexToHash("0xdca0000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, p.Apply(ctx, &events.DCACreated{
		Header: testHeader(1), DCAID: dcaID, User: consumerAddr, To: consumerAddr,
		InputAsset: usdcAddr, OutputAsset: otherAddr,
		Amount: big.NewInt(100_000000), TotalAmount: big.NewInt(1200_000000), Period: 604800,
	}))

	dca, err := store.GetDCA(ctx, dcaID.Hex())
	require.NoError(t, err)
	require.NotNil(t, dca)
	assert.Equal(t, types.FlowActive, dca.Status)
	assert.Equal(t, addrID(consumerAddr), dca.User)
	assert.Equal(t, addrID(usdcAddr), dca.InputAsset)
	assert.Equal(t, addrID(otherAddr), dca.OutputAsset)
	assert.True(t, dca.Amount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, int64(604800), dca.Period)
	assert.Equal(t, int64(100), dca.MaxSlippageBps)

	consumer, _ := store.GetConsumer(ctx, addrID(consumerAddr))
	assert.Equal(t, int64(1), consumer.TotalDCACount)
	assert.Equal(t, int64(1), consumer.ActiveDCACount)

	metric, _ := store.GetMetric(ctx, models.MetricKey("dca.created", testTimestamp))
	require.NotNil(t, metric)
	assert.True(t, metric.Value.Equal(decimal.NewFromInt(1)))

	hdr1 := testHeader(1)
	rec, ok := store.DCAEvent(hdr1.RecordID())
	require.True(t, ok)
	assert.Equal(t, "DCACreated", rec.Type)
	assert.Equal(t, addrID(otherAddr), rec.AssetAddress)
}

func TestDCAProcessedAccumulatesFees(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	reader.dca = dcaInfo(1)
	dcaID := common.HexToHash("0xdca0000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, p.Apply(ctx, &events.DCACreated{
		Header: testHeader(1), DCAID: dcaID, User: consumerAddr,
		OutputAsset: otherAddr, Amount: big.NewInt(100_000000),
		TotalAmount: big.NewInt(1200_000000), Period: 604800,
	}))

	processed := dcaInfo(1)
	processed.NumBuys = big.NewInt(1)
	processed.CurrentAmount = big.NewInt(100_000000)
	processed.CurrentQty = big.NewInt(55)
	reader.dca = processed

	process := &events.DCAProcessed{
		Header: testHeader(2), DCAID: dcaID, User: consumerAddr,
		Amount: big.NewInt(100_000000), BuyQty: big.NewInt(55), Fee: big.NewInt(1_000000),
	}
	require.NoError(t, p.Apply(ctx, process))

	processed.NumBuys = big.NewInt(2)
	processed.CurrentAmount = big.NewInt(200_000000)
	processed.CurrentQty = big.NewInt(110)
	process2 := &events.DCAProcessed{
		Header: testHeader(3), DCAID: dcaID, User: consumerAddr,
		Amount: big.NewInt(100_000000), BuyQty: big.NewInt(55), Fee: big.NewInt(1_000000),
	}
	require.NoError(t, p.Apply(ctx, process2))

	dca, _ := store.GetDCA(ctx, dcaID.Hex())
	assert.Equal(t, int64(2), dca.NumBuys)
	assert.True(t, dca.CurrentAmount.Equal(decimal.RequireFromString("200")))
	assert.True(t, dca.CurrentFees.Equal(decimal.RequireFromString("2")), "fees %s", dca.CurrentFees)
	assert.True(t, dca.CurrentQty.Equal(decimal.NewFromInt(110)))
	assert.Equal(t, testTimestamp, dca.LastProcessedAt)

	metric, _ := store.GetMetric(ctx, models.MetricKey("dca.processed", testTimestamp))
	require.NotNil(t, metric)
	assert.True(t, metric.Value.Equal(decimal.NewFromInt(2)))
}

func TestP2PLifecycleCounterSymmetry(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	p2pID := common.HexToHash("0x9990000000000000000000000000000000000000000000000000000000000001")
	reader.p2p = &chain.P2PInfo{
		User: consumerAddr, To: otherAddr,
		Amount: big.NewInt(50_000000), TotalAmount: big.NewInt(600_000000),
		CurrentAmount: big.NewInt(0), NumPayments: big.NewInt(0), NumSkips: big.NewInt(0),
		Period: 2592000, CreatedAt: uint32(testTimestamp), ProcessAt: uint32(testTimestamp),
		Status: 1,
	}

	require.NoError(t, p.Apply(ctx, &events.P2PCreated{
		Header: testHeader(1), P2PID: p2pID, User: consumerAddr, To: otherAddr,
		Amount: big.NewInt(50_000000), TotalAmount: big.NewInt(600_000000), Period: 2592000,
	}))
	reader.p2p.Status = 2
	require.NoError(t, p.Apply(ctx, &events.P2PPaused{Header: testHeader(2), P2PID: p2pID, User: consumerAddr}))
	reader.p2p.Status = 1
	require.NoError(t, p.Apply(ctx, &events.P2PResumed{Header: testHeader(3), P2PID: p2pID, User: consumerAddr}))
	require.NoError(t, p.Apply(ctx, &events.P2PCanceled{Header: testHeader(4), P2PID: p2pID, User: consumerAddr}))

	consumer, _ := store.GetConsumer(ctx, addrID(consumerAddr))
	assert.Equal(t, int64(1), consumer.TotalP2PCount)
	assert.Equal(t, int64(0), consumer.ActiveP2PCount)

	p2p, _ := store.GetP2P(ctx, p2pID.Hex())
	require.NotNil(t, p2p)
	assert.Equal(t, types.FlowCanceled, p2p.Status)
	assert.Equal(t, addrID(consumerAddr), p2p.User)
	assert.Equal(t, addrID(otherAddr), p2p.To)

	assert.Equal(t, 4, store.TransactionCount())
	hdr4 := testHeader(4)
	rec, ok := store.Transaction(hdr4.RecordID())
	require.True(t, ok)
	assert.Equal(t, "P2PCanceled", rec.Type)
}

func TestChainlinkTopupProcessedAccumulates(t *testing.T) {
	p, store, reader := newTestProjector()
	ctx := context.Background()
	topupID := common.HexToHash("0x7770000000000000000000000000000000000000000000000000000000000001")
	reader.topup = &chain.TopupInfo{
		User: consumerAddr, LowBalance: big.NewInt(5_000000000), TopupAmount: big.NewInt(20_000000),
		CurrentAmount: big.NewInt(0), CurrentBuyQty: big.NewInt(0),
		NumTopups: big.NewInt(0), NumSkips: big.NewInt(0),
		CreatedAt: uint32(testTimestamp), Status: 1,
		TargetId: big.NewInt(42), Registry: otherAddr, TopupType: 1,
	}

	require.NoError(t, p.Apply(ctx, &events.ChainlinkTopupCreated{
		Header: testHeader(1), TopupID: topupID, User: consumerAddr,
		TargetID: big.NewInt(42), Registry: otherAddr, TopupType: 1,
	}))

	consumer, _ := store.GetConsumer(ctx, addrID(consumerAddr))
	require.Equal(t, int64(1), consumer.TotalChainlinkTopupCount)
	require.Equal(t, int64(1), consumer.ActiveChainlinkTopupCount)

	reader.topup.NumTopups = big.NewInt(1)
	reader.topup.CurrentAmount = big.NewInt(20_000000)
	reader.topup.CurrentBuyQty = big.NewInt(7)
	require.NoError(t, p.Apply(ctx, &events.ChainlinkTopupProcessed{
		Header: testHeader(2), TopupID: topupID, User: consumerAddr,
		TargetID: big.NewInt(42), Registry: otherAddr, TopupType: 1,
		Amount: big.NewInt(20_000000), BuyQty: big.NewInt(7), Fee: big.NewInt(200000),
	}))

	topup, _ := store.GetChainlinkTopup(ctx, topupID.Hex())
	require.NotNil(t, topup)
	assert.Equal(t, int64(1), topup.NumTopups)
	assert.True(t, topup.CurrentAmount.Equal(decimal.RequireFromString("20")))
	assert.True(t, topup.CurrentBuyQty.Equal(decimal.NewFromInt(7)))
	assert.True(t, topup.CurrentFees.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, "42", topup.TargetID)

	hdr2 := testHeader(2)
	rec, ok := store.ChainlinkTopupEvent(hdr2.RecordID())
	require.True(t, ok)
	assert.Equal(t, "ChainlinkTopupProcessed", rec.Type)
	assert.True(t, rec.BuyQty.Equal(decimal.NewFromInt(7)))

	created, _ := store.GetMetric(ctx, models.MetricKey("cltu.created", testTimestamp))
	require.NotNil(t, created)
	processed, _ := store.GetMetric(ctx, models.MetricKey("cltu.processed", testTimestamp))
	require.NotNil(t, processed)
}

func TestPlanStatusHandlers(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, &events.PlanDisabled{
		Header: testHeader(1), Provider: providerAddr, PlanID: big.NewInt(10),
	}))
	plan, _ := store.GetPlan(ctx, models.PlanKey(addrID(providerAddr), 10))
	require.NotNil(t, plan)
	assert.Equal(t, types.PlanDisabled, plan.Status)

	require.NoError(t, p.Apply(ctx, &events.PlanRetired{
		Header: testHeader(2), Provider: providerAddr, PlanID: big.NewInt(10),
	}))
	plan, _ = store.GetPlan(ctx, models.PlanKey(addrID(providerAddr), 10))
	assert.Equal(t, types.PlanEndOfLife, plan.Status)
}

func TestProviderSetProfile(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, &events.ProviderSetProfile{
		Header: testHeader(1), Provider: providerAddr, PaymentAddress: otherAddr,
		Nonce: big.NewInt(3), CID: "QmProfile",
	}))

	provider, _ := store.GetProvider(ctx, addrID(providerAddr))
	require.NotNil(t, provider)
	assert.Equal(t, "QmProfile", provider.ProfileCID)
	assert.Equal(t, int64(3), provider.ProfileNonce)
	assert.Equal(t, addrID(otherAddr), provider.PaymentAddress)
}

func TestMetricDayBucketing(t *testing.T) {
	p, store, _ := newTestProjector()
	ctx := context.Background()

	// 950400 and 1036799 share a UTC day; 1036800 starts the next one.
	require.NoError(t, p.incrementMetric(ctx, "dca.created", 950400))
	require.NoError(t, p.incrementMetric(ctx, "dca.created", 1036799))
	require.NoError(t, p.incrementMetric(ctx, "dca.created", 1036800))

	first, _ := store.GetMetric(ctx, models.MetricKey("dca.created", 950400))
	require.NotNil(t, first)
	assert.True(t, first.Value.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, int64(950400), first.Date)

	second, _ := store.GetMetric(ctx, models.MetricKey("dca.created", 1036800))
	require.NotNil(t, second)
	assert.True(t, second.Value.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int64(1036800), second.Date)
}

func TestApplyRejectsUnknownEvent(t *testing.T) {
	p, _, _ := newTestProjector()

	type bogusEvent struct{ events.Header }
	err := p.Apply(context.Background(), &bogusEvent{testHeader(1)})
	require.Error(t, err)
}
