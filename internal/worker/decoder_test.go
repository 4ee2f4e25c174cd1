package worker

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/types"
)

var testContracts = config.ContractAddresses{
	Vault:             common.HexToAddress("0x00000000000000000000000000000000000000a1"),
	Subscriptions:     common.HexToAddress("0x00000000000000000000000000000000000000a2"),
	SubscriptionPlans: common.HexToAddress("0x00000000000000000000000000000000000000a3"),
	DCA:               common.HexToAddress("0x00000000000000000000000000000000000000a4"),
	P2P:               common.HexToAddress("0x00000000000000000000000000000000000000a5"),
	ChainlinkTopup:    common.HexToAddress("0x00000000000000000000000000000000000000a6"),
}

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(testContracts)
	require.NoError(t, err)
	return d
}

func packData(t *testing.T, a abi.ABI, name string, args ...interface{}) []byte {
	t.Helper()
	data, err := a.Events[name].Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)
	return data
}

func testLog(contract common.Address, topics []common.Hash, data []byte) ethtypes.Log {
	return ethtypes.Log{
		Address:     contract,
		Topics:      topics,
		Data:        data,
		BlockNumber: 1200,
		TxHash:      common.HexToHash("0xbeef"),
		TxIndex:     3,
		Index:       7,
	}
}

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func TestDecoderAddressesCoverAllContracts(t *testing.T) {
	d := newTestDecoder(t)
	addrs := d.Addresses()
	assert.Len(t, addrs, 6)
	assert.Contains(t, addrs, testContracts.Vault)
	assert.Contains(t, addrs, testContracts.ChainlinkTopup)
}

func TestDecodeAssetDeposited(t *testing.T) {
	d := newTestDecoder(t)

	participant := common.HexToAddress("0x1111111111111111111111111111111111111111")
	asset := common.HexToAddress("0x4444444444444444444444444444444444444444")
	data := packData(t, d.vaultABI, "AssetDeposited", big.NewInt(25_000000), big.NewInt(25_000000))
	lg := testLog(testContracts.Vault, []common.Hash{
		d.vaultABI.Events["AssetDeposited"].ID,
		addressTopic(participant),
		addressTopic(asset),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)
	require.NotNil(t, ev)

	dep, ok := ev.(*events.AssetDeposited)
	require.True(t, ok)
	assert.Equal(t, participant, dep.Participant)
	assert.Equal(t, asset, dep.Asset)
	assert.Equal(t, int64(25_000000), dep.BaseAssetAmount.Int64())
	assert.Equal(t, types.ChainEthereum, dep.Chain)
	assert.Equal(t, uint64(1200), dep.BlockNumber)
	assert.Equal(t, uint(7), dep.LogIndex)
	assert.Equal(t, int64(1650000000), dep.Timestamp)
}

func TestDecodePayment(t *testing.T) {
	d := newTestDecoder(t)

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data := packData(t, d.vaultABI, "Payment",
		big.NewInt(10_000000), big.NewInt(10_000000), big.NewInt(300000), big.NewInt(200000))
	lg := testLog(testContracts.Vault, []common.Hash{
		d.vaultABI.Events["Payment"].ID,
		addressTopic(from),
		addressTopic(to),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	payment, ok := ev.(*events.Payment)
	require.True(t, ok)
	assert.Equal(t, from, payment.From)
	assert.Equal(t, to, payment.To)
	assert.Equal(t, int64(300000), payment.ProtocolFee.Int64())
	assert.Equal(t, int64(200000), payment.NetworkFee.Int64())
}

func TestDecodeSubscriptionCreated(t *testing.T) {
	d := newTestDecoder(t)

	consumer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	provider := common.HexToAddress("0x2222222222222222222222222222222222222222")
	ref := common.HexToHash("0xaaaa")
	discount := common.HexToHash("0xdddd")
	data := packData(t, d.subscriptionsABI, "SubscriptionCreated",
		[32]byte(ref), big.NewInt(10), [32]byte(discount))
	lg := testLog(testContracts.Subscriptions, []common.Hash{
		d.subscriptionsABI.Events["SubscriptionCreated"].ID,
		addressTopic(consumer),
		addressTopic(provider),
		common.BigToHash(big.NewInt(42)),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	created, ok := ev.(*events.SubscriptionCreated)
	require.True(t, ok)
	assert.Equal(t, consumer, created.Consumer)
	assert.Equal(t, provider, created.Provider)
	assert.Equal(t, int64(42), created.SubscriptionID.Int64())
	assert.Equal(t, ref, created.Ref)
	assert.Equal(t, int64(10), created.PlanID.Int64())
	assert.Equal(t, discount, created.DiscountID)
}

func TestDecodeSubscriptionPendingCancel(t *testing.T) {
	d := newTestDecoder(t)

	data := packData(t, d.subscriptionsABI, "SubscriptionPendingCancel",
		[32]byte{}, big.NewInt(10), big.NewInt(1660000000))
	lg := testLog(testContracts.Subscriptions, []common.Hash{
		d.subscriptionsABI.Events["SubscriptionPendingCancel"].ID,
		addressTopic(common.HexToAddress("0x1111111111111111111111111111111111111111")),
		addressTopic(common.HexToAddress("0x2222222222222222222222222222222222222222")),
		common.BigToHash(big.NewInt(42)),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	pending, ok := ev.(*events.SubscriptionPendingCancel)
	require.True(t, ok)
	assert.Equal(t, int64(1660000000), pending.CancelAt.Int64())
}

func TestDecodeERC721TransferHasNoData(t *testing.T) {
	d := newTestDecoder(t)

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	lg := testLog(testContracts.Subscriptions, []common.Hash{
		d.subscriptionsABI.Events["Transfer"].ID,
		addressTopic(from),
		addressTopic(to),
		common.BigToHash(big.NewInt(42)),
	}, nil)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	transfer, ok := ev.(*events.SubscriptionTransfer)
	require.True(t, ok)
	assert.Equal(t, from, transfer.From)
	assert.Equal(t, to, transfer.To)
	assert.Equal(t, int64(42), transfer.TokenID.Int64())
}

func TestDecodeProviderSetProfile(t *testing.T) {
	d := newTestDecoder(t)

	provider := common.HexToAddress("0x2222222222222222222222222222222222222222")
	payment := common.HexToAddress("0x5555555555555555555555555555555555555555")
	data := packData(t, d.plansABI, "ProviderSetProfile", payment, big.NewInt(3), "QmProfileCid")
	lg := testLog(testContracts.SubscriptionPlans, []common.Hash{
		d.plansABI.Events["ProviderSetProfile"].ID,
		addressTopic(provider),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	profile, ok := ev.(*events.ProviderSetProfile)
	require.True(t, ok)
	assert.Equal(t, provider, profile.Provider)
	assert.Equal(t, payment, profile.PaymentAddress)
	assert.Equal(t, int64(3), profile.Nonce.Int64())
	assert.Equal(t, "QmProfileCid", profile.CID)
}

func TestDecodeDCAProcessed(t *testing.T) {
	d := newTestDecoder(t)

	dcaID := common.HexToHash("0xd0d0")
	user := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data := packData(t, d.dcaABI, "DCAProcessed",
		big.NewInt(1_000000), big.NewInt(500), big.NewInt(10000))
	lg := testLog(testContracts.DCA, []common.Hash{
		d.dcaABI.Events["DCAProcessed"].ID,
		dcaID,
		addressTopic(user),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	processed, ok := ev.(*events.DCAProcessed)
	require.True(t, ok)
	assert.Equal(t, dcaID, processed.DCAID)
	assert.Equal(t, user, processed.User)
	assert.Equal(t, int64(1_000000), processed.Amount.Int64())
	assert.Equal(t, int64(500), processed.BuyQty.Int64())
	assert.Equal(t, int64(10000), processed.Fee.Int64())
}

func TestDecodeP2PCreated(t *testing.T) {
	d := newTestDecoder(t)

	p2pID := common.HexToHash("0x1234")
	user := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	data := packData(t, d.p2pABI, "P2PCreated",
		big.NewInt(5_000000), big.NewInt(50_000000), uint32(604800))
	lg := testLog(testContracts.P2P, []common.Hash{
		d.p2pABI.Events["P2PCreated"].ID,
		p2pID,
		addressTopic(user),
		addressTopic(to),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	created, ok := ev.(*events.P2PCreated)
	require.True(t, ok)
	assert.Equal(t, p2pID, created.P2PID)
	assert.Equal(t, user, created.User)
	assert.Equal(t, to, created.To)
	assert.Equal(t, uint32(604800), created.Period)
}

func TestDecodeChainlinkTopupSkipped(t *testing.T) {
	d := newTestDecoder(t)

	topupID := common.HexToHash("0xc1c1")
	user := common.HexToAddress("0x1111111111111111111111111111111111111111")
	registry := common.HexToAddress("0x6666666666666666666666666666666666666666")
	data := packData(t, d.topupABI, "ChainlinkTopupSkipped",
		big.NewInt(77), registry, uint8(1), uint8(2))
	lg := testLog(testContracts.ChainlinkTopup, []common.Hash{
		d.topupABI.Events["ChainlinkTopupSkipped"].ID,
		topupID,
		addressTopic(user),
	}, data)

	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	require.NoError(t, err)

	skipped, ok := ev.(*events.ChainlinkTopupSkipped)
	require.True(t, ok)
	assert.Equal(t, topupID, skipped.TopupID)
	assert.Equal(t, int64(77), skipped.TargetID.Int64())
	assert.Equal(t, registry, skipped.Registry)
	assert.Equal(t, uint8(1), skipped.TopupType)
	assert.Equal(t, uint8(2), skipped.SkipReason)
}

func TestDecodeUnknownTopicSkipped(t *testing.T) {
	d := newTestDecoder(t)

	lg := testLog(testContracts.Vault, []common.Hash{common.HexToHash("0xffff")}, nil)
	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeUnknownContractSkipped(t *testing.T) {
	d := newTestDecoder(t)

	lg := testLog(common.HexToAddress("0x00000000000000000000000000000000000000ff"), []common.Hash{
		d.vaultABI.Events["Payment"].ID,
	}, nil)
	ev, err := d.Decode(types.ChainEthereum, lg, 1650000000)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}
