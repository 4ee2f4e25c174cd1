// Package chain provides the RPC client used to fetch logs and read
// contract state back after an event is observed.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	caskerrors "github.com/cask-indexer/internal/errors"
)

// SubscriptionInfo mirrors the subscription state tuple returned by the
// subscriptions contract.
// Field names follow the tuple component names so abi.ConvertType can map
// the unpacked anonymous struct onto it.
type SubscriptionInfo struct {
	PlanData      [32]byte
	DiscountId    [32]byte
	DiscountData  [32]byte
	Ref           [32]byte
	PlanId        uint32
	CreatedAt     uint32
	RenewAt       uint32
	MinTermAt     uint32
	CancelAt      uint32
	Provider      common.Address
	Status        uint8
	PendingPlanId uint32
	Cid           string
	DataCid       string
}

// DCAInfo mirrors the DCA state tuple. Path holds the swap route; the
// input asset is path[0] and the output asset is the last element.
type DCAInfo struct {
	User           common.Address
	To             common.Address
	Router         common.Address
	PriceFeed      common.Address
	Path           []common.Address
	Status         uint8
	Amount         *big.Int
	TotalAmount    *big.Int
	CurrentAmount  *big.Int
	CurrentQty     *big.Int
	NumBuys        *big.Int
	NumSkips       *big.Int
	MaxSlippageBps *big.Int
	MinPrice       *big.Int
	MaxPrice       *big.Int
	Period         uint32
	CreatedAt      uint32
	ProcessAt      uint32
}

// P2PInfo mirrors the P2P state tuple.
type P2PInfo struct {
	User          common.Address
	To            common.Address
	Amount        *big.Int
	TotalAmount   *big.Int
	CurrentAmount *big.Int
	NumPayments   *big.Int
	NumSkips      *big.Int
	Period        uint32
	CreatedAt     uint32
	ProcessAt     uint32
	Status        uint8
}

// TopupInfo mirrors the Chainlink top-up state tuple.
type TopupInfo struct {
	User          common.Address
	LowBalance    *big.Int
	TopupAmount   *big.Int
	CurrentAmount *big.Int
	CurrentBuyQty *big.Int
	NumTopups     *big.Int
	NumSkips      *big.Int
	CreatedAt     uint32
	ProcessAt     uint32
	Status        uint8
	TargetId      *big.Int
	Registry      common.Address
	TopupType     uint8
}

// Reader reads contract state back at handling time. Handlers treat a
// reverted call and a zero-address subject the same way: the entity is
// not on chain yet, skip the mutation.
type Reader interface {
	GetSubscription(ctx context.Context, contract common.Address, subscriptionID *big.Int) (*SubscriptionInfo, common.Address, error)
	GetDCA(ctx context.Context, contract common.Address, dcaID common.Hash) (*DCAInfo, error)
	GetP2P(ctx context.Context, contract common.Address, p2pID common.Hash) (*P2PInfo, error)
	GetChainlinkTopup(ctx context.Context, contract common.Address, topupID common.Hash) (*TopupInfo, error)
}

const subscriptionsABI = `[{"inputs":[{"internalType":"uint256","name":"subscriptionId","type":"uint256"}],"name":"getSubscription","outputs":[{"components":[{"internalType":"bytes32","name":"planData","type":"bytes32"},{"internalType":"bytes32","name":"discountId","type":"bytes32"},{"internalType":"bytes32","name":"discountData","type":"bytes32"},{"internalType":"bytes32","name":"ref","type":"bytes32"},{"internalType":"uint32","name":"planId","type":"uint32"},{"internalType":"uint32","name":"createdAt","type":"uint32"},{"internalType":"uint32","name":"renewAt","type":"uint32"},{"internalType":"uint32","name":"minTermAt","type":"uint32"},{"internalType":"uint32","name":"cancelAt","type":"uint32"},{"internalType":"address","name":"provider","type":"address"},{"internalType":"uint8","name":"status","type":"uint8"},{"internalType":"uint32","name":"pendingPlanId","type":"uint32"},{"internalType":"string","name":"cid","type":"string"},{"internalType":"string","name":"dataCid","type":"string"}],"internalType":"struct ICaskSubscriptions.Subscription","name":"subscription","type":"tuple"},{"internalType":"address","name":"currentOwner","type":"address"}],"stateMutability":"view","type":"function"}]`

const dcaABI = `[{"inputs":[{"internalType":"bytes32","name":"dcaId","type":"bytes32"}],"name":"getDCA","outputs":[{"components":[{"internalType":"address","name":"user","type":"address"},{"internalType":"address","name":"to","type":"address"},{"internalType":"address","name":"router","type":"address"},{"internalType":"address","name":"priceFeed","type":"address"},{"internalType":"address[]","name":"path","type":"address[]"},{"internalType":"uint8","name":"status","type":"uint8"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"uint256","name":"totalAmount","type":"uint256"},{"internalType":"uint256","name":"currentAmount","type":"uint256"},{"internalType":"uint256","name":"currentQty","type":"uint256"},{"internalType":"uint256","name":"numBuys","type":"uint256"},{"internalType":"uint256","name":"numSkips","type":"uint256"},{"internalType":"uint256","name":"maxSlippageBps","type":"uint256"},{"internalType":"uint256","name":"minPrice","type":"uint256"},{"internalType":"uint256","name":"maxPrice","type":"uint256"},{"internalType":"uint32","name":"period","type":"uint32"},{"internalType":"uint32","name":"createdAt","type":"uint32"},{"internalType":"uint32","name":"processAt","type":"uint32"}],"internalType":"struct ICaskDCA.DCA","name":"","type":"tuple"}],"stateMutability":"view","type":"function"}]`

const p2pABI = `[{"inputs":[{"internalType":"bytes32","name":"p2pId","type":"bytes32"}],"name":"getP2P","outputs":[{"components":[{"internalType":"address","name":"user","type":"address"},{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"uint256","name":"totalAmount","type":"uint256"},{"internalType":"uint256","name":"currentAmount","type":"uint256"},{"internalType":"uint256","name":"numPayments","type":"uint256"},{"internalType":"uint256","name":"numSkips","type":"uint256"},{"internalType":"uint32","name":"period","type":"uint32"},{"internalType":"uint32","name":"createdAt","type":"uint32"},{"internalType":"uint32","name":"processAt","type":"uint32"},{"internalType":"uint8","name":"status","type":"uint8"}],"internalType":"struct ICaskP2P.P2P","name":"","type":"tuple"}],"stateMutability":"view","type":"function"}]`

const chainlinkTopupABI = `[{"inputs":[{"internalType":"bytes32","name":"chainlinkTopupId","type":"bytes32"}],"name":"getChainlinkTopup","outputs":[{"components":[{"internalType":"address","name":"user","type":"address"},{"internalType":"uint256","name":"lowBalance","type":"uint256"},{"internalType":"uint256","name":"topupAmount","type":"uint256"},{"internalType":"uint256","name":"currentAmount","type":"uint256"},{"internalType":"uint256","name":"currentBuyQty","type":"uint256"},{"internalType":"uint256","name":"numTopups","type":"uint256"},{"internalType":"uint256","name":"numSkips","type":"uint256"},{"internalType":"uint32","name":"createdAt","type":"uint32"},{"internalType":"uint32","name":"processAt","type":"uint32"},{"internalType":"uint8","name":"status","type":"uint8"},{"internalType":"uint256","name":"targetId","type":"uint256"},{"internalType":"address","name":"registry","type":"address"},{"internalType":"uint8","name":"topupType","type":"uint8"}],"internalType":"struct ICaskChainlinkTopup.ChainlinkTopup","name":"","type":"tuple"}],"stateMutability":"view","type":"function"}]`

// Client wraps an ethclient connection to one chain. It is the single
// RPC entry point for both log fetching and state read-backs.
type Client struct {
	eth *ethclient.Client

	subscriptionsABI  abi.ABI
	dcaABI            abi.ABI
	p2pABI            abi.ABI
	chainlinkTopupABI abi.ABI
}

// Dial connects to an RPC endpoint.
func Dial(rpcURL string) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return NewClient(eth)
}

// NewClient wraps an existing ethclient connection.
func NewClient(eth *ethclient.Client) (*Client, error) {
	client := &Client{eth: eth}
	var err error
	if client.subscriptionsABI, err = abi.JSON(strings.NewReader(subscriptionsABI)); err != nil {
		return nil, fmt.Errorf("failed to parse subscriptions ABI: %w", err)
	}
	if client.dcaABI, err = abi.JSON(strings.NewReader(dcaABI)); err != nil {
		return nil, fmt.Errorf("failed to parse dca ABI: %w", err)
	}
	if client.p2pABI, err = abi.JSON(strings.NewReader(p2pABI)); err != nil {
		return nil, fmt.Errorf("failed to parse p2p ABI: %w", err)
	}
	if client.chainlinkTopupABI, err = abi.JSON(strings.NewReader(chainlinkTopupABI)); err != nil {
		return nil, fmt.Errorf("failed to parse chainlink topup ABI: %w", err)
	}
	return client, nil
}

// Close closes the RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// HeaderByNumber returns the header for a block number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return c.eth.HeaderByNumber(ctx, number)
}

// FilterLogs fetches logs matching the query.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return c.eth.FilterLogs(ctx, query)
}

func (c *Client) call(ctx context.Context, parsed abi.ABI, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	res, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
			return nil, caskerrors.NewReverted(method, contract.Hex(), err)
		}
		return nil, caskerrors.NewRPC(method, contract.Hex(), err)
	}
	out, err := parsed.Unpack(method, res)
	if err != nil {
		return nil, caskerrors.NewRPC(method, contract.Hex(), fmt.Errorf("failed to unpack result: %w", err))
	}
	return out, nil
}

// GetSubscription reads a subscription's current state and owner.
func (c *Client) GetSubscription(ctx context.Context, contract common.Address, subscriptionID *big.Int) (*SubscriptionInfo, common.Address, error) {
	out, err := c.call(ctx, c.subscriptionsABI, contract, "getSubscription", subscriptionID)
	if err != nil {
		return nil, common.Address{}, err
	}
	info := abi.ConvertType(out[0], new(SubscriptionInfo)).(*SubscriptionInfo)
	owner := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)
	return info, owner, nil
}

// GetDCA reads a DCA schedule's current state.
func (c *Client) GetDCA(ctx context.Context, contract common.Address, dcaID common.Hash) (*DCAInfo, error) {
	out, err := c.call(ctx, c.dcaABI, contract, "getDCA", [32]byte(dcaID))
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(DCAInfo)).(*DCAInfo), nil
}

// GetP2P reads a P2P schedule's current state.
func (c *Client) GetP2P(ctx context.Context, contract common.Address, p2pID common.Hash) (*P2PInfo, error) {
	out, err := c.call(ctx, c.p2pABI, contract, "getP2P", [32]byte(p2pID))
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(P2PInfo)).(*P2PInfo), nil
}

// GetChainlinkTopup reads a top-up schedule's current state.
func (c *Client) GetChainlinkTopup(ctx context.Context, contract common.Address, topupID common.Hash) (*TopupInfo, error) {
	out, err := c.call(ctx, c.chainlinkTopupABI, contract, "getChainlinkTopup", [32]byte(topupID))
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(TopupInfo)).(*TopupInfo), nil
}
