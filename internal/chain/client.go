// Package chain reads subscription terms from the on-chain subscriptions
// contract.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/graphops/graph-subscriptions/internal/config"
	"github.com/graphops/graph-subscriptions/internal/subscription"
)

// subscriptionsABI covers the single view function the gateway consumes.
const subscriptionsABI = `[{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"subscriptions","outputs":[{"internalType":"uint64","name":"start","type":"uint64"},{"internalType":"uint64","name":"end","type":"uint64"},{"internalType":"uint128","name":"rate","type":"uint128"}],"stateMutability":"view","type":"function"}]`

// Client wraps go-ethereum and the bound Subscriptions contract.
type Client struct {
	eth          *ethclient.Client
	contract     *bind.BoundContract
	contractAddr common.Address
	chainID      uint64
}

func NewClient(cfg *config.Config) (*Client, error) {
	eth, err := ethclient.Dial(cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(subscriptionsABI))
	if err != nil {
		return nil, fmt.Errorf("parse subscriptions abi: %w", err)
	}

	addr := common.HexToAddress(cfg.Chain.ContractAddress)
	return &Client{
		eth:          eth,
		contract:     bind.NewBoundContract(addr, parsed, eth, eth, eth),
		contractAddr: addr,
		chainID:      uint64(cfg.Chain.ChainID),
	}, nil
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID() uint64 { return c.chainID }

// ContractAddress returns the subscriptions contract address.
func (c *Client) ContractAddress() common.Address { return c.contractAddr }

// GetSubscription reads the (start, end, rate) tuple for user and
// converts it into a Subscription.
func (c *Client) GetSubscription(ctx context.Context, user common.Address) (subscription.Subscription, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "subscriptions", user); err != nil {
		return subscription.Subscription{}, fmt.Errorf("subscriptions(%s): %w", user.Hex(), err)
	}

	start := *abi.ConvertType(out[0], new(uint64)).(*uint64)
	end := *abi.ConvertType(out[1], new(uint64)).(*uint64)
	rate := abi.ConvertType(out[2], new(big.Int)).(*big.Int)

	return subscription.FromTuple(start, end, rate)
}
