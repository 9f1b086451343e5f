package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"poolScope/internal/metrics"
)

// TxMeta is the sender and gas price of a transaction.
type TxMeta struct {
	From     common.Address
	GasPrice *big.Int
}

// Option customises a Client.
type Option func(*Client)

// WithRateLimit caps outgoing requests at rps with the given burst. rps <= 0 disables the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records per-method RPC latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	limiter   *rate.Limiter
	metrics   *metrics.Metrics

	mu      sync.RWMutex
	tsCache map[uint64]uint64
	txCache map[common.Hash]TxMeta
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, opts ...Option) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		tsCache:   make(map[uint64]uint64),
		txCache:   make(map[common.Hash]TxMeta),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) begin(ctx context.Context) (time.Time, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return time.Time{}, err
		}
	}
	return time.Now(), nil
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	started, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	id, err := c.ethClient.ChainID(ctx)
	c.metrics.ObserveRPC("eth_chainId", started, err)
	return id, err
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	started, err := c.begin(ctx)
	if err != nil {
		return 0, err
	}
	number, err := c.ethClient.BlockNumber(ctx)
	c.metrics.ObserveRPC("eth_blockNumber", started, err)
	return number, err
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	started, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	header, err := c.ethClient.HeaderByNumber(ctx, number)
	c.metrics.ObserveRPC("eth_getBlockByNumber", started, err)
	return header, err
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// TransactionMeta returns the sender and gas price of a mined transaction, cached by hash.
func (c *Client) TransactionMeta(ctx context.Context, hash common.Hash, blockHash common.Hash, index uint) (TxMeta, error) {
	c.mu.RLock()
	meta, ok := c.txCache[hash]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	started, err := c.begin(ctx)
	if err != nil {
		return TxMeta{}, err
	}
	tx, _, err := c.ethClient.TransactionByHash(ctx, hash)
	c.metrics.ObserveRPC("eth_getTransactionByHash", started, err)
	if err != nil {
		return TxMeta{}, fmt.Errorf("transaction %s: %w", hash.Hex(), err)
	}

	started, err = c.begin(ctx)
	if err != nil {
		return TxMeta{}, err
	}
	from, err := c.ethClient.TransactionSender(ctx, tx, blockHash, index)
	c.metrics.ObserveRPC("eth_getTransactionByBlockHashAndIndex", started, err)
	if err != nil {
		return TxMeta{}, fmt.Errorf("sender of %s: %w", hash.Hex(), err)
	}

	meta = TxMeta{From: from, GasPrice: tx.GasPrice()}
	c.mu.Lock()
	c.txCache[hash] = meta
	c.mu.Unlock()
	return meta, nil
}

// FilterLogs returns logs in the given range for addresses and topic0 filters.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	addresses []common.Address,
	topic0 []common.Hash,
) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	started, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := c.ethClient.FilterLogs(ctx, query)
	c.metrics.ObserveRPC("eth_getLogs", started, err)
	return logs, err
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	started, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	c.metrics.ObserveRPC("eth_call", started, err)
	return out, err
}
