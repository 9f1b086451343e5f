// Package pool maintains pool, token, share, and price entities from
// weighted-pool contract events.
package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/model"
	"poolScope/internal/store"
)

// DefaultSwapFee is assigned to newly created pools.
var DefaultSwapFee = decimal.RequireFromString("0.000001")

// ChainReader is the subset of contract reads the pool handlers use.
type ChainReader interface {
	TokenMeta(ctx context.Context, token common.Address) model.TokenMeta
	PoolBalance(ctx context.Context, pool, token common.Address) (*big.Int, error)
	IsCrp(ctx context.Context, factory, addr common.Address) (bool, error)
	CrpPool(ctx context.Context, crp common.Address) (common.Address, error)
	CrpController(ctx context.Context, crp common.Address) (common.Address, error)
	CrpSymbol(ctx context.Context, crp common.Address) (string, error)
	CrpName(ctx context.Context, crp common.Address) (string, error)
	CrpCap(ctx context.Context, crp common.Address) (*big.Int, error)
	CrpRights(ctx context.Context, crp common.Address) ([]string, error)
}

// Watcher starts routing logs from a newly discovered contract.
type Watcher interface {
	Watch(ctx context.Context, role string, address common.Address, startBlock uint64) error
}

// Handlers applies pool events to the entity store.
type Handlers struct {
	network config.Network
	reader  ChainReader
	watcher Watcher
	logger  *zap.Logger

	factories  *store.Repository[model.Factory]
	pools      *store.Repository[model.Pool]
	poolTokens *store.Repository[model.PoolToken]
	shares     *store.Repository[model.PoolShare]
	crpShares  *store.Repository[model.CrpPoolShare]
	prices     *store.Repository[model.TokenPrice]
	swaps      *store.Repository[model.Swap]
	txs        *store.Repository[model.Transaction]
	users      *store.Repository[model.User]
}

// NewHandlers binds the pool handlers to a backend. A nil watcher disables
// registration of new pools.
func NewHandlers(backend store.Backend, network config.Network, reader ChainReader, watcher Watcher, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		network:    network,
		reader:     reader,
		watcher:    watcher,
		logger:     logger,
		factories:  store.NewRepository[model.Factory](backend),
		pools:      store.NewRepository[model.Pool](backend),
		poolTokens: store.NewRepository[model.PoolToken](backend),
		shares:     store.NewRepository[model.PoolShare](backend),
		crpShares:  store.NewRepository[model.CrpPoolShare](backend),
		prices:     store.NewRepository[model.TokenPrice](backend),
		swaps:      store.NewRepository[model.Swap](backend),
		txs:        store.NewRepository[model.Transaction](backend),
		users:      store.NewRepository[model.User](backend),
	}
}
