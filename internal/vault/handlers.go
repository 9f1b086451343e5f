// Package vault maintains NFT vault, holding, fee, and rollup entities from
// vault factory and vault contract events.
package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/contracts"
	"poolScope/internal/model"
	"poolScope/internal/store"
)

// FeeID is the id of the factory-wide fee schedule.
const FeeID = "global"

// ChainReader is the subset of contract reads the vault handlers use.
type ChainReader interface {
	TokenSymbol(ctx context.Context, token common.Address) (string, error)
	TokenName(ctx context.Context, token common.Address) (string, error)
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
	FeeDistributor(ctx context.Context, factory common.Address) (common.Address, error)
	FactoryVault(ctx context.Context, factory common.Address, vaultID *big.Int) (common.Address, error)
	FactoryFees(ctx context.Context, factory common.Address) (contracts.FlatFees, error)
	VaultAssetAddress(ctx context.Context, vault common.Address) (common.Address, error)
	VaultManager(ctx context.Context, vault common.Address) (common.Address, error)
	VaultIs1155(ctx context.Context, vault common.Address) (bool, error)
	VaultAllowAllItems(ctx context.Context, vault common.Address) (bool, error)
}

// Watcher starts routing logs from a newly discovered contract.
type Watcher interface {
	Watch(ctx context.Context, role string, address common.Address, startBlock uint64) error
}

// Handlers applies vault events to the entity store.
type Handlers struct {
	network config.Network
	reader  ChainReader
	watcher Watcher
	logger  *zap.Logger

	globals      *store.Repository[model.Global]
	vaults       *store.Repository[model.Vault]
	creators     *store.Repository[model.VaultCreator]
	assets       *store.Repository[model.Asset]
	tokens       *store.Repository[model.Token]
	managers     *store.Repository[model.Manager]
	fees         *store.Repository[model.Fee]
	features     *store.Repository[model.Feature]
	holdings     *store.Repository[model.Holding]
	users        *store.Repository[model.NftUser]
	mints        *store.Repository[model.Mint]
	redeems      *store.Repository[model.Redeem]
	swaps        *store.Repository[model.NftSwap]
	feeReceipts  *store.Repository[model.FeeReceipt]
	feeTransfers *store.Repository[model.FeeTransfer]
	days         *store.Repository[model.VaultDayData]
	hours        *store.Repository[model.VaultHourData]
}

// NewHandlers binds the vault handlers to a backend. A nil watcher disables
// registration of new vaults.
func NewHandlers(backend store.Backend, network config.Network, reader ChainReader, watcher Watcher, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		network:      network,
		reader:       reader,
		watcher:      watcher,
		logger:       logger,
		globals:      store.NewRepository[model.Global](backend),
		vaults:       store.NewRepository[model.Vault](backend),
		creators:     store.NewRepository[model.VaultCreator](backend),
		assets:       store.NewRepository[model.Asset](backend),
		tokens:       store.NewRepository[model.Token](backend),
		managers:     store.NewRepository[model.Manager](backend),
		fees:         store.NewRepository[model.Fee](backend),
		features:     store.NewRepository[model.Feature](backend),
		holdings:     store.NewRepository[model.Holding](backend),
		users:        store.NewRepository[model.NftUser](backend),
		mints:        store.NewRepository[model.Mint](backend),
		redeems:      store.NewRepository[model.Redeem](backend),
		swaps:        store.NewRepository[model.NftSwap](backend),
		feeReceipts:  store.NewRepository[model.FeeReceipt](backend),
		feeTransfers: store.NewRepository[model.FeeTransfer](backend),
		days:         store.NewRepository[model.VaultDayData](backend),
		hours:        store.NewRepository[model.VaultHourData](backend),
	}
}
