package indexer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/metrics"
	"poolScope/internal/model"
	"poolScope/internal/store"
)

// WatchList is the set of contracts the runner filters logs for. Version
// grows by one for every contract added, so AddedSince(v) lists the
// contracts registered after the caller last looked.
type WatchList interface {
	Addresses() []common.Address
	Version() int
	AddedSince(version int) []model.WatchedContract
}

// WatchSet is a persisted WatchList that also maps addresses to roles.
type WatchSet struct {
	mu      sync.RWMutex
	repo    *store.Repository[model.WatchedContract]
	roles   map[common.Address]string
	order   []model.WatchedContract
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewWatchSet loads previously registered contracts from the backend.
func NewWatchSet(ctx context.Context, backend store.Backend, m *metrics.Metrics, logger *zap.Logger) (*WatchSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &WatchSet{
		repo:    store.NewRepository[model.WatchedContract](backend),
		roles:   make(map[common.Address]string),
		metrics: m,
		logger:  logger,
	}
	stored, err := w.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watched contracts: %w", err)
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].StartBlock < stored[j].StartBlock })
	for _, c := range stored {
		w.add(*c)
	}
	return w, nil
}

// Watch registers address under role. Re-registering a known address is a no-op.
func (w *WatchSet) Watch(ctx context.Context, role string, address common.Address, startBlock uint64) error {
	w.mu.RLock()
	_, known := w.roles[address]
	w.mu.RUnlock()
	if known {
		return nil
	}
	contract := model.WatchedContract{ID: events.HexID(address), Role: role, StartBlock: startBlock}
	if err := w.repo.Save(ctx, &contract); err != nil {
		return err
	}
	w.add(contract)
	w.logger.Info("watching contract", zap.String("role", role), zap.String("address", contract.ID), zap.Uint64("start_block", startBlock))
	return nil
}

func (w *WatchSet) add(c model.WatchedContract) {
	address := common.HexToAddress(c.ID)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roles[address]; ok {
		return
	}
	w.roles[address] = c.Role
	w.order = append(w.order, c)
	if w.metrics != nil {
		w.metrics.WatchedContracts.WithLabelValues(c.Role).Inc()
	}
}

// Role returns the role an address was registered with.
func (w *WatchSet) Role(address common.Address) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	role, ok := w.roles[address]
	return role, ok
}

func (w *WatchSet) Addresses() []common.Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]common.Address, 0, len(w.order))
	for _, c := range w.order {
		out = append(out, common.HexToAddress(c.ID))
	}
	return out
}

func (w *WatchSet) Version() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

func (w *WatchSet) AddedSince(version int) []model.WatchedContract {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if version < 0 {
		version = 0
	}
	if version >= len(w.order) {
		return nil
	}
	out := make([]model.WatchedContract, len(w.order)-version)
	copy(out, w.order[version:])
	return out
}
