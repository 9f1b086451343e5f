package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/contracts"
	"poolScope/internal/indexer"
	"poolScope/internal/metrics"
	"poolScope/internal/model"
	"poolScope/internal/pool"
	"poolScope/internal/storage/postgres"
	"poolScope/internal/storage/sqlite"
	"poolScope/internal/store"
	"poolScope/internal/vault"
)

// engine bundles what index and sync share: the entity store, the watch
// set, the handlers behind a dispatcher, and the chain client for reads.
type engine struct {
	backend    store.Backend
	chain      *chain.Client
	watch      *indexer.WatchSet
	dispatcher *indexer.Dispatcher
	metrics    *metrics.Metrics
}

func openStore(ctx context.Context, cfg config.EngineConfig) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryBackend(), nil
	case config.StoreSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newEngine(ctx context.Context, cfg config.EngineConfig, startBlock uint64, errSink indexer.DecodeErrorSink, logger *zap.Logger) (*engine, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	network, err := config.LookupNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	m := metrics.New("", prometheus.NewRegistry())
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	var opts []chain.Option
	opts = append(opts, chain.WithMetrics(m))
	if cfg.RPCRPS > 0 {
		opts = append(opts, chain.WithRateLimit(cfg.RPCRPS, 1))
	}
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	backend, err := openStore(ctx, cfg)
	if err != nil {
		chainClient.Close()
		return nil, err
	}

	e := &engine{backend: backend, chain: chainClient, metrics: m}
	if err := e.wire(ctx, cfg, network, startBlock, errSink, logger); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *engine) wire(ctx context.Context, cfg config.EngineConfig, network config.Network, startBlock uint64, errSink indexer.DecodeErrorSink, logger *zap.Logger) error {
	watch, err := indexer.NewWatchSet(ctx, e.backend, e.metrics, logger)
	if err != nil {
		return err
	}
	if err := seedFactories(ctx, watch, cfg.PoolFactory, cfg.VaultFactory, startBlock); err != nil {
		return err
	}

	reader := contracts.NewReader(e.chain, logger)
	pools := pool.NewHandlers(e.backend, network, reader, watch, logger.Named("pool"))
	vaults := vault.NewHandlers(e.backend, network, reader, watch, logger.Named("vault"))
	dispatcher, err := indexer.NewDispatcher(watch, pools, vaults, e.metrics, errSink, logger)
	if err != nil {
		return err
	}
	e.watch = watch
	e.dispatcher = dispatcher
	return nil
}

func (e *engine) Close() {
	if e.backend != nil {
		e.backend.Close()
	}
	if e.chain != nil {
		e.chain.Close()
	}
}

// seedFactories registers the configured factory contracts.
func seedFactories(ctx context.Context, watch *indexer.WatchSet, poolFactory, vaultFactory string, startBlock uint64) error {
	seeds := []struct {
		role    string
		address string
	}{
		{model.RolePoolFactory, poolFactory},
		{model.RoleVaultFactory, vaultFactory},
	}
	for _, seed := range seeds {
		if seed.address == "" {
			continue
		}
		if !common.IsHexAddress(seed.address) {
			return fmt.Errorf("invalid %s address: %s", seed.role, seed.address)
		}
		if err := watch.Watch(ctx, seed.role, common.HexToAddress(seed.address), startBlock); err != nil {
			return err
		}
	}
	return nil
}
