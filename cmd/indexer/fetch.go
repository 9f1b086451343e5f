package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/contracts"
	"poolScope/internal/indexer"
	"poolScope/internal/model"
	"poolScope/internal/storage"
	"poolScope/internal/storage/sqlite"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}
	discover := cfg.PoolFactory != "" || cfg.VaultFactory != ""
	if len(addresses) == 0 && !discover {
		return fmt.Errorf("address list or a factory address is required")
	}

	topic0, err := indexer.ParseTopic0(cfg.Topic0)
	if err != nil {
		return err
	}

	network, err := config.LookupNetwork(cfg.Network)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var chainOpts []chain.Option
	if cfg.RPCRPS > 0 {
		chainOpts = append(chainOpts, chain.WithRateLimit(cfg.RPCRPS, 1))
	}
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chainOpts...)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var sink storage.Sink = storage.NewJsonlStorage(cfg.Out)
	runOpts := []indexer.RunnerOption{
		indexer.WithCheckpoint(indexer.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)),
	}

	if discover {
		watchDB, err := sqlite.NewStore(ctx, cfg.WatchDB)
		if err != nil {
			return err
		}
		defer watchDB.Close()

		watch, err := indexer.NewWatchSet(ctx, watchDB, nil, logger)
		if err != nil {
			return err
		}
		if err := seedFactories(ctx, watch, cfg.PoolFactory, cfg.VaultFactory, cfg.FromBlock); err != nil {
			return err
		}
		for _, address := range addresses {
			if err := watch.Watch(ctx, model.RoleExtra, address, cfg.FromBlock); err != nil {
				return err
			}
		}

		var crpFactory common.Address
		if network.CrpFactory != "" {
			crpFactory = common.HexToAddress(network.CrpFactory)
		}
		discoverer, err := indexer.NewDiscoverer(sink, watch, contracts.NewReader(chainClient, logger), crpFactory, logger)
		if err != nil {
			return err
		}
		sink = discoverer
		runOpts = append(runOpts, indexer.WithWatchList(watch))
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Addresses:    addresses,
		Topic0:       topic0,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		TxMeta:       cfg.TxMeta,
	}, chainClient, sink, logger, runOpts...)

	logger.Info("fetch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("network", network.Name),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Bool("discover", discover),
		zap.Int("topic0", len(topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
