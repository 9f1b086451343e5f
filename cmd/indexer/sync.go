package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/indexer"
)

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSync(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg.EngineConfig, cfg.FromBlock, nil, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		TxMeta:       true,
	}, eng.chain, eng.dispatcher, logger,
		indexer.WithWatchList(eng.watch),
		indexer.WithCheckpoint(indexer.NewStateCheckpoint(eng.backend, cfg.StateName)),
	)

	logger.Info("sync start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("network", cfg.Network),
		zap.String("store", cfg.Store),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("watched", eng.watch.Version()),
	)
	return runner.Run(ctx)
}
