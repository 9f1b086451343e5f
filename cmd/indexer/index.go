package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/indexer"
	"poolScope/internal/storage"
)

func runIndex(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIndex(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errSink := storage.NewJsonlErrorSink(cfg.Errors)
	eng, err := newEngine(ctx, cfg.EngineConfig, 0, errSink, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	logger.Info("index start",
		zap.String("in", cfg.In),
		zap.String("errors", cfg.Errors),
		zap.String("network", cfg.Network),
		zap.String("store", cfg.Store),
		zap.Int("watched", eng.watch.Version()),
	)

	position := indexer.NewStateCheckpoint(eng.backend, cfg.StateName)
	stats, err := indexer.NewReplayer(eng.dispatcher, position, errSink, 0, logger).Replay(ctx, inputFile)
	if err != nil {
		return err
	}

	logger.Info("index complete",
		zap.Uint64("lines", stats.Lines),
		zap.Uint64("skipped", stats.Skipped),
		zap.Uint64("replayed", stats.Replayed),
		zap.Uint64("failed", stats.Failed),
		zap.Int("watched", eng.watch.Version()),
	)
	return nil
}
