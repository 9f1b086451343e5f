package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/model"
	"poolScope/internal/storage"
)

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Addresses    []common.Address
	Topic0       []common.Hash
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	// TxMeta looks up the sender and gas price of every log's transaction.
	TxMeta bool
}

// LogSource is the subset of the chain client the runner reads from.
type LogSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	TransactionMeta(ctx context.Context, hash, blockHash common.Hash, index uint) (chain.TxMeta, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithCheckpoint resumes from and records progress in c.
func WithCheckpoint(c Checkpointer) RunnerOption {
	return func(r *Runner) { r.checkpoint = c }
}

// WithWatchList filters by the watch list instead of RunConfig.Addresses and
// backfills contracts the sink registers while a range is processed.
func WithWatchList(w WatchList) RunnerOption {
	return func(r *Runner) { r.watch = w }
}

// Runner streams logs from the chain and writes them to a sink.
type Runner struct {
	cfg        RunConfig
	chain      LogSource
	sink       storage.Sink
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint Checkpointer
	watch      WatchList
	chainID    uint64
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source LogSource, sink storage.Sink, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		chain:  source,
		sink:   sink,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.addresses()) == 0 {
		return fmt.Errorf("at least one address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	r.chainID = chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		version := r.version()
		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
		count, err := r.processRange(ctx, blockRange.From, blockRange.To, r.addresses())
		if err != nil {
			return err
		}

		backfilled, err := r.backfill(ctx, blockRange, version)
		if err != nil {
			return err
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("logs", count+backfilled),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

// backfill fetches the rest of the range for contracts registered since
// version, repeating until the watch list stops growing.
func (r *Runner) backfill(ctx context.Context, blockRange BlockRange, version int) (int, error) {
	if r.watch == nil {
		return 0, nil
	}
	total := 0
	for version != r.watch.Version() {
		added := r.watch.AddedSince(version)
		version = r.watch.Version()
		if len(added) == 0 {
			continue
		}

		start := blockRange.To
		addresses := make([]common.Address, 0, len(added))
		for _, c := range added {
			addresses = append(addresses, common.HexToAddress(c.ID))
			if c.StartBlock < start {
				start = c.StartBlock
			}
		}
		if start < blockRange.From {
			start = blockRange.From
		}

		r.logger.Debug("backfill new contracts", zap.Int("contracts", len(addresses)), zap.Uint64("from", start), zap.Uint64("to", blockRange.To))
		count, err := r.processRange(ctx, start, blockRange.To, addresses)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

func (r *Runner) processRange(ctx context.Context, from, to uint64, addresses []common.Address) (int, error) {
	logs, err := r.filterLogsWithRetry(ctx, from, to, addresses)
	if err != nil {
		return 0, fmt.Errorf("filter logs: %w", err)
	}

	ingestedAt := time.Now().UTC()
	records := make([]model.LogRecord, 0, len(logs))
	for _, log := range logs {
		if r.isDuplicate(log) {
			continue
		}

		ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
		if err != nil {
			return 0, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
		}
		var meta *chain.TxMeta
		if r.cfg.TxMeta {
			m, err := r.txMetaWithRetry(ctx, log)
			if err != nil {
				return 0, fmt.Errorf("transaction %s: %w", log.TxHash.Hex(), err)
			}
			meta = &m
		}
		records = append(records, buildLogRecord(r.chainID, log, ts, meta, ingestedAt))
	}

	if err := r.sink.PutLogBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("store logs: %w", err)
	}
	return len(records), nil
}

func (r *Runner) addresses() []common.Address {
	if r.watch != nil {
		return r.watch.Addresses()
	}
	return r.cfg.Addresses
}

func (r *Runner) version() int {
	if r.watch == nil {
		return 0
	}
	return r.watch.Version()
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, r.cfg.Topic0)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) txMetaWithRetry(ctx context.Context, log types.Log) (chain.TxMeta, error) {
	var meta chain.TxMeta
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		meta, err = r.chain.TransactionMeta(ctx, log.TxHash, log.BlockHash, log.TxIndex)
		if err != nil {
			r.logger.Warn("transaction lookup failed", zap.Error(err), zap.String("tx_hash", log.TxHash.Hex()))
		}
		return err
	})
	return meta, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
