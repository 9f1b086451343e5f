package indexer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"poolScope/internal/model"
	"poolScope/internal/storage"
)

const defaultReplayBatch = 500

// ReplayStats summarizes one replay pass.
type ReplayStats struct {
	Lines    uint64
	Skipped  uint64
	Replayed uint64
	Failed   uint64
}

// Replayer feeds a JSONL log file into a sink in file order. The position is
// the number of lines consumed, so a rerun over a grown file only applies the
// new tail.
type Replayer struct {
	sink      storage.Sink
	position  Checkpointer
	errors    DecodeErrorSink
	batchSize int
	logger    *zap.Logger
}

// NewReplayer builds a Replayer. position and errSink may be nil.
func NewReplayer(sink storage.Sink, position Checkpointer, errSink DecodeErrorSink, batchSize int, logger *zap.Logger) *Replayer {
	if batchSize <= 0 {
		batchSize = defaultReplayBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{sink: sink, position: position, errors: errSink, batchSize: batchSize, logger: logger}
}

// Replay reads records from in and applies them.
func (r *Replayer) Replay(ctx context.Context, in io.Reader) (ReplayStats, error) {
	var stats ReplayStats
	var done uint64
	if r.position != nil {
		last, ok, err := r.position.Load(ctx)
		if err != nil {
			return stats, err
		}
		if ok {
			done = last
			r.logger.Info("resume replay", zap.Uint64("lines_done", done))
		}
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.LogRecord, 0, r.batchSize)
	flush := func() error {
		if len(batch) > 0 {
			if err := r.sink.PutLogBatch(ctx, batch); err != nil {
				return err
			}
			stats.Replayed += uint64(len(batch))
			batch = batch[:0]
		}
		if r.position != nil {
			return r.position.Save(ctx, stats.Lines)
		}
		return nil
	}

	for scanner.Scan() {
		stats.Lines++
		if stats.Lines <= done {
			stats.Skipped++
			continue
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			r.logger.Warn("malformed log line", zap.Uint64("line", stats.Lines), zap.Error(err))
			if r.errors != nil {
				if err := r.errors.PutDecodeError(model.DecodeError{Error: fmt.Sprintf("line %d: %v", stats.Lines, err)}); err != nil {
					return stats, err
				}
			}
			continue
		}
		batch = append(batch, record)
		if len(batch) >= r.batchSize {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
