// Package storage holds raw-log sinks.
package storage

import (
	"context"

	"poolScope/internal/model"
)

// Sink consumes batches of log records in chain order.
type Sink interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}
