package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolScope/internal/store"
)

func jsonlOf(t *testing.T, lines ...string) string {
	t.Helper()
	return strings.Join(lines, "\n") + "\n"
}

func recordLine(t *testing.T, block uint64) string {
	t.Helper()
	data, err := json.Marshal(toRecord(mintLog(block, 0, 1)))
	require.NoError(t, err)
	return string(data)
}

func TestReplayBatchesAndResumes(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	position := NewStateCheckpoint(backend, "index")
	errs := &errorCollector{}

	input := jsonlOf(t, recordLine(t, 1), "{not json", "", recordLine(t, 2), recordLine(t, 3))
	sink := &collectSink{}
	stats, err := NewReplayer(sink, position, errs, 2, nil).Replay(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, ReplayStats{Lines: 5, Replayed: 3, Failed: 1}, stats)
	assert.Equal(t, 2, sink.batches)
	require.Len(t, errs.errors, 1)
	assert.Contains(t, errs.errors[0].Error, "line 2")

	grown := input + recordLine(t, 4) + "\n"
	sink = &collectSink{}
	stats, err = NewReplayer(sink, position, nil, 2, nil).Replay(ctx, bytes.NewBufferString(grown))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stats.Skipped)
	assert.Equal(t, uint64(1), stats.Replayed)
	require.Len(t, sink.records, 1)
	assert.Equal(t, uint64(4), sink.records[0].BlockNumber)

	last, ok, err := position.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(6), last)
}
