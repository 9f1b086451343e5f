package indexer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/store"
)

func TestRunnerBackfillsDiscoveredContracts(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	watch, err := NewWatchSet(ctx, backend, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, watch.Watch(ctx, model.RolePoolFactory, factoryAddr, 0))

	source := &fakeSource{logs: []types.Log{newPoolLog(5, 0), mintLog(6, 0, 10), mintLog(12, 0, 20)}}
	sink := &collectSink{}
	discoverer, err := NewDiscoverer(sink, watch, nil, common.Address{}, zap.NewNop())
	require.NoError(t, err)
	checkpoint := NewStateCheckpoint(backend, "sync")

	runner := NewRunner(RunConfig{FromBlock: 0, ToBlock: 19, BatchSize: 10}, source, discoverer, zap.NewNop(),
		WithWatchList(watch), WithCheckpoint(checkpoint))
	require.NoError(t, runner.Run(ctx))

	require.Len(t, sink.records, 3)
	assert.Equal(t, uint64(5), sink.records[0].BlockNumber)
	assert.Equal(t, uint64(6), sink.records[1].BlockNumber)
	assert.Equal(t, uint64(12), sink.records[2].BlockNumber)
	assert.Equal(t, uint64(1600000006), sink.records[1].Timestamp)

	// first range, its backfill for the new pool, then the second range over both.
	require.Len(t, source.queries, 3)
	assert.Equal(t, []common.Address{poolAddr}, source.queries[1])
	assert.ElementsMatch(t, []common.Address{factoryAddr, poolAddr}, source.queries[2])

	last, ok, err := checkpoint.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(19), last)
}

func TestRunnerResumesAndFetchesTxMeta(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	checkpoint := NewStateCheckpoint(backend, "sync")
	require.NoError(t, checkpoint.Save(ctx, 5))

	source := &fakeSource{latest: 20, logs: []types.Log{mintLog(5, 0, 1), mintLog(8, 0, 2), mintLog(8, 0, 2)}}
	sink := &collectSink{}
	runner := NewRunner(RunConfig{Addresses: []common.Address{poolAddr}, BatchSize: 100, TxMeta: true}, source, sink, nil,
		WithCheckpoint(checkpoint))
	require.NoError(t, runner.Run(ctx))

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	assert.Equal(t, uint64(8), record.BlockNumber)
	assert.Equal(t, "7", record.GasPrice)
	assert.Equal(t, events.HexID(holderAddr), record.TxFrom)
	assert.Equal(t, 1, source.txMeta)

	last, _, err := checkpoint.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), last)
}

func TestRunnerRequiresAddresses(t *testing.T) {
	runner := NewRunner(RunConfig{BatchSize: 10}, &fakeSource{}, &collectSink{}, nil)
	require.Error(t, runner.Run(context.Background()))
}
