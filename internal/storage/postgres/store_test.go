package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStoreEntities(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "Pool", "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "Pool", "0xabc", []byte(`{"id":"0xabc","swaps_count":1}`)))
	require.NoError(t, store.Save(ctx, "Pool", "0xabc", []byte(`{"id":"0xabc","swaps_count":2}`)))
	require.NoError(t, store.SaveBatch(ctx, "Pool", map[string][]byte{
		"0xdef": []byte(`{"id":"0xdef"}`),
	}))

	data, ok, err := store.Load(ctx, "Pool", "0xabc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"0xabc","swaps_count":2}`, string(data))

	rows, err := store.List(ctx, "Pool")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, store.Remove(ctx, "Pool", "0xabc"))
	_, ok, err = store.Load(ctx, "Pool", "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreState(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx, "sync")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveState(ctx, "sync", 17000000))
	require.NoError(t, store.SaveState(ctx, "sync", 17000100))
	value, ok, err := store.LoadState(ctx, "sync")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(17000100), value)

	require.Error(t, store.SaveState(ctx, "", 1))
}
