package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolScope/internal/model"
	"poolScope/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openTestStore(t)
	users := store.NewRepository[model.User](backend)

	require.NoError(t, users.Save(ctx, &model.User{ID: "0xbb"}))
	require.NoError(t, users.Save(ctx, &model.User{ID: "0xaa"}))
	require.NoError(t, users.Save(ctx, &model.User{ID: "0xaa"}))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0xaa", all[0].ID)

	require.NoError(t, users.Remove(ctx, "0xaa"))
	gone, err := users.Load(ctx, "0xaa")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStoreStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := NewStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.SaveState(ctx, "sync", 99))
	require.NoError(t, first.Close())

	second, err := NewStore(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.LoadState(ctx, "sync")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(99), value)

	_, ok, err = second.LoadState(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
