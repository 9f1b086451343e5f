package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"fetch", "index", "sync"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestFetchAndSyncHelpDescribeBackfillOrder(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"fetch", "sync"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Contains(t, cmd.Long, "backfilled")
		assert.Contains(t, cmd.Long, "TokenPrice")
	}
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POOLSCOPE_TEST_RPC=http://node:8545\n"), 0o600))
	t.Setenv("POOLSCOPE_TEST_RPC", "")
	require.NoError(t, os.Unsetenv("POOLSCOPE_TEST_RPC"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "http://node:8545", os.Getenv("POOLSCOPE_TEST_RPC"))
}
