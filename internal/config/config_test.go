package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupNetwork(t *testing.T) {
	mainnet, err := LookupNetwork("")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", mainnet.Name)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", mainnet.WETH)

	kovan, err := LookupNetwork(" Kovan ")
	require.NoError(t, err)
	assert.Equal(t, "0x1528f3fcc26d13f7079325fb78d9442607781c8c", kovan.DAI)
	assert.True(t, kovan.IsPriceReference(kovan.WETH))
	assert.False(t, kovan.IsPriceReference(kovan.USD))

	_, err = LookupNetwork("goerli")
	require.Error(t, err)
	assert.Len(t, NetworkNames(), 6)
}

func TestLoadSyncFromFlags(t *testing.T) {
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	flags.String("network", "", "")
	flags.String("pool-factory", "", "")
	flags.String("store", "", "")
	flags.Uint64("from", 0, "")
	require.NoError(t, flags.Parse([]string{"--network=rinkeby", "--pool-factory=0x9424b1412450d0f8fc2255faf6046b98213b76bd", "--store=memory", "--from=100"}))

	cfg, err := LoadSync("", flags)
	require.NoError(t, err)
	assert.Equal(t, "rinkeby", cfg.Network)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, uint64(100), cfg.FromBlock)
	assert.Equal(t, uint64(2000), cfg.BatchSize)
	assert.Equal(t, "sync", cfg.StateName)
}

func TestLoadSyncRequiresFactory(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := LoadSync("", pflag.NewFlagSet("sync", pflag.ContinueOnError))
	require.Error(t, err)
}

func TestLoadIndexFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "indexer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: postgres\npg-dsn: postgres://localhost/ledger\nin: logs.jsonl\n"), 0o644))

	cfg, err := LoadIndex(path, nil)
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "logs.jsonl", cfg.In)
	assert.Equal(t, "index", cfg.StateName)
	assert.Equal(t, DefaultNetwork, cfg.Network)
}

func TestLoadIndexRejectsUnknownStore(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "indexer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: mongo\n"), 0o644))

	_, err := LoadIndex(path, nil)
	require.Error(t, err)
}

func TestLoadFetchDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("INDEXER_POOL_FACTORY", "0x9424b1412450d0f8fc2255faf6046b98213b76bd")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), cfg.BatchSize)
	assert.Equal(t, "./data/checkpoint.json", cfg.Checkpoint)
	assert.True(t, cfg.CheckpointEnabled)
	assert.True(t, cfg.TxMeta)
	assert.Equal(t, DefaultNetwork, cfg.Network)
	assert.Equal(t, "0x9424b1412450d0f8fc2255faf6046b98213b76bd", cfg.PoolFactory)
}
