package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// backfillNote documents how contracts discovered mid-range are fetched.
const backfillNote = `Pools and vaults created inside a block range are backfilled after the rest
of that range has been dispatched. Logs stay in order per contract, but across
contracts a backfilled log can be applied after logs from later blocks, so
TokenPrice source selection may see state from those blocks.`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Weighted pool and NFT vault indexer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Stream raw logs for the watched contracts into a JSONL file",
		Long:  "Stream raw logs for the watched contracts into a JSONL file.\n\n" + backfillNote,
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("rpc", "", "RPC URL")
	fetchCmd.Flags().Float64("rpc-rps", 0, "maximum RPC calls per second, 0 means unlimited")
	fetchCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	fetchCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	fetchCmd.Flags().String("network", "mainnet", "network preset (mainnet, kovan, rinkeby, shibuya, ropsten, mumbai)")
	fetchCmd.Flags().String("pool-factory", "", "pool factory address")
	fetchCmd.Flags().String("vault-factory", "", "vault factory address")
	fetchCmd.Flags().StringSlice("address", nil, "extra contract addresses (comma-separated)")
	fetchCmd.Flags().StringSlice("topic0", nil, "topic0 filter (comma-separated)")
	fetchCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	fetchCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	fetchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	fetchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	fetchCmd.Flags().String("watch-db", "./data/watch.db", "SQLite file holding discovered pools and vaults")
	fetchCmd.Flags().Bool("tx-meta", true, "record transaction sender and gas price")
	fetchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	fetchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Replay a raw log JSONL file into the entity store",
		RunE:  runIndex,
	}

	engineFlags(indexCmd)
	indexCmd.Flags().String("in", "./data/logs.jsonl", "input raw logs JSONL")
	indexCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	indexCmd.Flags().String("state-name", "index", "progress state name in the store")

	root.AddCommand(indexCmd)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Index logs straight from RPC into the entity store",
		Long:  "Index logs straight from RPC into the entity store.\n\n" + backfillNote,
		RunE:  runSync,
	}

	engineFlags(syncCmd)
	syncCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	syncCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	syncCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	syncCmd.Flags().String("state-name", "sync", "checkpoint state name in the store")

	root.AddCommand(syncCmd)
	return root
}

// engineFlags registers the flags shared by index and sync.
func engineFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL for contract reads")
	cmd.Flags().Float64("rpc-rps", 0, "maximum RPC calls per second, 0 means unlimited")
	cmd.Flags().String("network", "mainnet", "network preset (mainnet, kovan, rinkeby, shibuya, ropsten, mumbai)")
	cmd.Flags().String("pool-factory", "", "pool factory address")
	cmd.Flags().String("vault-factory", "", "vault factory address")
	cmd.Flags().String("store", "sqlite", "entity store (memory, sqlite, postgres)")
	cmd.Flags().String("sqlite-path", "./data/ledger.db", "SQLite database path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("metrics-addr", "", "address for the /metrics listener, empty disables it")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadEnvFile loads path into the process environment when it exists.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
