package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// EngineConfig holds the settings shared by the index and sync commands.
type EngineConfig struct {
	RPCURL       string
	RPCRPS       float64
	Network      string
	PoolFactory  string
	VaultFactory string
	Store        string
	SQLitePath   string
	PGDSN        string
	MetricsAddr  string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// IndexConfig configures replay of a JSONL log file into the entity store.
type IndexConfig struct {
	EngineConfig
	In        string
	Errors    string
	StateName string
}

// SyncConfig configures live indexing from an RPC endpoint.
type SyncConfig struct {
	EngineConfig
	FromBlock uint64
	ToBlock   uint64
	BatchSize uint64
	StateName string
}

func engineDefaults(v *viper.Viper) {
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("sqlite-path", "./data/ledger.db")
	v.SetDefault("rpc-rps", 0.0)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
}

func loadEngine(v *viper.Viper) (EngineConfig, error) {
	cfg := EngineConfig{
		RPCURL:       v.GetString("rpc"),
		RPCRPS:       v.GetFloat64("rpc-rps"),
		Network:      v.GetString("network"),
		PoolFactory:  v.GetString("pool-factory"),
		VaultFactory: v.GetString("vault-factory"),
		Store:        v.GetString("store"),
		SQLitePath:   v.GetString("sqlite-path"),
		PGDSN:        v.GetString("pg-dsn"),
		MetricsAddr:  v.GetString("metrics-addr"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}
	if _, err := LookupNetwork(cfg.Network); err != nil {
		return EngineConfig{}, err
	}
	switch cfg.Store {
	case StoreMemory:
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return EngineConfig{}, fmt.Errorf("sqlite-path is required for the sqlite store")
		}
	case StorePostgres:
		if cfg.PGDSN == "" {
			return EngineConfig{}, fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return EngineConfig{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	return cfg, nil
}

// LoadIndex merges config file, environment variables, and flags into IndexConfig.
func LoadIndex(cfgFile string, flags *pflag.FlagSet) (IndexConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		engineDefaults(v)
		v.SetDefault("in", "./data/logs.jsonl")
		v.SetDefault("errors", "./data/decode_errors.jsonl")
		v.SetDefault("state-name", "index")
	})
	if err != nil {
		return IndexConfig{}, err
	}
	engine, err := loadEngine(v)
	if err != nil {
		return IndexConfig{}, err
	}
	return IndexConfig{
		EngineConfig: engine,
		In:           v.GetString("in"),
		Errors:       v.GetString("errors"),
		StateName:    v.GetString("state-name"),
	}, nil
}

// LoadSync merges config file, environment variables, and flags into SyncConfig.
func LoadSync(cfgFile string, flags *pflag.FlagSet) (SyncConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		engineDefaults(v)
		v.SetDefault("batch-size", uint64(2000))
		v.SetDefault("state-name", "sync")
	})
	if err != nil {
		return SyncConfig{}, err
	}
	engine, err := loadEngine(v)
	if err != nil {
		return SyncConfig{}, err
	}
	if engine.PoolFactory == "" && engine.VaultFactory == "" {
		return SyncConfig{}, fmt.Errorf("at least one of pool-factory or vault-factory is required")
	}
	return SyncConfig{
		EngineConfig: engine,
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		BatchSize:    v.GetUint64("batch-size"),
		StateName:    v.GetString("state-name"),
	}, nil
}
