package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	RPCURL            string
	VenueAName        string
	VenueBName        string
	RouterA           common.Address
	RouterB           common.Address
	Count             uint64
	BatchSize         uint64
	Out               string
	PGDSN             string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	RateLimit         float64
	MetaCacheSize     int
	LogLevel          string
}

// LoadSnapshot merges .env, config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	if err := loadDotEnv(".env"); err != nil {
		return SnapshotConfig{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"venue-a":            "PancakeSwap",
		"venue-b":            "SushiSwap",
		"batch-size":         uint64(100),
		"out":                "./data/pairs.jsonl",
		"checkpoint":         "./data/snapshot_checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"rate-limit":         20.0,
		"meta-cache-size":    4096,
		"log-level":          "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:            v.GetString("rpc"),
		VenueAName:        v.GetString("venue-a"),
		VenueBName:        v.GetString("venue-b"),
		Count:             v.GetUint64("count"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RateLimit:         v.GetFloat64("rate-limit"),
		MetaCacheSize:     v.GetInt("meta-cache-size"),
		LogLevel:          v.GetString("log-level"),
	}
	if cfg.RouterA, err = addressSetting(v, "router-a"); err != nil {
		return SnapshotConfig{}, err
	}
	if cfg.RouterB, err = addressSetting(v, "router-b"); err != nil {
		return SnapshotConfig{}, err
	}

	if cfg.RPCURL == "" {
		return SnapshotConfig{}, fmt.Errorf("rpc url is required")
	}
	if cfg.RouterA == (common.Address{}) || cfg.RouterB == (common.Address{}) {
		return SnapshotConfig{}, fmt.Errorf("router-a and router-b are required")
	}
	if cfg.BatchSize == 0 {
		return SnapshotConfig{}, fmt.Errorf("batch size must be greater than zero")
	}
	return cfg, nil
}
