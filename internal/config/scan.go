package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ScanConfig holds configuration for the offline pre-filter.
type ScanConfig struct {
	In              string
	Out             string
	AmountThreshold float64
	RatioThreshold  float64
	LogLevel        string
}

// LoadScan merges config file, environment variables, and flags into ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"in":               "./data/pairs.jsonl",
		"out":              "./data/candidates.jsonl",
		"amount-threshold": 1.0,
		"ratio-threshold":  0.9,
		"log-level":        "info",
	})
	if err != nil {
		return ScanConfig{}, err
	}

	cfg := ScanConfig{
		In:              v.GetString("in"),
		Out:             v.GetString("out"),
		AmountThreshold: v.GetFloat64("amount-threshold"),
		RatioThreshold:  v.GetFloat64("ratio-threshold"),
		LogLevel:        v.GetString("log-level"),
	}
	if cfg.In == "" {
		return ScanConfig{}, fmt.Errorf("input file is required")
	}
	if cfg.RatioThreshold <= 0 || cfg.RatioThreshold > 1 {
		return ScanConfig{}, fmt.Errorf("ratio threshold must be in (0, 1], got %v", cfg.RatioThreshold)
	}
	return cfg, nil
}
