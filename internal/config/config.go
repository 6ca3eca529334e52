package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dexArb/internal/gas"
)

// Strategy names accepted by the run command.
const (
	StrategyFlash  = "flash"
	StrategyNormal = "normal"
)

// Config holds the run command settings loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	PrivateKey     string
	Strategy       string
	VenueAName     string
	VenueBName     string
	RouterA        common.Address
	RouterB        common.Address
	ReferenceAsset common.Address
	Token0         common.Address
	Token1         common.Address
	Contract       common.Address
	AutoFund       bool
	GasStationURL  string
	PollInterval   time.Duration
	LogThrottle    time.Duration
	ReceiptTimeout time.Duration
	ReceiptPoll    time.Duration
	MetricsAddr    string
	RedisAddr      string
	RedisChannel   string
	LogLevel       string
}

// Load merges .env, config file, environment variables, and flags into Config.
// The result is validated once; nothing is reloaded while running.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"strategy":        StrategyNormal,
		"venue-a":         "PancakeSwap",
		"venue-b":         "SushiSwap",
		"auto-fund":       false,
		"gas-station-url": gas.DefaultStationURL,
		"poll-interval":   100 * time.Millisecond,
		"log-throttle":    10 * time.Second,
		"receipt-timeout": 2 * time.Minute,
		"receipt-poll":    time.Second,
		"redis-channel":   "dexarb:records",
		"log-level":       "info",
	})
	if err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("private-key", "ARB_PRIVATE_KEY", "PRIV_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		PrivateKey:     strings.TrimPrefix(strings.TrimSpace(v.GetString("private-key")), "0x"),
		Strategy:       strings.ToLower(v.GetString("strategy")),
		VenueAName:     v.GetString("venue-a"),
		VenueBName:     v.GetString("venue-b"),
		AutoFund:       v.GetBool("auto-fund"),
		GasStationURL:  v.GetString("gas-station-url"),
		PollInterval:   v.GetDuration("poll-interval"),
		LogThrottle:    v.GetDuration("log-throttle"),
		ReceiptTimeout: v.GetDuration("receipt-timeout"),
		ReceiptPoll:    v.GetDuration("receipt-poll"),
		MetricsAddr:    v.GetString("metrics-addr"),
		RedisAddr:      v.GetString("redis-addr"),
		RedisChannel:   v.GetString("redis-channel"),
		LogLevel:       v.GetString("log-level"),
	}

	addresses := []struct {
		key string
		dst *common.Address
	}{
		{"router-a", &cfg.RouterA},
		{"router-b", &cfg.RouterB},
		{"reference-asset", &cfg.ReferenceAsset},
		{"token0", &cfg.Token0},
		{"token1", &cfg.Token1},
		{"contract", &cfg.Contract},
	}
	for _, a := range addresses {
		if *a.dst, err = addressSetting(v, a.key); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every required setting is present.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	if c.Strategy != StrategyFlash && c.Strategy != StrategyNormal {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}

	var zero common.Address
	required := map[string]common.Address{
		"router-a":        c.RouterA,
		"router-b":        c.RouterB,
		"reference-asset": c.ReferenceAsset,
		"token0":          c.Token0,
		"token1":          c.Token1,
		"contract":        c.Contract,
	}
	for key, addr := range required {
		if addr == zero {
			return fmt.Errorf("%s address is required", key)
		}
	}
	if c.Token0 == c.Token1 {
		return fmt.Errorf("token0 and token1 must differ")
	}
	if c.RouterA == c.RouterB {
		return fmt.Errorf("router-a and router-b must differ")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// loadDotEnv exports a .env file into the environment if one exists. Variables
// already set are not overridden.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
