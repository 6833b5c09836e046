// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/storage/pricestore"
	"github.com/spf13/viper"
)

type Config struct {
	Backtest BacktestConfig `mapstructure:"backtest"`
	Data     DataConfig     `mapstructure:"data"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// BacktestConfig holds the simulation parameters.
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	CommissionRate float64 `mapstructure:"commission_rate"`
	SlippageRate   float64 `mapstructure:"slippage_rate"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
}

// DataConfig selects the history provider and cache policy.
type DataConfig struct {
	Provider string        `mapstructure:"provider"` // "yahoo"
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// StorageConfig selects the price store backend.
type StorageConfig struct {
	Type string              `mapstructure:"type"` // "localfs" or "s3"
	Path string              `mapstructure:"path"` // for localfs
	S3   pricestore.S3Config `mapstructure:"s3"`   // for s3
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: 100_000,
			CommissionRate: 0.001,
			SlippageRate:   0,
			RiskFreeRate:   0.02,
		},
		Data: DataConfig{
			Provider: "yahoo",
			CacheTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data/pricestore",
		},
	}
}

// Load reads configuration from a file, layered over Defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("reading config: %w", err))
	}

	// Expand ${VAR} references in string values, used for credentials.
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.CommissionRate < 0 || c.Backtest.CommissionRate >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission_rate must be in [0, 1), got %f", c.Backtest.CommissionRate))
	}
	if c.Backtest.SlippageRate < 0 || c.Backtest.SlippageRate >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage_rate must be in [0, 1), got %f", c.Backtest.SlippageRate))
	}

	switch c.Data.Provider {
	case "yahoo":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown data provider: %q", c.Data.Provider))
	}

	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required for localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type: %q", c.Storage.Type))
	}

	return nil
}
