// Package config loads the backtest's enumerated knobs through viper,
// following a defaults-then-file-then-env precedence.
package config

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// BookMode selects the depth representation granularity.
type BookMode string

const (
	L2MBP BookMode = "l2"
	L3MBO BookMode = "l3"
)

// ExchangeVariant selects the fill policy.
type ExchangeVariant string

const (
	NoPartialFill ExchangeVariant = "no_partial"
	PartialFill   ExchangeVariant = "partial"
)

// QueueVariant selects the queue-position model.
type QueueVariant string

const (
	QueueRiskAverse QueueVariant = "risk_averse"
	QueueProb       QueueVariant = "prob"
	QueueL3         QueueVariant = "l3"
)

// ProbFunc names one of the monotone probability-of-fill f(x) variants.
type ProbFunc string

const (
	ProbIdentity ProbFunc = "identity"
	ProbSquare   ProbFunc = "square"
	ProbPower    ProbFunc = "power"
	ProbLog      ProbFunc = "log"
)

// LatencyVariant selects the latency model.
type LatencyVariant string

const (
	LatencyConstant LatencyVariant = "constant"
	LatencyFeed     LatencyVariant = "feed"
	LatencyFeedFwd  LatencyVariant = "feed_forward"
	LatencyFeedBack LatencyVariant = "feed_backward"
	LatencyInterp   LatencyVariant = "interpolated"
)

// ROI is the tick range the dense depth representation covers.
type ROI struct {
	LoTick int64 `mapstructure:"lo_tick" validate:"ltefield=HiTick"`
	HiTick int64 `mapstructure:"hi_tick"`
}

// FeeConfig mirrors types.FeeModel for file/env loading.
type FeeConfig struct {
	Kind      string  `mapstructure:"kind"` // "per_value" | "per_qty" | "per_trade"
	MakerRate float64 `mapstructure:"maker_rate" validate:"gte=0"`
	TakerRate float64 `mapstructure:"taker_rate" validate:"gte=0"`
}

// QueueConfig carries the selected queue-model variant and its parameters.
type QueueConfig struct {
	Variant     QueueVariant `mapstructure:"variant"`
	ProbFunc    ProbFunc     `mapstructure:"prob_func"`
	PowerN      float64      `mapstructure:"power_n"`
	Normalize   int          `mapstructure:"normalize"`    // 0 = off, 2 or 3 selects the matching total-size variant
	RefQueueQty float64      `mapstructure:"ref_queue_qty"` // totalQueueSize passed to the "2"/"3" variants
}

// LatencyConfig carries the selected latency-model variant and its
// parameters.
type LatencyConfig struct {
	Variant           LatencyVariant `mapstructure:"variant"`
	EntryLatencyNs    int64          `mapstructure:"entry_latency_ns"`
	ResponseLatencyNs int64          `mapstructure:"response_latency_ns"`
	EntryMul          float64        `mapstructure:"entry_mul"`
	ResponseMul       float64        `mapstructure:"response_mul"`
	EntryBaseNs       int64          `mapstructure:"entry_base_ns"`
	ResponseBaseNs    int64          `mapstructure:"response_base_ns"`
	TableFile         string         `mapstructure:"table_file"`
	TimeoutNs         int64          `mapstructure:"timeout_ns"`
}

// AssetConfig is the complete knob set for one asset stack.
type AssetConfig struct {
	Symbol          string          `mapstructure:"symbol" validate:"required"`
	TickSize        float64         `mapstructure:"tick_size" validate:"gt=0"`
	LotSize         float64         `mapstructure:"lot_size" validate:"gt=0"`
	AssetType       string          `mapstructure:"asset_type" validate:"omitempty,oneof=linear inverse"` // "linear" | "inverse"
	Fee             FeeConfig       `mapstructure:"fee"`
	ExchangeVariant ExchangeVariant `mapstructure:"exchange_variant"`
	BookMode        BookMode        `mapstructure:"book_mode"`
	ROI             ROI             `mapstructure:"roi"`
	Queue           QueueConfig     `mapstructure:"queue"`
	Latency         LatencyConfig   `mapstructure:"latency"`
	DataFiles       []string        `mapstructure:"data_files"`
	SnapshotFile    string          `mapstructure:"snapshot_file"`
}

// BacktestConfig is the aggregate multi-asset configuration: each asset
// runs its own independent stack, multiplexed over one shared virtual
// clock.
type BacktestConfig struct {
	Assets   []AssetConfig `mapstructure:"assets" validate:"dive"`
	LogLevel string        `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
}

// Load reads a BacktestConfig from configPath (directory or file, yaml),
// falling back to defaults and HFTBT_-prefixed environment variables when
// no file is present.
func Load(configPath string) (*BacktestConfig, error) {
	v := viper.New()
	v.SetConfigName("backtest")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("HFTBT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &BacktestConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
