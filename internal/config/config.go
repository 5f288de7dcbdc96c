package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `json:"app"`
	Backtest  BacktestConfig  `json:"backtest"`
	Risk      RiskConfig      `json:"risk"`
	Strategy  StrategyConfig  `json:"strategy"`
	Optimizer OptimizerConfig `json:"optimizer"`
	Logging   LoggingConfig   `json:"logging"`
}

// AppConfig contains basic application configuration
type AppConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"` // "development", "production", "test"
	Debug       bool   `json:"debug"`
}

// BacktestConfig contains the inputs of a single backtest run
type BacktestConfig struct {
	// Data settings
	DataFile  string    `json:"data_file"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Initial conditions
	InitialEquity float64 `json:"initial_equity"`

	// Output settings
	ResultsDirectory string `json:"results_directory"`
	ExportTrades     bool   `json:"export_trades"`
	ExportEquity     bool   `json:"export_equity"`
}

// StopMode selects how stop-loss and take-profit offsets are computed
type StopMode string

const (
	StopModePercent StopMode = "percent" // offset = entry_price * value
	StopModeATR     StopMode = "atr"     // offset = atr * value
)

// RiskConfig contains position sizing and exit rules. It is immutable for
// the duration of one backtest run; the optimizer explores parameter space
// by constructing a fresh value per candidate.
type RiskConfig struct {
	// Sizing
	RiskPerTradePct float64 `json:"risk_per_trade_pct"` // fraction of equity risked per trade, e.g. 0.01
	MaxNotionalPct  float64 `json:"max_notional_pct"`   // cap on size*entry as fraction of equity, 0 disables

	// Stop-loss / take-profit
	StopLossMode   StopMode `json:"stop_loss_mode"`
	StopLossValue  float64  `json:"stop_loss_value"`
	TakeProfitMode StopMode `json:"take_profit_mode"`
	TakeProfitValue float64 `json:"take_profit_value"`
	ATRPeriod      int      `json:"atr_period"`

	// Fees
	CommissionPct float64 `json:"commission_pct"` // per fill, e.g. 0.0005

	// Behavior
	AllowShort bool `json:"allow_short"`
	// TakeProfitPriority flips the intrabar tie-break when both stop-loss
	// and take-profit fall inside one bar's range. Default false: stop-loss
	// is tested first, the conservative worst-case assumption.
	TakeProfitPriority bool `json:"take_profit_priority"`
}

// StrategyConfig selects and parameterizes the signal provider
type StrategyConfig struct {
	Name string `json:"name"` // "ma_rsi", "macd", "bollinger", "donchian", "rsi_reversion", "keltner", "squeeze"

	MARSI        MARSIConfig        `json:"ma_rsi"`
	MACD         MACDConfig         `json:"macd"`
	Bollinger    BollingerConfig    `json:"bollinger"`
	Donchian     DonchianConfig     `json:"donchian"`
	RSIReversion RSIReversionConfig `json:"rsi_reversion"`
	Keltner      KeltnerConfig      `json:"keltner"`
	Squeeze      SqueezeConfig      `json:"squeeze"`
}

// MARSIConfig contains moving average + RSI strategy parameters
type MARSIConfig struct {
	FastWindow    int     `json:"fast_window"`    // 10
	SlowWindow    int     `json:"slow_window"`    // 30
	RSIWindow     int     `json:"rsi_window"`     // 14
	RSIOverbought float64 `json:"rsi_overbought"` // 70
	RSIOversold   float64 `json:"rsi_oversold"`   // 30
	UseRSIFilter  bool    `json:"use_rsi_filter"`
	SignalMode    string  `json:"signal_mode"` // "cross" or "trend"
	UseTrendFilter bool   `json:"use_trend_filter"`
	TrendMAWindow  int    `json:"trend_ma_window"` // 200
}

// MACDConfig contains MACD trend strategy parameters
type MACDConfig struct {
	MinHistogram float64 `json:"min_histogram"` // minimum |macd-signal| at the cross, 0 accepts all
}

// BollingerConfig contains Bollinger mean-reversion strategy parameters
type BollingerConfig struct {
	ExitAtMiddle bool `json:"exit_at_middle"` // close the position when price crosses the middle band
}

// DonchianConfig contains channel breakout strategy parameters
type DonchianConfig struct {
	Window int `json:"window"` // 20
}

// RSIReversionConfig contains RSI mean-reversion strategy parameters
type RSIReversionConfig struct {
	Window     int     `json:"window"`     // 14
	Oversold   float64 `json:"oversold"`   // 30
	Overbought float64 `json:"overbought"` // 70
	ExitLevel  float64 `json:"exit_level"` // 50, midline exit
}

// KeltnerConfig contains Keltner channel breakout strategy parameters
type KeltnerConfig struct {
	Window           int     `json:"window"`             // 20, EMA midline
	Multiplier       float64 `json:"multiplier"`         // 1.5, ATR band width
	ATRWindow        int     `json:"atr_window"`         // 14
	ATRMinPercentile float64 `json:"atr_min_percentile"` // 0.2, skip entries below this ATR percentile; >=1 disables
	UseTrendFilter   bool    `json:"use_trend_filter"`
	TrendEMAWindow   int     `json:"trend_ema_window"` // 100
}

// SqueezeConfig contains squeeze momentum strategy parameters. The Bollinger
// side of the squeeze is fixed at 20 periods and 2 standard deviations.
type SqueezeConfig struct {
	KCWindow         int     `json:"kc_window"`          // 20, SMA midline of the Keltner side
	KCMultiplier     float64 `json:"kc_multiplier"`      // 1.5
	MomentumWindow   int     `json:"momentum_window"`    // 20
	ATRWindow        int     `json:"atr_window"`         // 14
	ATRMinPercentile float64 `json:"atr_min_percentile"` // 0.2, skip entries below this ATR percentile; >=1 disables
	MinSqueezeBars   int     `json:"min_squeeze_bars"`   // 3, squeeze candles required before a release counts
}

// OptimizerConfig drives the parameter sweep across backtest runs
type OptimizerConfig struct {
	Workers   int `json:"workers"`    // 0 means runtime.NumCPU()
	MinTrades int `json:"min_trades"` // candidates below this are dropped from the comparison set
	TopN      int `json:"top_n"`

	// Sweep axes; each combination of strategy x axes is one candidate run
	Strategies        []string  `json:"strategies"`
	RiskPerTradePcts  []float64 `json:"risk_per_trade_pcts"`
	StopLossValues    []float64 `json:"stop_loss_values"`
	TakeProfitValues  []float64 `json:"take_profit_values"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // "text" or "json"
	Output     string `json:"output"` // "stdout", "file", "both"
	Directory  string `json:"directory"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "stratlab",
			Version:     "1.0.0",
			Environment: "development",
		},
		Backtest: BacktestConfig{
			Symbol:           "BTCUSDT",
			Timeframe:        "15m",
			InitialEquity:    1000.0,
			ResultsDirectory: "./results",
			ExportTrades:     true,
			ExportEquity:     true,
		},
		Risk: RiskConfig{
			RiskPerTradePct: 0.01,
			StopLossMode:    StopModePercent,
			StopLossValue:   0.01,
			TakeProfitMode:  StopModePercent,
			TakeProfitValue: 0.02,
			ATRPeriod:       14,
			CommissionPct:   0.0005,
			AllowShort:      true,
		},
		Strategy: StrategyConfig{
			Name: "ma_rsi",
			MARSI: MARSIConfig{
				FastWindow:    10,
				SlowWindow:    30,
				RSIWindow:     14,
				RSIOverbought: 70,
				RSIOversold:   30,
				SignalMode:    "cross",
				TrendMAWindow: 200,
			},
			Bollinger: BollingerConfig{
				ExitAtMiddle: true,
			},
			Donchian: DonchianConfig{
				Window: 20,
			},
			RSIReversion: RSIReversionConfig{
				Window:     14,
				Oversold:   30,
				Overbought: 70,
				ExitLevel:  50,
			},
			Keltner: KeltnerConfig{
				Window:           20,
				Multiplier:       1.5,
				ATRWindow:        14,
				ATRMinPercentile: 0.2,
				UseTrendFilter:   true,
				TrendEMAWindow:   100,
			},
			Squeeze: SqueezeConfig{
				KCWindow:         20,
				KCMultiplier:     1.5,
				MomentumWindow:   20,
				ATRWindow:        14,
				ATRMinPercentile: 0.2,
				MinSqueezeBars:   3,
			},
		},
		Optimizer: OptimizerConfig{
			MinTrades:        5,
			TopN:             10,
			Strategies:       []string{"ma_rsi"},
			RiskPerTradePcts: []float64{0.005, 0.01, 0.02},
			StopLossValues:   []float64{0.005, 0.01, 0.02},
			TakeProfitValues: []float64{0.01, 0.02, 0.04},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Directory:  "./logs",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     14,
		},
	}
}

// Load reads a JSON configuration file, applying defaults for missing fields
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid or inconsistent values
func (c *Config) Validate() error {
	if c.Backtest.InitialEquity <= 0 {
		return fmt.Errorf("backtest.initial_equity must be positive, got %.2f", c.Backtest.InitialEquity)
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	if c.Optimizer.Workers < 0 {
		return fmt.Errorf("optimizer.workers must not be negative, got %d", c.Optimizer.Workers)
	}
	return nil
}

// Validate checks the risk configuration
func (r *RiskConfig) Validate() error {
	if r.RiskPerTradePct <= 0 || r.RiskPerTradePct >= 1 {
		return fmt.Errorf("risk.risk_per_trade_pct must be in (0, 1), got %.4f", r.RiskPerTradePct)
	}
	if r.MaxNotionalPct < 0 {
		return fmt.Errorf("risk.max_notional_pct must not be negative, got %.4f", r.MaxNotionalPct)
	}
	if r.StopLossMode != StopModePercent && r.StopLossMode != StopModeATR {
		return fmt.Errorf("risk.stop_loss_mode must be %q or %q, got %q", StopModePercent, StopModeATR, r.StopLossMode)
	}
	if r.TakeProfitMode != StopModePercent && r.TakeProfitMode != StopModeATR {
		return fmt.Errorf("risk.take_profit_mode must be %q or %q, got %q", StopModePercent, StopModeATR, r.TakeProfitMode)
	}
	if r.StopLossValue <= 0 {
		return fmt.Errorf("risk.stop_loss_value must be positive, got %.4f", r.StopLossValue)
	}
	if r.TakeProfitValue <= 0 {
		return fmt.Errorf("risk.take_profit_value must be positive, got %.4f", r.TakeProfitValue)
	}
	if (r.StopLossMode == StopModeATR || r.TakeProfitMode == StopModeATR) && r.ATRPeriod <= 0 {
		return fmt.Errorf("risk.atr_period must be positive when ATR stops are used, got %d", r.ATRPeriod)
	}
	if r.CommissionPct < 0 {
		return fmt.Errorf("risk.commission_pct must not be negative, got %.4f", r.CommissionPct)
	}
	return nil
}
