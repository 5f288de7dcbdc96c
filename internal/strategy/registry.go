package strategy

import (
	"fmt"
	"sort"

	"stratlab/internal/config"
	"stratlab/internal/types"
)

// Constructor builds a provider from a series and the strategy section of
// the configuration
type Constructor func(series *types.Series, cfg *config.StrategyConfig) (Provider, error)

// registry is the closed set of available strategies. Selection happens at
// construction time through this explicit mapping, never via reflection.
var registry = map[string]Constructor{
	"ma_rsi": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewMARSI(series, cfg.MARSI)
	},
	"macd": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewMACDTrend(series, cfg.MACD)
	},
	"bollinger": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewBollinger(series, cfg.Bollinger)
	},
	"donchian": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewDonchian(series, cfg.Donchian)
	},
	"rsi_reversion": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewRSIReversion(series, cfg.RSIReversion)
	},
	"keltner": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewKeltner(series, cfg.Keltner)
	},
	"squeeze": func(series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
		return NewSqueeze(series, cfg.Squeeze)
	},
}

// New constructs the named strategy over the given series
func New(name string, series *types.Series, cfg *config.StrategyConfig) (Provider, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	return ctor(series, cfg)
}

// Names returns the registered strategy names in stable order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
