package strategy

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// MARSI trades simple moving average crosses, optionally filtered by RSI
// extremes and a long trend moving average.
//
// In "cross" mode an entry fires on the candle where the fast average
// crosses the slow one. In "trend" mode the fast/slow relation is treated as
// a regime and an entry fires only when the regime flips.
type MARSI struct {
	signalSeries
	cfg config.MARSIConfig
}

// NewMARSI precomputes MA+RSI signals for the series
func NewMARSI(series *types.Series, cfg config.MARSIConfig) (*MARSI, error) {
	if cfg.FastWindow <= 0 || cfg.SlowWindow <= 0 {
		return nil, fmt.Errorf("ma_rsi: windows must be positive (fast=%d slow=%d)", cfg.FastWindow, cfg.SlowWindow)
	}
	if cfg.FastWindow >= cfg.SlowWindow {
		return nil, fmt.Errorf("ma_rsi: fast window %d must be shorter than slow window %d", cfg.FastWindow, cfg.SlowWindow)
	}
	if cfg.RSIWindow <= 0 {
		cfg.RSIWindow = 14
	}
	mode := cfg.SignalMode
	if mode == "" {
		mode = "cross"
	}
	if mode != "cross" && mode != "trend" {
		return nil, fmt.Errorf("ma_rsi: unknown signal mode %q", cfg.SignalMode)
	}

	closes := series.Closes()
	fast := indicators.SMA(cfg.FastWindow, closes)
	slow := indicators.SMA(cfg.SlowWindow, closes)
	rsi := indicators.RSI(cfg.RSIWindow, closes)

	var trendMA []float64
	warmup := cfg.SlowWindow
	if cfg.UseTrendFilter {
		w := cfg.TrendMAWindow
		if w <= 0 {
			w = 200
		}
		trendMA = indicators.SMA(w, closes)
		if w > warmup {
			warmup = w
		}
	}
	if cfg.RSIWindow > warmup {
		warmup = cfg.RSIWindow
	}

	s := &MARSI{
		signalSeries: newSignalSeries("ma_rsi", series.Len()),
		cfg:          cfg,
	}

	prevRegime := 0
	for i := warmup; i < series.Len(); i++ {
		rsiOK := !cfg.UseRSIFilter || (rsi[i] > cfg.RSIOversold && rsi[i] < cfg.RSIOverbought)

		longOK, shortOK := true, true
		if cfg.UseTrendFilter {
			longOK = closes[i] > trendMA[i]
			shortOK = closes[i] < trendMA[i]
		}

		switch mode {
		case "cross":
			if rsiOK && longOK && crossedUp(fast, slow, i) {
				s.actions[i] = types.ActionEnterLong
			} else if rsiOK && shortOK && crossedDown(fast, slow, i) {
				s.actions[i] = types.ActionEnterShort
			}
		case "trend":
			regime := 0
			switch {
			case fast[i] > slow[i] && rsiOK && longOK:
				regime = 1
			case fast[i] < slow[i] && rsiOK && shortOK:
				regime = -1
			default:
				continue
			}
			if regime != prevRegime {
				if regime == 1 {
					s.actions[i] = types.ActionEnterLong
				} else {
					s.actions[i] = types.ActionEnterShort
				}
				prevRegime = regime
			}
		}
	}

	return s, nil
}
