package strategy

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// Keltner is a volatility breakout strategy over a Keltner channel: an EMA
// midline with ATR-multiple bands. An entry fires when the close crosses a
// band, the ATR sits above a minimum percentile of the whole series (dead
// markets are skipped) and, optionally, the close is on the trend EMA's
// side of the market.
type Keltner struct {
	signalSeries
	cfg config.KeltnerConfig
}

// NewKeltner precomputes channel breakout signals for the series
func NewKeltner(series *types.Series, cfg config.KeltnerConfig) (*Keltner, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("keltner: window must be positive, got %d", cfg.Window)
	}
	if cfg.Multiplier <= 0 {
		return nil, fmt.Errorf("keltner: multiplier must be positive, got %.2f", cfg.Multiplier)
	}
	if cfg.ATRWindow <= 0 {
		cfg.ATRWindow = 14
	}

	closes := series.Closes()
	atr := indicators.ATR(cfg.ATRWindow, series.Highs(), series.Lows(), closes)
	mid := indicators.EMA(cfg.Window, closes)

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		upper[i] = mid[i] + cfg.Multiplier*atr[i]
		lower[i] = mid[i] - cfg.Multiplier*atr[i]
	}

	atrFloor := atrThreshold(atr, cfg.ATRMinPercentile)

	var trendEMA []float64
	warmup := cfg.Window
	if cfg.ATRWindow > warmup {
		warmup = cfg.ATRWindow
	}
	if cfg.UseTrendFilter {
		w := cfg.TrendEMAWindow
		if w <= 0 {
			w = 100
		}
		trendEMA = indicators.EMA(w, closes)
		if w > warmup {
			warmup = w
		}
	}

	s := &Keltner{
		signalSeries: newSignalSeries("keltner", series.Len()),
		cfg:          cfg,
	}

	for i := warmup; i < series.Len(); i++ {
		if atr[i] < atrFloor {
			continue
		}

		longOK, shortOK := true, true
		if cfg.UseTrendFilter {
			longOK = closes[i] > trendEMA[i]
			shortOK = closes[i] < trendEMA[i]
		}

		if longOK && crossedUp(closes, upper, i) {
			s.actions[i] = types.ActionEnterLong
		} else if shortOK && crossedDown(closes, lower, i) {
			s.actions[i] = types.ActionEnterShort
		}
	}

	return s, nil
}
