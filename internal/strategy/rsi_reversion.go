package strategy

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// RSIReversion fades RSI extremes: it enters long below the oversold level,
// short above the overbought level, and exits when RSI crosses back through
// the exit level (the midline by default).
type RSIReversion struct {
	signalSeries
	cfg config.RSIReversionConfig
}

// NewRSIReversion precomputes RSI reversion signals for the series
func NewRSIReversion(series *types.Series, cfg config.RSIReversionConfig) (*RSIReversion, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rsi_reversion: window must be positive, got %d", cfg.Window)
	}
	if cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("rsi_reversion: oversold %.1f must be below overbought %.1f", cfg.Oversold, cfg.Overbought)
	}
	exitLevel := cfg.ExitLevel
	if exitLevel == 0 {
		exitLevel = 50
	}

	rsi := indicators.RSI(cfg.Window, series.Closes())

	s := &RSIReversion{
		signalSeries: newSignalSeries("rsi_reversion", series.Len()),
		cfg:          cfg,
	}

	for i := cfg.Window + 1; i < series.Len(); i++ {
		switch {
		case rsi[i] < cfg.Oversold:
			s.actions[i] = types.ActionEnterLong
		case rsi[i] > cfg.Overbought:
			s.actions[i] = types.ActionEnterShort
		case crossesValue(rsi, exitLevel, i):
			s.actions[i] = types.ActionExit
		}
	}

	return s, nil
}

// crossesValue reports whether the series crossed a fixed level between i-1
// and i, in either direction
func crossesValue(values []float64, level float64, i int) bool {
	prev := values[i-1] - level
	cur := values[i] - level
	return (prev < 0 && cur >= 0) || (prev > 0 && cur <= 0)
}
