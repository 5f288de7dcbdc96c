package strategy

import (
	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// bollingerWarmup matches the fixed 20-period bands of the indicator library
const bollingerWarmup = 20

// Bollinger is a mean-reversion strategy: it buys closes below the lower
// band, sells closes above the upper band, and optionally exits when price
// crosses back over the middle band.
type Bollinger struct {
	signalSeries
	cfg config.BollingerConfig
}

// NewBollinger precomputes band-reversion signals for the series
func NewBollinger(series *types.Series, cfg config.BollingerConfig) (*Bollinger, error) {
	closes := series.Closes()
	upper, middle, lower := indicators.BollingerBands(closes)

	s := &Bollinger{
		signalSeries: newSignalSeries("bollinger", series.Len()),
		cfg:          cfg,
	}

	for i := bollingerWarmup; i < series.Len(); i++ {
		switch {
		case closes[i] < lower[i]:
			s.actions[i] = types.ActionEnterLong
		case closes[i] > upper[i]:
			s.actions[i] = types.ActionEnterShort
		case cfg.ExitAtMiddle && crossesLevel(closes, middle, i):
			s.actions[i] = types.ActionExit
		}
	}

	return s, nil
}

// crossesLevel reports whether values crossed the level series between i-1
// and i, in either direction
func crossesLevel(values, level []float64, i int) bool {
	prev := values[i-1] - level[i-1]
	cur := values[i] - level[i]
	return (prev < 0 && cur >= 0) || (prev > 0 && cur <= 0)
}
