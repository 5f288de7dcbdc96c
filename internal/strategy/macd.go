package strategy

import (
	"math"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// macdWarmup covers the 26-period slow EMA plus the 9-period signal line of
// the standard MACD parameterization.
const macdWarmup = 35

// MACDTrend enters on MACD line / signal line crosses. A minimum histogram
// magnitude at the cross filters out flat, noisy crossovers.
type MACDTrend struct {
	signalSeries
	cfg config.MACDConfig
}

// NewMACDTrend precomputes MACD cross signals for the series
func NewMACDTrend(series *types.Series, cfg config.MACDConfig) (*MACDTrend, error) {
	closes := series.Closes()
	macd, signal := indicators.MACD(closes)

	s := &MACDTrend{
		signalSeries: newSignalSeries("macd", series.Len()),
		cfg:          cfg,
	}

	for i := macdWarmup; i < series.Len(); i++ {
		hist := math.Abs(macd[i] - signal[i])
		if hist < cfg.MinHistogram {
			continue
		}
		if crossedUp(macd, signal, i) {
			s.actions[i] = types.ActionEnterLong
		} else if crossedDown(macd, signal, i) {
			s.actions[i] = types.ActionEnterShort
		}
	}

	return s, nil
}
