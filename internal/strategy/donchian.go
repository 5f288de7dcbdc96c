package strategy

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// Donchian is a channel breakout strategy: it enters long when the close
// breaks above the highest high of the previous N candles and short when it
// breaks below the lowest low. The current candle is excluded from the
// channel, otherwise a close could never breach its own high.
type Donchian struct {
	signalSeries
	cfg config.DonchianConfig
}

// NewDonchian precomputes breakout signals for the series
func NewDonchian(series *types.Series, cfg config.DonchianConfig) (*Donchian, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("donchian: window must be positive, got %d", cfg.Window)
	}

	closes := series.Closes()
	channelHigh := indicators.RollingMax(cfg.Window, series.Highs())
	channelLow := indicators.RollingMin(cfg.Window, series.Lows())

	s := &Donchian{
		signalSeries: newSignalSeries("donchian", series.Len()),
		cfg:          cfg,
	}

	// channelHigh[i-1]/channelLow[i-1] cover the window ending at the
	// previous candle
	for i := cfg.Window; i < series.Len(); i++ {
		switch {
		case closes[i] > channelHigh[i-1]:
			s.actions[i] = types.ActionEnterLong
		case closes[i] < channelLow[i-1]:
			s.actions[i] = types.ActionEnterShort
		}
	}

	return s, nil
}
