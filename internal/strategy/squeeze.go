package strategy

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/types"
)

// Squeeze is a TTM-style squeeze momentum strategy. The market is "in a
// squeeze" while the Bollinger Bands sit fully inside the Keltner channel,
// meaning volatility is compressed. An entry fires on the candle where the
// squeeze releases after at least min_squeeze_bars compressed candles, in
// the direction of momentum (close minus its moving average, and rising or
// falling), provided the ATR sits above a minimum percentile of the series.
type Squeeze struct {
	signalSeries
	cfg config.SqueezeConfig
}

// NewSqueeze precomputes squeeze release signals for the series
func NewSqueeze(series *types.Series, cfg config.SqueezeConfig) (*Squeeze, error) {
	if cfg.KCWindow <= 0 {
		return nil, fmt.Errorf("squeeze: kc window must be positive, got %d", cfg.KCWindow)
	}
	if cfg.KCMultiplier <= 0 {
		return nil, fmt.Errorf("squeeze: kc multiplier must be positive, got %.2f", cfg.KCMultiplier)
	}
	if cfg.MomentumWindow <= 0 {
		return nil, fmt.Errorf("squeeze: momentum window must be positive, got %d", cfg.MomentumWindow)
	}
	if cfg.MinSqueezeBars < 0 {
		return nil, fmt.Errorf("squeeze: min squeeze bars must not be negative, got %d", cfg.MinSqueezeBars)
	}
	if cfg.ATRWindow <= 0 {
		cfg.ATRWindow = 14
	}

	closes := series.Closes()
	n := len(closes)

	atr := indicators.ATR(cfg.ATRWindow, series.Highs(), series.Lows(), closes)
	bbUpper, _, bbLower := indicators.BollingerBands(closes)
	kcMid := indicators.SMA(cfg.KCWindow, closes)
	momMA := indicators.SMA(cfg.MomentumWindow, closes)

	// Squeeze state and a run length counter of consecutive squeezed candles
	squeezeOn := make([]bool, n)
	squeezeRun := make([]int, n)
	momentum := make([]float64, n)
	for i := 0; i < n; i++ {
		kcUpper := kcMid[i] + cfg.KCMultiplier*atr[i]
		kcLower := kcMid[i] - cfg.KCMultiplier*atr[i]
		squeezeOn[i] = bbUpper[i] < kcUpper && bbLower[i] > kcLower
		if squeezeOn[i] {
			run := 1
			if i > 0 {
				run = squeezeRun[i-1] + 1
			}
			squeezeRun[i] = run
		}
		momentum[i] = closes[i] - momMA[i]
	}

	atrFloor := atrThreshold(atr, cfg.ATRMinPercentile)

	warmup := bollingerWarmup
	for _, w := range []int{cfg.KCWindow, cfg.MomentumWindow, cfg.ATRWindow} {
		if w > warmup {
			warmup = w
		}
	}

	s := &Squeeze{
		signalSeries: newSignalSeries("squeeze", n),
		cfg:          cfg,
	}

	for i := warmup + 1; i < n; i++ {
		released := !squeezeOn[i] && squeezeOn[i-1]
		if !released || squeezeRun[i-1] < cfg.MinSqueezeBars {
			continue
		}
		if atr[i] <= atrFloor {
			continue
		}

		slope := momentum[i] - momentum[i-1]
		switch {
		case momentum[i] > 0 && slope > 0:
			s.actions[i] = types.ActionEnterLong
		case momentum[i] < 0 && slope < 0:
			s.actions[i] = types.ActionEnterShort
		}
	}

	return s, nil
}
