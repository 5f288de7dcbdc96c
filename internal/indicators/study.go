package indicators

import (
	"stratlab/internal/types"

	"github.com/cinar/indicator"
)

// Study holds per-index indicator arrays precomputed once for a candle
// series. Computation is a pure batch transformation that runs before the
// sequential simulation loop; the arrays are then read by index only.
type Study struct {
	series *types.Series

	ATR []float64
}

// StudyConfig holds indicator periods for the study
type StudyConfig struct {
	ATRPeriod int `json:"atr_period"`
}

// NewStudy precomputes the auxiliary arrays for the given series
func NewStudy(series *types.Series, cfg StudyConfig) *Study {
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}

	_, atr := indicator.Atr(cfg.ATRPeriod, series.Highs(), series.Lows(), series.Closes())

	return &Study{
		series: series,
		ATR:    atr,
	}
}

// ATRAt returns the ATR value for the candle at index i, or 0 when the
// index is outside the computed range
func (s *Study) ATRAt(i int) float64 {
	if i < 0 || i >= len(s.ATR) {
		return 0
	}
	return s.ATR[i]
}

// SMA computes a simple moving average over the closing prices
func SMA(period int, closing []float64) []float64 {
	return indicator.Sma(period, closing)
}

// EMA computes an exponential moving average over the closing prices
func EMA(period int, closing []float64) []float64 {
	return indicator.Ema(period, closing)
}

// RSI computes the relative strength index with a custom period
func RSI(period int, closing []float64) []float64 {
	_, rsi := indicator.RsiPeriod(period, closing)
	return rsi
}

// MACD computes the MACD line and its signal line
func MACD(closing []float64) (macd, signal []float64) {
	return indicator.Macd(closing)
}

// BollingerBands computes the 20-period Bollinger Bands
func BollingerBands(closing []float64) (upper, middle, lower []float64) {
	middle, upper, lower = indicator.BollingerBands(closing)
	return upper, middle, lower
}

// ATR computes the average true range over the given period
func ATR(period int, highs, lows, closes []float64) []float64 {
	_, atr := indicator.Atr(period, highs, lows, closes)
	return atr
}

// RollingMax computes the moving maximum over the given period
func RollingMax(period int, values []float64) []float64 {
	return indicator.Max(period, values)
}

// RollingMin computes the moving minimum over the given period
func RollingMin(period int, values []float64) []float64 {
	return indicator.Min(period, values)
}
