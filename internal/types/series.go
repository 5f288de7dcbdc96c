package types

import (
	"fmt"
)

// Series is a validated, chronologically ordered candle sequence. It is the
// read-only input of the backtest engine: once constructed, candles are never
// added, removed or reordered.
type Series struct {
	Symbol    string  `json:"symbol"`
	Timeframe string  `json:"timeframe"`
	Candles   []OHLCV `json:"candles"`
}

// NewSeries validates the candle sequence and wraps it into a Series.
// Candles must be strictly increasing in timestamp and internally consistent
// (high >= low, high/low bracketing open and close). Malformed input is
// rejected here, before any simulation starts.
func NewSeries(symbol, timeframe string, candles []OHLCV) (*Series, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("series %s: no candles", symbol)
	}

	for i, c := range candles {
		if !c.IsValid() {
			return nil, fmt.Errorf("series %s: invalid OHLC relationships at index %d: O=%.8f H=%.8f L=%.8f C=%.8f",
				symbol, i, c.Open, c.High, c.Low, c.Close)
		}
		if i > 0 && !candles[i-1].Timestamp.Before(c.Timestamp) {
			return nil, fmt.Errorf("series %s: non-monotonic timestamp at index %d (%s -> %s)",
				symbol, i, candles[i-1].Timestamp, c.Timestamp)
		}
	}

	return &Series{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   candles,
	}, nil
}

// Len returns the number of candles in the series
func (s *Series) Len() int {
	return len(s.Candles)
}

// At returns the candle at the given index
func (s *Series) At(i int) OHLCV {
	return s.Candles[i]
}

// Last returns the final candle of the series
func (s *Series) Last() OHLCV {
	return s.Candles[len(s.Candles)-1]
}

// Closes extracts the closing prices as a flat array
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high prices as a flat array
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low prices as a flat array
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the traded volumes as a flat array
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}
