package types

import (
	"time"
)

// OHLCV represents a single fixed-interval candle
type OHLCV struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// NewOHLCV creates a new OHLCV instance
func NewOHLCV(symbol string, timestamp time.Time, open, high, low, close, volume float64) OHLCV {
	return OHLCV{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// GetPrice returns the closing price (commonly used price)
func (o OHLCV) GetPrice() float64 {
	return o.Close
}

// GetTypicalPrice returns (high + low + close) / 3
func (o OHLCV) GetTypicalPrice() float64 {
	return (o.High + o.Low + o.Close) / 3
}

// GetRange returns the price range (high - low)
func (o OHLCV) GetRange() float64 {
	return o.High - o.Low
}

// GetBody returns the absolute difference between open and close
func (o OHLCV) GetBody() float64 {
	return abs(o.Close - o.Open)
}

// IsBullish returns true if close > open
func (o OHLCV) IsBullish() bool {
	return o.Close > o.Open
}

// IsBearish returns true if close < open
func (o OHLCV) IsBearish() bool {
	return o.Close < o.Open
}

// IsValid checks the internal OHLC relationships of the candle
func (o OHLCV) IsValid() bool {
	if o.High < o.Low {
		return false
	}
	if o.High < o.Open || o.High < o.Close {
		return false
	}
	if o.Low > o.Open || o.Low > o.Close {
		return false
	}
	return o.Open > 0 && o.Close > 0 && o.Volume >= 0
}

// Helper function
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
