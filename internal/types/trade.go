package types

import (
	"time"
)

// ExitReason explains why a position was closed
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitSignal     ExitReason = "signal_exit"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Trade is the immutable record of a closed position. PnL is the directional
// price profit (size * price difference); Commission carries the entry and
// exit fees separately so equity accounting stays exact:
//
//	equity after close = equity before entry + PnL - Commission
type Trade struct {
	Side       Side       `json:"side"`
	EntryPrice float64    `json:"entry_price"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitPrice  float64    `json:"exit_price"`
	ExitTime   time.Time  `json:"exit_time"`
	Size       float64    `json:"size"`
	StopLoss   float64    `json:"stop_loss"`
	TakeProfit float64    `json:"take_profit"`
	ExitReason ExitReason `json:"exit_reason"`
	PnL        float64    `json:"pnl"`
	PnLPct     float64    `json:"pnl_pct"`
	Commission float64    `json:"commission"`
}

// NetPnL returns the profit after commissions, the figure trades are won or
// lost by
func (t Trade) NetPnL() float64 {
	return t.PnL - t.Commission
}

// IsWin returns true if the trade was profitable after commissions
func (t Trade) IsWin() bool {
	return t.NetPnL() > 0
}

// Duration returns how long the position was held
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint is one sample of the equity curve, one per processed candle
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}
