package types

import (
	"time"
)

// Side represents the direction of a position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// PositionStatus represents the lifecycle state of a position
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position represents the one position a backtest run may hold at a time.
// It is owned and mutated exclusively by the position tracker.
type Position struct {
	Side       Side           `json:"side"`
	Size       float64        `json:"size"`
	EntryPrice float64        `json:"entry_price"`
	EntryTime  time.Time      `json:"entry_time"`
	StopLoss   float64        `json:"stop_loss"`
	TakeProfit float64        `json:"take_profit"`
	Status     PositionStatus `json:"status"`
}

// Notional returns the position value at entry
func (p *Position) Notional() float64 {
	return p.Size * p.EntryPrice
}

// PnLAt returns the directional profit of the position at the given price,
// before commissions
func (p *Position) PnLAt(price float64) float64 {
	diff := price - p.EntryPrice
	if p.Side == SideShort {
		diff = -diff
	}
	return diff * p.Size
}
