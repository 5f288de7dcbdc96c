package backtest

import (
	"stratlab/internal/types"
)

// Ledger is the append-only record of closed trades and the source of truth
// for trade statistics. Derived views are computed on demand, never cached.
type Ledger struct {
	trades []types.Trade
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records a closed trade
func (l *Ledger) Append(trade types.Trade) {
	l.trades = append(l.trades, trade)
}

// Len returns the number of recorded trades
func (l *Ledger) Len() int {
	return len(l.trades)
}

// All returns the trades in close order. The returned slice is a copy.
func (l *Ledger) All() []types.Trade {
	out := make([]types.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Winning returns the trades with positive net profit
func (l *Ledger) Winning() []types.Trade {
	var out []types.Trade
	for _, t := range l.trades {
		if t.NetPnL() > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Losing returns the trades with negative net profit
func (l *Ledger) Losing() []types.Trade {
	var out []types.Trade
	for _, t := range l.trades {
		if t.NetPnL() < 0 {
			out = append(out, t)
		}
	}
	return out
}
