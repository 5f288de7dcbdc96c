package backtest

import (
	"stratlab/internal/types"
)

// Metrics are the performance statistics of one backtest run, derived purely
// from the trade ledger and the equity curve.
type Metrics struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Winrate        float64 `json:"winrate"` // fraction in [0, 1], 0 when no trades

	// ProfitFactor is gross profit over gross loss. With zero losing trades
	// the ratio is meaningless for comparison, so it is reported as
	// undefined (Defined=false) rather than as infinity.
	ProfitFactor        float64 `json:"profit_factor"`
	ProfitFactorDefined bool    `json:"profit_factor_defined"`

	TradeCount    int `json:"trade_count"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"` // reported as a positive magnitude
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	InitialEquity float64 `json:"initial_equity"`
	FinalEquity   float64 `json:"final_equity"`
}

// CalculateMetrics derives the run statistics from the ledger and equity
// curve. It is a pure function: identical inputs produce identical output.
func CalculateMetrics(ledger *Ledger, curve []types.EquityPoint, initialEquity float64) Metrics {
	m := Metrics{
		TradeCount:    ledger.Len(),
		InitialEquity: initialEquity,
		FinalEquity:   initialEquity,
	}

	if len(curve) > 0 {
		m.FinalEquity = curve[len(curve)-1].Equity
	}
	if initialEquity > 0 {
		m.TotalReturnPct = (m.FinalEquity - initialEquity) / initialEquity * 100
	}

	// Max drawdown against the running equity peak
	peak := initialEquity
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > m.MaxDrawdownPct {
				m.MaxDrawdownPct = dd
			}
		}
	}

	for _, t := range ledger.All() {
		net := t.NetPnL()
		switch {
		case net > 0:
			m.WinningTrades++
			m.GrossProfit += net
			if net > m.LargestWin {
				m.LargestWin = net
			}
		case net < 0:
			m.LosingTrades++
			m.GrossLoss += -net
			if net < m.LargestLoss {
				m.LargestLoss = net
			}
		}
	}

	if m.TradeCount > 0 {
		m.Winrate = float64(m.WinningTrades) / float64(m.TradeCount)
	}
	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
		m.ProfitFactorDefined = true
	}

	return m
}
