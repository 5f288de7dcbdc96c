package backtest

import (
	"testing"
	"time"

	"stratlab/internal/types"

	"github.com/stretchr/testify/assert"
)

func tradeWithNet(net float64) types.Trade {
	return types.Trade{PnL: net, ExitReason: types.ExitSignal}
}

func curveOf(values ...float64) []types.EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.EquityPoint, len(values))
	for i, v := range values {
		out[i] = types.EquityPoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Equity: v}
	}
	return out
}

func TestMetricsNoTrades(t *testing.T) {
	m := CalculateMetrics(NewLedger(), curveOf(10000, 10000, 10000), 10000)

	assert.Equal(t, 0, m.TradeCount)
	assert.InDelta(t, 0, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0, m.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, 0, m.Winrate, 1e-9)
	assert.False(t, m.ProfitFactorDefined)
}

func TestMetricsWinrateAndProfitFactor(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(tradeWithNet(200))
	ledger.Append(tradeWithNet(-100))
	ledger.Append(tradeWithNet(100))
	ledger.Append(tradeWithNet(-50))

	m := CalculateMetrics(ledger, curveOf(10000, 10150), 10000)

	assert.Equal(t, 4, m.TradeCount)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.InDelta(t, 0.5, m.Winrate, 1e-9)
	assert.True(t, m.ProfitFactorDefined)
	assert.InDelta(t, 2.0, m.ProfitFactor, 1e-9) // 300 gross profit / 150 gross loss
	assert.InDelta(t, 200, m.LargestWin, 1e-9)
	assert.InDelta(t, -100, m.LargestLoss, 1e-9)
}

func TestMetricsProfitFactorUndefinedWithoutLosses(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(tradeWithNet(100))
	ledger.Append(tradeWithNet(50))

	m := CalculateMetrics(ledger, curveOf(10000, 10150), 10000)

	assert.False(t, m.ProfitFactorDefined)
	assert.InDelta(t, 1.0, m.Winrate, 1e-9)
}

func TestMetricsDrawdown(t *testing.T) {
	// peak 110 followed by a trough at 99: (110-99)/110
	m := CalculateMetrics(NewLedger(), curveOf(100, 110, 99, 105), 100)
	assert.InDelta(t, 10.0, m.MaxDrawdownPct, 1e-9)

	// non-decreasing curve has zero drawdown
	m = CalculateMetrics(NewLedger(), curveOf(100, 105, 105, 120), 100)
	assert.InDelta(t, 0, m.MaxDrawdownPct, 1e-9)

	m = CalculateMetrics(NewLedger(), curveOf(100, 60, 130), 100)
	assert.GreaterOrEqual(t, m.MaxDrawdownPct, 0.0)
	assert.LessOrEqual(t, m.MaxDrawdownPct, 100.0)
}

func TestMetricsTotalReturn(t *testing.T) {
	m := CalculateMetrics(NewLedger(), curveOf(1000, 1100), 1000)
	assert.InDelta(t, 10.0, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 1100, m.FinalEquity, 1e-9)
}

func TestLedgerViews(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(tradeWithNet(10))
	ledger.Append(tradeWithNet(-5))
	ledger.Append(tradeWithNet(3))

	assert.Equal(t, 3, ledger.Len())
	assert.Len(t, ledger.Winning(), 2)
	assert.Len(t, ledger.Losing(), 1)

	// All returns a copy, not the backing slice
	all := ledger.All()
	all[0].PnL = -999
	assert.InDelta(t, 10, ledger.All()[0].PnL, 1e-9)
}
