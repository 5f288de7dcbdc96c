package backtest

import (
	"testing"

	"stratlab/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays a fixed list of actions, one per candle
type scriptedProvider struct {
	actions []types.Action
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) SignalAt(i int) types.Signal {
	if i < 0 || i >= len(p.actions) {
		return types.Hold(i)
	}
	return types.Signal{Index: i, Action: p.actions[i]}
}

func seriesOf(t *testing.T, candles ...types.OHLCV) *types.Series {
	t.Helper()
	s, err := types.NewSeries("BTCUSDT", "15m", candles)
	require.NoError(t, err)
	return s
}

func script(actions ...types.Action) *scriptedProvider {
	return &scriptedProvider{actions: actions}
}

func TestEngineStopLossScenario(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 99, 99.5, 94, 95),
		candleAt(2, 95, 96, 94.5, 95.5),
	)
	provider := script(types.ActionEnterLong, types.ActionHold, types.ActionHold)

	engine := NewEngine(percentRiskConfig(), nil)
	res, err := engine.Run(series, provider, 10000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, types.SideLong, trade.Side)
	assert.Equal(t, types.ExitStopLoss, trade.ExitReason)
	assert.InDelta(t, 20, trade.Size, 1e-9)
	assert.InDelta(t, -100, trade.PnL, 1e-9)
	assert.InDelta(t, 9900, res.Metrics.FinalEquity, 1e-9)
}

func TestEngineTakeProfitScenario(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 104, 111, 103, 110),
		candleAt(2, 110, 111, 109, 110.5),
	)
	provider := script(types.ActionEnterLong, types.ActionHold, types.ActionHold)

	engine := NewEngine(percentRiskConfig(), nil)
	res, err := engine.Run(series, provider, 10000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, types.ExitTakeProfit, trade.ExitReason)
	assert.InDelta(t, 200, trade.PnL, 1e-9)
	assert.InDelta(t, 10200, res.Metrics.FinalEquity, 1e-9)
}

func TestEngineForceClosesAtEndOfData(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 100, 101, 99.75, 100.5),
	)
	provider := script(types.ActionEnterLong, types.ActionHold)

	engine := NewEngine(percentRiskConfig(), nil)
	res, err := engine.Run(series, provider, 10000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, types.ExitEndOfData, trade.ExitReason)
	assert.InDelta(t, 100.5, trade.ExitPrice, 1e-9)
	assert.True(t, trade.ExitTime.After(trade.EntryTime))

	// the last equity point reflects the forced close
	require.Len(t, res.EquityCurve, 2)
	assert.InDelta(t, 10010, res.EquityCurve[1].Equity, 1e-9)
}

func TestEngineZeroTrades(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 100, 101, 99.75, 100.5),
		candleAt(2, 100.5, 101, 100, 100.25),
	)
	provider := script(types.ActionHold, types.ActionHold, types.ActionHold)

	engine := NewEngine(percentRiskConfig(), nil)
	res, err := engine.Run(series, provider, 10000)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, res.Metrics.TradeCount)
	assert.InDelta(t, 0, res.Metrics.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0, res.Metrics.Winrate, 1e-9)
	assert.InDelta(t, 0, res.Metrics.MaxDrawdownPct, 1e-9)
	assert.False(t, res.Metrics.ProfitFactorDefined)

	// one equity point per candle, flat throughout
	require.Len(t, res.EquityCurve, 3)
	for _, p := range res.EquityCurve {
		assert.InDelta(t, 10000, p.Equity, 1e-9)
	}
}

func TestEngineIgnoresEntryOnFinalCandle(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 100, 101, 99.75, 100.5),
	)
	provider := script(types.ActionHold, types.ActionEnterLong)

	engine := NewEngine(percentRiskConfig(), nil)
	res, err := engine.Run(series, provider, 10000)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
}

func TestEngineDeterminism(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 100, 102, 99, 101),
		candleAt(2, 101, 103, 94, 95),
		candleAt(3, 95, 99, 94, 98),
		candleAt(4, 98, 112, 97, 108),
		candleAt(5, 108, 110, 105, 106),
	)
	actions := []types.Action{
		types.ActionEnterLong, types.ActionHold, types.ActionHold,
		types.ActionEnterLong, types.ActionHold, types.ActionHold,
	}

	cfg := percentRiskConfig()
	cfg.CommissionPct = 0.0005

	first, err := NewEngine(cfg, nil).Run(series, script(actions...), 10000)
	require.NoError(t, err)
	second, err := NewEngine(cfg, nil).Run(series, script(actions...), 10000)
	require.NoError(t, err)

	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestEngineEquityConservation(t *testing.T) {
	series := seriesOf(t,
		candleAt(0, 100, 100.5, 99.5, 100),
		candleAt(1, 100, 102, 99, 101),
		candleAt(2, 101, 103, 94, 95),
		candleAt(3, 95, 99, 94, 98),
		candleAt(4, 98, 112, 97, 108),
		candleAt(5, 108, 110, 105, 106),
	)
	actions := []types.Action{
		types.ActionEnterLong, types.ActionHold, types.ActionHold,
		types.ActionEnterShort, types.ActionHold, types.ActionHold,
	}

	cfg := percentRiskConfig()
	cfg.CommissionPct = 0.001

	res, err := NewEngine(cfg, nil).Run(series, script(actions...), 10000)
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	sum := 0.0
	for _, tr := range res.Trades {
		sum += tr.PnL - tr.Commission
	}
	assert.InEpsilon(t, 10000+sum, res.Metrics.FinalEquity, 1e-9)
}

func TestEngineContinuesAfterSizingFailure(t *testing.T) {
	cfg := percentRiskConfig()
	cfg.StopLossMode = "atr" // ATR is zero during warmup, entries are skipped
	cfg.StopLossValue = 1.5
	cfg.TakeProfitMode = "atr"
	cfg.TakeProfitValue = 3
	cfg.ATRPeriod = 14

	series := seriesOf(t,
		candleAt(0, 100, 100, 100, 100),
		candleAt(1, 100, 100, 100, 100),
		candleAt(2, 100, 100, 100, 100),
	)
	provider := script(types.ActionEnterLong, types.ActionEnterLong, types.ActionHold)

	res, err := NewEngine(cfg, nil).Run(series, provider, 10000)
	require.NoError(t, err)

	// zero-range candles give ATR 0, every entry attempt fails, run completes flat
	assert.Empty(t, res.Trades)
	require.Len(t, res.EquityCurve, 3)
	assert.InDelta(t, 10000, res.Metrics.FinalEquity, 1e-9)
}

func TestEngineRejectsBadInputs(t *testing.T) {
	series := seriesOf(t, candleAt(0, 100, 100.5, 99.5, 100))

	_, err := NewEngine(percentRiskConfig(), nil).Run(nil, script(), 10000)
	assert.Error(t, err)

	_, err = NewEngine(percentRiskConfig(), nil).Run(series, nil, 10000)
	assert.Error(t, err)

	_, err = NewEngine(percentRiskConfig(), nil).Run(series, script(), -5)
	assert.Error(t, err)
}
