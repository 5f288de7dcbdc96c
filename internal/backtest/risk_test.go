package backtest

import (
	"testing"

	"stratlab/internal/config"
	"stratlab/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		RiskPerTradePct: 0.01,
		StopLossMode:    config.StopModePercent,
		StopLossValue:   0.05,
		TakeProfitMode:  config.StopModePercent,
		TakeProfitValue: 0.10,
		ATRPeriod:       14,
		AllowShort:      true,
	}
}

func TestSizePositionLong(t *testing.T) {
	rm := NewRiskManager(percentRiskConfig())

	sizing, err := rm.SizePosition(types.SideLong, 100, 10000, 0)
	require.NoError(t, err)

	// risk budget 100 over a stop distance of 5
	assert.InDelta(t, 20.0, sizing.Size, 1e-9)
	assert.InDelta(t, 95.0, sizing.StopLoss, 1e-9)
	assert.InDelta(t, 110.0, sizing.TakeProfit, 1e-9)
}

func TestSizePositionShort(t *testing.T) {
	rm := NewRiskManager(percentRiskConfig())

	sizing, err := rm.SizePosition(types.SideShort, 100, 10000, 0)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, sizing.Size, 1e-9)
	assert.InDelta(t, 105.0, sizing.StopLoss, 1e-9)
	assert.InDelta(t, 90.0, sizing.TakeProfit, 1e-9)
}

func TestSizePositionATRMode(t *testing.T) {
	cfg := percentRiskConfig()
	cfg.StopLossMode = config.StopModeATR
	cfg.StopLossValue = 1.5
	cfg.TakeProfitMode = config.StopModeATR
	cfg.TakeProfitValue = 3.0
	rm := NewRiskManager(cfg)

	sizing, err := rm.SizePosition(types.SideLong, 100, 10000, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 97.0, sizing.StopLoss, 1e-9)
	assert.InDelta(t, 106.0, sizing.TakeProfit, 1e-9)
	assert.InDelta(t, 10000*0.01/3.0, sizing.Size, 1e-9)
}

func TestSizePositionATRModeWithoutATR(t *testing.T) {
	cfg := percentRiskConfig()
	cfg.StopLossMode = config.StopModeATR
	cfg.StopLossValue = 1.5
	rm := NewRiskManager(cfg)

	_, err := rm.SizePosition(types.SideLong, 100, 10000, 0)
	assert.ErrorIs(t, err, ErrInvalidRiskParameters)
}

func TestSizePositionInsufficientEquity(t *testing.T) {
	rm := NewRiskManager(percentRiskConfig())

	for _, equity := range []float64{0, -250} {
		_, err := rm.SizePosition(types.SideLong, 100, equity, 0)
		assert.ErrorIs(t, err, ErrInsufficientEquity)
	}
}

func TestSizePositionDegenerateStop(t *testing.T) {
	cfg := percentRiskConfig()
	cfg.StopLossValue = 0 // stop collapses onto the entry price
	rm := NewRiskManager(cfg)

	_, err := rm.SizePosition(types.SideLong, 100, 10000, 0)
	assert.ErrorIs(t, err, ErrInvalidRiskParameters)
}

func TestSizePositionNotionalCap(t *testing.T) {
	cfg := percentRiskConfig()
	cfg.StopLossValue = 0.005 // tight stop would size to 200 units
	cfg.MaxNotionalPct = 0.5
	rm := NewRiskManager(cfg)

	sizing, err := rm.SizePosition(types.SideLong, 100, 10000, 0)
	require.NoError(t, err)

	// capped to 50% of equity in notional: 5000 / 100
	assert.InDelta(t, 50.0, sizing.Size, 1e-9)
}

func TestRecoverableErrorClassification(t *testing.T) {
	assert.True(t, IsRecoverable(ErrInvalidRiskParameters))
	assert.True(t, IsRecoverable(ErrInsufficientEquity))
	assert.True(t, IsRecoverable(ErrZeroStopDistance))
	assert.False(t, IsRecoverable(ErrOutOfOrderAdvance))
}
