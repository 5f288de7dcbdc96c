package backtest

import (
	"fmt"
	"time"

	"stratlab/internal/config"
	"stratlab/internal/logging"
	"stratlab/internal/types"
)

// State represents the tracker state machine
type State string

const (
	StateFlat      State = "flat"
	StateOpenLong  State = "open_long"
	StateOpenShort State = "open_short"
)

// PositionTracker owns the single open position of a backtest run and the
// realized equity it is carried against. It advances one candle at a time:
// exits for the open position are evaluated against the current bar first,
// then, if flat, the candle's signal may open a new position through the
// risk manager.
//
// Advance must be called exactly once per candle in strictly increasing time
// order; violating that is a programming error and fatal to the run.
type PositionTracker struct {
	risk   *RiskManager
	cfg    config.RiskConfig
	logger *logging.Logger

	initialEquity float64
	equity        float64

	state    State
	pos      *types.Position
	entryFee float64
	lastTime time.Time
}

// NewPositionTracker creates a tracker starting flat at the given equity
func NewPositionTracker(risk *RiskManager, cfg config.RiskConfig, initialEquity float64, logger *logging.Logger) *PositionTracker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PositionTracker{
		risk:          risk,
		cfg:           cfg,
		logger:        logger,
		initialEquity: initialEquity,
		equity:        initialEquity,
		state:         StateFlat,
	}
}

// State returns the current state of the tracker
func (t *PositionTracker) State() State {
	return t.state
}

// Equity returns the current realized equity
func (t *PositionTracker) Equity() float64 {
	return t.equity
}

// Position returns a copy of the open position, or nil when flat
func (t *PositionTracker) Position() *types.Position {
	if t.pos == nil {
		return nil
	}
	p := *t.pos
	return &p
}

// Advance processes one candle and its signal. It returns the trade closed
// on this candle, if any, and the realized equity snapshot for the candle.
// The snapshot is taken after exit handling and before a new entry, so entry
// commission shows up in the following candle's point.
//
// Recoverable sizing errors (invalid brackets, insufficient equity, zero
// stop distance) only cancel the entry attempt; the returned error is
// non-nil solely for out-of-order calls.
func (t *PositionTracker) Advance(candle types.OHLCV, sig types.Signal, atr float64) (*types.Trade, float64, error) {
	if !t.lastTime.IsZero() && !candle.Timestamp.After(t.lastTime) {
		return nil, t.equity, fmt.Errorf("%w: %s does not follow %s",
			ErrOutOfOrderAdvance, candle.Timestamp.Format(time.RFC3339), t.lastTime.Format(time.RFC3339))
	}
	t.lastTime = candle.Timestamp

	var closed *types.Trade
	if t.pos != nil {
		closed = t.evaluateExit(candle, sig)
	}

	equityMark := t.equity

	if t.pos == nil && sig.IsEntry() {
		t.tryOpen(candle, sig, atr)
	}

	return closed, equityMark, nil
}

// ForceClose closes any open position at the candle's close price with
// reason end_of_data. Called by the engine when the series is exhausted.
func (t *PositionTracker) ForceClose(candle types.OHLCV) *types.Trade {
	if t.pos == nil {
		return nil
	}
	return t.close(candle.Close, candle.Timestamp, types.ExitEndOfData)
}

// evaluateExit tests the open position against the current bar's range.
// Stop-loss is tested before take-profit when both fall inside the bar, a
// conservative worst-case tie-break; the priority flips when the risk
// configuration asks for take-profit priority.
func (t *PositionTracker) evaluateExit(candle types.OHLCV, sig types.Signal) *types.Trade {
	var hitStop, hitTake bool
	if t.pos.Side == types.SideLong {
		hitStop = candle.Low <= t.pos.StopLoss
		hitTake = candle.High >= t.pos.TakeProfit
	} else {
		hitStop = candle.High >= t.pos.StopLoss
		hitTake = candle.Low <= t.pos.TakeProfit
	}

	first, second := hitStop, hitTake
	firstPrice, secondPrice := t.pos.StopLoss, t.pos.TakeProfit
	firstReason, secondReason := types.ExitStopLoss, types.ExitTakeProfit
	if t.cfg.TakeProfitPriority {
		first, second = hitTake, hitStop
		firstPrice, secondPrice = t.pos.TakeProfit, t.pos.StopLoss
		firstReason, secondReason = types.ExitTakeProfit, types.ExitStopLoss
	}

	switch {
	case first:
		return t.close(firstPrice, candle.Timestamp, firstReason)
	case second:
		return t.close(secondPrice, candle.Timestamp, secondReason)
	case sig.Action == types.ActionExit:
		return t.close(candle.Close, candle.Timestamp, types.ExitSignal)
	}
	return nil
}

// tryOpen attempts an entry at the candle close. Sizing failures leave the
// tracker flat and the run continues.
func (t *PositionTracker) tryOpen(candle types.OHLCV, sig types.Signal, atr float64) {
	var side types.Side
	switch sig.Action {
	case types.ActionEnterLong:
		side = types.SideLong
	case types.ActionEnterShort:
		if !t.cfg.AllowShort {
			return
		}
		side = types.SideShort
	default:
		return
	}

	entryPrice := candle.Close
	sizing, err := t.risk.SizePosition(side, entryPrice, t.equity, atr)
	if err != nil {
		t.logger.Debugf("entry skipped at %s: %v", candle.Timestamp.Format(time.RFC3339), err)
		return
	}

	size := sizing.Size
	if sig.SizeHint > 0 && sig.SizeHint < 1 {
		size *= sig.SizeHint
	}

	t.entryFee = entryPrice * size * t.cfg.CommissionPct
	t.equity -= t.entryFee

	t.pos = &types.Position{
		Side:       side,
		Size:       size,
		EntryPrice: entryPrice,
		EntryTime:  candle.Timestamp,
		StopLoss:   sizing.StopLoss,
		TakeProfit: sizing.TakeProfit,
		Status:     types.PositionOpen,
	}
	if side == types.SideLong {
		t.state = StateOpenLong
	} else {
		t.state = StateOpenShort
	}
}

// close settles the open position at the given price and returns the trade
func (t *PositionTracker) close(exitPrice float64, exitTime time.Time, reason types.ExitReason) *types.Trade {
	pnl := t.pos.PnLAt(exitPrice)
	exitFee := exitPrice * t.pos.Size * t.cfg.CommissionPct
	commission := t.entryFee + exitFee

	t.equity += pnl - exitFee

	trade := &types.Trade{
		Side:       t.pos.Side,
		EntryPrice: t.pos.EntryPrice,
		EntryTime:  t.pos.EntryTime,
		ExitPrice:  exitPrice,
		ExitTime:   exitTime,
		Size:       t.pos.Size,
		StopLoss:   t.pos.StopLoss,
		TakeProfit: t.pos.TakeProfit,
		ExitReason: reason,
		PnL:        pnl,
		PnLPct:     (pnl - commission) / t.initialEquity * 100,
		Commission: commission,
	}

	t.pos = nil
	t.entryFee = 0
	t.state = StateFlat

	return trade
}
