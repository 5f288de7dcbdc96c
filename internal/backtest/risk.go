package backtest

import (
	"fmt"
	"math"

	"stratlab/internal/config"
	"stratlab/internal/types"
)

// RiskManager translates an entry intent plus current equity into a concrete
// position: size and bracketing stop-loss/take-profit levels. Sizing risks a
// fixed fraction of equity against the stop distance, so tighter stops imply
// larger size within the same risk budget.
type RiskManager struct {
	cfg config.RiskConfig
}

// NewRiskManager creates a risk manager for one immutable risk configuration
func NewRiskManager(cfg config.RiskConfig) *RiskManager {
	return &RiskManager{cfg: cfg}
}

// PositionSizing is the output of SizePosition
type PositionSizing struct {
	Size       float64 `json:"size"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

// SizePosition computes size and exit levels for an entry at the given price.
// atr is the precomputed ATR value for the entry index; it is only consulted
// when a stop mode is "atr".
func (rm *RiskManager) SizePosition(side types.Side, entryPrice, equity, atr float64) (PositionSizing, error) {
	if equity <= 0 {
		return PositionSizing{}, fmt.Errorf("%w: equity %.8f", ErrInsufficientEquity, equity)
	}
	if entryPrice <= 0 {
		return PositionSizing{}, fmt.Errorf("%w: entry price %.8f", ErrInvalidRiskParameters, entryPrice)
	}

	stopOffset, err := rm.offset(rm.cfg.StopLossMode, rm.cfg.StopLossValue, entryPrice, atr)
	if err != nil {
		return PositionSizing{}, err
	}
	takeOffset, err := rm.offset(rm.cfg.TakeProfitMode, rm.cfg.TakeProfitValue, entryPrice, atr)
	if err != nil {
		return PositionSizing{}, err
	}

	var stopLoss, takeProfit float64
	switch side {
	case types.SideLong:
		stopLoss = entryPrice - stopOffset
		takeProfit = entryPrice + takeOffset
	case types.SideShort:
		stopLoss = entryPrice + stopOffset
		takeProfit = entryPrice - takeOffset
	default:
		return PositionSizing{}, fmt.Errorf("%w: unknown side %q", ErrInvalidRiskParameters, side)
	}

	if err := validateBrackets(side, entryPrice, stopLoss, takeProfit); err != nil {
		return PositionSizing{}, err
	}

	stopDistance := math.Abs(entryPrice - stopLoss)
	if stopDistance <= 0 {
		return PositionSizing{}, fmt.Errorf("%w: entry %.8f stop %.8f", ErrZeroStopDistance, entryPrice, stopLoss)
	}

	size := equity * rm.cfg.RiskPerTradePct / stopDistance

	// Optional cap on total notional exposure
	if rm.cfg.MaxNotionalPct > 0 {
		maxSize := equity * rm.cfg.MaxNotionalPct / entryPrice
		if size > maxSize {
			size = maxSize
		}
	}

	if size <= 0 {
		return PositionSizing{}, fmt.Errorf("%w: computed size %.8f", ErrZeroStopDistance, size)
	}

	return PositionSizing{
		Size:       size,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, nil
}

// offset computes the price offset for one exit level
func (rm *RiskManager) offset(mode config.StopMode, value, entryPrice, atr float64) (float64, error) {
	switch mode {
	case config.StopModePercent:
		return entryPrice * value, nil
	case config.StopModeATR:
		if atr <= 0 || math.IsNaN(atr) {
			return 0, fmt.Errorf("%w: ATR stop requested but ATR is %.8f", ErrInvalidRiskParameters, atr)
		}
		return atr * value, nil
	default:
		return 0, fmt.Errorf("%w: unknown stop mode %q", ErrInvalidRiskParameters, mode)
	}
}

// validateBrackets checks that the exit levels bracket the entry correctly:
// stop below entry and take-profit above for longs, inverted for shorts
func validateBrackets(side types.Side, entry, stopLoss, takeProfit float64) error {
	switch side {
	case types.SideLong:
		if stopLoss >= entry || takeProfit <= entry {
			return fmt.Errorf("%w: long entry %.8f stop %.8f take %.8f", ErrInvalidRiskParameters, entry, stopLoss, takeProfit)
		}
	case types.SideShort:
		if stopLoss <= entry || takeProfit >= entry {
			return fmt.Errorf("%w: short entry %.8f stop %.8f take %.8f", ErrInvalidRiskParameters, entry, stopLoss, takeProfit)
		}
	}
	if stopLoss <= 0 || takeProfit <= 0 {
		return fmt.Errorf("%w: non-positive exit level (stop %.8f take %.8f)", ErrInvalidRiskParameters, stopLoss, takeProfit)
	}
	return nil
}
