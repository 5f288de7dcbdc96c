package backtest

import (
	"fmt"

	"stratlab/internal/config"
	"stratlab/internal/indicators"
	"stratlab/internal/logging"
	"stratlab/internal/types"
)

// SignalProvider yields the strategy's directional intent for each candle
// index. The engine treats it as read-only and queries each index at most
// once, in increasing order. Providers may precompute their signals or
// compute them lazily.
type SignalProvider interface {
	Name() string
	SignalAt(i int) types.Signal
}

// Engine drives the candle-by-candle simulation loop, wiring signal
// provider, risk manager, position tracker and trade ledger together. A run
// is strictly sequential and deterministic: identical inputs reproduce an
// identical ledger and equity curve.
type Engine struct {
	riskCfg config.RiskConfig
	logger  *logging.Logger
}

// NewEngine creates an engine for one immutable risk configuration
func NewEngine(riskCfg config.RiskConfig, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		riskCfg: riskCfg,
		logger:  logger.WithComponent("engine"),
	}
}

// Result is the full output of one backtest run
type Result struct {
	Strategy  string `json:"strategy"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`

	Trades      []types.Trade       `json:"trades"`
	EquityCurve []types.EquityPoint `json:"equity_curve"`
	Metrics     Metrics             `json:"metrics"`
}

// Run executes the backtest over the full series. Sizing failures on entry
// attempts are swallowed and leave that candle flat, so a Result is always
// produced for a well-formed input; only integration-contract violations
// (empty series, missing provider, out-of-order advance) return an error.
func (e *Engine) Run(series *types.Series, signals SignalProvider, initialEquity float64) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty candle series")
	}
	if signals == nil {
		return nil, fmt.Errorf("backtest: no signal provider")
	}
	if initialEquity <= 0 {
		return nil, fmt.Errorf("backtest: initial equity must be positive, got %.2f", initialEquity)
	}
	if err := e.riskCfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	// Indicator precompute is a pure batch stage; the loop below only reads
	// the arrays by index.
	study := indicators.NewStudy(series, indicators.StudyConfig{ATRPeriod: e.riskCfg.ATRPeriod})

	risk := NewRiskManager(e.riskCfg)
	tracker := NewPositionTracker(risk, e.riskCfg, initialEquity, e.logger)
	ledger := NewLedger()

	n := series.Len()
	curve := make([]types.EquityPoint, 0, n)

	e.logger.Debugf("starting backtest: %s %s, %d candles, strategy=%s",
		series.Symbol, series.Timeframe, n, signals.Name())

	for i := 0; i < n; i++ {
		candle := series.At(i)
		sig := signals.SignalAt(i)

		// An entry on the final candle could never be evaluated against a
		// later bar, so it is ignored rather than opened and immediately
		// force-closed at its own entry price.
		if i == n-1 && sig.IsEntry() {
			sig = types.Hold(i)
		}

		closed, equity, err := tracker.Advance(candle, sig, study.ATRAt(i))
		if err != nil {
			return nil, err
		}
		if closed != nil {
			ledger.Append(*closed)
		}
		curve = append(curve, types.EquityPoint{Timestamp: candle.Timestamp, Equity: equity})
	}

	// Force-close anything still open at the last close price
	if forced := tracker.ForceClose(series.Last()); forced != nil {
		ledger.Append(*forced)
		curve[len(curve)-1].Equity = tracker.Equity()
	}

	metrics := CalculateMetrics(ledger, curve, initialEquity)

	e.logger.Debugf("backtest done: %s strategy=%s trades=%d return=%.2f%% maxDD=%.2f%%",
		series.Symbol, signals.Name(), metrics.TradeCount, metrics.TotalReturnPct, metrics.MaxDrawdownPct)

	return &Result{
		Strategy:    signals.Name(),
		Symbol:      series.Symbol,
		Timeframe:   series.Timeframe,
		Trades:      ledger.All(),
		EquityCurve: curve,
		Metrics:     metrics,
	}, nil
}
