package strategy

import (
	"math"
	"sort"

	"stratlab/internal/types"
)

// Provider is the capability the backtest engine consumes: one signal per
// candle index. All strategies in this package precompute their signals from
// the full series in their constructor, keeping the simulation loop free of
// indicator math.
type Provider interface {
	Name() string
	SignalAt(i int) types.Signal
	Len() int
}

// signalSeries is the shared precomputed-signal backbone of the strategies
type signalSeries struct {
	name    string
	actions []types.Action
}

func newSignalSeries(name string, n int) signalSeries {
	actions := make([]types.Action, n)
	for i := range actions {
		actions[i] = types.ActionHold
	}
	return signalSeries{name: name, actions: actions}
}

// Name returns the strategy name
func (s *signalSeries) Name() string {
	return s.name
}

// Len returns the number of precomputed signals
func (s *signalSeries) Len() int {
	return len(s.actions)
}

// SignalAt returns the signal for the given candle index. Indices outside
// the precomputed range yield hold.
func (s *signalSeries) SignalAt(i int) types.Signal {
	if i < 0 || i >= len(s.actions) {
		return types.Hold(i)
	}
	return types.Signal{Index: i, Action: s.actions[i]}
}

// crossedUp reports a strict upward cross of a over b between i-1 and i
func crossedUp(a, b []float64, i int) bool {
	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// crossedDown reports a strict downward cross of a under b between i-1 and i
func crossedDown(a, b []float64, i int) bool {
	return a[i] < b[i] && a[i-1] >= b[i-1]
}

// atrThreshold returns the ATR level matching the given percentile of the
// whole series. Percentiles outside (0, 1) disable the filter.
func atrThreshold(atr []float64, pct float64) float64 {
	if pct <= 0 || pct >= 1 || len(atr) == 0 {
		return math.Inf(-1)
	}
	return percentile(atr, pct)
}

// percentile computes the q-th percentile with linear interpolation
func percentile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
