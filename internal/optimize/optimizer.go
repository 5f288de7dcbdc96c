package optimize

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"stratlab/internal/backtest"
	"stratlab/internal/config"
	"stratlab/internal/logging"
	"stratlab/internal/strategy"
	"stratlab/internal/types"

	"github.com/google/uuid"
)

// Candidate is one configuration of the parameter sweep
type Candidate struct {
	ID       string            `json:"id"`
	Strategy string            `json:"strategy"`
	Risk     config.RiskConfig `json:"risk"`
}

// Row is the scored outcome of one candidate run
type Row struct {
	ID              string            `json:"id"`
	Strategy        string            `json:"strategy"`
	RiskPerTradePct float64           `json:"risk_per_trade_pct"`
	StopLossValue   float64           `json:"stop_loss_value"`
	TakeProfitValue float64           `json:"take_profit_value"`
	Metrics         backtest.Metrics  `json:"metrics"`
}

// Report is the ranked comparison table of a sweep
type Report struct {
	Rows     []Row `json:"rows"`     // ranked best-first
	Total    int   `json:"total"`    // candidates attempted
	Failed   int   `json:"failed"`   // runs excluded because they errored
	Filtered int   `json:"filtered"` // runs excluded by the min-trades filter
}

// Best returns the top-ranked row, or false when the report is empty
func (r *Report) Best() (Row, bool) {
	if len(r.Rows) == 0 {
		return Row{}, false
	}
	return r.Rows[0], true
}

// Top returns the first n ranked rows
func (r *Report) Top(n int) []Row {
	if n <= 0 || n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[:n]
}

// Optimizer sweeps backtest runs over a grid of risk parameters and
// strategies. Runs are embarrassingly parallel: every worker owns an
// independent engine, tracker and ledger, so no locks are needed during
// simulation; results are aggregated only after the pool drains.
type Optimizer struct {
	cfg    config.OptimizerConfig
	logger *logging.Logger
}

// New creates an optimizer
func New(cfg config.OptimizerConfig, logger *logging.Logger) *Optimizer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Optimizer{
		cfg:    cfg,
		logger: logger.WithComponent("optimizer"),
	}
}

// Sweep runs one backtest per candidate and returns the ranked comparison
// table. Cancellation is at run granularity: a pending candidate is skipped
// once ctx is done, but a started run always finishes.
//
// Candidates whose run fails are excluded from the comparison set rather
// than silently scored as zero.
func (o *Optimizer) Sweep(ctx context.Context, series *types.Series, baseRisk config.RiskConfig, stratCfg *config.StrategyConfig, initialEquity float64) (*Report, error) {
	providers, err := o.buildProviders(series, stratCfg)
	if err != nil {
		return nil, err
	}

	candidates := o.buildCandidates(baseRisk, providers)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("optimizer: empty parameter grid")
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	o.logger.Infof("sweeping %d candidates across %d workers", len(candidates), workers)

	type outcome struct {
		row Row
		err error
	}

	jobs := make(chan Candidate)
	results := make(chan outcome, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				engine := backtest.NewEngine(cand.Risk, o.logger)
				res, err := engine.Run(series, providers[cand.Strategy], initialEquity)
				if err != nil {
					results <- outcome{row: Row{ID: cand.ID, Strategy: cand.Strategy}, err: err}
					continue
				}
				results <- outcome{row: Row{
					ID:              cand.ID,
					Strategy:        cand.Strategy,
					RiskPerTradePct: cand.Risk.RiskPerTradePct,
					StopLossValue:   cand.Risk.StopLossValue,
					TakeProfitValue: cand.Risk.TakeProfitValue,
					Metrics:         res.Metrics,
				}}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- cand:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	report := &Report{Total: len(candidates)}
	for out := range results {
		if out.err != nil {
			report.Failed++
			o.logger.Errorf("run %s (%s) excluded: %v", out.row.ID, out.row.Strategy, out.err)
			continue
		}
		if out.row.Metrics.TradeCount < o.cfg.MinTrades {
			report.Filtered++
			continue
		}
		report.Rows = append(report.Rows, out.row)
	}

	rankRows(report.Rows)

	if ctx.Err() != nil && dispatched < len(candidates) {
		o.logger.Warnf("sweep cancelled after %d/%d candidates", dispatched, len(candidates))
	}

	return report, nil
}

// buildProviders constructs each requested strategy once; signal generation
// does not depend on risk parameters, so providers are shared across the
// risk grid.
func (o *Optimizer) buildProviders(series *types.Series, stratCfg *config.StrategyConfig) (map[string]strategy.Provider, error) {
	names := o.cfg.Strategies
	if len(names) == 0 {
		names = []string{stratCfg.Name}
	}

	providers := make(map[string]strategy.Provider, len(names))
	for _, name := range names {
		p, err := strategy.New(name, series, stratCfg)
		if err != nil {
			return nil, fmt.Errorf("optimizer: %w", err)
		}
		providers[name] = p
	}
	return providers, nil
}

// buildCandidates expands the grid axes into concrete risk configurations
func (o *Optimizer) buildCandidates(base config.RiskConfig, providers map[string]strategy.Provider) []Candidate {
	riskPcts := o.cfg.RiskPerTradePcts
	if len(riskPcts) == 0 {
		riskPcts = []float64{base.RiskPerTradePct}
	}
	slValues := o.cfg.StopLossValues
	if len(slValues) == 0 {
		slValues = []float64{base.StopLossValue}
	}
	tpValues := o.cfg.TakeProfitValues
	if len(tpValues) == 0 {
		tpValues = []float64{base.TakeProfitValue}
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []Candidate
	for _, name := range names {
		for _, riskPct := range riskPcts {
			for _, sl := range slValues {
				for _, tp := range tpValues {
					risk := base
					risk.RiskPerTradePct = riskPct
					risk.StopLossValue = sl
					risk.TakeProfitValue = tp
					candidates = append(candidates, Candidate{
						ID:       uuid.NewString(),
						Strategy: name,
						Risk:     risk,
					})
				}
			}
		}
	}
	return candidates
}

// rankRows sorts the comparison table: total return descending, then profit
// factor descending (undefined ranks below any defined value), then max
// drawdown ascending.
func rankRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Metrics, rows[j].Metrics
		if a.TotalReturnPct != b.TotalReturnPct {
			return a.TotalReturnPct > b.TotalReturnPct
		}
		if a.ProfitFactorDefined != b.ProfitFactorDefined {
			return a.ProfitFactorDefined
		}
		if a.ProfitFactor != b.ProfitFactor {
			return a.ProfitFactor > b.ProfitFactor
		}
		return a.MaxDrawdownPct < b.MaxDrawdownPct
	})
}
