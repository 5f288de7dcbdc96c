package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stratlab/internal/backtest"
	"stratlab/internal/optimize"
	"stratlab/internal/types"
)

// WriteSummary prints a readable single-run summary
func WriteSummary(w io.Writer, res *backtest.Result) {
	m := res.Metrics
	fmt.Fprintf(w, "\n===== BACKTEST SUMMARY =====\n")
	fmt.Fprintf(w, "Strategy:      %s (%s %s)\n", res.Strategy, res.Symbol, res.Timeframe)
	fmt.Fprintf(w, "Trades:        %d (%d wins / %d losses)\n", m.TradeCount, m.WinningTrades, m.LosingTrades)
	fmt.Fprintf(w, "Total return:  %.2f %%\n", m.TotalReturnPct)
	fmt.Fprintf(w, "Max drawdown:  %.2f %%\n", m.MaxDrawdownPct)
	fmt.Fprintf(w, "Winrate:       %.2f %%\n", m.Winrate*100)
	if m.ProfitFactorDefined {
		fmt.Fprintf(w, "Profit factor: %.2f\n", m.ProfitFactor)
	} else {
		fmt.Fprintf(w, "Profit factor: undefined (no losing trades)\n")
	}
	fmt.Fprintf(w, "Final equity:  %.2f (from %.2f)\n", m.FinalEquity, m.InitialEquity)
}

// WriteSweepTable prints the ranked comparison table of a sweep
func WriteSweepTable(w io.Writer, rep *optimize.Report, topN int) {
	fmt.Fprintf(w, "\n===== SWEEP REPORT =====\n")
	fmt.Fprintf(w, "Candidates: %d total, %d failed, %d below trade minimum\n",
		rep.Total, rep.Failed, rep.Filtered)
	fmt.Fprintf(w, "%-14s %6s %8s %8s %8s %9s %9s %7s %7s\n",
		"strategy", "trades", "risk%", "sl", "tp", "return%", "maxDD%", "win%", "pf")

	for _, row := range rep.Top(topN) {
		m := row.Metrics
		pf := "n/a"
		if m.ProfitFactorDefined {
			pf = fmt.Sprintf("%.2f", m.ProfitFactor)
		}
		fmt.Fprintf(w, "%-14s %6d %8.3f %8.4f %8.4f %9.2f %9.2f %7.1f %7s\n",
			row.Strategy, m.TradeCount,
			row.RiskPerTradePct*100, row.StopLossValue, row.TakeProfitValue,
			m.TotalReturnPct, m.MaxDrawdownPct, m.Winrate*100, pf)
	}
}

// ExportTradesCSV writes the trade ledger to a CSV file
func ExportTradesCSV(path string, trades []types.Trade) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"entry_time", "exit_time", "side", "entry_price", "exit_price", "size",
		"stop_loss", "take_profit", "exit_reason", "pnl", "pnl_pct", "commission"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		record := []string{
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			string(t.Side),
			fmt.Sprintf("%.8f", t.EntryPrice),
			fmt.Sprintf("%.8f", t.ExitPrice),
			fmt.Sprintf("%.8f", t.Size),
			fmt.Sprintf("%.8f", t.StopLoss),
			fmt.Sprintf("%.8f", t.TakeProfit),
			string(t.ExitReason),
			fmt.Sprintf("%.4f", t.PnL),
			fmt.Sprintf("%.4f", t.PnLPct),
			fmt.Sprintf("%.4f", t.Commission),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// ExportEquityCSV writes the equity curve to a CSV file
func ExportEquityCSV(path string, curve []types.EquityPoint) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "equity"}); err != nil {
		return err
	}
	for _, p := range curve {
		record := []string{
			p.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.4f", p.Equity),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// createFile creates the target file, making parent directories as needed
func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create results directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}
