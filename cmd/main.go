package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stratlab/internal/backtest"
	"stratlab/internal/config"
	"stratlab/internal/data"
	"stratlab/internal/logging"
	"stratlab/internal/optimize"
	"stratlab/internal/report"
	"stratlab/internal/strategy"
	"stratlab/internal/types"
)

const (
	AppName           = "stratlab"
	AppVersion        = "1.0.0"
	DefaultConfigPath = "./config.json"
)

var (
	configPath   = flag.String("config", DefaultConfigPath, "Path to configuration file")
	dataFile     = flag.String("data", "", "Candle CSV file (overrides config)")
	strategyName = flag.String("strategy", "", "Strategy to run (overrides config)")
	optimizeRun  = flag.Bool("optimize", false, "Run a parameter sweep instead of a single backtest")
	debugMode    = flag.Bool("debug", false, "Enable debug logging")
	showVersion  = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", AppName, AppVersion)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging)

	if err := run(cfg, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if _, statErr := os.Stat(*configPath); statErr == nil {
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if *dataFile != "" {
		cfg.Backtest.DataFile = *dataFile
	}
	if *strategyName != "" {
		cfg.Strategy.Name = *strategyName
	}
	if *debugMode {
		cfg.Logging.Level = "debug"
	}

	if cfg.Backtest.DataFile == "" {
		return nil, fmt.Errorf("no candle data file configured (use -data or backtest.data_file)")
	}
	return cfg, nil
}

func run(cfg *config.Config, logger *logging.Logger) error {
	loader := data.NewLoader(logger)
	series, err := loader.LoadSeries(cfg.Backtest.DataFile, cfg.Backtest.Symbol,
		cfg.Backtest.Timeframe, cfg.Backtest.StartTime, cfg.Backtest.EndTime)
	if err != nil {
		return err
	}

	if *optimizeRun {
		return runSweep(cfg, logger, series)
	}
	return runSingle(cfg, logger, series)
}

// runSingle executes one backtest and exports its artifacts
func runSingle(cfg *config.Config, logger *logging.Logger, series *types.Series) error {
	provider, err := strategy.New(cfg.Strategy.Name, series, &cfg.Strategy)
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(cfg.Risk, logger)
	result, err := engine.Run(series, provider, cfg.Backtest.InitialEquity)
	if err != nil {
		return err
	}

	report.WriteSummary(os.Stdout, result)

	stamp := series.Last().Timestamp.Format("20060102")
	base := fmt.Sprintf("%s_%s_%s", cfg.Strategy.Name, cfg.Backtest.Symbol, stamp)
	if cfg.Backtest.ExportTrades {
		path := filepath.Join(cfg.Backtest.ResultsDirectory, base+"_trades.csv")
		if err := report.ExportTradesCSV(path, result.Trades); err != nil {
			return err
		}
		logger.Infof("trades exported to %s", path)
	}
	if cfg.Backtest.ExportEquity {
		path := filepath.Join(cfg.Backtest.ResultsDirectory, base+"_equity.csv")
		if err := report.ExportEquityCSV(path, result.EquityCurve); err != nil {
			return err
		}
		logger.Infof("equity curve exported to %s", path)
	}
	return nil
}

// runSweep executes the optimizer's parameter sweep
func runSweep(cfg *config.Config, logger *logging.Logger, series *types.Series) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	opt := optimize.New(cfg.Optimizer, logger)
	rep, err := opt.Sweep(ctx, series, cfg.Risk, &cfg.Strategy, cfg.Backtest.InitialEquity)
	if err != nil {
		return err
	}

	report.WriteSweepTable(os.Stdout, rep, cfg.Optimizer.TopN)
	logger.Infof("sweep finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func printUsage() {
	fmt.Printf("%s %s - strategy backtesting and optimization\n\n", AppName, AppVersion)
	fmt.Println("Usage:")
	fmt.Printf("  %s [options]\n\n", AppName)
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("\nAvailable strategies:")
	for _, name := range strategy.Names() {
		fmt.Printf("  %s\n", name)
	}
}
