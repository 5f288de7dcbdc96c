package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"stratlab/internal/logging"
	"stratlab/internal/types"
)

// requiredColumns is the expected CSV header, in order
var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// timestampFormats are tried in order when parsing the timestamp column
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05.000",
	time.RFC3339,
	"2006/01/02 15:04:05",
}

// Loader reads candle CSV files into validated series
type Loader struct {
	logger *logging.Logger
}

// NewLoader creates a CSV candle loader
func NewLoader(logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{logger: logger.WithComponent("data")}
}

// LoadSeries reads a CSV file of candles and returns a validated Series.
// Rows outside [start, end] are dropped when the bounds are non-zero. Rows
// that fail to parse are skipped with a warning; structural problems
// (missing header columns, no rows, unordered timestamps) are errors.
func (l *Loader) LoadSeries(path, symbol, timeframe string, start, end time.Time) (*types.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candle file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var candles []types.OHLCV
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record at line %d: %w", line, err)
		}

		if len(record) < len(requiredColumns) {
			continue
		}

		candle, err := parseRecord(record, symbol)
		if err != nil {
			l.logger.Warnf("skipping line %d: %v", line, err)
			continue
		}

		if !start.IsZero() && candle.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Timestamp.After(end) {
			continue
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles found in %s for the requested range", path)
	}

	// Files exported from exchanges are normally already chronological, but
	// the series constructor treats disorder as fatal, so sort first.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	series, err := types.NewSeries(symbol, timeframe, candles)
	if err != nil {
		return nil, err
	}

	l.logger.Infof("loaded %d candles for %s from %s to %s",
		series.Len(), symbol,
		series.At(0).Timestamp.Format(time.RFC3339),
		series.Last().Timestamp.Format(time.RFC3339))

	return series, nil
}

// validateHeader checks that all required columns are present
func validateHeader(header []string) error {
	if len(header) < len(requiredColumns) {
		return fmt.Errorf("invalid CSV header: need columns %v", requiredColumns)
	}
	for i, req := range requiredColumns {
		if strings.ToLower(strings.TrimSpace(header[i])) != req {
			return fmt.Errorf("invalid CSV header: column %d is %q, want %q", i, header[i], req)
		}
	}
	return nil
}

// parseRecord parses a single CSV record into a candle
func parseRecord(record []string, symbol string) (types.OHLCV, error) {
	var timestamp time.Time
	var err error

	for _, format := range timestampFormats {
		timestamp, err = time.Parse(format, strings.TrimSpace(record[0]))
		if err == nil {
			break
		}
	}
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid timestamp %q", record[0])
	}

	values := make([]float64, 5)
	names := []string{"open", "high", "low", "close", "volume"}
	for i := 0; i < 5; i++ {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q", names[i], record[i+1])
		}
	}

	candle := types.NewOHLCV(symbol, timestamp, values[0], values[1], values[2], values[3], values[4])
	if !candle.IsValid() {
		return types.OHLCV{}, fmt.Errorf("invalid OHLC relationships: O=%.8f H=%.8f L=%.8f C=%.8f",
			candle.Open, candle.High, candle.Low, candle.Close)
	}
	return candle, nil
}
