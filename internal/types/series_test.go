package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seriesBase = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candle(i int, open, high, low, close float64) OHLCV {
	return NewOHLCV("BTCUSDT", seriesBase.Add(time.Duration(i)*time.Hour), open, high, low, close, 1000)
}

func TestNewSeriesValid(t *testing.T) {
	candles := []OHLCV{
		candle(0, 100, 105, 99, 104),
		candle(1, 104, 108, 103, 107),
		candle(2, 107, 110, 105, 106),
	}

	s, err := NewSeries("BTCUSDT", "1h", candles)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "BTCUSDT", s.Symbol)
	assert.Equal(t, "1h", s.Timeframe)
	assert.Equal(t, candles[1], s.At(1))
	assert.Equal(t, candles[2], s.Last())
}

func TestNewSeriesRejectsEmpty(t *testing.T) {
	_, err := NewSeries("BTCUSDT", "1h", nil)
	assert.Error(t, err)
}

func TestNewSeriesRejectsInvalidOHLC(t *testing.T) {
	candles := []OHLCV{
		candle(0, 100, 105, 99, 104),
		candle(1, 104, 103, 105, 104), // high below low
	}

	_, err := NewSeries("BTCUSDT", "1h", candles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid OHLC")
}

func TestNewSeriesRejectsNonMonotonicTimestamps(t *testing.T) {
	duplicated := []OHLCV{
		candle(0, 100, 105, 99, 104),
		candle(0, 104, 108, 103, 107),
	}
	_, err := NewSeries("BTCUSDT", "1h", duplicated)
	assert.Error(t, err, "duplicate timestamps must be rejected")

	backwards := []OHLCV{
		candle(1, 100, 105, 99, 104),
		candle(0, 104, 108, 103, 107),
	}
	_, err = NewSeries("BTCUSDT", "1h", backwards)
	assert.Error(t, err, "backwards timestamps must be rejected")
}

func TestSeriesExtractors(t *testing.T) {
	candles := []OHLCV{
		candle(0, 100, 105, 99, 104),
		candle(1, 104, 108, 103, 107),
	}
	s, err := NewSeries("BTCUSDT", "1h", candles)
	require.NoError(t, err)

	assert.Equal(t, []float64{104, 107}, s.Closes())
	assert.Equal(t, []float64{105, 108}, s.Highs())
	assert.Equal(t, []float64{99, 103}, s.Lows())
	assert.Equal(t, []float64{1000, 1000}, s.Volumes())
}

func TestOHLCVHelpers(t *testing.T) {
	bullish := candle(0, 100, 106, 99, 105)
	assert.True(t, bullish.IsBullish())
	assert.False(t, bullish.IsBearish())
	assert.InDelta(t, 7.0, bullish.GetRange(), 1e-9)
	assert.InDelta(t, 5.0, bullish.GetBody(), 1e-9)
	assert.InDelta(t, (106.0+99.0+105.0)/3.0, bullish.GetTypicalPrice(), 1e-9)

	bearish := candle(1, 105, 106, 98, 100)
	assert.True(t, bearish.IsBearish())
}

func TestTradeNetPnL(t *testing.T) {
	win := Trade{PnL: 120, Commission: 5}
	assert.InDelta(t, 115.0, win.NetPnL(), 1e-9)
	assert.True(t, win.IsWin())

	// Commission can flip a small gross gain into a net loss.
	marginal := Trade{PnL: 3, Commission: 5}
	assert.False(t, marginal.IsWin())
}

func TestPositionPnLAt(t *testing.T) {
	long := Position{Side: SideLong, EntryPrice: 100, Size: 2}
	assert.InDelta(t, 20.0, long.PnLAt(110), 1e-9)
	assert.InDelta(t, -20.0, long.PnLAt(90), 1e-9)

	short := Position{Side: SideShort, EntryPrice: 100, Size: 2}
	assert.InDelta(t, -20.0, short.PnLAt(110), 1e-9)
	assert.InDelta(t, 20.0, short.PnLAt(90), 1e-9)
	assert.InDelta(t, 200.0, short.Notional(), 1e-9)
}

func TestSignalIsEntry(t *testing.T) {
	assert.True(t, Signal{Action: ActionEnterLong}.IsEntry())
	assert.True(t, Signal{Action: ActionEnterShort}.IsEntry())
	assert.False(t, Signal{Action: ActionExit}.IsEntry())
	assert.False(t, Hold(3).IsEntry())
}
