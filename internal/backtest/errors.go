package backtest

import (
	"errors"
)

// Recoverable sizing errors abort only the entry attempt; the run continues
// flat. ErrOutOfOrderAdvance is an integration-contract violation and is
// fatal to the run.
var (
	// ErrInvalidRiskParameters means stop or take-profit levels ended up on
	// the wrong side of the entry price.
	ErrInvalidRiskParameters = errors.New("invalid risk parameters")

	// ErrInsufficientEquity means equity was not positive when sizing.
	ErrInsufficientEquity = errors.New("insufficient equity")

	// ErrZeroStopDistance means the computed stop distance was not positive,
	// which would make the fixed-risk sizing formula divide by zero.
	ErrZeroStopDistance = errors.New("zero stop distance")

	// ErrOutOfOrderAdvance means the tracker was advanced with a candle that
	// does not strictly follow the previous one in time.
	ErrOutOfOrderAdvance = errors.New("advance called out of time order")
)

// IsRecoverable reports whether an error only aborts the current entry
// attempt rather than the whole run
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidRiskParameters) ||
		errors.Is(err, ErrInsufficientEquity) ||
		errors.Is(err, ErrZeroStopDistance)
}
