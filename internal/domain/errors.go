package domain

import "errors"

// Sentinel errors for the failure taxonomy. Everything below the screener is
// resilient-by-default: these are signals for skip-and-log decisions, not
// aborts. Only configuration problems abort a run, and those surface from
// config.Load before any network call.
var (
	// ErrNoData means a symbol has no usable price snapshot. The predictor
	// returns a neutral default and the analysis is flagged low confidence.
	ErrNoData = errors.New("no price data available")

	// ErrSourceUnavailable means a network source failed transiently.
	// The caller proceeds with whatever subset succeeded.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAuth means the brokerage rejected our credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrInvalidSymbol means the brokerage does not know the symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
)
