package domain

import "context"

// BrokerClient defines broker-agnostic trading and portfolio operations.
// It abstracts the brokerage gateway (Groww today) so the screener and
// rebalancer can run against test doubles.
//
// Implementations must return errors distinguishable via errors.Is against
// ErrAuth, ErrInvalidSymbol and ErrSourceUnavailable so callers can decide
// between abort, skip and retry.
type BrokerClient interface {
	// GetHoldings returns current account holdings with P&L fields populated.
	GetHoldings(ctx context.Context) ([]Holding, error)

	// GetQuote returns the current trading-day snapshot for a symbol.
	GetQuote(ctx context.Context, symbol string) (*PriceSnapshot, error)

	// GetCandles returns up to days of daily history, oldest first.
	// A broker that cannot serve history may return an empty slice.
	GetCandles(ctx context.Context, symbol string, days int) ([]Candle, error)

	// PlaceBuyOrder and PlaceSellOrder submit market orders. A zero
	// limitPrice means market price.
	PlaceBuyOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*OrderResult, error)
	PlaceSellOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*OrderResult, error)
}

// SentimentSource supplies raw per-source sentiment fragments.
// A partial or empty result on a bad news day is normal, not an error.
type SentimentSource interface {
	FetchFragments(ctx context.Context) ([]SourceFragment, error)
}
