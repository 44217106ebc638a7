package fetcher

import (
	"context"

	"stockfetcher/internal/market"
)

// FinancialsFetcher retrieves the fundamentals tables published for a symbol.
type FinancialsFetcher interface {
	// Financials fetches and parses the sections of the symbol's company page.
	// Returns an error if the page could not be fetched or parsed.
	Financials(ctx context.Context, symbol string) (market.Financials, error)
}

// PriceFetcher retrieves daily share price history for a symbol.
type PriceFetcher interface {
	// PriceHistory fetches the daily bars for the configured lookback window.
	// An empty history is reported as an error.
	PriceHistory(ctx context.Context, symbol string) (market.PriceHistory, error)
}
