package fetcher

// Kind names one of the two payload types fetched per symbol
type Kind string

const (
	KindFinancials Kind = "financials"
	KindPrices     Kind = "prices"
)

// Result represents the outcome of one sub-fetch for a symbol.
type Result struct {
	Symbol string
	Kind   Kind

	// Error contains any error that occurred during the fetch operation.
	// If Error is not nil, the payload was not stored.
	Error error
}

// OK reports whether the sub-fetch succeeded
func (r Result) OK() bool {
	return r.Error == nil
}
