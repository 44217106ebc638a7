package stats

import (
	"log/slog"
	"time"
)

// Kind names a payload type tracked by Batch
type Kind int

const (
	Financials Kind = iota
	Prices
)

func (k Kind) String() string {
	if k == Prices {
		return "prices"
	}
	return "financials"
}

// Batch accumulates the outcome counters of one ingestion run. It is owned by
// a single runner and is not safe for concurrent use.
type Batch struct {
	Total                int
	SuccessfulFinancials int
	FailedFinancials     int
	SuccessfulPrices     int
	FailedPrices         int
	StartTime            time.Time
	EndTime              time.Time
}

// New returns a Batch for total symbols
func New(total int) Batch {
	return Batch{Total: total}
}

// Start stamps the run start
func (b *Batch) Start(t time.Time) {
	b.StartTime = t
}

// Finish stamps the run end
func (b *Batch) Finish(t time.Time) {
	b.EndTime = t
}

// Record counts one sub-fetch outcome
func (b *Batch) Record(kind Kind, ok bool) {
	switch {
	case kind == Financials && ok:
		b.SuccessfulFinancials++
	case kind == Financials:
		b.FailedFinancials++
	case ok:
		b.SuccessfulPrices++
	default:
		b.FailedPrices++
	}
}

// Successful returns the success count for kind
func (b Batch) Successful(kind Kind) int {
	if kind == Prices {
		return b.SuccessfulPrices
	}
	return b.SuccessfulFinancials
}

// Failed returns the failure count for kind
func (b Batch) Failed(kind Kind) int {
	if kind == Prices {
		return b.FailedPrices
	}
	return b.FailedFinancials
}

// Attempted returns successful plus failed for kind
func (b Batch) Attempted(kind Kind) int {
	return b.Successful(kind) + b.Failed(kind)
}

// SuccessRate returns successful/total as a percentage, zero for an empty run
func (b Batch) SuccessRate(kind Kind) float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Successful(kind)) / float64(b.Total) * 100
}

// Elapsed returns the time since start as of now
func (b Batch) Elapsed(now time.Time) time.Duration {
	if b.StartTime.IsZero() {
		return 0
	}
	return now.Sub(b.StartTime)
}

// Duration returns the time between start and finish
func (b Batch) Duration() time.Duration {
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return 0
	}
	return b.EndTime.Sub(b.StartTime)
}

// AveragePerSymbol returns Duration divided by Total
func (b Batch) AveragePerSymbol() time.Duration {
	if b.Total == 0 {
		return 0
	}
	return b.Duration() / time.Duration(b.Total)
}

// LogValue implements slog.LogValuer
func (b Batch) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", b.Total),
		slog.Int("successful_financials", b.SuccessfulFinancials),
		slog.Int("failed_financials", b.FailedFinancials),
		slog.Int("successful_prices", b.SuccessfulPrices),
		slog.Int("failed_prices", b.FailedPrices),
	)
}
