package testutil

import (
	"context"
	"sync"
	"time"

	"stockfetcher/internal/market"
	"stockfetcher/internal/stats"
)

// RecordingSleeper records requested waits instead of sleeping
type RecordingSleeper struct {
	mu    sync.Mutex
	Waits []time.Duration
}

// Sleep implements retry.Sleeper
func (s *RecordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Waits = append(s.Waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Count returns the number of recorded waits
func (s *RecordingSleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Waits)
}

// MockFinancials is a mock implementation of fetcher.FinancialsFetcher
type MockFinancials struct {
	FinancialsFunc func(ctx context.Context, symbol string) (market.Financials, error)
	Calls          []string
}

// Financials implements fetcher.FinancialsFetcher
func (m *MockFinancials) Financials(ctx context.Context, symbol string) (market.Financials, error) {
	m.Calls = append(m.Calls, symbol)
	if m.FinancialsFunc != nil {
		return m.FinancialsFunc(ctx, symbol)
	}
	return market.Financials{
		Symbol:   symbol,
		Sections: []market.Section{{Name: "Quarterly Results"}},
	}, nil
}

// MockPrices is a mock implementation of fetcher.PriceFetcher
type MockPrices struct {
	PriceHistoryFunc func(ctx context.Context, symbol string) (market.PriceHistory, error)
	Calls            []string
}

// PriceHistory implements fetcher.PriceFetcher
func (m *MockPrices) PriceHistory(ctx context.Context, symbol string) (market.PriceHistory, error) {
	m.Calls = append(m.Calls, symbol)
	if m.PriceHistoryFunc != nil {
		return m.PriceHistoryFunc(ctx, symbol)
	}
	return market.PriceHistory{
		Symbol: symbol,
		Bars: []market.PriceBar{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		},
	}, nil
}

// RecordingReporter is a stats.Reporter that keeps every call
type RecordingReporter struct {
	Progress  []int
	Snapshots []stats.Batch
	Finals    []stats.Batch
}

// ReportProgress implements stats.Reporter
func (r *RecordingReporter) ReportProgress(done, total int, elapsed time.Duration) {
	r.Progress = append(r.Progress, done)
}

// ReportSnapshot implements stats.Reporter
func (r *RecordingReporter) ReportSnapshot(b stats.Batch) {
	r.Snapshots = append(r.Snapshots, b)
}

// ReportFinal implements stats.Reporter
func (r *RecordingReporter) ReportFinal(b stats.Batch) {
	r.Finals = append(r.Finals, b)
}
