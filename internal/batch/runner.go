package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"stockfetcher/internal/fetcher"
	"stockfetcher/internal/market"
	"stockfetcher/internal/retry"
	"stockfetcher/internal/stats"
)

const (
	DefaultThrottleEvery = 10
	DefaultSnapshotEvery = 50
)

// DefaultThrottleWait is the pause taken after every ThrottleEvery symbols
var DefaultThrottleWait = retry.Window{Min: 10 * time.Second, Max: 20 * time.Second}

// Options configures a Runner
type Options struct {
	ThrottleEvery int
	ThrottleWait  retry.Window
	SnapshotEvery int
	Sleeper       retry.Sleeper
	Rand          *rand.Rand
	Reporter      stats.Reporter
	Logger        *slog.Logger
	Now           func() time.Time
}

// Result holds everything collected by one run. Each map entry is the most
// recent successful payload for its symbol.
type Result struct {
	Financials map[string]market.Financials
	Prices     map[string]market.PriceHistory
	Stats      stats.Batch
}

// Runner walks a symbol list sequentially, fetching both payload types for
// each symbol and pausing periodically to stay under upstream rate limits.
type Runner struct {
	financials fetcher.FinancialsFetcher
	prices     fetcher.PriceFetcher
	opts       Options
	logger     *slog.Logger
}

// NewRunner creates a new Runner with the given collaborators
func NewRunner(financials fetcher.FinancialsFetcher, prices fetcher.PriceFetcher, opts Options) *Runner {
	if opts.ThrottleEvery < 1 {
		opts.ThrottleEvery = DefaultThrottleEvery
	}
	if opts.SnapshotEvery < 1 {
		opts.SnapshotEvery = DefaultSnapshotEvery
	}
	if opts.ThrottleWait == (retry.Window{}) {
		opts.ThrottleWait = DefaultThrottleWait
	}
	if opts.Sleeper == nil {
		opts.Sleeper = retry.TimerSleeper{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Reporter == nil {
		opts.Reporter = stats.NewLogReporter(logger)
	}

	return &Runner{
		financials: financials,
		prices:     prices,
		opts:       opts,
		logger:     logger,
	}
}

// Run processes symbols in order. Symbols are neither reordered nor
// deduplicated. A failed sub-fetch is counted and logged and never stops the
// run; only context cancellation does, in which case the partial result is
// returned alongside the context's error.
func (r *Runner) Run(ctx context.Context, symbols []string) (*Result, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}

	res := &Result{
		Financials: make(map[string]market.Financials, len(symbols)),
		Prices:     make(map[string]market.PriceHistory, len(symbols)),
		Stats:      stats.New(len(symbols)),
	}
	res.Stats.Start(r.opts.Now())

	total := len(symbols)
	r.logger.Info("starting data ingestion", "symbols", total)

	for i, symbol := range symbols {
		index := i + 1
		r.logger.Info(fmt.Sprintf("processing symbol %d/%d", index, total), "symbol", symbol)

		r.record(res, r.fetchFinancials(ctx, res, symbol))
		r.record(res, r.fetchPrices(ctx, res, symbol))

		if err := ctx.Err(); err != nil {
			res.Stats.Finish(r.opts.Now())
			r.logger.Warn("ingestion interrupted", "processed", index, "total", total, "error", err)
			return res, err
		}

		if index%r.opts.ThrottleEvery == 0 {
			r.opts.Reporter.ReportProgress(index, total, res.Stats.Elapsed(r.opts.Now()))
			wait := r.opts.ThrottleWait.Draw(r.opts.Rand)
			r.logger.Info("rate limiting: sleeping", "wait", wait.Round(100*time.Millisecond))
			if err := r.opts.Sleeper.Sleep(ctx, wait); err != nil {
				res.Stats.Finish(r.opts.Now())
				return res, err
			}
		}

		if index%r.opts.SnapshotEvery == 0 {
			r.opts.Reporter.ReportSnapshot(res.Stats)
		}
	}

	res.Stats.Finish(r.opts.Now())
	r.logger.Info("data ingestion completed")
	r.opts.Reporter.ReportFinal(res.Stats)

	return res, nil
}

func (r *Runner) fetchFinancials(ctx context.Context, res *Result, symbol string) fetcher.Result {
	f, err := r.financials.Financials(ctx, symbol)
	if err != nil {
		r.logger.Error("failed to fetch financials", "symbol", symbol, "error", err)
		return fetcher.Result{Symbol: symbol, Kind: fetcher.KindFinancials, Error: err}
	}

	res.Financials[symbol] = f
	r.logger.Info("fetched financial data", "symbol", symbol, "sections", len(f.Sections))
	return fetcher.Result{Symbol: symbol, Kind: fetcher.KindFinancials}
}

func (r *Runner) fetchPrices(ctx context.Context, res *Result, symbol string) fetcher.Result {
	h, err := r.prices.PriceHistory(ctx, symbol)
	if err != nil {
		r.logger.Error("failed to fetch share prices", "symbol", symbol, "error", err)
		return fetcher.Result{Symbol: symbol, Kind: fetcher.KindPrices, Error: err}
	}

	res.Prices[symbol] = h
	r.logger.Info("fetched share prices", "symbol", symbol, "days", len(h.Bars))
	return fetcher.Result{Symbol: symbol, Kind: fetcher.KindPrices}
}

func (r *Runner) record(res *Result, out fetcher.Result) {
	kind := stats.Financials
	if out.Kind == fetcher.KindPrices {
		kind = stats.Prices
	}
	res.Stats.Record(kind, out.OK())
}
