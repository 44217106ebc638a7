package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"stockfetcher/internal/batch"
	"stockfetcher/internal/config"
	"stockfetcher/internal/fetcher"
	"stockfetcher/internal/logging"
	"stockfetcher/internal/ratelimit"
	"stockfetcher/internal/retry"
	"stockfetcher/internal/screener"
	"stockfetcher/internal/store"
	"stockfetcher/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stamp := time.Now().Format(store.StampLayout)
	logger, closeLog, err := logging.Setup(logging.Options{
		Dir:     cfg.LogDir,
		Stamp:   stamp,
		Level:   level,
		Console: os.Stdout,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("received interrupt signal, shutting down")
		cancel()
	}()

	logger.Info("starting ingestion", "symbols", len(cfg.StockSymbols), "data_dir", cfg.DataDir)
	paths, err := ingest(ctx, cfg, logger, nil, stamp)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		closeLog()
		os.Exit(1)
	}

	fmt.Printf("Financials saved to %s\n", paths.Financials)
	fmt.Printf("Share prices saved to %s\n", paths.Prices)
}

// ingest fetches every configured symbol and persists both collections under
// stamp. A nil sleeper waits on real timers. Nothing is written when the run
// is cancelled.
func ingest(ctx context.Context, cfg *config.Config, logger *slog.Logger, sleeper retry.Sleeper, stamp string) (store.Paths, error) {
	limiter := ratelimit.New(map[ratelimit.Source]float64{
		ratelimit.SourceScreener: cfg.ScreenerRPS,
		ratelimit.SourceYahoo:    cfg.YahooRPS,
	})

	clientOpts := func(source ratelimit.Source, baseURL string) fetcher.Options {
		return fetcher.Options{
			BaseURL:       baseURL,
			Source:        source,
			Timeout:       cfg.RequestTimeout,
			MaxRetries:    cfg.MaxRetries,
			RateLimitWait: retry.Window{Min: cfg.RateLimitWaitMin, Max: cfg.RateLimitWaitMax},
			NetworkWait:   retry.Window{Min: cfg.NetworkWaitMin, Max: cfg.NetworkWaitMax},
			Limiter:       limiter,
			Sleeper:       sleeper,
			Logger:        logger,
		}
	}

	screenerClient := fetcher.NewClient(clientOpts(ratelimit.SourceScreener, cfg.ScreenerBaseURL))
	defer screenerClient.Close()
	yahooClient := fetcher.NewClient(clientOpts(ratelimit.SourceYahoo, cfg.YahooBaseURL))
	defer yahooClient.Close()

	runner := batch.NewRunner(
		screener.NewFinancialsFetcher(screenerClient, logger),
		yahoo.NewPriceFetcher(yahooClient, cfg.ExchangeSuffix, cfg.HistoryDays, logger),
		batch.Options{
			ThrottleEvery: cfg.ThrottleEvery,
			ThrottleWait:  retry.Window{Min: cfg.ThrottleWaitMin, Max: cfg.ThrottleWaitMax},
			SnapshotEvery: cfg.SnapshotEvery,
			Sleeper:       sleeper,
			Logger:        logger,
		},
	)

	result, err := runner.Run(ctx, cfg.StockSymbols)
	if err != nil {
		return store.Paths{}, fmt.Errorf("batch run: %w", err)
	}

	paths, err := store.Save(cfg.DataDir, stamp, result.Financials, result.Prices)
	if err != nil {
		return store.Paths{}, fmt.Errorf("save results: %w", err)
	}
	logger.Info("results saved",
		"financials", paths.Financials,
		"prices", paths.Prices,
		"stocks_with_financials", len(result.Financials),
		"stocks_with_prices", len(result.Prices),
	)
	return paths, nil
}
