package stats

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Reporter receives checkpoint events from a batch run
type Reporter interface {
	ReportProgress(done, total int, elapsed time.Duration)
	ReportSnapshot(b Batch)
	ReportFinal(b Batch)
}

// LogReporter writes checkpoint events as log lines
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter creates a reporter writing to logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// ReportProgress implements Reporter
func (r *LogReporter) ReportProgress(done, total int, elapsed time.Duration) {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	r.Logger.Info(fmt.Sprintf("progress: %d/%d (%.1f%%)", done, total, pct),
		"elapsed", elapsed.Round(time.Second))
}

// ReportSnapshot implements Reporter
func (r *LogReporter) ReportSnapshot(b Batch) {
	r.Logger.Info("current statistics", "stats", b)
}

// ReportFinal implements Reporter
func (r *LogReporter) ReportFinal(b Batch) {
	rule := strings.Repeat("=", 60)
	r.Logger.Info(rule)
	r.Logger.Info("final statistics",
		"stats", b,
		"duration", b.Duration().Round(time.Millisecond),
		"average_per_symbol", b.AveragePerSymbol().Round(time.Millisecond))
	r.Logger.Info(fmt.Sprintf("financial data success rate: %.1f%%", b.SuccessRate(Financials)))
	r.Logger.Info(fmt.Sprintf("price data success rate: %.1f%%", b.SuccessRate(Prices)))
	r.Logger.Info(rule)
}
