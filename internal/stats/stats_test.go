package stats

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestBatch_Record(t *testing.T) {
	b := New(4)
	b.Record(Financials, true)
	b.Record(Financials, true)
	b.Record(Financials, false)
	b.Record(Prices, true)
	b.Record(Prices, false)
	b.Record(Prices, false)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"SuccessfulFinancials", b.SuccessfulFinancials, 2},
		{"FailedFinancials", b.FailedFinancials, 1},
		{"SuccessfulPrices", b.SuccessfulPrices, 1},
		{"FailedPrices", b.FailedPrices, 2},
		{"Attempted(Financials)", b.Attempted(Financials), 3},
		{"Attempted(Prices)", b.Attempted(Prices), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestBatch_SuccessRate(t *testing.T) {
	b := New(8)
	for i := 0; i < 6; i++ {
		b.Record(Financials, true)
	}
	b.Record(Prices, true)

	if got := b.SuccessRate(Financials); got != 75 {
		t.Errorf("SuccessRate(Financials) = %v, want 75", got)
	}
	if got := b.SuccessRate(Prices); got != 12.5 {
		t.Errorf("SuccessRate(Prices) = %v, want 12.5", got)
	}

	empty := New(0)
	if got := empty.SuccessRate(Financials); got != 0 {
		t.Errorf("SuccessRate on empty batch = %v, want 0", got)
	}
}

func TestBatch_Durations(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b := New(4)

	if b.Duration() != 0 || b.AveragePerSymbol() != 0 {
		t.Error("durations before start should be zero")
	}

	b.Start(start)
	if got := b.Elapsed(start.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Elapsed() = %v, want 90s", got)
	}

	b.Finish(start.Add(2 * time.Minute))
	if got := b.Duration(); got != 2*time.Minute {
		t.Errorf("Duration() = %v, want 2m", got)
	}
	if got := b.AveragePerSymbol(); got != 30*time.Second {
		t.Errorf("AveragePerSymbol() = %v, want 30s", got)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	b := New(10)
	b.Record(Financials, true)
	b.Start(time.Unix(0, 0))
	b.Finish(time.Unix(100, 0))

	r.ReportProgress(5, 10, 42*time.Second)
	r.ReportSnapshot(b)
	r.ReportFinal(b)

	out := buf.String()
	for _, want := range []string{
		"progress: 5/10 (50.0%)",
		"elapsed=42s",
		"stats.successful_financials=1",
		"financial data success rate: 10.0%",
		"price data success rate: 0.0%",
		"average_per_symbol=10s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
