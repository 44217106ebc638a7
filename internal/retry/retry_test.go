package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

type recordingSleeper struct {
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

// classifyInt treats positive values as success, errTransient as retryable
// and everything else as terminal.
func classifyInt(v int, err error) Decision {
	switch {
	case err == nil && v > 0:
		return Decision{Action: Succeed}
	case errors.Is(err, errTransient):
		return Decision{Action: Retry, Wait: Window{Min: 10 * time.Second, Max: 20 * time.Second}, Err: err}
	default:
		return Decision{Action: Abort, Err: err}
	}
}

func newPolicy(max int, s Sleeper) Policy[int] {
	return Policy[int]{
		MaxAttempts: max,
		Classify:    classifyInt,
		Sleeper:     s,
		Rand:        rand.New(rand.NewPCG(1, 2)),
		Name:        "test",
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	got, err := Do(context.Background(), newPolicy(3, sleeper), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do() returned unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("Do() = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(sleeper.waits) != 0 {
		t.Errorf("slept %d times, want 0", len(sleeper.waits))
	}
}

func TestDo_AbortStopsImmediately(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := Do(context.Background(), newPolicy(3, sleeper), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errFatal
	})
	if !errors.Is(err, errFatal) {
		t.Fatalf("Do() error = %v, want errFatal", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("abort should not report exhaustion")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(sleeper.waits) != 0 {
		t.Errorf("slept %d times, want 0", len(sleeper.waits))
	}
}

func TestDo_RetryUntilExhausted(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := Do(context.Background(), newPolicy(3, sleeper), func(ctx context.Context, attempt int) (int, error) {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		return 0, errTransient
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Do() error = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("Do() error = %v, want it to wrap the last failure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(sleeper.waits) != 2 {
		t.Fatalf("slept %d times, want 2", len(sleeper.waits))
	}
	for i, w := range sleeper.waits {
		if w < 10*time.Second || w > 20*time.Second {
			t.Errorf("wait[%d] = %v, want within [10s, 20s]", i, w)
		}
	}
}

func TestDo_RecoversAfterRetry(t *testing.T) {
	sleeper := &recordingSleeper{}

	got, err := Do(context.Background(), newPolicy(3, sleeper), func(ctx context.Context, attempt int) (int, error) {
		if attempt < 3 {
			return 0, errTransient
		}
		return attempt, nil
	})
	if err != nil {
		t.Fatalf("Do() returned unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("Do() = %d, want 3", got)
	}
	if len(sleeper.waits) != 2 {
		t.Errorf("slept %d times, want 2", len(sleeper.waits))
	}
}

func TestDo_SleepCancelled(t *testing.T) {
	sleeper := &recordingSleeper{err: context.Canceled}
	calls := 0

	_, err := Do(context.Background(), newPolicy(3, sleeper), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_MaxAttemptsFloor(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), newPolicy(0, &recordingSleeper{}), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errTransient
	})
	if err == nil {
		t.Fatal("Do() expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWindow_Draw(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	tests := []struct {
		name string
		w    Window
	}{
		{"rate limit", Window{Min: 10 * time.Second, Max: 20 * time.Second}},
		{"network", Window{Min: 5 * time.Second, Max: 10 * time.Second}},
		{"degenerate", Window{Min: time.Second, Max: time.Second}},
		{"inverted", Window{Min: 2 * time.Second, Max: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				d := tt.w.Draw(r)
				hi := tt.w.Max
				if hi < tt.w.Min {
					hi = tt.w.Min
				}
				if d < tt.w.Min || d > hi {
					t.Fatalf("Draw() = %v, want within [%v, %v]", d, tt.w.Min, hi)
				}
			}
		})
	}
}

func TestTimerSleeper_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := TimerSleeper{}.Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep() did not return promptly on a cancelled context")
	}
}
