package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ErrExhausted is returned when every attempt ended in a retryable failure.
var ErrExhausted = errors.New("retry attempts exhausted")

// Action is the verdict a Classifier reaches for a single attempt
type Action int

const (
	// Succeed stops the loop and hands the value to the caller
	Succeed Action = iota
	// Retry waits for a draw from the decision's Window and tries again
	Retry
	// Abort stops the loop and returns the decision's error
	Abort
)

func (a Action) String() string {
	switch a {
	case Succeed:
		return "succeed"
	case Retry:
		return "retry"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Window is a closed range of wait durations. Each retry waits a duration drawn
// uniformly from it.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// Draw returns a uniformly distributed duration in [Min, Max].
func (w Window) Draw(r *rand.Rand) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	span := int64(w.Max - w.Min)
	var n int64
	if r != nil {
		n = r.Int64N(span + 1)
	} else {
		n = rand.Int64N(span + 1)
	}
	return w.Min + time.Duration(n)
}

// Decision is the classification of one attempt's outcome
type Decision struct {
	Action Action
	Wait   Window
	Err    error
}

// Classifier maps the outcome of one attempt to a Decision.
type Classifier[T any] func(value T, err error) Decision

// Policy configures Do.
type Policy[T any] struct {
	// MaxAttempts bounds the total number of calls to the operation. Values
	// below 1 are treated as 1.
	MaxAttempts int
	Classify    Classifier[T]
	Sleeper     Sleeper
	Rand        *rand.Rand
	Logger      *slog.Logger
	// Name identifies the operation in log lines
	Name string
}

// Do calls op until the classifier reports Succeed or Abort, or until
// MaxAttempts calls have been made. It never sleeps after the final attempt.
func Do[T any](ctx context.Context, p Policy[T], op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debug("attempt", "op", p.Name, "attempt", attempt, "max_attempts", attempts)

		value, err := op(ctx, attempt)
		d := p.Classify(value, err)

		switch d.Action {
		case Succeed:
			logger.Debug("attempt succeeded", "op", p.Name, "attempt", attempt)
			return value, nil
		case Abort:
			if d.Err == nil {
				d.Err = err
			}
			if d.Err == nil {
				d.Err = fmt.Errorf("%s aborted on attempt %d", p.Name, attempt)
			}
			return zero, d.Err
		}

		lastErr = d.Err
		if lastErr == nil {
			lastErr = err
		}
		if attempt == attempts {
			break
		}

		wait := d.Wait.Draw(p.Rand)
		logger.Warn("retrying after wait",
			"op", p.Name,
			"attempt", attempt,
			"wait", wait.Round(100*time.Millisecond),
			"error", lastErr)
		if err := sleeper.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	logger.Error("max retries exceeded", "op", p.Name, "attempts", attempts, "error", lastErr)
	if lastErr == nil {
		return zero, ErrExhausted
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
