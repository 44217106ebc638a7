package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNew_ZeroRateIsUnlimited(t *testing.T) {
	l := New(map[Source]float64{SourceScreener: 0})

	for i := 0; i < 100; i++ {
		if !l.Allow(SourceScreener) {
			t.Fatalf("Allow() = false on request %d, want unlimited", i+1)
		}
	}
}

func TestAllow_UnknownSource(t *testing.T) {
	l := New(nil)
	if !l.Allow(SourceYahoo) {
		t.Error("Allow() = false for unconfigured source, want true")
	}
	if err := l.Wait(context.Background(), SourceYahoo); err != nil {
		t.Errorf("Wait() returned unexpected error: %v", err)
	}
}

func TestAllow_Limited(t *testing.T) {
	l := New(map[Source]float64{SourceYahoo: 0.001})

	if !l.Allow(SourceYahoo) {
		t.Fatal("first Allow() = false, want burst of one")
	}
	if l.Allow(SourceYahoo) {
		t.Error("second Allow() = true, want the limiter to hold")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(map[Source]float64{SourceScreener: 0.001})
	l.Allow(SourceScreener)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, SourceScreener); err == nil {
		t.Error("Wait() expected error once the context expires, got nil")
	}
}

func TestWait_NilLimiter(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background(), SourceScreener); err != nil {
		t.Errorf("Wait() on nil limiter returned %v, want nil", err)
	}
	if !l.Allow(SourceScreener) {
		t.Error("Allow() on nil limiter = false, want true")
	}
}
