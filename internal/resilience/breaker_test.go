package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstreamDown = errors.New("upstream unavailable")

func TestClosedStateAllowsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)
	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errUpstreamDown })
	}

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return errUpstreamDown })
	}

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen while cooling down, got %v", err)
	}

	now = now.Add(2 * time.Second)

	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("expected half-open probe to run, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called in half-open")
	}

	// Probe success closes the circuit again.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected circuit closed after probe success, got %v", err)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return errUpstreamDown })
	}
	now = now.Add(2 * time.Second)

	_ = b.Execute(func() error { return errUpstreamDown })

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after half-open failure, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Second)

	_ = b.Execute(func() error { return errUpstreamDown })
	_ = b.Execute(func() error { return errUpstreamDown })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errUpstreamDown })
	_ = b.Execute(func() error { return errUpstreamDown })

	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected circuit still closed, got %v", err)
	}
}
