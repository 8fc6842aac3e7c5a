package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		Timeout:          time.Minute,
		FailureThreshold: 3,
		SuccessThreshold: 1,
	})

	failing := func() error { return errors.New("boom") }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, failing)
	}

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after 3 failures", cb.State())
	}

	err := cb.Execute(ctx, failing)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 2})
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errors.New("boom") })
	cb.Execute(ctx, func() error { return nil })
	cb.Execute(ctx, func() error { return errors.New("boom") })

	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed (non-consecutive failures)", cb.State())
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 1,
		SuccessThreshold: 2,
	})
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errors.New("boom") })
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	ok := func() error { return nil }
	if err := cb.Execute(ctx, ok); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after one probe success", cb.State())
	}

	cb.Execute(ctx, ok)
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed after success threshold", cb.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 1,
		SuccessThreshold: 2,
	})
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errors.New("boom") })
	time.Sleep(20 * time.Millisecond)

	cb.Execute(ctx, func() error { return errors.New("still down") })
	if cb.State() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", cb.State())
	}
}
