package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:    3,
		RetryBackoff:   1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BreakerEnabled: false,
	})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) bool {
		return errors.Is(err, errTemp)
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryWithoutClassifier(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:    3,
		RetryBackoff:   1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BreakerEnabled: false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, nil)
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestExecuteSingleAttemptPolicy(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 1, BreakerEnabled: false})

	attempts := 0
	errAny := errors.New("boom")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errAny
	}, func(error) bool { return true })
	if !errors.Is(err, errAny) {
		t.Fatalf("expected error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("max attempts 1 must mean 1 call, got %d", attempts)
	}
}

func TestExecuteBreakerOpensAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:             1,
		BreakerEnabled:          true,
		BreakerMinRequests:      3,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("down")
	fail := func(context.Context) error { return errDown }
	for i := 0; i < 3; i++ {
		if err := exec.Execute(context.Background(), "op", fail, nil); !errors.Is(err, errDown) {
			t.Fatalf("attempt %d: expected errDown, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", fail, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
}

func TestExecuteBreakersAreIndependentPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:             1,
		BreakerEnabled:          true,
		BreakerMinRequests:      1,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("down")
	_ = exec.Execute(context.Background(), "a", func(context.Context) error { return errDown }, nil)
	if err := exec.Execute(context.Background(), "a", func(context.Context) error { return nil }, nil); !IsCircuitOpen(err) {
		t.Fatalf("expected operation a circuit open, got %v", err)
	}
	if err := exec.Execute(context.Background(), "b", func(context.Context) error { return nil }, nil); err != nil {
		t.Fatalf("operation b must be unaffected, got %v", err)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	exec := NewExecutor(Config{MaxAttempts: 1, BreakerEnabled: false})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := exec.Execute(ctx, "op", func(context.Context) error { return nil }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
