package repositories

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessOnFirstAttempt", func(t *testing.T) {
		attempts := 0
		op := func(ctx context.Context) error {
			attempts++
			return nil
		}

		if err := WithRetry(ctx, DefaultRetryConfig(), op); err != nil {
			t.Fatalf("WithRetry failed: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("SuccessAfterTransientFailures", func(t *testing.T) {
		attempts := 0
		op := func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return NewRepositoryError("delete", "admins", "u1", ErrUnavailable)
			}
			return nil
		}

		config := &RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			BackoffFactor: 2.0,
		}

		if err := WithRetry(ctx, config, op); err != nil {
			t.Fatalf("WithRetry failed: %v", err)
		}
		if attempts != 3 {
			t.Errorf("Expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("ExhaustedAttempts", func(t *testing.T) {
		attempts := 0
		op := func(ctx context.Context) error {
			attempts++
			return ConnectionError(errors.New("connection reset"))
		}

		config := &RetryConfig{
			MaxAttempts:   2,
			InitialDelay:  time.Millisecond,
			BackoffFactor: 2.0,
		}

		err := WithRetry(ctx, config, op)
		if err == nil {
			t.Fatal("WithRetry should have failed")
		}
		if attempts != 2 {
			t.Errorf("Expected 2 attempts, got %d", attempts)
		}
		if !IsConnection(err) {
			t.Error("last error should be returned unchanged")
		}
	})

	t.Run("NonRetryableError", func(t *testing.T) {
		attempts := 0
		op := func(ctx context.Context) error {
			attempts++
			return errors.New("no such table: admins")
		}

		config := &RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			BackoffFactor: 2.0,
		}

		if err := WithRetry(ctx, config, op); err == nil {
			t.Fatal("WithRetry should have failed")
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := WithRetry(canceled, DefaultRetryConfig(), func(ctx context.Context) error {
			called = true
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WithRetry() = %v, want context.Canceled", err)
		}
		if called {
			t.Error("operation should not run after cancellation")
		}
	})
}

func TestCalculateDelay(t *testing.T) {
	config := &RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: false,
	}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}
	for i, want := range expected {
		if got := config.calculateDelay(i + 1); got != want {
			t.Errorf("calculateDelay(%d) = %v, want %v", i+1, got, want)
		}
	}

	config.MaxDelay = 300 * time.Millisecond
	if got := config.calculateDelay(4); got > config.MaxDelay {
		t.Errorf("Delay should be capped at MaxDelay: got %v, max %v", got, config.MaxDelay)
	}
}
