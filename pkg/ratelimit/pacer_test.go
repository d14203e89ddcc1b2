package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	pacer := NewPacer(time.Second)

	start := time.Now()
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First wait should be immediate, took %v", elapsed)
	}
}

func TestPacer_SpacesCalls(t *testing.T) {
	interval := 30 * time.Millisecond
	pacer := NewPacer(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// First call is free; two more calls need two full intervals.
	if want := 2 * interval; elapsed < want {
		t.Errorf("3 waits took %v, expected at least %v", elapsed, want)
	}
}

func TestPacer_ZeroIntervalNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Zero-interval pacer blocked for %v", elapsed)
	}
}

func TestPacer_NilNeverBlocks(t *testing.T) {
	var pacer *Pacer

	if err := pacer.Wait(context.Background()); err != nil {
		t.Errorf("nil pacer Wait returned error: %v", err)
	}
}

func TestPacer_CancelledContext(t *testing.T) {
	pacer := NewPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	// Consume the initial token so the next wait would block.
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	cancel()

	start := time.Now()
	err := pacer.Wait(ctx)
	if err == nil {
		t.Fatal("Wait with cancelled context should return an error")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Cancelled wait should return promptly, took %v", elapsed)
	}
}

func TestPacer_CancelDuringWait(t *testing.T) {
	pacer := NewPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- pacer.Wait(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Wait should fail when context is cancelled mid-delay")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}
