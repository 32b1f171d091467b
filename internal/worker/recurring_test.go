package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeStore struct {
	calls atomic.Int32
}

func (f *fakeStore) ProcessRecurring(ctx context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	return 1, nil
}

func TestRunProcessesImmediatelyAndStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	w := NewRecurring(store, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The first pass runs before any tick.
	deadline := time.After(2 * time.Second)
	for store.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never processed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
