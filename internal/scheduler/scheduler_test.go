package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeTicker struct {
	mu     sync.Mutex
	nows   []time.Time
	window time.Duration
}

func (f *fakeTicker) ReminderPass(_ context.Context, now time.Time, window time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nows = append(f.nows, now)
	f.window = window
	return 0
}

func (f *fakeTicker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nows)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTick_UsesInjectedClock(t *testing.T) {
	ft := &fakeTicker{}
	s := New(ft, testLogger(), time.Second, 2*time.Minute)

	frozen := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return frozen })

	s.Tick(context.Background())

	if got := ft.calls(); got != 1 {
		t.Fatalf("passes = %d, want 1", got)
	}
	if !ft.nows[0].Equal(frozen) {
		t.Errorf("now = %v, want %v", ft.nows[0], frozen)
	}
	if ft.window != 2*time.Minute {
		t.Errorf("window = %v, want 2m", ft.window)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(&fakeTicker{}, nil, 0, 0)
	if s.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultInterval)
	}
	if s.window != DefaultWindow {
		t.Errorf("window = %v, want %v", s.window, DefaultWindow)
	}
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	ft := &fakeTicker{}
	s := New(ft, testLogger(), 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for ft.calls() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
}
