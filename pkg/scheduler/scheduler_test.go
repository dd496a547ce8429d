package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoBoundsConcurrency(t *testing.T) {
	const (
		k     = 6
		width = 2
		task  = 50 * time.Millisecond
	)
	s := New(map[string]int{ClassRender: width})

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(context.Background(), ClassRender, func(context.Context) error {
				time.Sleep(task)
				return nil
			})
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ceil(6/2) * 50ms = 150ms; serial would be 300ms, unbounded 50ms.
	if elapsed < 140*time.Millisecond || elapsed > 280*time.Millisecond {
		t.Errorf("elapsed = %v, want about 150ms", elapsed)
	}
	if got := s.Peak(ClassRender); got != width {
		t.Errorf("Peak() = %d, want %d", got, width)
	}
}

func TestClassesAreIndependent(t *testing.T) {
	s := New(map[string]int{ClassRender: 4, ClassCritical: 1})

	var critical atomic.Int32
	var overlap atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(context.Background(), ClassRender, func(ctx context.Context) error {
				return s.Do(ctx, ClassCritical, func(context.Context) error {
					if critical.Add(1) > 1 {
						overlap.Store(true)
					}
					time.Sleep(5 * time.Millisecond)
					critical.Add(-1)
					return nil
				})
			})
		}()
	}
	wg.Wait()

	if overlap.Load() {
		t.Error("critical class ran concurrently with itself")
	}
	if s.Peak(ClassCritical) != 1 {
		t.Errorf("critical Peak() = %d, want 1", s.Peak(ClassCritical))
	}
	if s.Peak(ClassRender) < 2 {
		t.Errorf("render Peak() = %d, want renders to overlap", s.Peak(ClassRender))
	}
}

func TestDoCancelledWhileWaiting(t *testing.T) {
	s := New(map[string]int{"x": 1})
	release := make(chan struct{})
	go s.Do(context.Background(), "x", func(context.Context) error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := s.Do(ctx, "x", func(context.Context) error {
		ran = true
		return nil
	})
	close(release)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want deadline exceeded", err)
	}
	if ran {
		t.Error("fn should not run after cancellation")
	}
}

func TestUnknownClass(t *testing.T) {
	s := New(nil)
	if err := s.Do(context.Background(), "nope", func(context.Context) error { return nil }); err == nil {
		t.Error("expected error for unknown class")
	}
	if s.Width("nope") != 0 {
		t.Error("Width of unknown class should be 0")
	}
}

func TestDefineClampsWidth(t *testing.T) {
	s := New(map[string]int{"a": 0, "b": 3})
	if s.Width("a") != 1 || s.Width("b") != 3 {
		t.Errorf("widths = %d, %d", s.Width("a"), s.Width("b"))
	}
	if got := s.Classes(); len(got) != 2 || got[0] != "a" {
		t.Errorf("Classes() = %v", got)
	}
}
