// Package scheduler runs tasks under named resource classes, each with its
// own concurrency width.
//
//	s := scheduler.New(map[string]int{"render": 20, "critical": 1})
//	err := s.Do(ctx, "critical", func(ctx context.Context) error { ... })
//
// Page rendering and critical CSS extraction use separate classes so the
// serialized class never blocks render slots and never runs concurrently
// with itself.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Well-known classes.
const (
	ClassRender   = "render"
	ClassCritical = "critical"
)

type class struct {
	width    int64
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	peak     atomic.Int64
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu      sync.RWMutex
	classes map[string]*class
}

// New creates a Scheduler. Widths below 1 are raised to 1.
func New(widths map[string]int) *Scheduler {
	s := &Scheduler{classes: make(map[string]*class, len(widths))}
	for name, w := range widths {
		s.Define(name, w)
	}
	return s
}

// Define adds or replaces a class.
func (s *Scheduler) Define(name string, width int) {
	if width < 1 {
		width = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[name] = &class{width: int64(width), sem: semaphore.NewWeighted(int64(width))}
}

func (s *Scheduler) class(name string) (*class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[name]
	if !ok {
		return nil, fmt.Errorf("scheduler: unknown class %q", name)
	}
	return c, nil
}

// Do runs fn once a slot in class is free. It returns ctx.Err() without
// running fn if ctx ends while waiting.
func (s *Scheduler) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	c, err := s.class(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return fn(ctx)
}

// Width returns the width of a class, or 0 if undefined.
func (s *Scheduler) Width(name string) int {
	c, err := s.class(name)
	if err != nil {
		return 0
	}
	return int(c.width)
}

// Peak returns the highest number of tasks seen running at once in a class.
func (s *Scheduler) Peak(name string) int {
	c, err := s.class(name)
	if err != nil {
		return 0
	}
	return int(c.peak.Load())
}

// Classes returns the defined class names, sorted.
func (s *Scheduler) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.classes))
	for n := range s.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
