package undo

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultDelay is how long a scheduled deletion waits before committing.
const DefaultDelay = 10 * time.Second

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock creates timers. The real clock wraps time.AfterFunc.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Key identifies a scheduled action.
type Key struct {
	EntityType string
	EntityID   string
}

// Action is the destructive operation committed after the delay.
type Action func(ctx context.Context) error

// Pending is a scheduled deletion that has not yet committed or been undone.
type Pending struct {
	Key      Key
	Label    string
	Deadline time.Time

	timer      Timer
	committing bool
	done       chan struct{}
	err        error
}

// Done is closed once the action has run or the deletion was undone.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err reports the action's error. Valid after Done is closed.
func (p *Pending) Err() error { return p.err }

// Scheduler runs schedule-then-commit deletions with single-flight per key.
type Scheduler struct {
	clock  Clock
	delay  time.Duration
	base   context.Context
	logger *slog.Logger

	mu      sync.Mutex
	pending map[Key]*Pending
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a Scheduler. Actions run with base as their context.
func NewScheduler(base context.Context, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   RealClock,
		delay:   DefaultDelay,
		base:    base,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		pending: make(map[Key]*Pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the configured commit delay.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Schedule arms action for key. If a deletion for key is already pending it
// returns that one and false without scheduling anything.
func (s *Scheduler) Schedule(key Key, label string, action Action) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		return p, false
	}
	p := &Pending{
		Key:      key,
		Label:    label,
		Deadline: s.clock.Now().Add(s.delay),
		done:     make(chan struct{}),
	}
	s.pending[key] = p
	p.timer = s.clock.AfterFunc(s.delay, func() { s.commit(p, action) })
	s.logger.Info("deletion_scheduled", "entity_type", key.EntityType, "entity_id", key.EntityID, "delay", s.delay)
	return p, true
}

// Undo cancels a pending deletion. It reports false when nothing is pending
// or the action has already started.
func (s *Scheduler) Undo(key Key) bool {
	s.mu.Lock()
	p, ok := s.pending[key]
	if !ok || p.committing {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, key)
	p.timer.Stop()
	s.mu.Unlock()

	close(p.done)
	s.logger.Info("deletion_undone", "entity_type", key.EntityType, "entity_id", key.EntityID)
	return true
}

// IsPending reports whether key has a pending deletion.
func (s *Scheduler) IsPending(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// PendingCount returns the number of pending deletions.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// List returns pending deletions ordered by deadline.
func (s *Scheduler) List() []*Pending {
	s.mu.Lock()
	out := make([]*Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out
}

func (s *Scheduler) commit(p *Pending, action Action) {
	s.mu.Lock()
	if s.pending[p.Key] != p {
		// Undo won the race with the timer.
		s.mu.Unlock()
		return
	}
	p.committing = true
	s.mu.Unlock()

	defer func() {
		// The record is cleared even if the action fails or panics.
		s.mu.Lock()
		delete(s.pending, p.Key)
		s.mu.Unlock()
		close(p.done)
	}()

	p.err = action(s.base)
	if p.err != nil {
		s.logger.Error("deletion_failed", "entity_type", p.Key.EntityType, "entity_id", p.Key.EntityID, "error", p.err)
		return
	}
	s.logger.Info("deletion_committed", "entity_type", p.Key.EntityType, "entity_id", p.Key.EntityID)
}
