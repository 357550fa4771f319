package undo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires timers only when Advance passes their deadline.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

var tollT1 = Key{EntityType: "toll", EntityID: "T1"}

func TestSchedule_CommitsAfterDelay(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock))
	var calls atomic.Int32

	p, ok := s.Schedule(tollT1, "Pune", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(DefaultDelay), p.Deadline)

	clock.Advance(9 * time.Second)
	assert.Equal(t, int32(0), calls.Load())
	assert.True(t, s.IsPending(tollT1))

	clock.Advance(time.Second)
	<-p.Done()
	assert.Equal(t, int32(1), calls.Load())
	assert.NoError(t, p.Err())
	assert.False(t, s.IsPending(tollT1))
}

func TestSchedule_SingleFlight(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock))
	var calls atomic.Int32
	action := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	first, ok := s.Schedule(tollT1, "Pune", action)
	require.True(t, ok)
	second, ok := s.Schedule(tollT1, "Pune", action)
	assert.False(t, ok)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.PendingCount())

	clock.Advance(DefaultDelay)
	<-first.Done()
	assert.Equal(t, int32(1), calls.Load())
}

func TestUndo_PreventsAction(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock))
	var calls atomic.Int32

	p, _ := s.Schedule(tollT1, "Pune", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	clock.Advance(5 * time.Second)
	require.True(t, s.Undo(tollT1))
	<-p.Done()

	clock.Advance(time.Minute)
	assert.Equal(t, int32(0), calls.Load(), "undone deletion must never run")
	assert.Equal(t, 0, s.PendingCount())
	assert.False(t, s.Undo(tollT1), "second undo finds nothing")
}

func TestUndo_ThenRescheduleIsAllowed(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock))

	s.Schedule(tollT1, "Pune", func(context.Context) error { return nil })
	s.Undo(tollT1)
	_, ok := s.Schedule(tollT1, "Pune", func(context.Context) error { return nil })
	assert.True(t, ok)
}

func TestCommit_FailureClearsRecord(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock), WithDelay(time.Second))

	p, _ := s.Schedule(tollT1, "Pune", func(context.Context) error {
		return errors.New("foreign key violation")
	})
	clock.Advance(time.Second)
	<-p.Done()

	assert.EqualError(t, p.Err(), "foreign key violation")
	assert.False(t, s.IsPending(tollT1), "failed deletion must not leave a stuck record")
}

func TestList_OrderedByDeadline(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(context.Background(), WithClock(clock))

	s.Schedule(Key{"partner", "B"}, "Beta", func(context.Context) error { return nil })
	clock.Advance(time.Second)
	s.Schedule(Key{"partner", "A"}, "Alpha", func(context.Context) error { return nil })

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Beta", list[0].Label)
	assert.Equal(t, "Alpha", list[1].Label)
}

func TestRealClock_Fires(t *testing.T) {
	s := NewScheduler(context.Background(), WithDelay(5*time.Millisecond))
	assert.Equal(t, 5*time.Millisecond, s.Delay())

	p, _ := s.Schedule(tollT1, "Pune", func(context.Context) error { return nil })
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled deletion did not fire")
	}
}
