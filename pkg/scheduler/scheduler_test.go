package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingExecutor) Execute(key string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	_ = fn(context.Background())
}

func TestScheduler_RunDueReleasesInDueOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := New(clock, nil)

	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	s.Schedule("u1", "c", 2200*time.Millisecond, record("c"))
	s.Schedule("u1", "a", 0, record("a"))
	s.Schedule("u1", "b", 1100*time.Millisecond, record("b"))

	assert.Equal(t, 1, s.RunDue())
	assert.Equal(t, []string{"a"}, order)

	clock.Advance(1099 * time.Millisecond)
	assert.Equal(t, 0, s.RunDue())

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, s.RunDue())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, s.RunDue())
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_SameDueTimeKeepsScheduleOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := New(clock, nil)
	at := clock.Now().Add(time.Second)

	var order []int
	for i := 0; i < 5; i++ {
		n := i
		s.ScheduleAt("u1", "send", at, func(context.Context) error {
			order = append(order, n)
			return nil
		})
	}

	clock.Advance(time.Second)
	require.Equal(t, 5, s.RunDue())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestScheduler_PassesKeyToExecutor(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	exec := &recordingExecutor{}
	s := New(clock, exec)

	noop := func(context.Context) error { return nil }
	s.Schedule("alice", "send", 0, noop)
	s.Schedule("bob", "send", 0, noop)
	s.RunDue()

	assert.Equal(t, []string{"alice", "bob"}, exec.keys)
	stats := s.Stats()
	assert.EqualValues(t, 2, stats.TotalScheduled)
	assert.EqualValues(t, 2, stats.TotalExecuted)
}

func TestScheduler_StartFiresWithVirtualTime(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := New(clock, nil)

	done := make(chan struct{})
	s.Schedule("u1", "late", 3*time.Second, func(context.Context) error {
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	select {
	case <-done:
		t.Fatal("task ran before its due time")
	case <-time.After(20 * time.Millisecond):
	}

	// The loop may not have registered its timer yet; keep nudging.
	require.Eventually(t, func() bool {
		clock.Advance(3 * time.Second)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestManualClock_AfterNonPositiveFiresImmediately(t *testing.T) {
	clock := NewManualClock(time.Unix(10, 0))
	select {
	case got := <-clock.After(-time.Second):
		assert.Equal(t, time.Unix(10, 0), got)
	default:
		t.Fatal("expected immediate fire")
	}
}
