package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Executor runs due tasks. Tasks sharing a key must run in submission order.
type Executor interface {
	Execute(key string, fn func(ctx context.Context) error)
}

// InlineExecutor runs every task synchronously on the caller's goroutine.
type InlineExecutor struct{}

func (InlineExecutor) Execute(key string, fn func(ctx context.Context) error) {
	if err := fn(context.Background()); err != nil {
		logrus.WithError(err).Errorf("[SCHEDULER] Task for %s failed", key)
	}
}

type task struct {
	key  string
	name string
	at   time.Time
	seq  uint64
	run  func(ctx context.Context) error
}

// taskQueue orders tasks by due time; tasks due at the same instant keep
// the order they were scheduled in.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Stats is a point-in-time snapshot of the scheduler.
type Stats struct {
	Pending        int       `json:"pending"`
	TotalScheduled int64     `json:"total_scheduled"`
	TotalExecuted  int64     `json:"total_executed"`
	NextDue        time.Time `json:"next_due,omitempty"`
}

// Scheduler is the single timer queue every outbound send goes through.
// Sends are released in due order to the Executor; it never cancels a task.
type Scheduler struct {
	clock Clock
	exec  Executor

	mu    sync.Mutex
	queue taskQueue
	seq   uint64

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	totalScheduled int64
	totalExecuted  int64
}

func New(clock Clock, exec Executor) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if exec == nil {
		exec = InlineExecutor{}
	}
	return &Scheduler{
		clock:  clock,
		exec:   exec,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// ScheduleAt queues fn to run no earlier than at.
func (s *Scheduler) ScheduleAt(key, name string, at time.Time, fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, &task{key: key, name: name, at: at, seq: s.seq, run: fn})
	s.mu.Unlock()

	atomic.AddInt64(&s.totalScheduled, 1)
	logrus.Debugf("[SCHEDULER] Scheduled %s for %s at +%dms", name, key, at.Sub(s.clock.Now()).Milliseconds())

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Schedule queues fn to run no earlier than delay from now.
func (s *Scheduler) Schedule(key, name string, delay time.Duration, fn func(ctx context.Context) error) {
	s.ScheduleAt(key, name, s.clock.Now().Add(delay), fn)
}

// RunDue hands every task that is due to the executor, in due order, and
// returns how many were released.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()

	s.mu.Lock()
	var due []*task
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		due = append(due, heap.Pop(&s.queue).(*task))
	}
	s.mu.Unlock()

	for _, t := range due {
		s.exec.Execute(t.key, t.run)
		atomic.AddInt64(&s.totalExecuted, 1)
	}
	return len(due)
}

// NextDue returns the due time of the earliest pending task.
func (s *Scheduler) NextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Time{}, false
	}
	return s.queue[0].at, true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *Scheduler) Stats() Stats {
	next, _ := s.NextDue()
	return Stats{
		Pending:        s.Pending(),
		TotalScheduled: atomic.LoadInt64(&s.totalScheduled),
		TotalExecuted:  atomic.LoadInt64(&s.totalExecuted),
		NextDue:        next,
	}
}

// Start runs the timer loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			s.RunDue()

			var timer <-chan time.Time
			if next, ok := s.NextDue(); ok {
				timer = s.clock.After(next.Sub(s.clock.Now()))
			}

			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-s.wake:
			case <-timer:
			}
		}
	}()
	logrus.Info("[SCHEDULER] Started")
}

// Stop ends the timer loop. Tasks still pending are dropped.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		if n := s.Pending(); n > 0 {
			logrus.Warnf("[SCHEDULER] Stopped with %d pending task(s)", n)
		} else {
			logrus.Info("[SCHEDULER] Stopped")
		}
	})
}
