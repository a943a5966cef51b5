package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MessageJob is one unit of work for a single conversation participant.
type MessageJob struct {
	PageID        string
	ParticipantID string
	Handler       func(ctx context.Context) error
}

func (j MessageJob) key() string {
	return j.PageID + "|" + j.ParticipantID
}

// PoolStats is a real-time snapshot of the pool.
type PoolStats struct {
	Name            string         `json:"name"`
	NumWorkers      int            `json:"num_workers"`
	QueueSize       int            `json:"queue_size"`
	ActiveWorkers   int            `json:"active_workers"`
	TotalDispatched int64          `json:"total_dispatched"`
	TotalProcessed  int64          `json:"total_processed"`
	TotalDropped    int64          `json:"total_dropped"`
	TotalErrors     int64          `json:"total_errors"`
	WorkerStats     []WorkerStats  `json:"worker_stats"`
	ActiveChats     map[string]int `json:"active_chats"` // page|participant -> worker_id
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

type activeChatEntry struct {
	workerID  int
	updatedAt time.Time
}

// MessageWorkerPool shards jobs by participant so that jobs for the same
// participant run one at a time in dispatch order while different
// participants are processed in parallel.
type MessageWorkerPool struct {
	name       string
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	started    int32
	stopped    int32
	stopCh     chan struct{}

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
	activeChatsMu   sync.Mutex
	activeChats     map[string]activeChatEntry

	OnWorkerStart func(workerID int, chatKey string)
	OnWorkerEnd   func(workerID int, chatKey string)
}

type worker struct {
	id            int
	jobQueue      chan MessageJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *MessageWorkerPool
}

// NewMessageWorkerPool creates a pool; call Start before dispatching.
func NewMessageWorkerPool(name string, numWorkers, queueSize int) *MessageWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &MessageWorkerPool{
		name:        name,
		numWorkers:  numWorkers,
		queueSize:   queueSize,
		workers:     make([]*worker, numWorkers),
		activeChats: make(map[string]activeChatEntry),
		stopCh:      make(chan struct{}),
	}
}

// Start launches every worker of the pool.
func (p *MessageWorkerPool) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.pruneActiveChats(time.Now())
			}
		}
	}()

	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan MessageJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}
	atomic.StoreInt32(&p.started, 1)

	logrus.Infof("[MSG_WORKER_POOL] %s started with %d workers, queue size: %d", p.name, p.numWorkers, p.queueSize)
}

// TryDispatch queues the job on its participant's worker without blocking
// and reports whether it was accepted.
func (p *MessageWorkerPool) TryDispatch(job MessageJob) bool {
	if atomic.LoadInt32(&p.started) == 0 || atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		logrus.Warnf("[MSG_WORKER_POOL] %s is not running, dropping job for %s", p.name, job.key())
		return false
	}

	shard := p.shardFor(job)
	atomic.AddInt64(&p.totalDispatched, 1)

	chatKey := job.key()
	p.activeChatsMu.Lock()
	p.activeChats[chatKey] = activeChatEntry{workerID: shard, updatedAt: time.Now()}
	p.activeChatsMu.Unlock()

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		return true
	}
	p.activeChatsMu.Lock()
	delete(p.activeChats, chatKey)
	p.activeChatsMu.Unlock()

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[MSG_WORKER_POOL] %s worker %d queue full (or stopped), dropping job for %s", p.name, shard, chatKey)
	return false
}

// Dispatch queues the job, dropping it when the worker queue is full.
func (p *MessageWorkerPool) Dispatch(job MessageJob) {
	_ = p.TryDispatch(job)
}

// Execute lets the pool serve as the executor of pkg/scheduler: tasks for
// one key always land on the same worker and keep their order.
func (p *MessageWorkerPool) Execute(key string, fn func(ctx context.Context) error) {
	p.Dispatch(MessageJob{ParticipantID: key, Handler: fn})
}

// Stop drains and stops the pool.
func (p *MessageWorkerPool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Infof("[MSG_WORKER_POOL] Stopping %s workers...", p.name)

		for _, w := range p.workers {
			if w == nil {
				continue
			}
			w.cancel()
			close(w.jobQueue)
		}

		p.wg.Wait()

		logrus.Infof("[MSG_WORKER_POOL] All %s workers stopped", p.name)
	})
}

func (p *MessageWorkerPool) shardFor(job MessageJob) int {
	h := fnv.New32a()
	h.Write([]byte(job.key()))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *MessageWorkerPool) pruneActiveChats(now time.Time) {
	p.activeChatsMu.Lock()
	defer p.activeChatsMu.Unlock()
	for k, v := range p.activeChats {
		if !v.updatedAt.IsZero() && now.Sub(v.updatedAt) > 2*time.Second {
			delete(p.activeChats, k)
		}
	}
}

// GetStats returns real-time statistics of the pool.
func (p *MessageWorkerPool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	activeWorkers := 0

	for _, w := range p.workers {
		if w == nil {
			continue
		}
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}

		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	p.pruneActiveChats(time.Now())
	p.activeChatsMu.Lock()
	activeChatsSnapshot := make(map[string]int, len(p.activeChats))
	for k, v := range p.activeChats {
		activeChatsSnapshot[k] = v.workerID
	}
	p.activeChatsMu.Unlock()

	return PoolStats{
		Name:            p.name,
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
		ActiveChats:     activeChatsSnapshot,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[MSG_WORKER_POOL] %s worker %d started", w.pool.name, w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[MSG_WORKER_POOL] %s worker %d shutting down", w.pool.name, w.id)
				return
			}
			w.process(job)

		case <-w.ctx.Done():
			logrus.Debugf("[MSG_WORKER_POOL] %s worker %d context cancelled, draining queue...", w.pool.name, w.id)
			w.drainQueue()
			return
		}
	}
}

func (w *worker) process(job MessageJob) {
	chatKey := job.key()

	if w.pool.OnWorkerStart != nil {
		w.pool.OnWorkerStart(w.id, chatKey)
	}
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[MSG_WORKER_POOL] %s worker %d panic for %s: %v", w.pool.name, w.id, chatKey, r)
		}
		if w.pool.OnWorkerEnd != nil {
			w.pool.OnWorkerEnd(w.id, chatKey)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[MSG_WORKER_POOL] %s worker %d job failed for %s", w.pool.name, w.id, chatKey)
	}
}

// drainQueue runs the jobs still queued when the pool shuts down.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.process(job)
		default:
			return
		}
	}
}
