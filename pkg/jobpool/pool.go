package jobpool

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is one unit of work. Jobs with the same Key run on the same worker,
// one after another, and a Key is never queued twice at once.
type Job struct {
	Key     string
	Handler func(ctx context.Context) error
}

type Stats struct {
	NumWorkers      int           `json:"num_workers"`
	QueueSize       int           `json:"queue_size"`
	ActiveWorkers   int           `json:"active_workers"`
	PendingKeys     int           `json:"pending_keys"`
	TotalDispatched int64         `json:"total_dispatched"`
	TotalProcessed  int64         `json:"total_processed"`
	TotalDropped    int64         `json:"total_dropped"`
	TotalErrors     int64         `json:"total_errors"`
	WorkerStats     []WorkerStats `json:"worker_stats"`
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool is a fixed set of workers, each with its own queue. Jobs are sharded
// by key hash.
type Pool struct {
	name       string
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    atomic.Bool

	totalDispatched atomic.Int64
	totalProcessed  atomic.Int64
	totalDropped    atomic.Int64
	totalErrors     atomic.Int64

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

type worker struct {
	id            int
	jobQueue      chan Job
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  atomic.Bool
	jobsProcessed atomic.Int64
	pool          *Pool
}

// New creates a pool; name tags its log lines.
func New(name string, numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Pool{
		name:       name,
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
		pending:    make(map[string]struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan Job, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[%s] started with %d workers, queue size: %d", p.name, p.numWorkers, p.queueSize)
}

// TryDispatch queues job without blocking. It reports false when the pool
// is stopped, the worker queue is full, or the key is already pending.
func (p *Pool) TryDispatch(job Job) bool {
	if p.stopped.Load() {
		p.totalDropped.Add(1)
		return false
	}

	p.pendingMu.Lock()
	if _, busy := p.pending[job.Key]; busy {
		p.pendingMu.Unlock()
		logrus.Debugf("[%s] %s already pending, skipping", p.name, job.Key)
		return false
	}
	p.pending[job.Key] = struct{}{}
	p.pendingMu.Unlock()

	shard := p.shardFor(job.Key)
	p.totalDispatched.Add(1)

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

	p.release(job.Key)
	p.totalDropped.Add(1)
	logrus.Warnf("[%s] worker %d queue full (or stopped), dropping job %s", p.name, shard, job.Key)
	return false
}

func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		logrus.Infof("[%s] stopping workers...", p.name)

		for _, w := range p.workers {
			if w == nil {
				continue
			}
			w.cancel()
			close(w.jobQueue)
		}
		p.wg.Wait()

		logrus.Infof("[%s] all workers stopped", p.name)
	})
}

func (p *Pool) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *Pool) release(key string) {
	p.pendingMu.Lock()
	delete(p.pending, key)
	p.pendingMu.Unlock()
}

func (p *Pool) Stats() Stats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	active := 0
	for _, w := range p.workers {
		if w == nil {
			continue
		}
		busy := w.isProcessing.Load()
		if busy {
			active++
		}
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  busy,
			JobsProcessed: w.jobsProcessed.Load(),
		})
	}

	p.pendingMu.Lock()
	pending := len(p.pending)
	p.pendingMu.Unlock()

	return Stats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   active,
		PendingKeys:     pending,
		TotalDispatched: p.totalDispatched.Load(),
		TotalProcessed:  p.totalProcessed.Load(),
		TotalDropped:    p.totalDropped.Load(),
		TotalErrors:     p.totalErrors.Load(),
		WorkerStats:     workerStats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	logrus.Debugf("[%s] worker %d started", w.pool.name, w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.process(job)
		case <-w.ctx.Done():
			w.drainQueue()
			return
		}
	}
}

func (w *worker) process(job Job) {
	w.isProcessing.Store(true)
	defer func() {
		if r := recover(); r != nil {
			w.pool.totalErrors.Add(1)
			logrus.Errorf("[%s] worker %d panic for %s: %v", w.pool.name, w.id, job.Key, r)
		}
		w.pool.release(job.Key)
		w.isProcessing.Store(false)
		w.jobsProcessed.Add(1)
		w.pool.totalProcessed.Add(1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		w.pool.totalErrors.Add(1)
		logrus.WithError(err).Warnf("[%s] worker %d job %s failed", w.pool.name, w.id, job.Key)
	}
}

// drainQueue drops jobs still queued at shutdown; their handlers would only
// see a cancelled context.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.pool.release(job.Key)
			w.pool.totalDropped.Add(1)
		default:
			return
		}
	}
}
