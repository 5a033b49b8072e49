package evaluation

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

type Job interface {
	Execute(ctx context.Context) error
}

type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// NewWorkerPool starts size workers. A non-positive size falls back to
// CPU-based sizing that leaves a quarter of the cores to the rest of the process.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		totalCPU := runtime.NumCPU()
		systemReserve := max(1, totalCPU/4)
		size = max(1, totalCPU-systemReserve)
	}
	log.Info().
		Int("workers", size).
		Msg("Worker pool initialized")
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2), // Buffer 2x the worker count
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("Worker failed to execute job")
			}
		}
	}
}

// Submit blocks until the job is queued or the pool shuts down.
func (p *WorkerPool) Submit(job Job) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// Close stops the workers and waits for running jobs to return. Jobs still
// queued are dropped.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

func (p *WorkerPool) Size() int {
	return p.workers
}
