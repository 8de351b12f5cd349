package bot

import (
	"context"
	"sync"
	"time"
)

// Pool bounds how many commands run at once. Each submitted command is an
// independent unit of work with its own deadline; a slow upstream delays
// that one reply without starving the others forever.
type Pool struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewPool(workers int, timeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: make(chan struct{}, workers), timeout: timeout}
}

// Submit schedules job for execution and returns immediately. The job gets
// a context that expires after the pool's per-command timeout.
func (p *Pool) Submit(job func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		job(ctx)
	}()
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() { p.wg.Wait() }
