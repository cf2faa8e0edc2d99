// Package worker runs batch scans on a bounded worker pool with per-host
// rate limiting for URL sources.
package worker

import (
	"context"
	"sync"
)

// Pool runs scan jobs on a fixed number of workers
type Pool struct {
	workers  int
	jobs     chan *ScanJob
	results  chan *ScanResult
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	onResult func(*ScanResult)

	queueOnce sync.Once
	closeOnce sync.Once
}

// NewPool creates a pool of workers. Jobs see a context derived from ctx
// that Shutdown cancels.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers: workers,
		jobs:    make(chan *ScanJob, workers*2),
		results: make(chan *ScanResult, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnResult registers fn to see every result as it completes. fn runs on the
// collecting goroutine, one result at a time. Set it before Start.
func (p *Pool) OnResult(fn func(*ScanResult)) {
	p.onResult = fn
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It blocks while the queue is full and returns without
// queueing once the pool is cancelled.
func (p *Pool) Submit(job *ScanJob) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue and returns the results of every submitted job that ran
func (p *Pool) Wait() []*ScanResult {
	p.closeQueue()
	return p.collect()
}

// Run submits jobs while collecting results, so any number of jobs can be
// queued without the result buffer filling up. Results come back in
// completion order.
func (p *Pool) Run(jobs []*ScanJob) []*ScanResult {
	go func() {
		for _, job := range jobs {
			p.Submit(job)
		}
		p.closeQueue()
	}()
	return p.collect()
}

// Shutdown cancels running scans and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) collect() []*ScanResult {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []*ScanResult
	for result := range p.results {
		if p.onResult != nil {
			p.onResult(result)
		}
		results = append(results, result)
	}
	return results
}

func (p *Pool) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobs)
	})
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
