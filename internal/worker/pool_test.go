package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/namecrawler/internal/model"
)

// funcScanner adapts a function to Scanner
type funcScanner func(ctx context.Context, source string) (*model.Report, error)

func (f funcScanner) Scan(ctx context.Context, source string) (*model.Report, error) {
	return f(ctx, source)
}

// countingScanner counts calls and optionally sleeps or fails
func countingScanner(executed *int32, duration time.Duration, fail bool) Scanner {
	return funcScanner(func(ctx context.Context, source string) (*model.Report, error) {
		atomic.AddInt32(executed, 1)
		if duration > 0 {
			select {
			case <-time.After(duration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if fail {
			return nil, errors.New("scan error")
		}
		return &model.Report{Source: source}, nil
	})
}

func job(i int, scanner Scanner) *ScanJob {
	return &ScanJob{Index: i, Source: "doc.txt", Scanner: scanner}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(context.Background(), 5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(context.Background(), 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(context.Background(), -1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	scanner := countingScanner(&executed, 0, false)
	count := 3

	for i := 0; i < count; i++ {
		pool.Submit(job(i, scanner))
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d scans, got %d", count, executed)
	}
	for _, r := range results {
		if r.Report == nil || r.Report.Source != "doc.txt" {
			t.Errorf("unexpected result %+v", r)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)

	var current, maxConcurrent, completed int32
	var mu sync.Mutex

	scanner := funcScanner(func(ctx context.Context, source string) (*model.Report, error) {
		curr := atomic.AddInt32(&current, 1)
		mu.Lock()
		if curr > maxConcurrent {
			maxConcurrent = curr
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		atomic.AddInt32(&current, -1)
		atomic.AddInt32(&completed, 1)
		return &model.Report{}, nil
	})

	totalJobs := 50
	jobs := make([]*ScanJob, totalJobs)
	for i := range jobs {
		jobs[i] = job(i, scanner)
	}

	pool.Start()
	pool.Run(jobs)

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed scans, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	pool.Submit(job(0, countingScanner(&executed, 0, true)))
	pool.Submit(job(1, countingScanner(&executed, 0, false)))

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			if res.Index != 0 {
				t.Errorf("expected the failure on job 0, got job %d", res.Index)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 error, got %d", failed)
	}
}

func TestPool_OnResult(t *testing.T) {
	pool := NewPool(context.Background(), 3)

	var seen []int
	pool.OnResult(func(r *ScanResult) {
		seen = append(seen, r.Index)
	})
	pool.Start()

	var executed int32
	scanner := countingScanner(&executed, 0, false)
	jobs := []*ScanJob{job(0, scanner), job(1, scanner), job(2, scanner), job(3, scanner)}
	results := pool.Run(jobs)

	if len(seen) != len(results) {
		t.Fatalf("expected %d callbacks, got %d", len(results), len(seen))
	}
	for i, r := range results {
		if seen[i] != r.Index {
			t.Errorf("callback %d saw job %d, result list has job %d", i, seen[i], r.Index)
		}
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	var executed int32
	done := make(chan struct{})
	go func() {
		pool.Submit(job(0, countingScanner(&executed, 0, false)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(job(0, funcScanner(func(ctx context.Context, source string) (*model.Report, error) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		return &model.Report{}, nil
	})))

	<-started
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_RunManyJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	// far more jobs than the queue and result buffers hold
	var executed int32
	scanner := countingScanner(&executed, 0, false)
	count := 100
	jobs := make([]*ScanJob, count)
	for i := range jobs {
		jobs[i] = job(i, scanner)
	}

	done := make(chan []*ScanResult)
	go func() { done <- pool.Run(jobs) }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run deadlocked")
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d scans, got %d", count, executed)
	}
}

func TestPool_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(job(0, funcScanner(func(ctx context.Context, source string) (*model.Report, error) {
		close(started)
		time.Sleep(10 * time.Millisecond)
		return &model.Report{}, nil
	})))
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Wait did not return after parent cancel")
	}
}
