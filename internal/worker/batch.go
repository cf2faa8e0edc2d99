package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Scanner scans one document source (a file path or an http(s) URL)
type Scanner interface {
	Scan(ctx context.Context, source string) (*model.Report, error)
}

// ScanJob represents one document scan
type ScanJob struct {
	Index   int
	Source  string
	Scanner Scanner
	Limiter *Limiter // nil disables rate limiting
}

// Execute waits for the host's rate limit when the source is a URL, then scans it
func (j *ScanJob) Execute(ctx context.Context) *ScanResult {
	result := &ScanResult{Index: j.Index, Source: j.Source}

	if j.Limiter != nil && isURL(j.Source) {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			result.Error = fmt.Errorf("rate limit: %w", err)
			return result
		}
	}

	result.Report, result.Error = j.Scanner.Scan(ctx, j.Source)
	return result
}

// ScanResult is the outcome of one scan job
type ScanResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// Progress is called once per finished source with the number of sources
// done so far and the batch size
type Progress func(done, total int, result *ScanResult)

// BatchProcessor scans many sources concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
	limiter     *Limiter
	progress    Progress
}

// NewBatchProcessor creates a new batch processor. URL sources are limited
// to requestsPerSecond per host; zero disables the limit.
func NewBatchProcessor(scanner Scanner, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// Limiter returns the per-host limiter, nil when rate limiting is off
func (b *BatchProcessor) Limiter() *Limiter {
	return b.limiter
}

// OnProgress registers fn to be told about each source as it finishes
func (b *BatchProcessor) OnProgress(fn Progress) {
	b.progress = fn
}

// ProcessSources scans every source and returns one result per source in
// input order. Sources left unscanned when ctx ends carry ctx's error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*ScanResult {
	if len(sources) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	if b.progress != nil {
		done := 0
		pool.OnResult(func(r *ScanResult) {
			done++
			b.progress(done, len(sources), r)
		})
	}
	pool.Start()
	defer pool.Shutdown()

	jobs := make([]*ScanJob, len(sources))
	for i, source := range sources {
		jobs[i] = &ScanJob{
			Index:   i,
			Source:  source,
			Scanner: b.scanner,
			Limiter: b.limiter,
		}
	}

	ordered := make([]*ScanResult, len(sources))
	for _, r := range pool.Run(jobs) {
		ordered[r.Index] = r
	}

	for i, r := range ordered {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not scanned")
		}
		ordered[i] = &ScanResult{Index: i, Source: sources[i], Error: err}
	}

	failed := 0
	for _, r := range ordered {
		if r.Error != nil {
			failed++
		}
	}
	slog.Debug("batch finished", "sources", len(sources), "failed", failed, "workers", b.concurrency)

	return ordered
}

// ProcessFile reads sources from a file and scans them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScanResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads sources from a file, one per line. Blank lines
// and lines starting with # are skipped; repeated sources are kept once.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
