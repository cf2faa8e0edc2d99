// Package pipeline turns documents into name reports: it fetches or reads a
// source, extracts its text, runs the finder and renders the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/namecrawler/internal/cache"
	"github.com/ppiankov/namecrawler/internal/estimate"
	"github.com/ppiankov/namecrawler/internal/extract/adapters"
	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
	"github.com/ppiankov/namecrawler/internal/util"
)

// ErrRobotsDisallowed means robots.txt forbids fetching the URL
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Pipeline orchestrates the complete scan process
type Pipeline struct {
	finder    *Finder
	fetcher   *Fetcher
	robots    *util.RobotsChecker // nil when robots.txt is ignored
	cache     cache.Cache
	adapters  *adapters.Registry
	estimator *estimate.Estimator // nil unless demographics are requested
	config    *model.Config
	now       func() time.Time

	onCrawlDelay func(host string, delay time.Duration)
}

// NewPipeline creates a new pipeline reading reference data from source
func NewPipeline(cfg *model.Config, source store.Source) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	finder, err := NewFinder(source, cfg.Finder)
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(cfg.HTTP)

	p := &Pipeline{
		finder:   finder,
		fetcher:  fetcher,
		cache:    cache.New(cfg.Cache),
		adapters: adapters.NewRegistry(),
		config:   cfg,
		now:      time.Now,
	}

	if cfg.HTTP.RespectRobots {
		p.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, fetcher.Client())
	}

	if cfg.Output.Demographics {
		p.estimator, err = estimate.NewEstimator(source, cfg.Age, cfg.Popularity)
		if err != nil {
			return nil, fmt.Errorf("create estimator: %w", err)
		}
	}

	return p, nil
}

// OnCrawlDelay registers fn to receive the Crawl-delay robots.txt asks of a host
func (p *Pipeline) OnCrawlDelay(fn func(host string, delay time.Duration)) {
	p.onCrawlDelay = fn
}

// Finder returns the finder used for every scan
func (p *Pipeline) Finder() *Finder {
	return p.finder
}

// Scan dispatches on the form of source: http(s) URLs are fetched, anything
// else is read as a local file
func (p *Pipeline) Scan(ctx context.Context, source string) (*model.Report, error) {
	if isURL(source) {
		return p.ScanURL(ctx, source)
	}
	return p.ScanFile(ctx, source)
}

// ScanText runs the finder over plain text
func (p *Pipeline) ScanText(ctx context.Context, source string, text string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.finder.FindDetailed(text)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		ID:             uuid.NewString(),
		Source:         source,
		ContentType:    "text/plain",
		ScannedAt:      p.now().UTC(),
		TokenCount:     result.Tokens,
		CandidateCount: result.Candidates,
		PairCount:      result.Pairs,
		Matches:        result.Matches,
		Settings:       p.finder.Settings(),
	}

	p.attachDemographics(report)

	slog.Debug("scanned text", "source", source, "tokens", result.Tokens, "candidates", result.Candidates, "matches", len(result.Matches))
	return report, nil
}

// ScanBytes extracts the text of a document and runs the finder over it.
// An empty content type is sniffed from the content.
func (p *Pipeline) ScanBytes(ctx context.Context, source string, content []byte, contentType string) (*model.Report, error) {
	text, adapter, err := p.adapters.Extract(content, source, contentType)
	if err != nil {
		return nil, fmt.Errorf("extract %s with %s adapter: %w", source, adapter.Name(), err)
	}

	report, err := p.ScanText(ctx, source, text)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = adapters.SniffContentType(content)
	}
	report.ContentType = contentType
	return report, nil
}

// ScanReader reads r to the end, bounded by the configured body limit
func (p *Pipeline) ScanReader(ctx context.Context, source string, r io.Reader) (*model.Report, error) {
	content, err := io.ReadAll(io.LimitReader(r, p.config.HTTP.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return p.ScanBytes(ctx, source, content, "")
}

// ScanFile scans a local document
func (p *Pipeline) ScanFile(ctx context.Context, path string) (*model.Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.ScanBytes(ctx, path, content, "")
}

// ScanURL fetches a URL (or takes it from the cache) and scans it
func (p *Pipeline) ScanURL(ctx context.Context, rawURL string) (*model.Report, error) {
	doc, err := p.fetchDocument(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	report, err := p.ScanBytes(ctx, doc.FinalURL, doc.Body, doc.ContentType)
	if err != nil {
		return nil, err
	}
	report.Source = rawURL
	return report, nil
}

// fetchDocument returns the cached document for rawURL or fetches it
func (p *Pipeline) fetchDocument(ctx context.Context, rawURL string) (*cache.Document, error) {
	if !isURL(rawURL) {
		return nil, fmt.Errorf("unsupported URL %q: only http and https are fetched", rawURL)
	}

	if doc, ok := p.cache.Get(rawURL); ok {
		slog.Debug("cache hit", "url", rawURL, "fetched_at", doc.FetchedAt)
		return doc, nil
	}

	if p.robots != nil {
		verdict, err := p.robots.Check(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots.txt: %w", err)
		}
		if !verdict.Allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		if verdict.CrawlDelay > 0 {
			slog.Debug("robots.txt crawl delay", "url", rawURL, "delay", verdict.CrawlDelay)
			if p.onCrawlDelay != nil {
				p.onCrawlDelay(verdict.Host, verdict.CrawlDelay)
			}
		}
	}

	result, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	doc := &cache.Document{
		URL:         rawURL,
		FinalURL:    result.FinalURL,
		ContentType: result.ContentType,
		Body:        result.Body,
		FetchedAt:   p.now().UTC(),
	}
	if err := p.cache.Put(doc, 0); err != nil {
		slog.Warn("cache write failed", "url", rawURL, "error", err)
	}

	return doc, nil
}

// attachDemographics fills in estimates for every match when enabled
func (p *Pipeline) attachDemographics(report *model.Report) {
	if p.estimator == nil {
		return
	}
	for i := range report.Matches {
		m := &report.Matches[i]
		d, err := p.estimator.Profile(m.First, m.Last, p.config.Age.Normalize)
		if err != nil {
			slog.Debug("demographics unavailable", "name", m.Name, "error", err)
			continue
		}
		m.Demographics = d
	}
}

// isURL reports whether source is an http or https URL
func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
