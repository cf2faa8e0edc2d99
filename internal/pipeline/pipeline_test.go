package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store/storetest"
)

func newTestPipeline(t *testing.T, mutate func(*model.Config)) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Cache.Dir = ""
	cfg.HTTP.UserAgent = "namecrawler-test"
	if mutate != nil {
		mutate(cfg)
	}
	p, err := NewPipeline(cfg, storetest.Snapshot(t))
	require.NoError(t, err)
	return p
}

// documentServer serves an HTML page, a PDF-less plain page and a robots.txt
// that disallows /private
func documentServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<html><head><title>Minutes</title><script>var Mary = 'Johnson';</script></head><body><p>%s</p></body></html>", scenario)
	})
	mux.HandleFunc("/private/notes", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, scenario)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

func TestNewPipeline_RejectsInvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Finder.MaxDistance = -3

	_, err := NewPipeline(cfg, storetest.Snapshot(t))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestPipeline_ScanText(t *testing.T) {
	p := newTestPipeline(t, nil)

	report, err := p.ScanText(context.Background(), "stdin", scenario)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "stdin", report.Source)
	assert.Equal(t, 12, report.TokenCount)
	assert.Equal(t, 4, report.CandidateCount)
	require.Len(t, report.Matches, 2)
	assert.Equal(t, "John Smith", report.Matches[0].Name)
	assert.Nil(t, report.Matches[0].Demographics)
	assert.Equal(t, 5, report.Settings.MaxDistance)
	assert.False(t, report.ScannedAt.IsZero())
}

func TestPipeline_ReportIDsAreUnique(t *testing.T) {
	p := newTestPipeline(t, nil)

	a, err := p.ScanText(context.Background(), "a", scenario)
	require.NoError(t, err)
	b, err := p.ScanText(context.Background(), "b", scenario)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPipeline_Demographics(t *testing.T) {
	p := newTestPipeline(t, func(cfg *model.Config) {
		cfg.Output.Demographics = true
		cfg.Age.ReferenceYear = 2024
	})

	report, err := p.ScanText(context.Background(), "stdin", scenario)
	require.NoError(t, err)
	require.Len(t, report.Matches, 2)

	d := report.Matches[0].Demographics
	require.NotNil(t, d)
	assert.Equal(t, model.SexMale, d.Sex)
	assert.InDelta(t, 1.0, d.SexProbability, 1e-9)
	assert.Equal(t, model.RaceWhite, d.Race)
	assert.InDelta(t, 73.35, d.RacePercentage, 1e-9)
	assert.Equal(t, "stable", d.Trend)
	assert.Equal(t, storetest.FirstYear, d.PeakYear)
}

func TestPipeline_ScanFile(t *testing.T) {
	p := newTestPipeline(t, nil)
	dir := t.TempDir()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte(scenario), 0o644))

	report, err := p.Scan(context.Background(), txt)
	require.NoError(t, err)
	assert.Equal(t, txt, report.Source)
	assert.Equal(t, "text/plain", report.ContentType)
	assert.Len(t, report.Matches, 2)

	page := filepath.Join(dir, "page.html")
	body := "<html><body><div>Williams,</div><div>Sarah</div><script>John Smith</script></body></html>"
	require.NoError(t, os.WriteFile(page, []byte(body), 0o644))

	report, err = p.ScanFile(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "text/html", report.ContentType)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "Williams, Sarah", report.Matches[0].Name)
}

func TestPipeline_ScanFileMissing(t *testing.T) {
	p := newTestPipeline(t, nil)

	_, err := p.ScanFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestPipeline_ScanReader(t *testing.T) {
	p := newTestPipeline(t, nil)

	report, err := p.ScanReader(context.Background(), "stdin", strings.NewReader(scenario))
	require.NoError(t, err)
	assert.Equal(t, "stdin", report.Source)
	assert.Len(t, report.Matches, 2)
}

func TestPipeline_ScanURLUsesCache(t *testing.T) {
	server, hits := documentServer(t)
	p := newTestPipeline(t, nil)

	url := server.URL + "/article"
	report, err := p.Scan(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, url, report.Source)
	assert.Equal(t, "text/html", report.ContentType)
	require.Len(t, report.Matches, 2)
	assert.Equal(t, "John Smith", report.Matches[0].Name)

	_, err = p.ScanURL(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestPipeline_ScanURLWithoutCache(t *testing.T) {
	server, hits := documentServer(t)
	p := newTestPipeline(t, func(cfg *model.Config) { cfg.Cache.Enabled = false })

	for i := 0; i < 2; i++ {
		_, err := p.ScanURL(context.Background(), server.URL+"/article")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestPipeline_RobotsDisallowed(t *testing.T) {
	server, hits := documentServer(t)
	p := newTestPipeline(t, nil)

	_, err := p.ScanURL(context.Background(), server.URL+"/private/notes")
	assert.ErrorIs(t, err, ErrRobotsDisallowed)
	assert.Equal(t, int32(0), hits.Load())

	p = newTestPipeline(t, func(cfg *model.Config) { cfg.HTTP.RespectRobots = false })
	report, err := p.ScanURL(context.Background(), server.URL+"/private/notes")
	require.NoError(t, err)
	assert.Len(t, report.Matches, 2)
}

func TestPipeline_ScanURLRejectsOtherSchemes(t *testing.T) {
	p := newTestPipeline(t, nil)

	_, err := p.ScanURL(context.Background(), "ftp://example.com/names.txt")
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://en.wikipedia.org/wiki/John_Smith", true},
		{"HTTP://example.com", true},
		{"ftp://example.com", false},
		{"notes.txt", false},
		{"/tmp/report.pdf", false},
		{"http://", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isURL(tt.source), tt.source)
	}
}

func TestPipeline_OnCrawlDelay(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nCrawl-delay: 3\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, scenario)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := newTestPipeline(t, nil)
	var gotHost string
	var gotDelay time.Duration
	p.OnCrawlDelay(func(host string, delay time.Duration) {
		gotHost, gotDelay = host, delay
	})

	_, err := p.ScanURL(context.Background(), server.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), gotHost)
	assert.Equal(t, 3*time.Second, gotDelay)
}
