package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/namecrawler/internal/pipeline"
	"github.com/ppiankov/namecrawler/internal/worker"
)

var (
	concurrency       int
	outputDir         string
	batchTimeout      time.Duration
	batchFormat       string
	batchNoCache      bool
	batchDemographics bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Find names in many documents in parallel",
	Long: `Batch scans many documents concurrently:
- Read sources from the input file (one file path or URL per line)
- Scan sources in parallel with a configurable worker count
- Limit requests per host for URL sources
- Write one report per source to the output directory

Example:
  namecrawler batch sources.txt
  namecrawler batch sources.txt --concurrency 8 --output-dir ./reports
  namecrawler batch sources.txt --format md --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./namecrawler-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "report format (json, yaml, md, text)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&batchDemographics, "demographics", false, "attach sex, age, race and trend estimates to each name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers == 0 {
		cfg.Concurrency.Workers = concurrency
	}
	cfg.Output.Format = batchFormat
	if batchNoCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("demographics") {
		cfg.Output.Demographics = batchDemographics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  namecrawler Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Database:     %s\n", cfg.Store.Path)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	holder, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, holder)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	if limiter := processor.Limiter(); limiter != nil {
		p.OnCrawlDelay(limiter.ApplyCrawlDelay)
	}

	processor.OnProgress(func(done, total int, r *worker.ScanResult) {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "  [%d/%d] ✗ %s: %v\n", done, total, r.Source, r.Error)
			return
		}
		fmt.Fprintf(os.Stderr, "  [%d/%d] ✓ %s (%d names)\n", done, total, r.Source, len(r.Report.Matches))
	})

	fmt.Fprintf(os.Stderr, "⚙️  Scanning sources with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Format, false)
	successCount := 0
	failureCount := 0
	names := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			continue
		}

		slug := uniqueSlug(used, sanitizeFilename(result.Source))
		path := filepath.Join(outputDir, slug+renderer.Extension())
		if err := renderer.RenderFile(path, result.Report); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", result.Source, err)
			continue
		}

		successCount++
		names += len(result.Report.Matches)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Names:     %d\n", names)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d sources failed", failureCount)
	}
	return nil
}

// sanitizeFilename turns a path or URL into a safe report file name
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, filepath.Ext(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "_.")
	if name == "" {
		name = "report"
	}
	// Limit length
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// uniqueSlug appends a counter when two sources map to the same file name
func uniqueSlug(used map[string]int, slug string) string {
	n := used[slug]
	used[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}
