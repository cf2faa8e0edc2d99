package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/pipeline"
)

var (
	findFile             string
	findURL              string
	findOut              string
	findFormat           string
	findMinScore         float64
	findMaxDistance      int
	findPopularityWeight float64
	findProximityWeight  float64
	findUnique           bool
	findDemographics     bool
	findNoCache          bool
	findNoColor          bool
	findTimeout          time.Duration
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [text...]",
	Short: "Find personal names in text, a file or a URL",
	Long: `Find tokenizes the input, matches tokens against the first-name and
surname tables, pairs candidates that sit close together and ranks the
pairs by popularity and proximity.

Input is taken from the arguments, --file, --url or standard input.
Files and URLs may be plain text, HTML or PDF.

Example:
  namecrawler find "The report was filed by John Smith and reviewed by Mary Johnson."
  namecrawler find --file minutes.pdf --format json --out names.json
  namecrawler find --url https://en.wikipedia.org/wiki/Ada_Lovelace --demographics
  cat notes.txt | namecrawler find --min-score 0.7 --unique`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	// Input flags
	findCmd.Flags().StringVar(&findFile, "file", "", "read the document from a file (text, HTML or PDF)")
	findCmd.Flags().StringVar(&findURL, "url", "", "fetch the document from an http(s) URL")

	// Output flags
	findCmd.Flags().StringVar(&findOut, "out", "", "write the report to a file instead of stdout")
	findCmd.Flags().StringVar(&findFormat, "format", "text", "output format (text, json, yaml, md)")
	findCmd.Flags().BoolVar(&findNoColor, "no-color", false, "disable colored text output")
	findCmd.Flags().BoolVar(&findDemographics, "demographics", false, "attach sex, age, race and trend estimates to each name")

	// Finder flags
	findCmd.Flags().Float64Var(&findMinScore, "min-score", 0.5, "drop names scoring below this value [0,1]")
	findCmd.Flags().IntVar(&findMaxDistance, "max-distance", 5, "max token distance between first name and surname")
	findCmd.Flags().Float64Var(&findPopularityWeight, "popularity-weight", 0.5, "weight of name popularity in the score")
	findCmd.Flags().Float64Var(&findProximityWeight, "proximity-weight", 0.5, "weight of token proximity in the score")
	findCmd.Flags().BoolVar(&findUnique, "unique", false, "report each distinct name once")

	// HTTP flags
	findCmd.Flags().DurationVar(&findTimeout, "timeout", 2*time.Minute, "overall timeout")
	findCmd.Flags().BoolVar(&findNoCache, "no-cache", false, "disable cache (force fresh fetch)")
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyFindFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), findTimeout)
	defer cancel()

	holder, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, holder)
	if err != nil {
		return err
	}

	report, err := scanInput(ctx, p, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ %d tokens, %d candidates, %d pairs, %d names\n",
			report.TokenCount, report.CandidateCount, report.PairCount, len(report.Matches))
	}

	renderer := pipeline.NewRenderer(cfg.Output.Format, cfg.Output.Color && findOut == "")
	if findOut != "" {
		if err := renderer.RenderFile(findOut, report); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", findOut)
		return nil
	}
	return renderer.RenderReport(cmd.OutOrStdout(), report)
}

// applyFindFlags lays explicitly set command flags over the loaded config
func applyFindFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-score") {
		cfg.Finder.MinScore = findMinScore
	}
	if flags.Changed("max-distance") {
		cfg.Finder.MaxDistance = findMaxDistance
	}
	if flags.Changed("popularity-weight") {
		cfg.Finder.PopularityWeight = findPopularityWeight
	}
	if flags.Changed("proximity-weight") {
		cfg.Finder.ProximityWeight = findProximityWeight
	}
	if flags.Changed("unique") {
		cfg.Finder.UniqueNames = findUnique
	}
	if flags.Changed("format") {
		cfg.Output.Format = findFormat
	}
	if flags.Changed("demographics") {
		cfg.Output.Demographics = findDemographics
	}
	if findNoColor {
		cfg.Output.Color = false
	}
	if findNoCache {
		cfg.Cache.Enabled = false
	}
}

// scanInput picks exactly one input: arguments, --file, --url or stdin
func scanInput(ctx context.Context, p *pipeline.Pipeline, args []string, stdin io.Reader) (*model.Report, error) {
	inputs := 0
	for _, set := range []bool{len(args) > 0, findFile != "", findURL != ""} {
		if set {
			inputs++
		}
	}
	if inputs > 1 {
		return nil, fmt.Errorf("give text arguments, --file or --url, not several")
	}

	switch {
	case len(args) > 0:
		return p.ScanText(ctx, "args", strings.Join(args, " "))
	case findFile != "":
		return p.ScanFile(ctx, findFile)
	case findURL != "":
		return p.ScanURL(ctx, findURL)
	default:
		return p.ScanReader(ctx, "stdin", stdin)
	}
}
