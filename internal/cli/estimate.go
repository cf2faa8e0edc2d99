package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/namecrawler/internal/estimate"
	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/pipeline"
)

var (
	estimateFormat   string
	ageNormalize     bool
	ageReferenceYear int
)

var ageCmd = &cobra.Command{
	Use:   "age <name>",
	Short: "Estimate the age of a bearer of a first name",
	Long: `Age reports the years since the peak birth year of the first name.
With --normalize every birth year is weighted by the share of that cohort
still alive, which pulls the estimate towards the living population.

Example:
  namecrawler age Mildred
  namecrawler age "Dr. Jessica Alba" --normalize`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, args, func(e *estimate.Estimator, cfg *model.Config, name string) (interface{}, error) {
			normalize := cfg.Age.Normalize
			if cmd.Flags().Changed("normalize") {
				normalize = ageNormalize
			}
			return e.Age(name, normalize)
		})
	},
}

var sexCmd = &cobra.Command{
	Use:   "sex <name>",
	Short: "Estimate the likely sex of a bearer of a first name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, args, func(e *estimate.Estimator, _ *model.Config, name string) (interface{}, error) {
			return e.Sex(name)
		})
	},
}

var raceCmd = &cobra.Command{
	Use:   "race <name>",
	Short: "Report the most common race/ethnicity of bearers of a surname",
	Long: `Race looks up the surname component in the Census surname table and
reports the largest category with the full breakdown. A surname missing
from the table is reported as unknown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, args, func(e *estimate.Estimator, _ *model.Config, name string) (interface{}, error) {
			return e.Race(name)
		})
	},
}

var popularityCmd = &cobra.Command{
	Use:   "popularity <name>",
	Short: "Show the history and trend of a first name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, args, func(e *estimate.Estimator, _ *model.Config, name string) (interface{}, error) {
			return e.Popularity(name)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{ageCmd, sexCmd, raceCmd, popularityCmd} {
		cmd.Flags().StringVar(&estimateFormat, "format", "text", "output format (text, json, yaml, md)")
		rootCmd.AddCommand(cmd)
	}
	ageCmd.Flags().BoolVar(&ageNormalize, "normalize", false, "weight birth years by survival")
	ageCmd.Flags().IntVar(&ageReferenceYear, "reference-year", 0, "year ages are computed against (default: current year)")
}

type estimateFunc func(e *estimate.Estimator, cfg *model.Config, name string) (interface{}, error)

// runEstimate loads the reference data once and renders one estimate for
// the name given as arguments ("John Smith" or John Smith)
func runEstimate(cmd *cobra.Command, args []string, fn estimateFunc) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = estimateFormat
	}
	if cmd.Flags().Lookup("reference-year") != nil && cmd.Flags().Changed("reference-year") {
		cfg.Age.ReferenceYear = ageReferenceYear
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	holder, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	e, err := estimate.NewEstimator(holder, cfg.Age, cfg.Popularity)
	if err != nil {
		return err
	}

	name := strings.Join(args, " ")
	est, err := fn(e, cfg, name)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%q is not in the reference data: %w", name, model.ErrNotFound)
	}
	if err != nil {
		return err
	}

	return pipeline.NewRenderer(cfg.Output.Format, cfg.Output.Color).RenderEstimate(cmd.OutOrStdout(), est)
}
