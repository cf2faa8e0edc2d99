package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the loaded reference data",
	Long:  `Load the reference database, check its integrity and print table sizes and the covered years.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		holder, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load reference data: %w", err)
		}

		stats := holder.Current().Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database:          %s\n", stats.Source)
		fmt.Fprintf(out, "Loaded at:         %s\n", stats.LoadedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "First names:       %d (%d year rows)\n", stats.FirstNames, stats.FirstRows)
		fmt.Fprintf(out, "Years:             %d-%d\n", stats.FirstYear, stats.LastYear)
		fmt.Fprintf(out, "Most common first: %s (%d)\n", stats.MaxTotalName, stats.MaxTotal)
		fmt.Fprintf(out, "Surnames:          %d (max rank %d)\n", stats.Surnames, stats.MaxRank)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
