// Package cli implements the namecrawler command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	dbPath  string
	watch   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "namecrawler",
	Short: "namecrawler - find personal names in text and estimate demographics",
	Long: `namecrawler locates probable personal names in unstructured text using
historical US naming-frequency data.

Tokens are matched against first-name (SSA) and surname (Census) tables,
paired by proximity and ranked by a score that combines name popularity
with distance. Found names can carry age, sex, race/ethnicity and
popularity-trend estimates.

Estimates describe populations of name bearers, never a single person.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of namecrawler.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "namecrawler %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.namecrawler/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "reference SQLite database (default: names.sqlite)")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "reload the reference database when the file changes")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("store.watch", rootCmd.PersistentFlags().Lookup("watch"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setupLogging(verbose)
	registerDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".namecrawler"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match NAMECRAWLER_* (finder.min_score -> NAMECRAWLER_FINDER_MIN_SCORE)
	viper.SetEnvPrefix("NAMECRAWLER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: cannot read config file %s: %v\n", cfgFile, err)
	}
}

// setupLogging sends diagnostics to stderr; --verbose lowers the level to debug
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// registerDefaults makes every config key known to v so environment
// variables and config files can override any of them
func registerDefaults(v *viper.Viper, cfg *model.Config) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := value.(map[string]interface{}); ok {
			setDefaults(v, full, sub)
			continue
		}
		v.SetDefault(full, value)
	}
}

// loadConfig resolves defaults, config file, environment and bound flags,
// then validates the result
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = model.DefaultConfig().Store.Path
	}
	return cfg, nil
}

// openStore loads the reference snapshot and, when store.watch is set,
// keeps it fresh until ctx ends
func openStore(ctx context.Context, cfg *model.Config) (*store.Holder, error) {
	snap, err := store.Load(ctx, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	stats := snap.Stats()
	slog.Debug("reference data loaded", "path", cfg.Store.Path, "first_rows", stats.FirstRows, "surnames", stats.Surnames)

	holder := store.NewHolder(snap)
	if cfg.Store.Watch {
		watcher := store.NewWatcher(cfg.Store.Path, holder)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("reference watcher stopped", "path", cfg.Store.Path, "error", err)
			}
		}()
	}
	return holder, nil
}
