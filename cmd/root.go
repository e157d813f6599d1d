package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillprep/assess/internal/config"
	"github.com/skillprep/assess/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assessment orchestration engine",
	Long:  "Assess — timed multi-section skill assessment engine: resilient question acquisition, progress tracking, and scoring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides ASSESS_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ASSESS_DB env var)")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads configuration with the --config and --db flags
// taking priority over environment variables.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then ASSESS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
