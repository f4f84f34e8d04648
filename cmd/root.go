package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/config"
	"github.com/abhisek/questa/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "questa",
	Short: "Question analysis and progressive hints",
	Long: "Questa classifies questions, scores their difficulty, solves linear equations " +
		"and generates progressive hints and worked solutions.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/questa/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUESTA_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(solutionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config (or the default path) and applies --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file and QUESTA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
