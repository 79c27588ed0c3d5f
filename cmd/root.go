package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/config"
	"github.com/pable/go-cricket-metrics/internal/logger"
)

var (
	dbPath  string
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cricmetrics",
	Short: "T20 match feature engine",
	Long: `Store T20 match histories and replay them into leakage-free, per-match
feature vectors for a downstream win-probability classifier.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default from config, ~/.cricmetrics/matches.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(h2hCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(venueCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
