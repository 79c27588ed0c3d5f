package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/summary"
)

var trendSeasons bool

var trendCmd = &cobra.Command{
	Use:   "trend <team>",
	Short: "Chronological pre-match form trend for a team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().BoolVar(&trendSeasons, "seasons", false, "summarise by season instead of per match")
}

func runTrend(cmd *cobra.Command, args []string) error {
	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	team := teamName(aliases, args[0])

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	history, err := loadHistory(db)
	if err != nil {
		return err
	}
	points, err := summary.TeamTrend(cmd.Context(), cfg.FeatureParams(), history, team)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if len(points) == 0 {
		fmt.Println("no matches found")
		return nil
	}

	if trendSeasons {
		report.PrintSeasonTable(os.Stdout, summary.BySeason(points))
		return nil
	}
	report.PrintTrendTable(os.Stdout, points)
	return nil
}
