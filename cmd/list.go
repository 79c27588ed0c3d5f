package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var listFilter storage.MatchFilter

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches in replay order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFilter.Team, "team", "", "only matches involving this team (short ids accepted)")
	listCmd.Flags().StringVar(&listFilter.Venue, "venue", "", "only matches at this venue")
	listCmd.Flags().IntVar(&listFilter.FromSeason, "from", 0, "first season to include")
	listCmd.Flags().IntVar(&listFilter.ToSeason, "to", 0, "first season to exclude")
	listCmd.Flags().IntVar(&listFilter.Limit, "limit", 0, "maximum rows (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	f := listFilter
	if f.Team != "" {
		f.Team = teamName(aliases, f.Team)
	}
	if f.Venue != "" {
		f.Venue = aliases.Venue(f.Venue)
	}

	matches, err := db.ListMatches(f)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'cricmetrics ingest --matches <file.csv>' to add some.")
		return nil
	}
	report.PrintMatchTable(os.Stdout, matches)
	return nil
}
