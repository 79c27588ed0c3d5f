package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
	"github.com/pable/go-cricket-metrics/internal/summary"
)

var venueCmd = &cobra.Command{
	Use:   "venue [venue]",
	Short: "Descriptive record of a venue, or list all venues",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVenue,
}

func runVenue(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		venues, err := db.Venues()
		if err != nil {
			return fmt.Errorf("list venues: %w", err)
		}
		fmt.Fprintln(os.Stdout, strings.Join(venues, "\n"))
		return nil
	}

	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	name := aliases.Venue(args[0])
	matches, err := db.ListMatches(storage.MatchFilter{Venue: name})
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(os.Stderr, "No matches stored at %q\n", name)
		return nil
	}
	report.PrintVenueTable(os.Stdout, summary.VenueSummary(matches, name))
	return nil
}
