package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/summary"
)

var h2hRecent int

var h2hCmd = &cobra.Command{
	Use:   "h2h <team> <team>",
	Short: "All-time head-to-head record between two teams",
	Args:  cobra.ExactArgs(2),
	RunE:  runH2H,
}

func init() {
	h2hCmd.Flags().IntVar(&h2hRecent, "recent", 5, "number of recent meetings to list")
}

func runH2H(cmd *cobra.Command, args []string) error {
	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	a, b := teamName(aliases, args[0]), teamName(aliases, args[1])

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.MatchesBetween(a, b)
	if err != nil {
		return fmt.Errorf("query matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(os.Stdout, "%s and %s have not met in the stored history.\n", a, b)
		return nil
	}
	report.PrintH2H(os.Stdout, summary.HeadToHead(matches, a, b, h2hRecent))
	return nil
}
