package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/report"
)

var (
	showFeatures bool
	showRun      string
)

var showCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show a stored match, optionally with its pre-match feature row",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showFeatures, "features", false, "replay history and print the match's feature row")
	showCmd.Flags().StringVar(&showRun, "run", "", "print the row stored in this feature run (id prefix) instead of replaying")
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.GetMatch(id)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "No match found with id %d\n", id)
		return nil
	}

	report.PrintMatchSummary(os.Stdout, *m)
	report.PrintInningsTable(os.Stdout, *m)

	var v *features.Vector
	switch {
	case showRun != "":
		run, err := db.GetFeatureRunByPrefix(showRun)
		if err != nil {
			return fmt.Errorf("query run: %w", err)
		}
		if run == nil {
			fmt.Fprintf(os.Stderr, "No feature run found with prefix %q\n", showRun)
			return nil
		}
		if v, err = db.GetFeatureRow(run.ID, id); err != nil {
			return fmt.Errorf("query feature row: %w", err)
		}
	case showFeatures:
		history, err := loadHistory(db)
		if err != nil {
			return err
		}
		if v, err = featuresFor(cmd.Context(), history, id); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	default:
		return nil
	}

	if v == nil {
		fmt.Fprintf(os.Stderr, "No feature row for match %d\n", id)
		return nil
	}
	fmt.Fprintln(os.Stdout)
	report.PrintVector(os.Stdout, *v)
	return nil
}
