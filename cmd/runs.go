package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
)

var (
	runsDelete string
	runsExport string
	runsOut    string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, export or delete persisted feature runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDelete, "delete", "", "delete the run with this id prefix")
	runsCmd.Flags().StringVar(&runsExport, "export", "", "export the run with this id prefix as CSV")
	runsCmd.Flags().StringVarP(&runsOut, "out", "o", "-", "export destination ('-' for stdout)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, prefix := range []string{runsDelete, runsExport} {
		if prefix == "" {
			continue
		}
		run, err := db.GetFeatureRunByPrefix(prefix)
		if err != nil {
			return fmt.Errorf("query run: %w", err)
		}
		if run == nil {
			fmt.Fprintf(os.Stderr, "No feature run found with prefix %q\n", prefix)
			return nil
		}

		if prefix == runsExport {
			rows, err := db.FeatureRows(run.ID)
			if err != nil {
				return fmt.Errorf("load rows: %w", err)
			}
			err = writeOutput(runsOut, func(w io.Writer) error { return writeCSV(w, rows) })
			if err != nil || runsOut == "-" {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d rows from run %s to %s\n", len(rows), run.ShortID(), runsOut)
			return nil
		}

		if _, err := db.DeleteFeatureRun(run.ID); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Deleted run %s\n", run.ShortID())
		return nil
	}

	runs, err := db.ListFeatureRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No feature runs stored yet. Run 'cricmetrics build' to create one.")
		return nil
	}
	report.PrintRunsTable(os.Stdout, runs)
	return nil
}
