package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

var (
	buildOut    string
	buildFormat string
	buildNoSave bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Replay stored history into a leakage-free training table",
	Long: `Replay every stored match in (season, match_id) order and emit one feature
row per match, computed only from matches strictly earlier in that order.

The table is persisted as a feature run (see 'cricmetrics runs') unless
--no-save is given, and written to --out as CSV or JSON lines.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "write rows to this file ('-' for stdout)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "csv", "output format: csv or jsonl")
	buildCmd.Flags().BoolVar(&buildNoSave, "no-save", false, "do not persist the run in the database")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildFormat != "csv" && buildFormat != "jsonl" {
		return fmt.Errorf("unknown format %q (want csv or jsonl)", buildFormat)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	history, err := loadHistory(db)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(os.Stderr, "No matches stored yet.")
		return nil
	}

	p := cfg.FeatureParams()
	rows, err := features.BuildTrainingTable(cmd.Context(), p,
		registry.New(registry.KindTeam), registry.New(registry.KindVenue), history)
	if err != nil {
		return fmt.Errorf("build training table: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Built %d rows from %d matches.\n", len(rows), len(history))

	if !buildNoSave {
		run, err := db.CreateFeatureRun(p, rows)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved feature run %s\n", run.ShortID())
	}

	if buildOut == "" {
		return nil
	}
	return writeOutput(buildOut, func(w io.Writer) error {
		if buildFormat == "jsonl" {
			return writeJSONL(w, rows)
		}
		return writeCSV(w, rows)
	})
}

// writeCSV writes a header of match_id followed by the schema, then one
// record per row.
func writeCSV(w io.Writer, rows []features.Vector) error {
	cw := csv.NewWriter(w)
	header := append([]string{"match_id"}, features.Schema...)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, v := range rows {
		rec[0] = strconv.FormatInt(v.MatchID, 10)
		for i, x := range v.Values {
			rec[i+1] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONL(w io.Writer, rows []features.Vector) error {
	enc := json.NewEncoder(w)
	for _, v := range rows {
		if err := enc.Encode(struct {
			MatchID  int64              `json:"match_id"`
			Features map[string]float64 `json:"features"`
		}{v.MatchID, v.Map()}); err != nil {
			return err
		}
	}
	return nil
}
