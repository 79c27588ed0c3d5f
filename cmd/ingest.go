package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var (
	ingestMatches string
	ingestBalls   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest --matches <matches.csv> [--balls <deliveries.csv>]",
	Short: "Load match (and ball-by-ball) CSVs into the database",
	Long: `Read a matches CSV and optionally a ball-by-ball deliveries CSV, canonicalise
team and venue names, summarise each innings, and store the result.

Re-ingesting the same files is idempotent. Rows naming defunct franchises or
teams missing from the alias table are skipped and counted.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMatches, "matches", "", "path to matches CSV (required)")
	ingestCmd.Flags().StringVar(&ingestBalls, "balls", "", "path to ball-by-ball CSV")
	ingestCmd.MarkFlagRequired("matches")
}

func runIngest(cmd *cobra.Command, args []string) error {
	aliases, err := loadAliases()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Reading %s...\n", ingestMatches)
	records, stats, err := ingest.Load(ingestMatches, ingestBalls, aliases)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  %s\n", stats)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	added, replaced, err := storeMatches(db, records)
	if err != nil {
		return err
	}
	total, err := db.CountMatches()
	if err != nil {
		return fmt.Errorf("count matches: %w", err)
	}
	seasons, err := db.Seasons()
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Stored %d matches (%d new, %d replaced); %d in database", len(records), added, replaced, total)
	if len(seasons) > 0 {
		fmt.Fprintf(os.Stdout, " across seasons %d-%d", seasons[0], seasons[len(seasons)-1])
	}
	fmt.Fprintln(os.Stdout, ".")
	return nil
}

// storeMatches writes records and reports how many ids were new and how many
// replaced an existing row.
func storeMatches(db *storage.DB, records []model.MatchRecord) (added, replaced int, err error) {
	for _, r := range records {
		ok, err := db.MatchExists(r.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("check match %d: %w", r.ID, err)
		}
		if ok {
			replaced++
		} else {
			added++
		}
	}
	if err := db.InsertMatches(records); err != nil {
		return 0, 0, fmt.Errorf("store matches: %w", err)
	}
	return added, replaced, nil
}
