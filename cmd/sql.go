package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match database",
	Long: `Run an arbitrary SQL query against the match database and print results as a table.

Schema overview:
  matches(match_id, season, match_type, venue, team1, team2, toss_winner,
    toss_decision, winner, result, target_runs, target_overs)
  innings(match_id, innings, total_runs, total_wickets, balls_bowled,
    pp_runs, pp_wickets, mo_runs, mo_wickets, do_runs, do_wickets,
    extras_runs, dot_balls, boundaries)
  feature_runs(run_id, created_at, params JSON, schema JSON, row_count)
  feature_rows(run_id, match_id, row_index, vector JSON)

Note: winner is '' for no-result matches. Innings 1 is always the side that batted first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRawTable(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
