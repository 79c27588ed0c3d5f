package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/report"
)

var (
	predictMatchup features.Matchup
	predictType    string
	predictBatch   string
	predictJSON    bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Compute the feature vector for an upcoming matchup",
	Long: `Compute the pre-match feature vector for a fixture that has not been played,
from the stored meetings of the two teams. Short ids (csk, mi, ...) are accepted.

With --batch, read a JSON array of matchups and evaluate them concurrently;
results are printed as JSON lines in input order.`,
	Example: `  cricmetrics predict --team1 csk --team2 mi --venue wankhede --toss-winner mi --decision field
  cricmetrics predict --batch fixtures.json`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictMatchup.Team1, "team1", "", "first team")
	f.StringVar(&predictMatchup.Team2, "team2", "", "second team")
	f.StringVar(&predictMatchup.Venue, "venue", "", "venue")
	f.StringVar(&predictMatchup.TossWinner, "toss-winner", "", "team that won the toss")
	f.StringVar((*string)(&predictMatchup.TossDecision), "decision", "", "toss decision: bat or field")
	f.StringVar(&predictType, "type", "League", "match type: League, Eliminator 1, Eliminator 2, Final")
	f.StringVar(&predictBatch, "batch", "", "JSON file holding an array of matchups")
	f.BoolVar(&predictJSON, "json", false, "print the result as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	history, err := loadHistory(db)
	db.Close()
	if err != nil {
		return err
	}
	q := newQuerier(history, aliases)

	if predictBatch != "" {
		return predictFromFile(cmd, q, aliases)
	}

	m := predictMatchup
	m.MatchType = ingest.NormalizeMatchType(predictType)
	m = canonicalMatchup(aliases, m)

	v, err := q.ComputeFeatures(cmd.Context(), m)
	if err != nil {
		return err
	}
	if predictJSON {
		return json.NewEncoder(os.Stdout).Encode(predictResult(m, v))
	}
	fmt.Fprintf(os.Stdout, "\n%s v %s at %s (%s won the toss, chose to %s)\n\n",
		m.Team1, m.Team2, m.Venue, m.TossWinner, m.TossDecision)
	report.PrintFactors(os.Stdout, v.Explain())
	fmt.Fprintln(os.Stdout)
	report.PrintVector(os.Stdout, v)
	return nil
}

type predictOutput struct {
	Matchup   features.Matchup   `json:"matchup"`
	ColdStart bool               `json:"cold_start"`
	Features  map[string]float64 `json:"features,omitempty"`
	Factors   *features.Factors  `json:"factors,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func predictResult(m features.Matchup, v features.Vector) predictOutput {
	f := v.Explain()
	return predictOutput{Matchup: m, ColdStart: v.ColdStart, Features: v.Map(), Factors: &f}
}

func predictFromFile(cmd *cobra.Command, q *features.Querier, aliases *ingest.Aliases) error {
	data, err := os.ReadFile(predictBatch)
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	var matchups []features.Matchup
	if err := json.Unmarshal(data, &matchups); err != nil {
		return fmt.Errorf("parse batch: %w", err)
	}

	out := make([]predictOutput, len(matchups))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())
	for i, m := range matchups {
		g.Go(func() error {
			m = canonicalMatchup(aliases, m)
			v, err := q.ComputeFeatures(ctx, m)
			if err != nil {
				// per-query failures are reported in place
				out[i] = predictOutput{Matchup: m, Error: err.Error()}
				return ctx.Err()
			}
			out[i] = predictResult(m, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, o := range out {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

func canonicalMatchup(a *ingest.Aliases, m features.Matchup) features.Matchup {
	m.Team1 = teamName(a, m.Team1)
	m.Team2 = teamName(a, m.Team2)
	m.TossWinner = teamName(a, m.TossWinner)
	m.Venue = a.Venue(m.Venue)
	if d, err := model.ParseTossDecision(string(m.TossDecision)); err == nil {
		m.TossDecision = d
	}
	if m.MatchType == "" {
		m.MatchType = model.MatchLeague
	}
	return m
}
