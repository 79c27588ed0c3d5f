package features

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

const (
	csk = "Chennai Super Kings"
	mi  = "Mumbai Indians"
	kkr = "Kolkata Knight Riders"
	rcb = "Royal Challengers Bengaluru"
	rr  = "Rajasthan Royals"

	wankhede = "Wankhede Stadium"
	eden     = "Eden Gardens"
	chepauk  = "MA Chidambaram Stadium"
)

func newEngine() *Engine {
	return New(DefaultParams(), registry.New(registry.KindTeam), registry.New(registry.KindVenue))
}

func match(id int64, season int, venue, t1, t2, toss string, d model.TossDecision, winner string) model.MatchRecord {
	m := model.MatchRecord{
		ID:     id,
		Season: season,
		Fixture: model.Fixture{
			Venue:        venue,
			Team1:        t1,
			Team2:        t2,
			TossWinner:   toss,
			TossDecision: d,
			MatchType:    model.MatchLeague,
		},
		Winner: winner,
		Result: "runs",
	}
	if winner == "" {
		m.Result = "no result"
	}
	return m
}

func fixture(venue, t1, t2, toss string, d model.TossDecision) model.Fixture {
	return model.Fixture{Venue: venue, Team1: t1, Team2: t2, TossWinner: toss, TossDecision: d, MatchType: model.MatchLeague}
}

func mustStep(t *testing.T, e *Engine, recs ...model.MatchRecord) {
	t.Helper()
	for _, r := range recs {
		if _, err := e.Step(r); err != nil {
			t.Fatalf("Step(%d): %v", r.ID, err)
		}
	}
}

func mustSnapshot(t *testing.T, e *Engine, f model.Fixture) Vector {
	t.Helper()
	v, err := e.Snapshot(f)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return v
}

// partials returns the raw aggregator output for f, including the per-team
// columns the schema projection drops.
func partials(e *Engine, f model.Fixture) map[string]float64 {
	out := make(map[string]float64)
	s := e.resolve(f, lookup)
	for _, a := range e.aggs {
		a.snapshot(s, out)
	}
	return out
}

func feature(t *testing.T, v Vector, name string) float64 {
	t.Helper()
	x, ok := v.Get(name)
	if !ok {
		t.Fatalf("feature %q not in schema", name)
	}
	return x
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func isDiff(name string) bool {
	return strings.HasSuffix(name, "_diff") || strings.HasPrefix(name, "team_diff_")
}

func randomInnings(rng *rand.Rand) *model.InningsSummary {
	pp := model.Phase{Runs: 30 + rng.Intn(40), Wickets: rng.Intn(3)}
	mo := model.Phase{Runs: 50 + rng.Intn(50), Wickets: rng.Intn(4)}
	do := model.Phase{Runs: 30 + rng.Intn(50), Wickets: rng.Intn(4)}
	balls := 90 + rng.Intn(36)
	return &model.InningsSummary{
		TotalRuns:    pp.Runs + mo.Runs + do.Runs,
		TotalWickets: pp.Wickets + mo.Wickets + do.Wickets,
		BallsBowled:  balls,
		Powerplay:    pp,
		Middle:       mo,
		Death:        do,
		ExtrasRuns:   rng.Intn(15),
		DotBalls:     20 + rng.Intn(30),
		Boundaries:   10 + rng.Intn(20),
	}
}

// randomStream builds n valid records in replay order with a fixed seed.
func randomStream(n int, seed int64) []model.MatchRecord {
	rng := rand.New(rand.NewSource(seed))
	teams := []string{csk, mi, kkr, rcb, rr}
	venues := []string{wankhede, eden, chepauk}
	types := []model.MatchType{model.MatchLeague, model.MatchLeague, model.MatchLeague, model.MatchFinal, model.MatchEliminator1, model.MatchEliminator2}

	out := make([]model.MatchRecord, 0, n)
	for i := 0; i < n; i++ {
		a := rng.Intn(len(teams))
		b := (a + 1 + rng.Intn(len(teams)-1)) % len(teams)
		t1, t2 := teams[a], teams[b]
		toss := t1
		if rng.Intn(2) == 1 {
			toss = t2
		}
		d := model.DecisionBat
		if rng.Intn(2) == 1 {
			d = model.DecisionField
		}
		winner := t1
		switch r := rng.Intn(10); {
		case r == 0:
			winner = ""
		case r > 4:
			winner = t2
		}
		m := match(int64(335982+i), 2008+i/15, venues[rng.Intn(len(venues))], t1, t2, toss, d, winner)
		m.MatchType = types[rng.Intn(len(types))]
		m.Innings1 = randomInnings(rng)
		m.Innings2 = randomInnings(rng)
		if rng.Intn(8) != 0 {
			target := float64(m.Innings1.TotalRuns + 1)
			m.TargetRuns = &target
		}
		out = append(out, m)
	}
	return out
}

func build(t *testing.T, p Params, records []model.MatchRecord) []Vector {
	t.Helper()
	rows, err := BuildTrainingTable(t.Context(), p, registry.New(registry.KindTeam), registry.New(registry.KindVenue), records)
	if err != nil {
		t.Fatalf("BuildTrainingTable: %v", err)
	}
	return rows
}
