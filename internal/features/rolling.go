package features

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
	"github.com/pable/go-cricket-metrics/internal/ringbuf"
)

// Batting metrics kept per innings, in column order.
var battingMetrics = []string{
	"pp_runs", "mo_runs", "do_runs",
	"pp_wickets", "mo_wickets", "do_wickets",
	"run_rate", "boundaries", "dot_rate",
}

// Bowling metrics derived from the opposing side's innings.
var bowlingMetrics = []string{"economy_rate", "wicket_rate", "dot_rate"}

const (
	batRunRate    = 6
	batBoundaries = 7
	batDotRate    = 8

	bowlEconomy = 0
	bowlWickets = 1
	bowlDotRate = 2
)

func battingSample(in *model.InningsSummary) []float64 {
	return []float64{
		float64(in.Powerplay.Runs), float64(in.Middle.Runs), float64(in.Death.Runs),
		float64(in.Powerplay.Wickets), float64(in.Middle.Wickets), float64(in.Death.Wickets),
		in.RunRate(), float64(in.Boundaries), in.DotBallRate(),
	}
}

func bowlingSample(in *model.InningsSummary) []float64 {
	return []float64{in.EconomyRate(), in.WicketRate(), in.DotBallRate()}
}

type ballHistory struct {
	batting *ringbuf.Buffer[[]float64]
	bowling *ringbuf.Buffer[[]float64]
}

// windowMeans averages each metric column over the window; all zero when empty.
func windowMeans(b *ringbuf.Buffer[[]float64], width int) []float64 {
	means := make([]float64, width)
	if b == nil || b.Len() == 0 {
		return means
	}
	cols := make([][]float64, width)
	for i := range cols {
		cols[i] = make([]float64, 0, b.Len())
	}
	b.Each(func(r []float64) {
		for i := range cols {
			cols[i] = append(cols[i], r[i])
		}
	})
	for i, col := range cols {
		means[i] = stat.Mean(col, nil)
	}
	return means
}

// rollingAgg keeps the last BallWindow innings per team, batting and bowling.
type rollingAgg struct {
	teams *table[ballHistory]
}

func newRollingAgg(p Params) *rollingAgg {
	return &rollingAgg{
		teams: newTable(func() *ballHistory {
			return &ballHistory{
				batting: ringbuf.New[[]float64](p.BallWindow),
				bowling: ringbuf.New[[]float64](p.BallWindow),
			}
		}),
	}
}

func (a *rollingAgg) name() string { return "rolling" }

func (a *rollingAgg) means(h registry.Handle) (bat, bowl []float64) {
	var hist ballHistory
	if t := a.teams.get(h); t != nil {
		hist = *t
	}
	return windowMeans(hist.batting, len(battingMetrics)), windowMeans(hist.bowling, len(bowlingMetrics))
}

func battingIndex(bat []float64) float64 {
	return 0.5*bat[batRunRate] + 0.3*bat[batBoundaries] - 0.2*bat[batDotRate]
}

func bowlingIndex(bowl []float64) float64 {
	return -0.5*bowl[bowlEconomy] + 0.3*bowl[bowlWickets] + 0.2*bowl[bowlDotRate]
}

func (a *rollingAgg) snapshot(s *slots, out map[string]float64) {
	bat1, bowl1 := a.means(s.t1)
	bat2, bowl2 := a.means(s.t2)

	for i, m := range battingMetrics {
		out["team_diff_batting_avg_"+m] = bat1[i] - bat2[i]
	}
	for i, m := range bowlingMetrics {
		out["team_diff_bowling_avg_"+m] = bowl1[i] - bowl2[i]
	}
	out["team1_batting_index"] = battingIndex(bat1)
	out["team2_batting_index"] = battingIndex(bat2)
	out["team1_bowling_index"] = bowlingIndex(bowl1)
	out["team2_bowling_index"] = bowlingIndex(bowl2)
}

func (a *rollingAgg) absorb(s *slots, o outcome) {
	if o.rec == nil {
		return
	}
	// Innings 1 is batted by the side that batted first and bowled by the
	// chasing side; innings 2 the other way round.
	for _, inn := range []struct {
		summary   *model.InningsSummary
		bat, bowl registry.Handle
	}{
		{o.rec.Innings1, s.first, s.chase},
		{o.rec.Innings2, s.chase, s.first},
	} {
		if inn.summary == nil {
			continue
		}
		a.teams.at(inn.bat).batting.Push(battingSample(inn.summary))
		a.teams.at(inn.bowl).bowling.Push(bowlingSample(inn.summary))
	}
}
