package features

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-cricket-metrics/internal/registry"
	"github.com/pable/go-cricket-metrics/internal/ringbuf"
)

type teamForm struct {
	matches int
	wins    int
	streak  int
	recent  *ringbuf.Buffer[float64]
}

// formAgg tracks win ratio, signed streak and a bounded recent-form window per team.
type formAgg struct {
	policy NoResultPolicy
	teams  *table[teamForm]
}

func newFormAgg(p Params) *formAgg {
	return &formAgg{
		policy: p.NoResult,
		teams: newTable(func() *teamForm {
			return &teamForm{recent: ringbuf.New[float64](p.FormWindow)}
		}),
	}
}

func (a *formAgg) name() string { return "form" }

func (a *formAgg) snapshot(s *slots, out map[string]float64) {
	for _, side := range []struct {
		prefix string
		team   *teamForm
	}{{"team1_", a.teams.get(s.t1)}, {"team2_", a.teams.get(s.t2)}} {
		winRatio, recent, streak := 0.5, 0.5, 0.0
		if t := side.team; t != nil {
			winRatio = ratio(t.wins, t.matches, 0.5)
			if t.recent.Len() > 0 {
				recent = stat.Mean(t.recent.All(), nil)
			}
			streak = float64(t.streak)
		}
		out[side.prefix+"win_ratio"] = winRatio
		out[side.prefix+"recent_form"] = recent
		out[side.prefix+"streak"] = streak
	}
}

func (a *formAgg) absorb(s *slots, o outcome) {
	if o.noResult && a.policy == NoResultNeutral {
		return
	}
	for _, h := range []registry.Handle{s.t1, s.t2} {
		t := a.teams.at(h)
		t.matches++
		if o.won(h) {
			t.wins++
			t.streak = max(1, t.streak+1)
			t.recent.Push(1)
		} else {
			t.streak = min(-1, t.streak-1)
			t.recent.Push(0)
		}
	}
}
