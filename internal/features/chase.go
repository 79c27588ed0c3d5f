package features

import "github.com/pable/go-cricket-metrics/internal/registry"

type roleRecord struct {
	chase  winCount
	defend winCount
}

type chaseRecord struct {
	normal   roleRecord
	pressure roleRecord
}

// chaseAgg measures how often a team wins when chasing versus defending,
// overall and in knockout matches.
type chaseAgg struct {
	teams *table[chaseRecord]
}

func newChaseAgg() *chaseAgg {
	return &chaseAgg{teams: newTable(func() *chaseRecord { return &chaseRecord{} })}
}

func (a *chaseAgg) name() string { return "chase" }

func strengths(r *roleRecord) (chase, defend float64) {
	if r == nil {
		return 0.5, 0.5
	}
	return ratio(r.chase.wins, r.chase.matches, 0.5), ratio(r.defend.wins, r.defend.matches, 0.5)
}

func (a *chaseAgg) snapshot(s *slots, out map[string]float64) {
	for _, side := range []struct {
		prefix string
		h      registry.Handle
	}{{"team1_", s.t1}, {"team2_", s.t2}} {
		var normal, pressure *roleRecord
		if t := a.teams.get(side.h); t != nil {
			normal, pressure = &t.normal, &t.pressure
		}
		chase, defend := strengths(normal)
		out[side.prefix+"chasing_strength"] = chase
		out[side.prefix+"defending_strength"] = defend
		out[side.prefix+"pref_score"] = chase - defend

		chase, defend = strengths(pressure)
		out[side.prefix+"chasing_strength_pressure"] = chase
		out[side.prefix+"defending_strength_pressure"] = defend
		out[side.prefix+"pref_score_pressure"] = chase - defend
	}
}

func (a *chaseAgg) absorb(s *slots, o outcome) {
	chaser, defender := a.teams.at(s.chase), a.teams.at(s.first)
	chaser.normal.chase.add(o.won(s.chase))
	defender.normal.defend.add(o.won(s.first))
	if s.pressure {
		chaser.pressure.chase.add(o.won(s.chase))
		defender.pressure.defend.add(o.won(s.first))
	}
}
