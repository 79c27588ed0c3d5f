package features

import "github.com/pable/go-cricket-metrics/internal/registry"

type venueRecord struct {
	matches   int
	targetSum float64
	chaseW    int
	chaseM    int
	defendW   int
	defendM   int
}

type winCount struct{ matches, wins int }

func (c *winCount) add(won bool) {
	c.matches++
	if won {
		c.wins++
	}
}

// venueAgg tracks per-(venue, team) win rates and venue-level scoring and
// chase/defend outcomes.
type venueAgg struct {
	venues *table[venueRecord]
	teams  map[pairKey]*winCount // (venue, team)
}

func newVenueAgg() *venueAgg {
	return &venueAgg{
		venues: newTable(func() *venueRecord { return &venueRecord{} }),
		teams:  make(map[pairKey]*winCount),
	}
}

func (a *venueAgg) name() string { return "venue" }

func (a *venueAgg) teamRate(venue, team registry.Handle) float64 {
	if c, ok := a.teams[pairKey{venue, team}]; ok {
		return ratio(c.wins, c.matches, 0.5)
	}
	return 0.5
}

func (a *venueAgg) snapshot(s *slots, out map[string]float64) {
	t1 := a.teamRate(s.venue, s.t1)
	t2 := a.teamRate(s.venue, s.t2)
	out["venue_team1_winrate"] = t1
	out["venue_team2_winrate"] = t2
	out["venue_winrate_diff"] = t1 - t2

	avgTarget, chase, defend := 0.0, 0.5, 0.5
	if v := a.venues.get(s.venue); v != nil {
		if v.matches > 0 {
			avgTarget = v.targetSum / float64(v.matches)
		}
		chase = ratio(v.chaseW, v.chaseM, 0.5)
		defend = ratio(v.defendW, v.defendM, 0.5)
	}
	out["venue_avg_target_run"] = avgTarget
	out["venue_chasing_win_rate"] = chase
	out["venue_defending_win_rate"] = defend
	out["venue_bat_first_winrate"] = defend
	out["venue_chase_winrate"] = chase
}

func (a *venueAgg) absorb(s *slots, o outcome) {
	for _, h := range []registry.Handle{s.t1, s.t2} {
		k := pairKey{s.venue, h}
		c, ok := a.teams[k]
		if !ok {
			c = &winCount{}
			a.teams[k] = c
		}
		c.add(o.won(h))
	}

	v := a.venues.at(s.venue)
	v.matches++
	if o.rec != nil && o.rec.TargetRuns != nil {
		v.targetSum += *o.rec.TargetRuns
	}
	v.chaseM++
	v.defendM++
	switch {
	case o.won(s.chase):
		v.chaseW++
	case o.won(s.first):
		v.defendW++
	}
}
