package ingest

import "github.com/pable/go-cricket-metrics/internal/model"

// MatchInnings holds the two regular innings of one match.
type MatchInnings struct {
	First  *model.InningsSummary
	Second *model.InningsSummary
}

// SummarizeInnings rolls ball events up into per-innings summaries keyed by
// match id. Every delivery counts as a ball, extras included. Super overs
// and innings beyond the second are ignored.
func SummarizeInnings(balls []model.BallEvent) map[int64]*MatchInnings {
	out := make(map[int64]*MatchInnings)
	for _, b := range balls {
		if b.IsSuperOver || b.Innings < 1 || b.Innings > 2 {
			continue
		}
		mi, ok := out[b.MatchID]
		if !ok {
			mi = &MatchInnings{}
			out[b.MatchID] = mi
		}
		slot := &mi.First
		if b.Innings == 2 {
			slot = &mi.Second
		}
		if *slot == nil {
			*slot = &model.InningsSummary{}
		}
		addBall(*slot, b)
	}
	return out
}

func addBall(s *model.InningsSummary, b model.BallEvent) {
	wicket := 0
	if b.IsWicket {
		wicket = 1
	}
	s.TotalRuns += b.TotalRuns
	s.TotalWickets += wicket
	s.BallsBowled++
	s.ExtrasRuns += b.Extras
	if b.TotalRuns == 0 {
		s.DotBalls++
	}
	if b.BatterRuns == 4 || b.BatterRuns == 6 {
		s.Boundaries++
	}

	phase := &s.Death
	switch {
	case b.OverNumber <= 6:
		phase = &s.Powerplay
	case b.OverNumber <= 15:
		phase = &s.Middle
	}
	phase.Runs += b.TotalRuns
	phase.Wickets += wicket
}

// Attach sets Innings1/Innings2 on every record with a summary and returns
// how many records were matched.
func Attach(records []model.MatchRecord, innings map[int64]*MatchInnings) int {
	n := 0
	for i := range records {
		mi, ok := innings[records[i].ID]
		if !ok {
			continue
		}
		records[i].Innings1 = mi.First
		records[i].Innings2 = mi.Second
		n++
	}
	return n
}
