package summary

import (
	"testing"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/model"
)

const (
	csk      = "Chennai Super Kings"
	mi       = "Mumbai Indians"
	kkr      = "Kolkata Knight Riders"
	wankhede = "Wankhede Stadium"
	eden     = "Eden Gardens"
)

func match(id int64, season int, venue, t1, t2, toss string, d model.TossDecision, winner string) model.MatchRecord {
	result := "runs"
	if winner == "" {
		result = "no result"
	}
	return model.MatchRecord{
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
		Result: result,
	}
}

func history() []model.MatchRecord {
	return []model.MatchRecord{
		match(4, 2021, eden, mi, csk, csk, model.DecisionBat, csk),
		match(1, 2020, wankhede, csk, mi, csk, model.DecisionField, csk),
		match(2, 2020, wankhede, mi, kkr, mi, model.DecisionBat, mi),
		match(3, 2020, wankhede, mi, csk, mi, model.DecisionBat, ""),
		match(5, 2021, wankhede, csk, mi, mi, model.DecisionField, mi),
	}
}

func TestHeadToHead(t *testing.T) {
	h := HeadToHead(history(), csk, mi, 2)

	if h.Meetings != 4 {
		t.Fatalf("expected 4 meetings, got %d", h.Meetings)
	}
	if h.WinsA != 2 || h.WinsB != 1 || h.NoResults != 1 {
		t.Errorf("unexpected record %d-%d-%d", h.WinsA, h.WinsB, h.NoResults)
	}
	// matches 1, 4 and 5 were won by the toss winner
	if h.TossConverted != 3 {
		t.Errorf("expected 3 toss conversions, got %d", h.TossConverted)
	}
	if got := h.ByVenue[wankhede]; got != [2]int{1, 1} {
		t.Errorf("wankhede split: got %v", got)
	}
	if len(h.Recent) != 2 || h.Recent[0].MatchID != 5 || h.Recent[1].MatchID != 4 {
		t.Errorf("recent should be newest first, got %+v", h.Recent)
	}
}

func TestTeamTrendIsPreMatch(t *testing.T) {
	points, err := TeamTrend(t.Context(), features.DefaultParams(), history(), csk)
	if err != nil {
		t.Fatalf("TeamTrend: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 csk matches, got %d", len(points))
	}
	first := points[0]
	if first.MatchID != 1 || first.WinRatio != 0.5 {
		t.Errorf("first match should see cold defaults, got %+v", first)
	}
	// after winning match 1 and a no-result (a loss by default) in match 3
	second := points[2]
	if second.MatchID != 4 || second.WinRatio != 0.5 {
		t.Errorf("match 4 win ratio: got %+v", second)
	}
	if points[1].Opponent != mi || !points[0].Won {
		t.Errorf("orientation wrong: %+v", points[:2])
	}
}

func TestBySeason(t *testing.T) {
	points, err := TeamTrend(t.Context(), features.DefaultParams(), history(), mi)
	if err != nil {
		t.Fatalf("TeamTrend: %v", err)
	}
	lines := BySeason(points)
	if len(lines) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(lines))
	}
	l := lines[0]
	if l.Season != 2020 || l.Matches != 3 || l.Wins != 1 || l.NoResults != 1 {
		t.Errorf("2020 line: %+v", l)
	}
	if got := l.WinPct(); got != 50 {
		t.Errorf("win pct: got %v, want 50", got)
	}
}

func TestVenueSummary(t *testing.T) {
	recs := history()
	target := 170.0
	recs[1].TargetRuns = &target
	recs[1].Innings1 = &model.InningsSummary{TotalRuns: 169}
	recs[2].Innings1 = &model.InningsSummary{TotalRuns: 201}

	v := VenueSummary(recs, wankhede)
	if v.Matches != 4 || v.NoResults != 1 {
		t.Fatalf("unexpected counts %+v", v)
	}
	// match 1: csk fielded and won (chase); 2: mi batted and won (defend);
	// 5: mi fielded and won (chase)
	if v.ChaseWins != 2 || v.DefendWins != 1 {
		t.Errorf("chase/defend: got %d/%d", v.ChaseWins, v.DefendWins)
	}
	if v.MedianFirstInnings != 185 {
		t.Errorf("median first innings: got %v", v.MedianFirstInnings)
	}
	if v.AvgTarget != 170 {
		t.Errorf("avg target: got %v", v.AvgTarget)
	}
	if v.TossWinnerWins != 3 {
		t.Errorf("toss winner wins: got %d", v.TossWinnerWins)
	}
}
