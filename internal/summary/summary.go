// Package summary derives descriptive team, head-to-head and venue
// histories from stored match records for the CLI reports.
package summary

import (
	"context"
	"sort"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

// Result is one side's view of a single finished match.
type Result struct {
	MatchID int64
	Season  int
	Venue   string
	Winner  string // "" for no result
	Margin  string
}

// H2H is the all-time record between two teams.
type H2H struct {
	TeamA, TeamB string
	Meetings     int
	WinsA, WinsB int
	NoResults    int

	// TossConverted counts meetings where the toss winner also won.
	TossConverted int
	ByVenue       map[string][2]int // venue -> {winsA, winsB}
	Recent        []Result          // newest first
}

// HeadToHead summarises every meeting of a and b. At most recent entries are
// kept in Recent.
func HeadToHead(records []model.MatchRecord, a, b string, recent int) H2H {
	h := H2H{TeamA: a, TeamB: b, ByVenue: make(map[string][2]int)}
	ordered := sorted(records)
	for _, m := range ordered {
		if !((m.Team1 == a && m.Team2 == b) || (m.Team1 == b && m.Team2 == a)) {
			continue
		}
		h.Meetings++
		v := h.ByVenue[m.Venue]
		switch m.Winner {
		case a:
			h.WinsA++
			v[0]++
		case b:
			h.WinsB++
			v[1]++
		default:
			h.NoResults++
		}
		h.ByVenue[m.Venue] = v
		if m.Winner != "" && m.Winner == m.TossWinner {
			h.TossConverted++
		}
	}
	for i := len(ordered) - 1; i >= 0 && len(h.Recent) < recent; i-- {
		m := ordered[i]
		if (m.Team1 == a && m.Team2 == b) || (m.Team1 == b && m.Team2 == a) {
			h.Recent = append(h.Recent, Result{MatchID: m.ID, Season: m.Season, Venue: m.Venue, Winner: m.Winner, Margin: m.Result})
		}
	}
	return h
}

// TrendPoint is a team's pre-match feature snapshot for one of its matches,
// oriented so every value describes that team regardless of team1/team2.
type TrendPoint struct {
	MatchID         int64
	Season          int
	Opponent        string
	Venue           string
	Won             bool
	NoResult        bool
	WinRatio        float64
	RecentForm      float64
	Streak          float64
	BattingIndex    float64
	BowlingIndex    float64
	ChasingStrength float64
}

// TeamTrend replays the full history and records, for every match team
// played, the features the engine held for it before the first ball.
func TeamTrend(ctx context.Context, p features.Params, records []model.MatchRecord, team string) ([]TrendPoint, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := features.New(p, registry.New(registry.KindTeam), registry.New(registry.KindVenue))

	var out []TrendPoint
	err := e.Replay(ctx, records, func(m model.MatchRecord, v features.Vector) error {
		var side string
		switch team {
		case m.Team1:
			side = "team1_"
		case m.Team2:
			side = "team2_"
		default:
			return nil
		}
		get := func(name string) float64 {
			x, _ := v.Get(side + name)
			return x
		}
		out = append(out, TrendPoint{
			MatchID:         m.ID,
			Season:          m.Season,
			Opponent:        m.Opponent(team),
			Venue:           m.Venue,
			Won:             m.Won(team),
			NoResult:        m.Winner == "",
			WinRatio:        get("win_ratio"),
			RecentForm:      get("recent_form"),
			Streak:          get("streak"),
			BattingIndex:    get("batting_index"),
			BowlingIndex:    get("bowling_index"),
			ChasingStrength: get("chasing_strength"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SeasonLine aggregates one team's results for a single season.
type SeasonLine struct {
	Season    int
	Matches   int
	Wins      int
	NoResults int
}

// WinPct is wins over decided matches, in percent.
func (s SeasonLine) WinPct() float64 {
	decided := s.Matches - s.NoResults
	if decided == 0 {
		return 0
	}
	return float64(s.Wins) / float64(decided) * 100
}

// BySeason folds trend points into per-season lines, ascending.
func BySeason(points []TrendPoint) []SeasonLine {
	idx := make(map[int]int)
	var out []SeasonLine
	for _, p := range points {
		i, ok := idx[p.Season]
		if !ok {
			i = len(out)
			idx[p.Season] = i
			out = append(out, SeasonLine{Season: p.Season})
		}
		out[i].Matches++
		if p.Won {
			out[i].Wins++
		}
		if p.NoResult {
			out[i].NoResults++
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Season < out[b].Season })
	return out
}

// Venue is the descriptive record of one ground.
type Venue struct {
	Name               string
	Matches            int
	DefendWins         int
	ChaseWins          int
	NoResults          int
	TossWinnerWins     int
	MedianFirstInnings float64 // 0 when no innings data
	AvgTarget          float64 // over matches with a known target
}

// VenueSummary describes every stored match at venue.
func VenueSummary(records []model.MatchRecord, venue string) Venue {
	v := Venue{Name: venue}
	var (
		totals     []float64
		targetSum  float64
		targetSeen int
	)
	for _, m := range records {
		if m.Venue != venue {
			continue
		}
		v.Matches++
		switch m.Winner {
		case "":
			v.NoResults++
		case m.FirstBatting():
			v.DefendWins++
		default:
			v.ChaseWins++
		}
		if m.Winner != "" && m.Winner == m.TossWinner {
			v.TossWinnerWins++
		}
		if m.Innings1 != nil {
			totals = append(totals, float64(m.Innings1.TotalRuns))
		}
		if m.TargetRuns != nil {
			targetSum += *m.TargetRuns
			targetSeen++
		}
	}
	sort.Float64s(totals)
	v.MedianFirstInnings = median(totals)
	if targetSeen > 0 {
		v.AvgTarget = targetSum / float64(targetSeen)
	}
	return v
}

func sorted(records []model.MatchRecord) []model.MatchRecord {
	out := make([]model.MatchRecord, len(records))
	copy(out, records)
	features.SortRecords(out)
	return out
}

// median returns the median of a pre-sorted (ascending) slice of float64.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
