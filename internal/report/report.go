package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/storage"
	"github.com/pable/go-cricket-metrics/internal/summary"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func winnerStr(m model.MatchRecord) string {
	if m.Winner == "" {
		return "—"
	}
	return m.Winner
}

// PrintMatchSummary prints a one-line header for a stored match.
func PrintMatchSummary(w io.Writer, m model.MatchRecord) {
	fmt.Fprintf(w, "\nMatch %d  |  Season %d  |  %s  |  %s v %s  |  %s\n",
		m.ID, m.Season, m.MatchType, m.Team1, m.Team2, m.Venue)
	fmt.Fprintf(w, "Toss: %s chose to %s  |  Winner: %s (%s)\n\n",
		m.TossWinner, m.TossDecision, winnerStr(m), m.Result)
}

// PrintMatchTable prints one line per match.
func PrintMatchTable(w io.Writer, matches []model.MatchRecord) {
	table := newTable(w)
	table.Header("ID", "SEASON", "TYPE", "TEAM1", "TEAM2", "VENUE", "TOSS", "DEC", "WINNER", "TARGET")

	for _, m := range matches {
		target := "—"
		if m.TargetRuns != nil {
			target = strconv.FormatFloat(*m.TargetRuns, 'f', 0, 64)
		}
		table.Append(
			strconv.FormatInt(m.ID, 10),
			strconv.Itoa(m.Season),
			string(m.MatchType),
			m.Team1,
			m.Team2,
			m.Venue,
			m.TossWinner,
			string(m.TossDecision),
			winnerStr(m),
			target,
		)
	}
	table.Render()
}

// PrintInningsTable prints the ball-by-ball roll-up of both innings.
func PrintInningsTable(w io.Writer, m model.MatchRecord) {
	if m.Innings1 == nil && m.Innings2 == nil {
		fmt.Fprintln(w, "(no ball-by-ball data)")
		return
	}
	table := newTable(w)
	table.Header("INN", "BATTING", "R", "W", "BALLS", "PP", "MID", "DEATH", "EXTRAS", "DOT%", "4s+6s", "BND%", "RR")

	batting := []string{m.FirstBatting(), m.Chasing()}
	for i, s := range []*model.InningsSummary{m.Innings1, m.Innings2} {
		if s == nil {
			continue
		}
		table.Append(
			strconv.Itoa(i+1),
			batting[i],
			strconv.Itoa(s.TotalRuns),
			strconv.Itoa(s.TotalWickets),
			strconv.Itoa(s.BallsBowled),
			phaseStr(s.Powerplay),
			phaseStr(s.Middle),
			phaseStr(s.Death),
			strconv.Itoa(s.ExtrasRuns),
			fmt.Sprintf("%.0f%%", s.DotBallRate()*100),
			strconv.Itoa(s.Boundaries),
			fmt.Sprintf("%.0f%%", s.BoundaryRate()*100),
			fmt.Sprintf("%.2f", s.RunRate()),
		)
	}
	table.Render()
}

func phaseStr(p model.Phase) string {
	return fmt.Sprintf("%d/%d", p.Runs, p.Wickets)
}

// PrintVector prints a feature vector as NAME | VALUE in schema order.
func PrintVector(w io.Writer, v features.Vector) {
	if v.ColdStart {
		fmt.Fprintln(w, "cold start: no shared history, values are neutral defaults")
	}
	table := newTable(w)
	table.Header("FEATURE", "VALUE")
	for i, name := range features.Schema {
		val := 0.0
		if i < len(v.Values) {
			val = v.Values[i]
		}
		table.Append(name, strconv.FormatFloat(val, 'f', 4, 64))
	}
	table.Render()
}

// PrintFactors prints the four headline explanation factors.
func PrintFactors(w io.Writer, f features.Factors) {
	table := newTable(w)
	table.Header("FACTOR", "VALUE")
	table.Append("venue advantage", fmt.Sprintf("%+.3f", f.VenueAdvantage))
	table.Append("toss decision", fmt.Sprintf("%+.3f", f.TossDecision))
	table.Append("recent form", fmt.Sprintf("%+.3f", f.RecentForm))
	table.Append("head to head", fmt.Sprintf("%.3f", f.HeadToHead))
	table.Render()
}

// PrintH2H prints the all-time record between two teams, a per-venue split,
// and the most recent meetings.
func PrintH2H(w io.Writer, h summary.H2H) {
	decided := h.WinsA + h.WinsB
	fmt.Fprintf(w, "\n%s v %s: %d meetings, %d-%d, %d no result\n",
		h.TeamA, h.TeamB, h.Meetings, h.WinsA, h.WinsB, h.NoResults)
	if decided > 0 {
		lo, hi := wilsonCI(h.WinsA, decided)
		fmt.Fprintf(w, "%s win rate %.0f%% (95%% CI %.0f–%.0f%%), toss winner won %d\n\n",
			h.TeamA, float64(h.WinsA)/float64(decided)*100, lo*100, hi*100, h.TossConverted)
	}

	venues := make([]string, 0, len(h.ByVenue))
	for v := range h.ByVenue {
		venues = append(venues, v)
	}
	sort.Strings(venues)

	table := newTable(w)
	table.Header("VENUE", h.TeamA, h.TeamB)
	for _, v := range venues {
		s := h.ByVenue[v]
		table.Append(v, strconv.Itoa(s[0]), strconv.Itoa(s[1]))
	}
	table.Render()

	if len(h.Recent) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecent meetings:")
	recent := newTable(w)
	recent.Header("ID", "SEASON", "VENUE", "WINNER", "RESULT")
	for _, r := range h.Recent {
		winner := r.Winner
		if winner == "" {
			winner = "—"
		}
		recent.Append(strconv.FormatInt(r.MatchID, 10), strconv.Itoa(r.Season), r.Venue, winner, r.Margin)
	}
	recent.Render()
}

// PrintTrendTable prints a team's pre-match form snapshot for each match.
func PrintTrendTable(w io.Writer, points []summary.TrendPoint) {
	table := newTable(w)
	table.Header("ID", "SEASON", "OPPONENT", "VENUE", "RES", "WIN%", "FORM", "STREAK", "BAT_IDX", "BOWL_IDX", "CHASE")

	for _, p := range points {
		res := "L"
		switch {
		case p.NoResult:
			res = "NR"
		case p.Won:
			res = "W"
		}
		table.Append(
			strconv.FormatInt(p.MatchID, 10),
			strconv.Itoa(p.Season),
			p.Opponent,
			p.Venue,
			res,
			fmt.Sprintf("%.0f%%", p.WinRatio*100),
			fmt.Sprintf("%.2f", p.RecentForm),
			fmt.Sprintf("%+.0f", p.Streak),
			fmt.Sprintf("%.2f", p.BattingIndex),
			fmt.Sprintf("%.2f", p.BowlingIndex),
			fmt.Sprintf("%.2f", p.ChasingStrength),
		)
	}
	table.Render()
}

// PrintSeasonTable prints one line per season.
func PrintSeasonTable(w io.Writer, lines []summary.SeasonLine) {
	table := newTable(w)
	table.Header("SEASON", "M", "W", "NR", "WIN%", "95% CI")
	for _, l := range lines {
		ci := "—"
		if decided := l.Matches - l.NoResults; decided > 0 {
			lo, hi := wilsonCI(l.Wins, decided)
			ci = fmt.Sprintf("%.0f–%.0f%%", lo*100, hi*100)
		}
		table.Append(
			strconv.Itoa(l.Season),
			strconv.Itoa(l.Matches),
			strconv.Itoa(l.Wins),
			strconv.Itoa(l.NoResults),
			fmt.Sprintf("%.0f%%", l.WinPct()),
			ci,
		)
	}
	table.Render()
}

// PrintVenueTable prints the descriptive record of one venue.
func PrintVenueTable(w io.Writer, v summary.Venue) {
	table := newTable(w)
	table.Header("VENUE", "M", "DEFEND_W", "CHASE_W", "NR", "TOSS_W", "MED_1ST", "AVG_TARGET")
	med, avg := "—", "—"
	if v.MedianFirstInnings > 0 {
		med = fmt.Sprintf("%.0f", v.MedianFirstInnings)
	}
	if v.AvgTarget > 0 {
		avg = fmt.Sprintf("%.1f", v.AvgTarget)
	}
	table.Append(
		v.Name,
		strconv.Itoa(v.Matches),
		strconv.Itoa(v.DefendWins),
		strconv.Itoa(v.ChaseWins),
		strconv.Itoa(v.NoResults),
		strconv.Itoa(v.TossWinnerWins),
		med,
		avg,
	)
	table.Render()
}

// PrintRunsTable prints persisted feature runs.
func PrintRunsTable(w io.Writer, runs []storage.FeatureRun) {
	table := newTable(w)
	table.Header("RUN", "CREATED", "ROWS", "FORM_W", "BALL_W", "NO_RESULT")
	for _, r := range runs {
		table.Append(
			r.ShortID(),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Params.FormWindow),
			strconv.Itoa(r.Params.BallWindow),
			string(r.Params.NoResult),
		)
	}
	table.Render()
}

// PrintRawTable prints an arbitrary string grid with the given header.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
}

// wilsonCI computes the 95% Wilson score confidence interval for a proportion.
// Returns (lo, hi) as fractions in [0, 1].
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
