package model

import (
	"fmt"
	"strings"
)

// MatchType is the canonical stage of a match within a season.
type MatchType string

const (
	MatchLeague      MatchType = "League"
	MatchEliminator1 MatchType = "Eliminator 1"
	MatchEliminator2 MatchType = "Eliminator 2"
	MatchFinal       MatchType = "Final"
)

// Valid reports whether t is one of the four canonical categories.
func (t MatchType) Valid() bool {
	switch t {
	case MatchLeague, MatchEliminator1, MatchEliminator2, MatchFinal:
		return true
	}
	return false
}

// IsPressure reports whether t is a knockout-stage match.
func (t MatchType) IsPressure() bool {
	return t == MatchFinal || t == MatchEliminator1 || t == MatchEliminator2
}

// TossDecision is what the toss winner elected to do.
type TossDecision string

const (
	DecisionBat   TossDecision = "bat"
	DecisionField TossDecision = "field"
)

// Valid reports whether d is "bat" or "field".
func (d TossDecision) Valid() bool {
	return d == DecisionBat || d == DecisionField
}

// ParseTossDecision lower-cases and validates a raw decision string.
func ParseTossDecision(s string) (TossDecision, error) {
	d := TossDecision(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid toss decision %q", s)
	}
	return d, nil
}

// Outcome is the result category of a completed match.
type Outcome int

const (
	OutcomeNoResult Outcome = iota
	OutcomeTeam1Won
	OutcomeTeam2Won
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTeam1Won:
		return "team1"
	case OutcomeTeam2Won:
		return "team2"
	default:
		return "no result"
	}
}

// ---- Pre-match view ----

// Fixture is everything known about a match before a ball is bowled.
// Snapshots only ever see a Fixture, never the outcome.
type Fixture struct {
	Venue        string
	Team1, Team2 string
	TossWinner   string
	TossDecision TossDecision
	MatchType    MatchType
}

// TossLoser returns the team that did not win the toss.
func (f Fixture) TossLoser() string {
	if f.TossWinner == f.Team1 {
		return f.Team2
	}
	return f.Team1
}

// FirstBatting returns the team that batted first. If the toss winner chose
// to bat it defends a total; if it chose to field it chases.
func (f Fixture) FirstBatting() string {
	if f.TossDecision == DecisionBat {
		return f.TossWinner
	}
	return f.TossLoser()
}

// Chasing returns the team that batted second.
func (f Fixture) Chasing() string {
	if f.FirstBatting() == f.Team1 {
		return f.Team2
	}
	return f.Team1
}

// Opponent returns the other side of the fixture, or "" if team is not playing.
func (f Fixture) Opponent(team string) string {
	switch team {
	case f.Team1:
		return f.Team2
	case f.Team2:
		return f.Team1
	}
	return ""
}

// ---- Completed match ----

// MatchRecord is one immutable, already-canonicalised match with its outcome.
type MatchRecord struct {
	ID     int64
	Season int
	Fixture
	Winner string // "" when the match produced no result
	Result string // runs, wickets, tie, no result

	TargetRuns  *float64 // first-innings total + 1; nil when unknown
	TargetOvers *float64

	Innings1 *InningsSummary // nil when no ball-by-ball data exists
	Innings2 *InningsSummary
}

// Outcome classifies the match result from team1's perspective.
func (m MatchRecord) Outcome() Outcome {
	switch m.Winner {
	case m.Team1:
		return OutcomeTeam1Won
	case m.Team2:
		return OutcomeTeam2Won
	}
	return OutcomeNoResult
}

// Won reports whether team won the match.
func (m MatchRecord) Won(team string) bool {
	return m.Winner != "" && m.Winner == team
}

// IsNoResult reports whether the record is marked as abandoned / no result.
func (m MatchRecord) IsNoResult() bool {
	return strings.EqualFold(strings.TrimSpace(m.Result), "no result")
}

// ---- Innings ----

// Phase holds runs and wickets for one block of overs.
type Phase struct {
	Runs    int
	Wickets int
}

// InningsSummary is the ball-by-ball roll-up of one batting innings.
// Powerplay covers overs 1-6, middle overs 7-15, death overs 16-20.
type InningsSummary struct {
	TotalRuns    int
	TotalWickets int
	BallsBowled  int
	Powerplay    Phase
	Middle       Phase
	Death        Phase
	ExtrasRuns   int
	DotBalls     int
	Boundaries   int
}

func (s InningsSummary) perBall(v int) float64 {
	if s.BallsBowled == 0 {
		return 0
	}
	return float64(v) / float64(s.BallsBowled)
}

// RunRate is runs per six balls.
func (s InningsSummary) RunRate() float64 { return s.perBall(s.TotalRuns) * 6 }

// EconomyRate is the bowling side's runs conceded per six balls.
func (s InningsSummary) EconomyRate() float64 { return s.perBall(s.TotalRuns) * 6 }

// DotBallRate is the fraction of balls with no run scored.
func (s InningsSummary) DotBallRate() float64 { return s.perBall(s.DotBalls) }

// BoundaryRate is the fraction of balls hit for four or six.
func (s InningsSummary) BoundaryRate() float64 { return s.perBall(s.Boundaries) }

// WicketRate is wickets per ball bowled.
func (s InningsSummary) WicketRate() float64 { return s.perBall(s.TotalWickets) }

// ---- Ball-by-ball input ----

// BallEvent is a single delivery as produced by the ball-by-ball feed.
type BallEvent struct {
	MatchID     int64
	Innings     int
	OverNumber  int // 1-based
	BallNumber  int
	TeamBatting string
	TeamBowling string
	BatterRuns  int
	Extras      int
	TotalRuns   int
	IsWicket    bool
	IsSuperOver bool
}
