package features

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// ErrValidation is matched by errors.Is for every *ValidationError.
var ErrValidation = errors.New("invalid match record")

// ValidationError describes a malformed or incomplete record. Such records
// are dropped before snapshot and never absorbed.
type ValidationError struct {
	MatchID int64
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.MatchID == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("match %d: %s: %s", e.MatchID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(id int64, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{MatchID: id, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// canonical reports whether s is a non-empty identifier that has already
// been through name mapping: trimmed, valid UTF-8, no replacement or
// control characters.
func canonical(s string) bool {
	if s == "" || s != strings.TrimSpace(s) || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidateFixture checks the pre-match fields shared by records and queries.
func ValidateFixture(id int64, f model.Fixture) error {
	for _, c := range []struct{ field, v string }{
		{"venue", f.Venue}, {"team1", f.Team1}, {"team2", f.Team2}, {"toss_winner", f.TossWinner},
	} {
		if c.v == "" {
			return invalid(id, c.field, "missing")
		}
		if !canonical(c.v) {
			return invalid(id, c.field, "%q is not a canonical identifier", c.v)
		}
	}
	if f.Team1 == f.Team2 {
		return invalid(id, "team2", "team cannot play itself (%q)", f.Team1)
	}
	if f.TossWinner != f.Team1 && f.TossWinner != f.Team2 {
		return invalid(id, "toss_winner", "%q is not playing this match", f.TossWinner)
	}
	if !f.TossDecision.Valid() {
		return invalid(id, "toss_decision", "%q is not bat or field", f.TossDecision)
	}
	if !f.MatchType.Valid() {
		return invalid(id, "match_type", "%q is not a canonical match type", f.MatchType)
	}
	return nil
}

// ValidateRecord checks every required field of a completed match.
func ValidateRecord(m model.MatchRecord) error {
	if m.ID <= 0 {
		return invalid(m.ID, "match_id", "must be a positive integer")
	}
	if m.Season < 1900 || m.Season > 2999 {
		return invalid(m.ID, "season", "%d is not a plausible year", m.Season)
	}
	if err := ValidateFixture(m.ID, m.Fixture); err != nil {
		return err
	}
	switch {
	case m.Winner == "" && !m.IsNoResult():
		return invalid(m.ID, "winner", "missing for a decided match")
	case m.Winner != "" && m.Winner != m.Team1 && m.Winner != m.Team2:
		return invalid(m.ID, "winner", "%q is not playing this match", m.Winner)
	}
	if m.TargetRuns != nil && *m.TargetRuns < 0 {
		return invalid(m.ID, "target_runs", "negative")
	}
	for _, in := range []struct {
		field string
		s     *model.InningsSummary
	}{{"innings1", m.Innings1}, {"innings2", m.Innings2}} {
		if in.s == nil {
			continue
		}
		s := in.s
		if s.BallsBowled < 0 || s.TotalRuns < 0 || s.TotalWickets < 0 || s.DotBalls < 0 || s.Boundaries < 0 {
			return invalid(m.ID, in.field, "negative count")
		}
		// Scorecards occasionally list an eleventh batter as out when a
		// substitute or concussion replacement batted.
		if s.TotalWickets > 11 {
			return invalid(m.ID, in.field, "%d wickets in one innings", s.TotalWickets)
		}
	}
	return nil
}
