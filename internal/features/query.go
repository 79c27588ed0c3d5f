package features

import (
	"context"
	"fmt"

	"github.com/pable/go-cricket-metrics/internal/logger"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

// Matchup is an inference request: a fixture whose outcome is unknown.
type Matchup struct {
	Team1        string             `json:"team1"`
	Team2        string             `json:"team2"`
	Venue        string             `json:"venue"`
	TossWinner   string             `json:"toss_winner"`
	TossDecision model.TossDecision `json:"toss_decision"`
	MatchType    model.MatchType    `json:"match_type,omitempty"`
}

// Fixture converts m, defaulting the match type to League.
func (m Matchup) Fixture() model.Fixture {
	mt := m.MatchType
	if mt == "" {
		mt = model.MatchLeague
	}
	return model.Fixture{
		Venue:        m.Venue,
		Team1:        m.Team1,
		Team2:        m.Team2,
		TossWinner:   m.TossWinner,
		TossDecision: m.TossDecision,
		MatchType:    mt,
	}
}

// Querier answers single-matchup feature requests against a fixed history.
// Each call replays the matches between the two teams into a throwaway
// Engine, so calls never touch shared aggregator state and may run
// concurrently.
type Querier struct {
	p       Params
	teams   *registry.Registry
	venues  *registry.Registry
	history []model.MatchRecord
}

// NewQuerier sorts a copy of history and registers every team and venue it
// mentions, so that only those names resolve in ComputeFeatures.
func NewQuerier(p Params, teams, venues *registry.Registry, history []model.MatchRecord) *Querier {
	h := make([]model.MatchRecord, len(history))
	copy(h, history)
	SortRecords(h)
	for _, m := range h {
		teams.Intern(m.Team1)
		teams.Intern(m.Team2)
		venues.Intern(m.Venue)
	}
	return &Querier{p: p, teams: teams, venues: venues, history: h}
}

// Len returns the number of historical records behind the querier.
func (q *Querier) Len() int { return len(q.history) }

// Between returns the historical matches played between a and b, in replay order.
func (q *Querier) Between(a, b string) []model.MatchRecord {
	var out []model.MatchRecord
	for _, m := range q.history {
		if (m.Team1 == a && m.Team2 == b) || (m.Team1 == b && m.Team2 == a) {
			out = append(out, m)
		}
	}
	return out
}

// Teams returns every team name that resolves, sorted.
func (q *Querier) Teams() []string { return q.teams.Names() }

// Venues returns every venue name that resolves, sorted.
func (q *Querier) Venues() []string { return q.venues.Names() }

// ComputeFeatures returns the Vector for m as of the end of the pair's
// shared history. A malformed matchup returns *ValidationError before any
// name is resolved. Unknown teams or venues return *registry.UnknownEntityError.
// An empty shared history is not an error: the defaults come back with
// ColdStart set.
func (q *Querier) ComputeFeatures(ctx context.Context, m Matchup) (Vector, error) {
	f := m.Fixture()
	if err := ValidateFixture(0, f); err != nil {
		return Vector{}, err
	}
	if _, err := q.teams.Resolve(m.Team1); err != nil {
		return Vector{}, err
	}
	if _, err := q.teams.Resolve(m.Team2); err != nil {
		return Vector{}, err
	}
	if _, err := q.venues.Resolve(m.Venue); err != nil {
		return Vector{}, err
	}

	e := New(q.p, q.teams, q.venues)
	if err := e.Replay(ctx, q.Between(m.Team1, m.Team2), nil); err != nil {
		return Vector{}, fmt.Errorf("replay %s vs %s: %w", m.Team1, m.Team2, err)
	}
	v, err := e.Snapshot(f)
	if err != nil {
		return Vector{}, err
	}
	if e.Absorbed() == 0 {
		v.ColdStart = true
		logger.Debug("cold start: no shared history for %s vs %s", m.Team1, m.Team2)
	}
	return v, nil
}
