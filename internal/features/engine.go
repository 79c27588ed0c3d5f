package features

import (
	"context"
	"errors"
	"sort"

	"github.com/pable/go-cricket-metrics/internal/logger"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

// Engine folds a chronological match stream through every aggregator. For
// each match it snapshots all aggregators, assembles the row, and only then
// absorbs the outcome, so no row ever sees its own result or a later match.
//
// An Engine is not safe for concurrent use; the Querier gives each call its
// own Engine.
type Engine struct {
	p      Params
	teams  *registry.Registry
	venues *registry.Registry
	aggs   []aggregator

	started  bool
	last     replayKey
	absorbed int
}

type replayKey struct {
	season int
	id     int64
}

func (k replayKey) less(o replayKey) bool {
	if k.season != o.season {
		return k.season < o.season
	}
	return k.id < o.id
}

// New builds an empty engine. Team and venue names are interned into the
// given registries as matches are absorbed.
func New(p Params, teams, venues *registry.Registry) *Engine {
	return &Engine{
		p:      p,
		teams:  teams,
		venues: venues,
		aggs: []aggregator{
			newFormAgg(p),
			newVenueAgg(),
			newH2HAgg(p),
			newTossAgg(p),
			newRollingAgg(p),
			newChaseAgg(),
		},
	}
}

// Absorbed returns how many matches have been folded into the state.
func (e *Engine) Absorbed() int { return e.absorbed }

func (e *Engine) resolve(f model.Fixture, handle func(*registry.Registry, string) registry.Handle) *slots {
	s := &slots{
		t1:       handle(e.teams, f.Team1),
		t2:       handle(e.teams, f.Team2),
		venue:    handle(e.venues, f.Venue),
		decision: f.TossDecision,
		pressure: f.MatchType.IsPressure(),
	}
	s.tossWinner, s.tossLoser = s.t1, s.t2
	if f.TossWinner == f.Team2 {
		s.tossWinner, s.tossLoser = s.t2, s.t1
	}
	s.first, s.chase = s.t1, s.t2
	if f.FirstBatting() == f.Team2 {
		s.first, s.chase = s.t2, s.t1
	}
	return s
}

func intern(r *registry.Registry, name string) registry.Handle { return r.Intern(name) }

func lookup(r *registry.Registry, name string) registry.Handle {
	h, ok := r.Lookup(name)
	if !ok {
		return registry.None
	}
	return h
}

func (e *Engine) snapshot(s *slots, decision model.TossDecision) Vector {
	partials := make(map[string]float64, len(Schema)+16)
	for _, a := range e.aggs {
		a.snapshot(s, partials)
	}
	return Assemble(partials, decision)
}

// Step validates rec, emits its pre-match Vector and absorbs its outcome.
// Records must arrive in strictly increasing (season, match_id) order; an
// invalid or out-of-order record returns a *ValidationError and leaves the
// state untouched.
func (e *Engine) Step(rec model.MatchRecord) (Vector, error) {
	if err := ValidateRecord(rec); err != nil {
		return Vector{}, err
	}
	key := replayKey{rec.Season, rec.ID}
	if e.started && !e.last.less(key) {
		return Vector{}, invalid(rec.ID, "match_id", "out of order after season %d match %d", e.last.season, e.last.id)
	}

	// ---- Phase 1: snapshot every aggregator. ----
	s := e.resolve(rec.Fixture, intern)
	v := e.snapshot(s, rec.TossDecision)
	v.MatchID = rec.ID

	// ---- Phase 2: absorb the real outcome. ----
	o := outcome{winner: registry.None, noResult: rec.Winner == "", rec: &rec}
	switch rec.Winner {
	case rec.Team1:
		o.winner = s.t1
	case rec.Team2:
		o.winner = s.t2
	}
	for _, a := range e.aggs {
		a.absorb(s, o)
	}

	e.started = true
	e.last = key
	e.absorbed++
	return v, nil
}

// Snapshot returns the Vector for a match that has not been played, as of
// everything absorbed so far. It never changes state.
func (e *Engine) Snapshot(f model.Fixture) (Vector, error) {
	if err := ValidateFixture(0, f); err != nil {
		return Vector{}, err
	}
	return e.snapshot(e.resolve(f, lookup), f.TossDecision), nil
}

// SortRecords orders records by (season, match_id) in place.
func SortRecords(records []model.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return replayKey{records[i].Season, records[i].ID}.less(replayKey{records[j].Season, records[j].ID})
	})
}

// Replay sorts a copy of records and steps through them. Invalid and
// duplicate records are logged and skipped. visit, if non-nil, receives
// every emitted row; a visit error stops the replay.
func (e *Engine) Replay(ctx context.Context, records []model.MatchRecord, visit func(model.MatchRecord, Vector) error) error {
	ordered := make([]model.MatchRecord, len(records))
	copy(ordered, records)
	SortRecords(ordered)

	for _, rec := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := e.Step(rec)
		if err != nil {
			if errors.Is(err, ErrValidation) {
				logger.Warn("dropping record: %v", err)
				continue
			}
			return err
		}
		if visit != nil {
			if err := visit(rec, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildTrainingTable replays records from empty state and returns one
// Vector per valid record, in the order the records were given.
func BuildTrainingTable(ctx context.Context, p Params, teams, venues *registry.Registry, records []model.MatchRecord) ([]Vector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		return replayKey{ra.Season, ra.ID}.less(replayKey{rb.Season, rb.ID})
	})

	e := New(p, teams, venues)
	rows := make([]*Vector, len(records))
	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.Step(records[i])
		if err != nil {
			logger.Warn("dropping record: %v", err)
			continue
		}
		rows[i] = &v
	}

	out := make([]Vector, 0, e.Absorbed())
	for _, v := range rows {
		if v != nil {
			out = append(out, *v)
		}
	}
	logger.Info("built %d feature rows from %d records", len(out), len(records))
	return out, nil
}
