package features

import (
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

// slots is a fixture resolved to registry handles. Unknown entities resolve
// to registry.None, which every table treats as "no history".
type slots struct {
	t1, t2     registry.Handle
	venue      registry.Handle
	tossWinner registry.Handle
	tossLoser  registry.Handle
	first      registry.Handle // batted first, defends
	chase      registry.Handle // batted second
	decision   model.TossDecision
	pressure   bool
}

// outcome is what absorb learns once a match is over.
type outcome struct {
	winner   registry.Handle // None on no result
	noResult bool
	rec      *model.MatchRecord
}

func (o outcome) won(h registry.Handle) bool {
	return o.winner != registry.None && o.winner == h
}

// aggregator is one stateful feature family. snapshot must only read state;
// absorb is the single place state changes.
type aggregator interface {
	name() string
	snapshot(s *slots, out map[string]float64)
	absorb(s *slots, o outcome)
}

// table is per-handle state indexed by dense handle.
type table[T any] struct {
	rows  []*T
	fresh func() *T
}

func newTable[T any](fresh func() *T) *table[T] {
	return &table[T]{fresh: fresh}
}

// get returns nil when h has no state yet.
func (t *table[T]) get(h registry.Handle) *T {
	if h < 0 || int(h) >= len(t.rows) {
		return nil
	}
	return t.rows[h]
}

// at returns the state for h, creating it on first use.
func (t *table[T]) at(h registry.Handle) *T {
	for int(h) >= len(t.rows) {
		t.rows = append(t.rows, nil)
	}
	if t.rows[h] == nil {
		t.rows[h] = t.fresh()
	}
	return t.rows[h]
}

// pairKey is an ordered (a, b) handle pair.
type pairKey struct{ a, b registry.Handle }

func ratio(num, den int, def float64) float64 {
	if den <= 0 {
		return def
	}
	return float64(num) / float64(den)
}
