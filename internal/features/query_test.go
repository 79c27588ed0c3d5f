package features

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

func newQuerier(history []model.MatchRecord) *Querier {
	return NewQuerier(DefaultParams(), registry.New(registry.KindTeam), registry.New(registry.KindVenue), history)
}

func TestComputeFeaturesColdStart(t *testing.T) {
	q := newQuerier([]model.MatchRecord{
		match(1, 2019, wankhede, csk, kkr, csk, model.DecisionBat, csk),
		match(2, 2019, eden, mi, rr, rr, model.DecisionField, mi),
		match(3, 2019, chepauk, rcb, kkr, kkr, model.DecisionField, kkr),
	})
	v, err := q.ComputeFeatures(t.Context(), Matchup{
		Team1: csk, Team2: mi, Venue: chepauk, TossWinner: mi, TossDecision: model.DecisionField,
	})
	if err != nil {
		t.Fatalf("ComputeFeatures: %v", err)
	}
	if !v.ColdStart {
		t.Error("ColdStart not set for a pair with no shared history")
	}
	for _, name := range []string{"head_to_head_winrate", "venue_team1_winrate", "venue_team2_winrate"} {
		if got := feature(t, v, name); got != 0.5 {
			t.Errorf("%s: got %v, want 0.5", name, got)
		}
	}
	for _, name := range Schema {
		if isDiff(name) {
			if got := feature(t, v, name); got != 0 {
				t.Errorf("%s: got %v, want 0", name, got)
			}
		}
	}
	if got := feature(t, v, "toss_decision_field"); got != 1 {
		t.Errorf("toss_decision_field: got %v, want 1", got)
	}
}

func TestComputeFeaturesReplaysOnlyThePair(t *testing.T) {
	history := randomStream(90, 8)
	q := newQuerier(history)
	m := Matchup{Team1: csk, Team2: mi, Venue: wankhede, TossWinner: csk, TossDecision: model.DecisionBat, MatchType: model.MatchFinal}

	got, err := q.ComputeFeatures(t.Context(), m)
	if err != nil {
		t.Fatalf("ComputeFeatures: %v", err)
	}
	pair := q.Between(csk, mi)
	if len(pair) == 0 {
		t.Fatal("random stream has no csk/mi matches; pick another seed")
	}
	if got.ColdStart {
		t.Error("ColdStart set despite shared history")
	}

	e := newEngine()
	for _, r := range pair {
		if r.Team1 != csk && r.Team2 != csk {
			t.Fatalf("Between returned match %d without csk", r.ID)
		}
		mustStep(t, e, r)
	}
	want := mustSnapshot(t, e, m.Fixture())
	if !reflect.DeepEqual(got.Values, want.Values) {
		t.Error("query result differs from a manual replay of the pair's history")
	}
}

func TestComputeFeaturesLeavesHistoryUntouched(t *testing.T) {
	history := randomStream(50, 12)
	snapshot := append([]model.MatchRecord(nil), history...)

	global := newEngine()
	for _, m := range history {
		mustStep(t, global, m)
	}
	before := counters(global)

	q := newQuerier(history)
	m := Matchup{Team1: kkr, Team2: rcb, Venue: eden, TossWinner: rcb, TossDecision: model.DecisionField}
	first, err := q.ComputeFeatures(t.Context(), m)
	if err != nil {
		t.Fatalf("ComputeFeatures: %v", err)
	}
	second, err := q.ComputeFeatures(t.Context(), m)
	if err != nil {
		t.Fatalf("ComputeFeatures: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated query differs")
	}
	if !reflect.DeepEqual(history, snapshot) {
		t.Error("query modified the caller's history")
	}
	if !reflect.DeepEqual(before, counters(global)) {
		t.Error("query modified the global engine")
	}
}

func TestComputeFeaturesConcurrent(t *testing.T) {
	q := newQuerier(randomStream(120, 21))
	matchups := []Matchup{
		{Team1: csk, Team2: mi, Venue: wankhede, TossWinner: mi, TossDecision: model.DecisionField},
		{Team1: kkr, Team2: rr, Venue: eden, TossWinner: kkr, TossDecision: model.DecisionBat},
		{Team1: rcb, Team2: csk, Venue: chepauk, TossWinner: csk, TossDecision: model.DecisionBat, MatchType: model.MatchEliminator2},
	}
	want := make([]Vector, len(matchups))
	for i, m := range matchups {
		v, err := q.ComputeFeatures(t.Context(), m)
		if err != nil {
			t.Fatalf("ComputeFeatures(%d): %v", i, err)
		}
		want[i] = v
	}

	var wg sync.WaitGroup
	errs := make(chan error, 48)
	for n := 0; n < 48; n++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := q.ComputeFeatures(context.Background(), matchups[i])
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(v, want[i]) {
				errs <- errors.New("concurrent result differs from sequential")
			}
		}(n % len(matchups))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestComputeFeaturesErrors(t *testing.T) {
	q := newQuerier([]model.MatchRecord{
		match(1, 2019, wankhede, csk, mi, csk, model.DecisionBat, csk),
	})
	for _, tc := range []struct {
		name     string
		m        Matchup
		wantKind registry.Kind
		wantName string
	}{
		{"unknown team", Matchup{Team1: csk, Team2: "Kochi Tuskers Kerala", Venue: wankhede, TossWinner: csk, TossDecision: model.DecisionBat}, registry.KindTeam, "Kochi Tuskers Kerala"},
		{"unknown venue", Matchup{Team1: csk, Team2: mi, Venue: "Lord's", TossWinner: csk, TossDecision: model.DecisionBat}, registry.KindVenue, "Lord's"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := q.ComputeFeatures(t.Context(), tc.m)
			var ue *registry.UnknownEntityError
			if !errors.As(err, &ue) {
				t.Fatalf("got %v, want *registry.UnknownEntityError", err)
			}
			if ue.Kind != tc.wantKind || ue.Name != tc.wantName {
				t.Errorf("got %s %q, want %s %q", ue.Kind, ue.Name, tc.wantKind, tc.wantName)
			}
		})
	}

	for _, m := range []Matchup{
		{Team1: csk, Team2: mi, Venue: wankhede, TossWinner: "Rajasthan Royals", TossDecision: model.DecisionBat},
		{Team1: csk, Team2: mi, Venue: wankhede, TossWinner: csk, TossDecision: "bowl"},
		{Team1: csk, Team2: csk, Venue: wankhede, TossWinner: csk, TossDecision: model.DecisionBat},
		{Team1: "", Team2: mi, Venue: wankhede, TossWinner: mi, TossDecision: model.DecisionBat},
		{Team1: csk, Team2: mi, Venue: "", TossWinner: csk, TossDecision: model.DecisionBat},
	} {
		_, err := q.ComputeFeatures(t.Context(), m)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: got %v, want validation error", m, err)
		}
		if errors.Is(err, registry.ErrUnknownEntity) {
			t.Errorf("%+v: malformed matchup reported as unknown entity", m)
		}
	}
}

func TestQuerierNames(t *testing.T) {
	teams, venues := registry.New(registry.KindTeam), registry.New(registry.KindVenue)
	venues.Intern(eden)
	q := NewQuerier(DefaultParams(), teams, venues, []model.MatchRecord{
		match(1, 2019, wankhede, mi, csk, csk, model.DecisionBat, csk),
	})
	if got, want := q.Teams(), []string{csk, mi}; !reflect.DeepEqual(got, want) {
		t.Errorf("Teams: got %v, want %v", got, want)
	}
	if got, want := q.Venues(), []string{eden, wankhede}; !reflect.DeepEqual(got, want) {
		t.Errorf("Venues: got %v, want %v", got, want)
	}

	// A pre-registered venue resolves even without history there.
	v, err := q.ComputeFeatures(t.Context(), Matchup{Team1: csk, Team2: mi, Venue: eden, TossWinner: mi, TossDecision: model.DecisionField})
	if err != nil {
		t.Fatalf("ComputeFeatures at unplayed venue: %v", err)
	}
	if v.ColdStart {
		t.Error("pair has history; expected a warm vector")
	}
}

func TestComputeFeaturesCancelled(t *testing.T) {
	q := newQuerier([]model.MatchRecord{
		match(1, 2019, wankhede, csk, mi, csk, model.DecisionBat, csk),
		match(2, 2019, wankhede, csk, mi, mi, model.DecisionBat, mi),
	})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := q.ComputeFeatures(ctx, Matchup{Team1: csk, Team2: mi, Venue: wankhede, TossWinner: csk, TossDecision: model.DecisionBat})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
