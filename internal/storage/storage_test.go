package storage

import (
	"testing"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func record(id int64, season int, t1, t2, winner string) model.MatchRecord {
	target := 181.0
	return model.MatchRecord{
		ID:     id,
		Season: season,
		Fixture: model.Fixture{
			Venue:        "Wankhede Stadium",
			Team1:        t1,
			Team2:        t2,
			TossWinner:   t1,
			TossDecision: model.DecisionField,
			MatchType:    model.MatchLeague,
		},
		Winner:     winner,
		Result:     "runs",
		TargetRuns: &target,
		Innings1: &model.InningsSummary{
			TotalRuns:    180,
			TotalWickets: 6,
			BallsBowled:  120,
			Powerplay:    model.Phase{Runs: 50, Wickets: 1},
			DotBalls:     40,
			Boundaries:   22,
		},
	}
}

func TestInsertMatchesAndExists(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertMatches([]model.MatchRecord{record(1, 2020, "A", "B", "A")}); err != nil {
		t.Fatalf("InsertMatches: %v", err)
	}
	exists, err := db.MatchExists(1)
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}
	if ok, _ := db.MatchExists(99); ok {
		t.Error("expected unknown match to not exist")
	}
}

func TestInsertMatchesIdempotent(t *testing.T) {
	db := openMemDB(t)

	recs := []model.MatchRecord{record(1, 2020, "A", "B", "A")}
	for range 2 {
		if err := db.InsertMatches(recs); err != nil {
			t.Fatalf("InsertMatches: %v", err)
		}
	}
	n, err := db.CountMatches()
	if err != nil {
		t.Fatalf("CountMatches: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 match after re-insert, got %d", n)
	}
	_, rows, err := db.QueryRaw("SELECT * FROM innings")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 innings row after re-insert, got %d", len(rows))
	}
}

func TestGetMatchRoundTrip(t *testing.T) {
	db := openMemDB(t)

	in := record(7, 2021, "A", "B", "")
	in.Result = "no result"
	in.TargetRuns = nil
	if err := db.InsertMatches([]model.MatchRecord{in}); err != nil {
		t.Fatalf("InsertMatches: %v", err)
	}

	got, err := db.GetMatch(7)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if got == nil {
		t.Fatal("expected match, got nil")
	}
	if got.Fixture != in.Fixture {
		t.Errorf("fixture: got %+v, want %+v", got.Fixture, in.Fixture)
	}
	if !got.IsNoResult() || got.Winner != "" {
		t.Errorf("expected stored no-result, got winner=%q result=%q", got.Winner, got.Result)
	}
	if got.TargetRuns != nil {
		t.Errorf("expected nil target, got %v", *got.TargetRuns)
	}
	if got.Innings1 == nil || *got.Innings1 != *in.Innings1 {
		t.Errorf("innings1: got %+v, want %+v", got.Innings1, in.Innings1)
	}
	if got.Innings2 != nil {
		t.Errorf("expected nil innings2, got %+v", got.Innings2)
	}

	missing, err := db.GetMatch(404)
	if err != nil {
		t.Fatalf("GetMatch missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing match, got %+v", missing)
	}
}

func TestListMatchesOrderAndFilter(t *testing.T) {
	db := openMemDB(t)

	recs := []model.MatchRecord{
		record(30, 2021, "A", "C", "C"),
		record(10, 2020, "A", "B", "A"),
		record(20, 2020, "B", "C", "B"),
		record(5, 2022, "B", "A", "B"),
	}
	if err := db.InsertMatches(recs); err != nil {
		t.Fatalf("InsertMatches: %v", err)
	}

	all, err := db.ListMatches(MatchFilter{})
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	want := []int64{10, 20, 30, 5}
	if len(all) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: got match %d, want %d", i, all[i].ID, id)
		}
	}

	tests := []struct {
		name string
		f    MatchFilter
		want int
	}{
		{"team either side", MatchFilter{Team: "C"}, 2},
		{"season half-open", MatchFilter{FromSeason: 2020, ToSeason: 2021}, 2},
		{"from only", MatchFilter{FromSeason: 2021}, 2},
		{"limit", MatchFilter{Limit: 3}, 3},
		{"venue", MatchFilter{Venue: "Eden Gardens"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListMatches(tt.f)
			if err != nil {
				t.Fatalf("ListMatches: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d matches, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMatchesBetweenBothOrientations(t *testing.T) {
	db := openMemDB(t)

	db.InsertMatches([]model.MatchRecord{
		record(1, 2020, "A", "B", "A"),
		record(2, 2020, "B", "A", "B"),
		record(3, 2020, "A", "C", "A"),
	})
	got, err := db.MatchesBetween("A", "B")
	if err != nil {
		t.Fatalf("MatchesBetween: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("expected matches 1,2; got %+v", got)
	}
}

func TestTeamsVenuesSeasons(t *testing.T) {
	db := openMemDB(t)

	r := record(3, 2022, "C", "A", "A")
	r.Venue = "Eden Gardens"
	db.InsertMatches([]model.MatchRecord{record(1, 2020, "A", "B", "A"), r})

	teams, err := db.Teams()
	if err != nil {
		t.Fatalf("Teams: %v", err)
	}
	if len(teams) != 3 || teams[0] != "A" || teams[2] != "C" {
		t.Errorf("unexpected teams %v", teams)
	}
	venues, _ := db.Venues()
	if len(venues) != 2 || venues[0] != "Eden Gardens" {
		t.Errorf("unexpected venues %v", venues)
	}
	seasons, _ := db.Seasons()
	if len(seasons) != 2 || seasons[0] != 2020 || seasons[1] != 2022 {
		t.Errorf("unexpected seasons %v", seasons)
	}
}

func TestFeatureRunLifecycle(t *testing.T) {
	db := openMemDB(t)

	p := features.DefaultParams()
	p.FormWindow = 7
	rows := []features.Vector{
		{MatchID: 2, Values: []float64{0.5, 0.25}},
		{MatchID: 1, Values: []float64{1, 0}},
	}
	run, err := db.CreateFeatureRun(p, rows)
	if err != nil {
		t.Fatalf("CreateFeatureRun: %v", err)
	}
	if len(run.ID) != 36 {
		t.Errorf("expected uuid run id, got %q", run.ID)
	}

	got, err := db.GetFeatureRunByPrefix(run.ShortID())
	if err != nil {
		t.Fatalf("GetFeatureRunByPrefix: %v", err)
	}
	if got == nil {
		t.Fatal("expected run by prefix")
	}
	if got.Params != p {
		t.Errorf("params: got %+v, want %+v", got.Params, p)
	}
	if got.Rows != 2 || len(got.Schema) != len(features.Schema) {
		t.Errorf("unexpected run metadata %+v", got)
	}

	stored, err := db.FeatureRows(run.ID)
	if err != nil {
		t.Fatalf("FeatureRows: %v", err)
	}
	if len(stored) != 2 || stored[0].MatchID != 2 || stored[1].Values[0] != 1 {
		t.Errorf("rows not in build order: %+v", stored)
	}

	one, err := db.GetFeatureRow(run.ID, 1)
	if err != nil || one == nil {
		t.Fatalf("GetFeatureRow: %v, %v", one, err)
	}
	if none, _ := db.GetFeatureRow(run.ID, 99); none != nil {
		t.Errorf("expected nil for missing row, got %+v", none)
	}

	list, _ := db.ListFeatureRuns()
	if len(list) != 1 {
		t.Errorf("expected 1 run, got %d", len(list))
	}

	ok, err := db.DeleteFeatureRun(run.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteFeatureRun: %v, %v", ok, err)
	}
	if left, _ := db.FeatureRows(run.ID); len(left) != 0 {
		t.Errorf("expected rows deleted, got %d", len(left))
	}
	if ok, _ := db.DeleteFeatureRun(run.ID); ok {
		t.Error("second delete should report false")
	}
	if missing, _ := db.GetFeatureRunByPrefix("zzzz"); missing != nil {
		t.Error("expected nil for unknown prefix")
	}
}

func TestQueryRawRendersNull(t *testing.T) {
	db := openMemDB(t)

	cols, rows, err := db.QueryRaw("SELECT 1 AS one, NULL AS nothing_col, 'x' AS s, 2.5 AS f")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 4 || cols[1] != "nothing_col" {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	want := []string{"1", "NULL", "x", "2.5"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("col %d: got %q, want %q", i, rows[0][i], w)
		}
	}
}
