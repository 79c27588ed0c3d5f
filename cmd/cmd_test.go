package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  h2h csk mi ", []string{"h2h", "csk", "mi"}},
		{`venue "Eden Gardens"`, []string{"venue", "Eden Gardens"}},
		{`predict csk "Mumbai Indians" wankhede mi field`, []string{"predict", "csk", "Mumbai Indians", "wankhede", "mi", "field"}},
		{`show ""`, []string{"show", ""}},
	}
	for _, tt := range tests {
		got := splitArgs(tt.line)
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %q, want %q", tt.line, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: token %d got %q, want %q", tt.line, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCanonicalMatchup(t *testing.T) {
	a, err := ingest.LoadAliases("")
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}
	m := canonicalMatchup(a, features.Matchup{
		Team1: "csk", Team2: "Mumbai Indians", Venue: "wankhede", TossWinner: "MI", TossDecision: "FIELD",
	})
	if m.Team1 != "Chennai Super Kings" || m.TossWinner != "Mumbai Indians" {
		t.Errorf("teams not canonicalised: %+v", m)
	}
	if m.Venue != "Wankhede Stadium" {
		t.Errorf("venue not canonicalised: %q", m.Venue)
	}
	if m.TossDecision != model.DecisionField || m.MatchType != model.MatchLeague {
		t.Errorf("decision/type: %q / %q", m.TossDecision, m.MatchType)
	}
	if got := teamName(a, "Gotham Knights"); got != "Gotham Knights" {
		t.Errorf("unknown names should pass through, got %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	vals := make([]float64, len(features.Schema))
	vals[0] = 0.75
	if err := writeCSV(&buf, []features.Vector{{MatchID: 42, Values: vals}}); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	header := strings.Split(lines[0], ",")
	if header[0] != "match_id" || header[1] != features.Schema[0] || len(header) != len(features.Schema)+1 {
		t.Errorf("unexpected header %v", header[:2])
	}
	if !strings.HasPrefix(lines[1], "42,0.75,0") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	err := writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "match_id\n1\n")
		return err
	})
	if err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "match_id\n1\n" {
		t.Errorf("unexpected contents %q", data)
	}

	boom := errors.New("boom")
	if err := writeOutput(filepath.Join(dir, "bad.csv"), func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("write error should propagate, got %v", err)
	}
	if err := writeOutput(filepath.Join(dir, "missing", "x.csv"), func(io.Writer) error { return nil }); err == nil {
		t.Error("expected an error creating a file in a missing directory")
	}
}

func TestStoreMatchesCountsReplacements(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	defer db.Close()

	rec := func(id int64) model.MatchRecord {
		return model.MatchRecord{
			ID:     id,
			Season: 2022,
			Fixture: model.Fixture{
				Venue: "Eden Gardens", Team1: "Kolkata Knight Riders", Team2: "Mumbai Indians",
				TossWinner: "Mumbai Indians", TossDecision: model.DecisionField, MatchType: model.MatchLeague,
			},
			Winner: "Mumbai Indians",
			Result: "wickets",
		}
	}

	added, replaced, err := storeMatches(db, []model.MatchRecord{rec(1), rec(2)})
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	if added != 2 || replaced != 0 {
		t.Errorf("first store: added %d replaced %d, want 2 and 0", added, replaced)
	}

	added, replaced, err = storeMatches(db, []model.MatchRecord{rec(2), rec(3)})
	if err != nil {
		t.Fatalf("second store: %v", err)
	}
	if added != 1 || replaced != 1 {
		t.Errorf("second store: added %d replaced %d, want 1 and 1", added, replaced)
	}
	if n, _ := db.CountMatches(); n != 3 {
		t.Errorf("CountMatches: got %d, want 3", n)
	}
	if seasons, _ := db.Seasons(); len(seasons) != 1 || seasons[0] != 2022 {
		t.Errorf("Seasons: got %v", seasons)
	}
}
