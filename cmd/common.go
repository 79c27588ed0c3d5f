package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

func openDB() (*storage.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func loadAliases() (*ingest.Aliases, error) {
	a, err := ingest.LoadAliases(cfg.Ingest.AliasesPath)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	return a, nil
}

// teamName maps a short id or old spelling onto the canonical name. Names the
// alias table rejects pass through unchanged.
func teamName(a *ingest.Aliases, raw string) string {
	if c, err := a.Team(raw); err == nil && c != "" {
		return c
	}
	return raw
}

// writeOutput runs write against stdout when path is "-", otherwise against a
// freshly created file whose close error is reported.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// loadHistory returns every stored match in replay order.
func loadHistory(db *storage.DB) ([]model.MatchRecord, error) {
	recs, err := db.ListMatches(storage.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return recs, nil
}

// newQuerier builds a querier over history whose registries also know every
// canonical name in the alias table.
func newQuerier(history []model.MatchRecord, aliases *ingest.Aliases) *features.Querier {
	teams, venues := registry.New(registry.KindTeam), registry.New(registry.KindVenue)
	if aliases != nil {
		aliases.Seed(teams, venues)
	}
	return features.NewQuerier(cfg.FeatureParams(), teams, venues, history)
}

// featuresFor replays history and returns the training row emitted for id,
// or nil if the match is not part of the valid history.
func featuresFor(ctx context.Context, history []model.MatchRecord, id int64) (*features.Vector, error) {
	e := features.New(cfg.FeatureParams(), registry.New(registry.KindTeam), registry.New(registry.KindVenue))

	var found *features.Vector
	err := e.Replay(ctx, history, func(m model.MatchRecord, v features.Vector) error {
		if m.ID == id {
			found = &v
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return nil, err
	}
	return found, nil
}

var errFound = errors.New("found")
