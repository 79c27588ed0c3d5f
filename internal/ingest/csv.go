package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pable/go-cricket-metrics/internal/logger"
	"github.com/pable/go-cricket-metrics/internal/model"
)

// Stats counts what happened to the rows of one load.
type Stats struct {
	Rows      int
	Kept      int
	Defunct   int
	Unknown   int
	Malformed int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows: %d kept, %d defunct, %d unknown team, %d malformed",
		s.Rows, s.Kept, s.Defunct, s.Unknown, s.Malformed)
}

// header indexes CSV columns by lower-cased name.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(cols))
	for i, c := range cols {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return h, nil
}

func (h header) get(row []string, name string) string {
	if i, ok := h[name]; ok && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isNA(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

func parseInt(s string) (int, error) {
	if isNA(s) {
		return 0, nil
	}
	// Some exports write integers as floats ("4.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseOptFloat(s string) (*float64, error) {
	if isNA(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseBool(s string) bool {
	if isNA(s) {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		return ferr == nil && f != 0
	}
	return b
}

// ReadMatches decodes the match-level CSV and canonicalises names through a.
// Matches involving a defunct or unknown team, or with unparsable fields,
// are skipped and counted in Stats.
func ReadMatches(r io.Reader, a *Aliases) ([]model.MatchRecord, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr, "season", "venue", "team1", "team2", "toss_winner", "toss_decision", "winner")
	if err != nil {
		return nil, Stats{}, err
	}
	idCol := "id"
	if _, ok := h["match_id"]; ok {
		idCol = "match_id"
	} else if _, ok := h["id"]; !ok {
		return nil, Stats{}, fmt.Errorf("missing column %q", "id")
	}

	var (
		out   []model.MatchRecord
		stats Stats
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read matches: %w", err)
		}
		stats.Rows++

		m, err := matchFromRow(h, idCol, row, a)
		switch {
		case errors.Is(err, ErrDefunct):
			stats.Defunct++
			continue
		case errors.Is(err, ErrUnknownName):
			stats.Unknown++
			logger.Debug("skipping match: %v", err)
			continue
		case err != nil:
			stats.Malformed++
			logger.Warn("skipping row %d: %v", stats.Rows, err)
			continue
		}
		out = append(out, m)
		stats.Kept++
	}
	return out, stats, nil
}

func matchFromRow(h header, idCol string, row []string, a *Aliases) (model.MatchRecord, error) {
	var m model.MatchRecord
	id, err := strconv.ParseInt(h.get(row, idCol), 10, 64)
	if err != nil {
		return m, fmt.Errorf("match id: %w", err)
	}
	m.ID = id
	if m.Season, err = NormalizeSeason(h.get(row, "season")); err != nil {
		return m, fmt.Errorf("match %d: %w", id, err)
	}
	m.MatchType = NormalizeMatchType(h.get(row, "match_type"))
	m.Venue = a.Venue(h.get(row, "venue"))

	for _, f := range []struct {
		dst *string
		col string
	}{{&m.Team1, "team1"}, {&m.Team2, "team2"}, {&m.TossWinner, "toss_winner"}, {&m.Winner, "winner"}} {
		raw := h.get(row, f.col)
		if isNA(raw) {
			raw = ""
		}
		if *f.dst, err = a.Team(raw); err != nil {
			return m, fmt.Errorf("match %d %s: %w", id, f.col, err)
		}
	}

	if m.TossDecision, err = model.ParseTossDecision(h.get(row, "toss_decision")); err != nil {
		return m, fmt.Errorf("match %d: %w", id, err)
	}
	m.Result = strings.ToLower(h.get(row, "result"))
	if isNA(m.Result) {
		m.Result = ""
	}
	if m.Winner == "" && m.Result == "" {
		m.Result = "no result"
	}
	if m.TargetRuns, err = parseOptFloat(h.get(row, "target_runs")); err != nil {
		return m, fmt.Errorf("match %d target_runs: %w", id, err)
	}
	if m.TargetOvers, err = parseOptFloat(h.get(row, "target_overs")); err != nil {
		return m, fmt.Errorf("match %d target_overs: %w", id, err)
	}
	return m, nil
}

// ReadBalls decodes the ball-by-ball CSV. Team names are canonicalised when
// they resolve and kept as given otherwise; summaries only key on innings.
func ReadBalls(r io.Reader, a *Aliases) ([]model.BallEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	h, err := readHeader(cr, "match_id", "innings", "over_number", "total_runs")
	if err != nil {
		return nil, err
	}

	var out []model.BallEvent
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read balls: %w", err)
		}
		line++

		b, err := ballFromRow(h, row)
		if err != nil {
			logger.Warn("skipping ball row %d: %v", line, err)
			continue
		}
		for _, t := range []*string{&b.TeamBatting, &b.TeamBowling} {
			if c, err := a.Team(*t); err == nil {
				*t = c
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func ballFromRow(h header, row []string) (model.BallEvent, error) {
	var b model.BallEvent
	var err error
	if b.MatchID, err = strconv.ParseInt(h.get(row, "match_id"), 10, 64); err != nil {
		return b, fmt.Errorf("match_id: %w", err)
	}
	for _, f := range []struct {
		dst *int
		col string
	}{
		{&b.Innings, "innings"},
		{&b.OverNumber, "over_number"},
		{&b.BallNumber, "ball_number"},
		{&b.BatterRuns, "batter_runs"},
		{&b.Extras, "extras"},
		{&b.TotalRuns, "total_runs"},
	} {
		if *f.dst, err = parseInt(h.get(row, f.col)); err != nil {
			return b, fmt.Errorf("%s: %w", f.col, err)
		}
	}
	b.TeamBatting = h.get(row, "team_batting")
	b.TeamBowling = h.get(row, "team_bowling")
	b.IsWicket = parseBool(h.get(row, "is_wicket"))
	b.IsSuperOver = parseBool(h.get(row, "is_super_over"))
	return b, nil
}

// Load reads the match CSV and, when ballsPath is set, attaches innings
// summaries built from the ball-by-ball CSV.
func Load(matchesPath, ballsPath string, a *Aliases) ([]model.MatchRecord, Stats, error) {
	f, err := os.Open(matchesPath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open matches: %w", err)
	}
	defer f.Close()
	records, stats, err := ReadMatches(f, a)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", matchesPath, err)
	}
	if ballsPath == "" {
		return records, stats, nil
	}

	bf, err := os.Open(ballsPath)
	if err != nil {
		return nil, stats, fmt.Errorf("open balls: %w", err)
	}
	defer bf.Close()
	balls, err := ReadBalls(bf, a)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", ballsPath, err)
	}
	n := Attach(records, SummarizeInnings(balls))
	logger.Info("attached innings summaries to %d of %d matches", n, len(records))
	return records, stats, nil
}
