package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/go-cricket-metrics/internal/model"
)

const matchColumns = `match_id, season, match_type, venue, team1, team2,
	toss_winner, toss_decision, winner, result, target_runs, target_overs`

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(id int64) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatches bulk-inserts match records and their innings summaries in a
// transaction. Uses INSERT OR REPLACE so re-ingesting the same CSV is idempotent.
func (db *DB) InsertMatches(records []model.MatchRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	mstmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(` + matchColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer mstmt.Close()

	delInn, err := tx.Prepare("DELETE FROM innings WHERE match_id = ?")
	if err != nil {
		return err
	}
	defer delInn.Close()

	istmt, err := tx.Prepare(`
		INSERT INTO innings(
			match_id, innings, total_runs, total_wickets, balls_bowled,
			pp_runs, pp_wickets, mo_runs, mo_wickets, do_runs, do_wickets,
			extras_runs, dot_balls, boundaries
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer istmt.Close()

	for _, m := range records {
		_, err = mstmt.Exec(
			m.ID, m.Season, string(m.MatchType), m.Venue, m.Team1, m.Team2,
			m.TossWinner, string(m.TossDecision), m.Winner, m.Result,
			nullFloat(m.TargetRuns), nullFloat(m.TargetOvers),
		)
		if err != nil {
			return fmt.Errorf("insert match %d: %w", m.ID, err)
		}
		// REPLACE on the parent does not reliably cascade, so clear innings by hand.
		if _, err := delInn.Exec(m.ID); err != nil {
			return fmt.Errorf("clear innings for %d: %w", m.ID, err)
		}
		for n, s := range []*model.InningsSummary{m.Innings1, m.Innings2} {
			if s == nil {
				continue
			}
			_, err = istmt.Exec(
				m.ID, n+1, s.TotalRuns, s.TotalWickets, s.BallsBowled,
				s.Powerplay.Runs, s.Powerplay.Wickets,
				s.Middle.Runs, s.Middle.Wickets,
				s.Death.Runs, s.Death.Wickets,
				s.ExtrasRuns, s.DotBalls, s.Boundaries,
			)
			if err != nil {
				return fmt.Errorf("insert innings %d for %d: %w", n+1, m.ID, err)
			}
		}
	}
	return tx.Commit()
}

// MatchFilter narrows ListMatches. Zero values mean "no constraint".
// The season range is half-open: FromSeason <= season < ToSeason.
type MatchFilter struct {
	Team       string // either side
	Venue      string
	FromSeason int
	ToSeason   int
	Limit      int
}

func (f MatchFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Team != "" {
		clauses = append(clauses, "(team1 = ? OR team2 = ?)")
		args = append(args, f.Team, f.Team)
	}
	if f.Venue != "" {
		clauses = append(clauses, "venue = ?")
		args = append(args, f.Venue)
	}
	if f.FromSeason > 0 {
		clauses = append(clauses, "season >= ?")
		args = append(args, f.FromSeason)
	}
	if f.ToSeason > 0 {
		clauses = append(clauses, "season < ?")
		args = append(args, f.ToSeason)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListMatches returns stored matches in replay order (season, match_id),
// with innings summaries attached.
func (db *DB) ListMatches(f MatchFilter) ([]model.MatchRecord, error) {
	where, args := f.where()
	q := "SELECT " + matchColumns + " FROM matches" + where + " ORDER BY season, match_id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.attachInnings(out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMatch returns a single match by id, or nil if not found.
func (db *DB) GetMatch(id int64) (*model.MatchRecord, error) {
	row := db.conn.QueryRow("SELECT "+matchColumns+" FROM matches WHERE match_id = ?", id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := []model.MatchRecord{m}
	if err := db.attachInnings(out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// MatchesBetween returns every stored meeting of teams a and b, in replay order.
func (db *DB) MatchesBetween(a, b string) ([]model.MatchRecord, error) {
	rows, err := db.conn.Query(`
		SELECT `+matchColumns+` FROM matches
		WHERE (team1 = ? AND team2 = ?) OR (team1 = ? AND team2 = ?)
		ORDER BY season, match_id`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.attachInnings(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountMatches returns the number of stored matches.
func (db *DB) CountMatches() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches").Scan(&n)
	return n, err
}

// Teams returns every distinct team name in the store, sorted.
func (db *DB) Teams() ([]string, error) {
	return db.distinct(`
		SELECT team1 FROM matches UNION SELECT team2 FROM matches
		ORDER BY 1`)
}

// Venues returns every distinct venue in the store, sorted.
func (db *DB) Venues() ([]string, error) {
	return db.distinct("SELECT DISTINCT venue FROM matches ORDER BY venue")
}

// Seasons returns the distinct seasons present, ascending.
func (db *DB) Seasons() ([]int, error) {
	rows, err := db.conn.Query("SELECT DISTINCT season FROM matches ORDER BY season")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) distinct(q string) ([]string, error) {
	rows, err := db.conn.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// attachInnings loads innings rows for the given matches in one query and
// hangs them off Innings1 / Innings2.
func (db *DB) attachInnings(ms []model.MatchRecord) error {
	if len(ms) == 0 {
		return nil
	}
	byID := make(map[int64]*model.MatchRecord, len(ms))
	for i := range ms {
		byID[ms[i].ID] = &ms[i]
	}

	q := `
		SELECT match_id, innings, total_runs, total_wickets, balls_bowled,
		       pp_runs, pp_wickets, mo_runs, mo_wickets, do_runs, do_wickets,
		       extras_runs, dot_balls, boundaries
		FROM innings`
	var args []any
	// Small result sets filter in SQL; full listings just read the whole table.
	if len(ms) <= maxInArgs {
		q += " WHERE match_id IN (?" + strings.Repeat(",?", len(ms)-1) + ")"
		for _, m := range ms {
			args = append(args, m.ID)
		}
	}
	rows, err := db.conn.Query(q+" ORDER BY match_id, innings", args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			n  int
			s  model.InningsSummary
		)
		if err := rows.Scan(
			&id, &n, &s.TotalRuns, &s.TotalWickets, &s.BallsBowled,
			&s.Powerplay.Runs, &s.Powerplay.Wickets,
			&s.Middle.Runs, &s.Middle.Wickets,
			&s.Death.Runs, &s.Death.Wickets,
			&s.ExtrasRuns, &s.DotBalls, &s.Boundaries,
		); err != nil {
			return err
		}
		m, ok := byID[id]
		if !ok {
			continue
		}
		switch n {
		case 1:
			m.Innings1 = &s
		case 2:
			m.Innings2 = &s
		}
	}
	return rows.Err()
}

const maxInArgs = 500

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(r scanner) (model.MatchRecord, error) {
	var (
		m                model.MatchRecord
		matchType, dec   string
		targetR, targetO sql.NullFloat64
	)
	err := r.Scan(
		&m.ID, &m.Season, &matchType, &m.Venue, &m.Team1, &m.Team2,
		&m.TossWinner, &dec, &m.Winner, &m.Result, &targetR, &targetO,
	)
	if err != nil {
		return m, err
	}
	m.MatchType = model.MatchType(matchType)
	m.TossDecision = model.TossDecision(dec)
	m.TargetRuns = floatPtr(targetR)
	m.TargetOvers = floatPtr(targetO)
	return m, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
