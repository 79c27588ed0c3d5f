package features

import "github.com/pable/go-cricket-metrics/internal/model"

// Schema is the fixed, ordered output column set consumed by the
// prediction service. Order is part of the contract.
var Schema = []string{
	// team form
	"team1_win_ratio",
	"team2_win_ratio",
	"team1_recent_form",
	"team2_recent_form",
	"team1_streak",
	"team2_streak",
	"win_ratio_diff",
	"recent_form_diff",
	"streak_diff",

	// head-to-head
	"head_to_head_winrate",
	"team1_h2h_toss_advantage",
	"team2_h2h_toss_advantage",
	"h2h_toss_advantage_diff",

	// toss behaviour
	"team1_toss_match_winrate",
	"team2_toss_match_winrate",
	"toss_match_winrate_diff",
	"venue_toss_winrate",
	"recent_toss_winrate_diff",
	"lost_toss_winrate_diff",
	"form_toss_boost_diff",
	"recent_toss_bat_rate_diff",

	// chasing / defending
	"team1_chasing_strength",
	"team1_defending_strength",
	"team2_chasing_strength",
	"team2_defending_strength",
	"pref_score_diff",
	"chasing_strength_diff",
	"defending_strength_diff",
	"team1_defending_strength_pressure",
	"team2_chasing_strength_pressure",
	"chasing_strength_pressure_diff",
	"defending_strength_pressure_diff",
	"pref_score_pressure_diff",

	// venue
	"venue_team1_winrate",
	"venue_team2_winrate",
	"venue_winrate_diff",
	"venue_avg_target_run",
	"venue_chasing_win_rate",
	"venue_defending_win_rate",
	"venue_bat_first_winrate",
	"venue_chase_winrate",
	"venue_toss_bias",

	// rolling batting / bowling
	"team_diff_batting_avg_pp_runs",
	"team_diff_batting_avg_mo_runs",
	"team_diff_batting_avg_do_runs",
	"team_diff_batting_avg_pp_wickets",
	"team_diff_batting_avg_mo_wickets",
	"team_diff_batting_avg_do_wickets",
	"team_diff_batting_avg_run_rate",
	"team_diff_batting_avg_boundaries",
	"team_diff_batting_avg_dot_rate",
	"team_diff_bowling_avg_economy_rate",
	"team_diff_bowling_avg_wicket_rate",
	"team_diff_bowling_avg_dot_rate",
	"team1_batting_index",
	"team2_batting_index",
	"batting_index_diff",
	"team1_bowling_index",
	"team2_bowling_index",
	"bowling_index_diff",

	// toss decision one-hot
	"toss_decision_bat",
	"toss_decision_field",
}

var schemaIndex = func() map[string]int {
	m := make(map[string]int, len(Schema))
	for i, name := range Schema {
		m[name] = i
	}
	return m
}()

// Vector is one assembled feature row, aligned with Schema.
type Vector struct {
	MatchID   int64     `json:"match_id,omitempty"`
	Values    []float64 `json:"values"`
	ColdStart bool      `json:"cold_start,omitempty"`
}

// Get returns the value of a named feature; ok is false for names outside Schema.
func (v Vector) Get(name string) (val float64, ok bool) {
	i, ok := schemaIndex[name]
	if !ok || i >= len(v.Values) {
		return 0, false
	}
	return v.Values[i], true
}

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(Schema))
	for i, name := range Schema {
		if i < len(v.Values) {
			out[name] = v.Values[i]
		}
	}
	return out
}

// Factors is the small explanation set returned next to a prediction vector.
type Factors struct {
	VenueAdvantage float64 `json:"venueAdvantage"`
	TossDecision   float64 `json:"tossDecision"`
	RecentForm     float64 `json:"recentForm"`
	HeadToHead     float64 `json:"headToHead"`
}

// Explain extracts the explanation factors from an assembled vector.
func (v Vector) Explain() Factors {
	get := func(n string) float64 { x, _ := v.Get(n); return x }
	return Factors{
		VenueAdvantage: get("venue_winrate_diff"),
		TossDecision:   get("toss_match_winrate_diff"),
		RecentForm:     get("recent_form_diff"),
		HeadToHead:     get("head_to_head_winrate"),
	}
}

func oneHot(d model.TossDecision) (bat, field float64) {
	switch d {
	case model.DecisionBat:
		return 1, 0
	case model.DecisionField:
		return 0, 1
	}
	return 0, 0
}
