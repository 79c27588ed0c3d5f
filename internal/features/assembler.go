package features

import (
	"math"
	"strings"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// Assemble merges aggregator partials into one Schema-ordered Vector. Every
// team1_<x>/team2_<x> pair yields <x>_diff unless a partial already carries
// that name. Columns nobody produced, and any non-finite value, become 0.
func Assemble(partials map[string]float64, decision model.TossDecision) Vector {
	all := make(map[string]float64, len(partials)*2)
	for name, v := range partials {
		all[name] = v
	}
	for name, v1 := range partials {
		suffix, ok := strings.CutPrefix(name, "team1_")
		if !ok {
			continue
		}
		v2, ok := partials["team2_"+suffix]
		if !ok {
			continue
		}
		if _, exists := partials[suffix+"_diff"]; !exists {
			all[suffix+"_diff"] = v1 - v2
		}
	}

	values := make([]float64, len(Schema))
	for i, name := range Schema {
		v := all[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		values[i] = v
	}
	bat, field := oneHot(decision)
	values[schemaIndex["toss_decision_bat"]] = bat
	values[schemaIndex["toss_decision_field"]] = field
	return Vector{Values: values}
}
