package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// Split seasons in the feed that are not named after their first year.
var seasonFixups = map[string]int{
	"2020/21": 2020,
	"2009/10": 2010,
	"2007/08": 2008,
}

// NormalizeSeason maps the feed's mixed season strings to a single year.
func NormalizeSeason(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if y, ok := seasonFixups[s]; ok {
		return y, nil
	}
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil && y >= 1900 {
			return y, nil
		}
	}
	return 0, fmt.Errorf("unrecognised season %q", raw)
}

// NormalizeMatchType folds the feed's stage labels into the four categories.
// League match numbers and anything unrecognised count as League.
func NormalizeMatchType(raw string) model.MatchType {
	switch strings.TrimSpace(raw) {
	case "Final":
		return model.MatchFinal
	case "Qualifier 1", "Elimination Final", "Eliminator", "Semi Final":
		return model.MatchEliminator1
	case "Qualifier 2", "3rd Place Play-Off":
		return model.MatchEliminator2
	}
	return model.MatchLeague
}
