package features

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
	"github.com/pable/go-cricket-metrics/internal/ringbuf"
)

type tossRecord struct {
	tossWins, tossTotal         int // every toss the team took part in
	batChoices, batTotal        int // tosses it won
	wonToss, winsAfterWon       int
	lostToss, winsAfterLost     int
	winsWithForm, totalWithForm int
	form                        *ringbuf.Buffer[float64]
}

// formBoost is the toss winner's conversion rate minus its recent form, or
// 0 without history.
func (t *tossRecord) formBoost() float64 {
	if t.form.Len() == 0 || t.totalWithForm == 0 {
		return 0
	}
	return ratio(t.winsWithForm, t.totalWithForm, 0) - stat.Mean(t.form.All(), nil)
}

// tossAgg covers toss frequency, bat choice, toss conversion and the
// venue-level toss-winner win rate.
type tossAgg struct {
	teams  *table[tossRecord]
	venues *table[winCount]
}

func newTossAgg(p Params) *tossAgg {
	return &tossAgg{
		teams: newTable(func() *tossRecord {
			return &tossRecord{form: ringbuf.New[float64](p.TossFormWindow)}
		}),
		venues: newTable(func() *winCount { return &winCount{} }),
	}
}

func (a *tossAgg) name() string { return "toss" }

func (a *tossAgg) snapshot(s *slots, out map[string]float64) {
	for _, side := range []struct {
		prefix string
		h      registry.Handle
	}{{"team1_", s.t1}, {"team2_", s.t2}} {
		winRate, batRate, conv, lost, boost := 0.5, 0.5, 0.5, 0.5, 0.0
		if t := a.teams.get(side.h); t != nil {
			winRate = ratio(t.tossWins, t.tossTotal, 0.5)
			batRate = ratio(t.batChoices, t.batTotal, 0.5)
			conv = ratio(t.winsAfterWon, t.wonToss, 0.5)
			lost = ratio(t.winsAfterLost, t.lostToss, 0.5)
			boost = t.formBoost()
		}
		out[side.prefix+"recent_toss_winrate"] = winRate
		out[side.prefix+"recent_toss_bat_rate"] = batRate
		out[side.prefix+"toss_match_winrate"] = conv
		out[side.prefix+"lost_toss_winrate"] = lost
		out[side.prefix+"form_toss_boost"] = boost
	}

	venue := 0.5
	if v := a.venues.get(s.venue); v != nil {
		venue = ratio(v.wins, v.matches, 0.5)
	}
	out["venue_toss_winrate"] = venue
	out["venue_toss_bias"] = venue - 0.5
}

func (a *tossAgg) absorb(s *slots, o outcome) {
	winner := a.teams.at(s.tossWinner)
	loser := a.teams.at(s.tossLoser)
	tossWinnerWon := o.won(s.tossWinner)

	winner.tossWins++
	winner.tossTotal++
	loser.tossTotal++

	winner.batTotal++
	if s.decision == model.DecisionBat {
		winner.batChoices++
	}

	winner.wonToss++
	if tossWinnerWon {
		winner.winsAfterWon++
	}

	a.venues.at(s.venue).add(tossWinnerWon)

	loser.lostToss++
	if o.won(s.tossLoser) {
		loser.winsAfterLost++
	}

	for _, h := range []registry.Handle{s.t1, s.t2} {
		if o.won(h) {
			a.teams.at(h).form.Push(1)
		} else {
			a.teams.at(h).form.Push(0)
		}
	}
	winner.totalWithForm++
	if tossWinnerWon {
		winner.winsWithForm++
	}
}
