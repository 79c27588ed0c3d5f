package features

// tossConversion counts toss wins by one team against one opponent and how
// many of those it turned into match wins.
type tossConversion struct {
	tossWins  int
	converted int
}

// h2hAgg keeps symmetric head-to-head records and the Laplace-smoothed
// toss advantage per ordered pair.
type h2hAgg struct {
	priorMatches   float64
	priorConverted float64
	pairs          map[pairKey]*winCount
	toss           map[pairKey]*tossConversion // (toss winner, opponent)
}

func newH2HAgg(p Params) *h2hAgg {
	return &h2hAgg{
		priorMatches:   p.H2HPriorMatches,
		priorConverted: p.H2HPriorConverted,
		pairs:          make(map[pairKey]*winCount),
		toss:           make(map[pairKey]*tossConversion),
	}
}

func (a *h2hAgg) name() string { return "h2h" }

// advantage is 0.5 with no toss history, otherwise
// (converted + priorConverted) / (tossWins + priorMatches).
func (a *h2hAgg) advantage(k pairKey) float64 {
	c, ok := a.toss[k]
	if !ok || c.tossWins == 0 {
		return 0.5
	}
	return (float64(c.converted) + a.priorConverted) / (float64(c.tossWins) + a.priorMatches)
}

func (a *h2hAgg) snapshot(s *slots, out map[string]float64) {
	rate := 0.5
	if c, ok := a.pairs[pairKey{s.t1, s.t2}]; ok {
		rate = ratio(c.wins, c.matches, 0.5)
	}
	out["head_to_head_winrate"] = rate
	out["team1_h2h_toss_advantage"] = a.advantage(pairKey{s.t1, s.t2})
	out["team2_h2h_toss_advantage"] = a.advantage(pairKey{s.t2, s.t1})
}

func (a *h2hAgg) pair(k pairKey) *winCount {
	c, ok := a.pairs[k]
	if !ok {
		c = &winCount{}
		a.pairs[k] = c
	}
	return c
}

func (a *h2hAgg) absorb(s *slots, o outcome) {
	ab, ba := a.pair(pairKey{s.t1, s.t2}), a.pair(pairKey{s.t2, s.t1})
	ab.matches++
	ba.matches++
	switch {
	case o.won(s.t1):
		ab.wins++
	case o.won(s.t2):
		ba.wins++
	}

	k := pairKey{s.tossWinner, s.tossLoser}
	c, ok := a.toss[k]
	if !ok {
		c = &tossConversion{}
		a.toss[k] = c
	}
	c.tossWins++
	if o.won(s.tossWinner) {
		c.converted++
	}
}
