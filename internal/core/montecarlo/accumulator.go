package montecarlo

import "github.com/charleschow/playoff-odds/internal/core/seeding"

// Counts is one franchise's tally over a run.
type Counts struct {
	Playoff     int
	DivisionWin int
	Wildcard    int
	Seeds       []int // Seeds[i] counts finishes as seed i+1
	SeedSum     int
}

// accumulator is owned by exactly one worker until merged.
type accumulator struct {
	trials int
	counts map[string]*Counts
}

func newAccumulator(ids []string, slots int) *accumulator {
	a := &accumulator{counts: make(map[string]*Counts, len(ids))}
	for _, id := range ids {
		a.counts[id] = &Counts{Seeds: make([]int, slots)}
	}
	return a
}

func (a *accumulator) tally(seeds []seeding.PlayoffSeed) {
	a.trials++
	for _, s := range seeds {
		c, ok := a.counts[s.FranchiseID]
		if !ok {
			continue
		}
		c.Playoff++
		if s.IsDivisionWinner {
			c.DivisionWin++
		} else {
			c.Wildcard++
		}
		if s.Seed >= 1 && s.Seed <= len(c.Seeds) {
			c.Seeds[s.Seed-1]++
		}
		c.SeedSum += s.Seed
	}
}

func (a *accumulator) merge(b *accumulator) {
	a.trials += b.trials
	for id, bc := range b.counts {
		ac, ok := a.counts[id]
		if !ok {
			continue
		}
		ac.Playoff += bc.Playoff
		ac.DivisionWin += bc.DivisionWin
		ac.Wildcard += bc.Wildcard
		ac.SeedSum += bc.SeedSum
		for i := range ac.Seeds {
			ac.Seeds[i] += bc.Seeds[i]
		}
	}
}
