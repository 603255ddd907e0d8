package seeding

import "github.com/charleschow/playoff-odds/internal/league"

// PlayoffSeed is one qualifying franchise.
type PlayoffSeed struct {
	FranchiseID      string `json:"franchise_id"`
	Seed             int    `json:"seed"`
	IsDivisionWinner bool   `json:"is_division_winner"`
}

// Standing is a franchise's place in the full league order. Seed is 0 for
// non-qualifiers.
type Standing struct {
	FranchiseID      string `json:"franchise_id"`
	Rank             int    `json:"rank"`
	Seed             int    `json:"seed"`
	IsDivisionWinner bool   `json:"is_division_winner"`
}

// Seeder assigns playoff seeds. It is deterministic and never mutates its
// inputs; one Seeder may be shared across goroutines.
type Seeder struct {
	divisions []league.Division
	slots     int
	warnings  []league.Warning
}

// New resolves the division structure for the given franchises once.
func New(divs league.DivisionMap, franchises []string, slots int) *Seeder {
	resolved, warnings := divs.ResolveDivisions(franchises)
	return &Seeder{divisions: resolved, slots: slots, warnings: warnings}
}

// ForLeague is New over every franchise in l's standings.
func ForLeague(l *league.League, slots int) *Seeder {
	return New(l.Divisions, l.FranchiseIDs(), slots)
}

func (s *Seeder) Slots() int                   { return s.slots }
func (s *Seeder) Divisions() []league.Division { return s.divisions }
func (s *Seeder) Warnings() []league.Warning   { return s.warnings }

// Seed returns seeds 1..min(slots, teams). Division winners take the top
// seeds in rank order and always precede wildcards.
func (s *Seeder) Seed(records league.Standings, h2h league.HeadToHead) []PlayoffSeed {
	winners, others := s.split(records, h2h)

	seeds := make([]PlayoffSeed, 0, s.slots)
	for _, id := range Rank(winners, records, h2h) {
		if len(seeds) == s.slots {
			return seeds
		}
		seeds = append(seeds, PlayoffSeed{FranchiseID: id, Seed: len(seeds) + 1, IsDivisionWinner: true})
	}
	for _, id := range Rank(others, records, h2h) {
		if len(seeds) == s.slots {
			break
		}
		seeds = append(seeds, PlayoffSeed{FranchiseID: id, Seed: len(seeds) + 1})
	}
	return seeds
}

// Order is the whole league best-first: the seeded teams in seed order,
// then everyone else by rank.
func (s *Seeder) Order(records league.Standings, h2h league.HeadToHead) []Standing {
	seeds := s.Seed(records, h2h)
	seeded := make(map[string]bool, len(seeds))
	out := make([]Standing, 0, len(records))
	for _, sd := range seeds {
		seeded[sd.FranchiseID] = true
		out = append(out, Standing{
			FranchiseID:      sd.FranchiseID,
			Rank:             len(out) + 1,
			Seed:             sd.Seed,
			IsDivisionWinner: sd.IsDivisionWinner,
		})
	}

	var rest []string
	for _, div := range s.divisions {
		for _, id := range div.Members {
			if _, ok := records[id]; ok && !seeded[id] {
				rest = append(rest, id)
			}
		}
	}
	for _, id := range Rank(rest, records, h2h) {
		out = append(out, Standing{FranchiseID: id, Rank: len(out) + 1})
	}
	return out
}

func (s *Seeder) split(records league.Standings, h2h league.HeadToHead) (winners, others []string) {
	for _, div := range s.divisions {
		var present []string
		for _, id := range div.Members {
			if _, ok := records[id]; ok {
				present = append(present, id)
			}
		}
		if len(present) == 0 {
			continue
		}
		ranked := Rank(present, records, h2h)
		winners = append(winners, ranked[0])
		others = append(others, ranked[1:]...)
	}
	return winners, others
}
