package league

import (
	"fmt"
	"sort"
)

// GameKey identifies one real-world matchup: a week plus an unordered pair.
type GameKey struct {
	Week int
	Pair Pair
}

// Game is a deduplicated remaining matchup.
type Game struct {
	Key  GameKey
	Home string
	Away string
}

func (g Game) Involves(id string) bool {
	return g.Home == id || g.Away == id
}

// Opponent returns the other participant.
func (g Game) Opponent(id string) string {
	if g.Home == id {
		return g.Away
	}
	return g.Home
}

// UniqueGames flattens every franchise's remaining schedule into one list
// in which each (week, pair) appears exactly once. Games that reference a
// franchise missing from the standings are dropped with a warning, and a
// franchise without any schedule entry is reported and left untouched.
// The result is sorted by week, then home, then away.
func (l *League) UniqueGames() ([]Game, []Warning) {
	seen := make(map[GameKey]struct{})
	var games []Game
	var warnings []Warning

	owners := make([]string, 0, len(l.Schedule))
	for id := range l.Schedule {
		owners = append(owners, id)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		if _, ok := l.Standings[owner]; !ok {
			warnings = append(warnings, Warning{
				Kind:        WarnMissingStanding,
				FranchiseID: owner,
				Detail:      fmt.Sprintf("%d scheduled games skipped", len(l.Schedule[owner])),
			})
			continue
		}
		for _, rg := range l.Schedule[owner] {
			if _, ok := l.Standings[rg.OpponentID]; !ok {
				warnings = append(warnings, Warning{
					Kind:        WarnUnknownOpponent,
					FranchiseID: owner,
					Detail:      fmt.Sprintf("week %d opponent %q not in standings; game skipped", rg.Week, rg.OpponentID),
				})
				continue
			}
			if rg.OpponentID == owner {
				continue
			}
			key := GameKey{Week: rg.Week, Pair: MakePair(owner, rg.OpponentID)}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			g := Game{Key: key, Home: owner, Away: rg.OpponentID}
			if !rg.IsHome {
				g.Home, g.Away = rg.OpponentID, owner
			}
			games = append(games, g)
		}
	}

	for _, id := range l.FranchiseIDs() {
		if _, ok := l.Schedule[id]; !ok {
			warnings = append(warnings, Warning{
				Kind:        WarnMissingSchedule,
				FranchiseID: id,
				Detail:      "no schedule entry; record held at current value",
			})
		}
	}

	sort.Slice(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.Key.Week != b.Key.Week {
			return a.Key.Week < b.Key.Week
		}
		if a.Home != b.Home {
			return a.Home < b.Home
		}
		return a.Away < b.Away
	})
	return games, warnings
}

// GamesFor filters games down to those involving id, preserving order.
func GamesFor(games []Game, id string) []Game {
	var out []Game
	for _, g := range games {
		if g.Involves(id) {
			out = append(out, g)
		}
	}
	return out
}
