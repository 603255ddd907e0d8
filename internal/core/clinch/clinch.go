// Package clinch derives magic numbers, elimination numbers and clinch
// text from current standings and a Monte Carlo playoff probability.
package clinch

import (
	"fmt"
	"math"

	"github.com/charleschow/playoff-odds/internal/core/seeding"
	"github.com/charleschow/playoff-odds/internal/league"
)

// Sentinel marks a number that can no longer be reached.
const Sentinel = 99

// Playoff-probability thresholds, in percent, for clinched and eliminated.
const (
	ClinchedPct   = 99.9
	EliminatedPct = 1.0
)

// Input describes one franchise against the current league order.
type Input struct {
	FranchiseID            string
	Order                  []seeding.Standing
	Standings              league.Standings
	Remaining              map[string]int
	Slots                  int
	PlayoffProbability     float64
	DivisionWinProbability float64
}

// Metrics is the derived output for one franchise.
type Metrics struct {
	MagicNumber       int      `json:"magic_number"`
	EliminationNumber int      `json:"elimination_number"`
	Scenarios         []string `json:"clinch_scenarios"`
}

func Calculate(in Input) Metrics {
	magic := MagicNumber(in)
	elim := EliminationNumber(in)
	return Metrics{
		MagicNumber:       magic,
		EliminationNumber: elim,
		Scenarios:         Scenarios(in, magic, elim),
	}
}

// MagicNumber is the wins the franchise still needs so that the bubble
// team cannot catch it even by winning out.
func MagicNumber(in Input) int {
	rem := in.Remaining[in.FranchiseID]
	switch {
	case in.PlayoffProbability >= ClinchedPct:
		return 0
	case rem == 0, in.PlayoffProbability < EliminatedPct:
		return Sentinel
	}
	bubble, ok := kthOther(in)
	if !ok {
		return 0
	}
	bubbleMax := in.Standings[bubble].Wins + in.Remaining[bubble]
	return bounded(bubbleMax+1-in.Standings[in.FranchiseID].Wins, rem)
}

// EliminationNumber is the losses that leave the franchise unable to reach
// the last qualifying team even by winning every other game. It is 0 once
// the franchise is already eliminated.
func EliminationNumber(in Input) int {
	switch {
	case in.PlayoffProbability >= ClinchedPct:
		return Sentinel
	case in.PlayoffProbability < EliminatedPct:
		return 0
	}
	rem := in.Remaining[in.FranchiseID]
	last, ok := kthOther(in)
	if !ok {
		return Sentinel
	}
	maxWins := in.Standings[in.FranchiseID].Wins + rem
	return bounded(maxWins-in.Standings[last].Wins+1, rem)
}

// Scenarios picks a message by probability bracket.
func Scenarios(in Input, magic, elim int) []string {
	p := in.PlayoffProbability
	rem := in.Remaining[in.FranchiseID]

	switch {
	case p >= ClinchedPct:
		out := []string{"Clinched a playoff berth"}
		if in.DivisionWinProbability >= ClinchedPct {
			out = append(out, "Clinched the division title")
		}
		return out
	case p < EliminatedPct:
		return []string{"Eliminated from playoff contention"}
	case rem == 0:
		return []string{"Season complete; playoff fate depends on other results"}
	}

	need := fmt.Sprintf("%d of %d remaining games (%d%%)", magic, rem, fractionPct(magic, rem))
	switch {
	case p >= 80:
		return []string{fmt.Sprintf("Magic number %d: win %s to lock up a berth", magic, need)}
	case p >= 50:
		return []string{fmt.Sprintf("In control: winning %s clinches without help", need)}
	case p >= 20:
		return []string{fmt.Sprintf("On the bubble: needs %s plus help; elimination number %d", need, elim)}
	default:
		return []string{fmt.Sprintf("Long shot: must win %s and get help; eliminated after %d more losses", need, elim)}
	}
}

// kthOther is the team holding the last playoff slot once the subject is
// removed from the order.
func kthOther(in Input) (string, bool) {
	if in.Slots <= 0 {
		return "", false
	}
	seen := 0
	for _, s := range in.Order {
		if s.FranchiseID == in.FranchiseID {
			continue
		}
		seen++
		if seen == in.Slots {
			return s.FranchiseID, true
		}
	}
	return "", false
}

func bounded(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

func fractionPct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}
