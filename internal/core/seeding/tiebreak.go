package seeding

import (
	"math"
	"sort"

	"github.com/charleschow/playoff-odds/internal/league"
)

// Tiebreak steps, in precedence order.
type step int

const (
	stepWinPct step = iota
	stepHeadToHead
	stepDivision
	stepPointsFor
	stepFranchiseID
)

const keyEpsilon = 1e-9

// Rank orders ids best-first: win percentage, then head-to-head among the
// teams still tied, then division win percentage, then points for, then
// franchise id. When head-to-head splits a tie into smaller groups, each
// smaller group is re-evaluated head-to-head among its own members only.
// The input slice is not modified.
func Rank(ids []string, records league.Standings, h2h league.HeadToHead) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	r := ranker{records: records, h2h: h2h}
	r.resolve(out, stepWinPct)
	return out
}

type ranker struct {
	records league.Standings
	h2h     league.HeadToHead
}

func (r ranker) resolve(group []string, st step) {
	if len(group) < 2 {
		return
	}
	if st == stepFranchiseID {
		sort.Strings(group)
		return
	}

	keys := make(map[string]float64, len(group))
	for _, id := range group {
		keys[id] = r.key(id, group, st)
	}
	sort.SliceStable(group, func(i, j int) bool {
		return keys[group[i]] > keys[group[j]]+keyEpsilon
	})

	for start := 0; start < len(group); {
		end := start + 1
		for end < len(group) && math.Abs(keys[group[end]]-keys[group[start]]) <= keyEpsilon {
			end++
		}
		run := group[start:end]
		next := st + 1
		if st == stepHeadToHead && len(run) > 1 && len(run) < len(group) {
			next = stepHeadToHead
		}
		r.resolve(run, next)
		start = end
	}
}

func (r ranker) key(id string, group []string, st step) float64 {
	rec := r.records[id]
	switch st {
	case stepWinPct:
		return rec.WinPct()
	case stepHeadToHead:
		if r.h2h == nil {
			return 0
		}
		return r.h2h.WinPctAmong(id, group)
	case stepDivision:
		return rec.DivisionWinPct()
	case stepPointsFor:
		return rec.PointsFor
	}
	return 0
}
