package league

import (
	"encoding/json"
	"sort"
)

// Pair is an unordered franchise pair; A always sorts before B.
type Pair struct {
	A, B string
}

func MakePair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// PairRecord is the series between the two franchises of a Pair.
type PairRecord struct {
	AWins int `json:"a_wins"`
	BWins int `json:"b_wins"`
	Ties  int `json:"ties"`
}

// HeadToHead holds completed results between franchise pairs.
type HeadToHead map[Pair]PairRecord

// AddResult records one game. tie overrides winner.
func (h HeadToHead) AddResult(winner, loser string, tie bool) {
	p := MakePair(winner, loser)
	rec := h[p]
	switch {
	case tie:
		rec.Ties++
	case winner == p.A:
		rec.AWins++
	default:
		rec.BWins++
	}
	h[p] = rec
}

// Versus returns (wins, losses, ties) of team against opp.
func (h HeadToHead) Versus(team, opp string) (int, int, int) {
	p := MakePair(team, opp)
	rec, ok := h[p]
	if !ok {
		return 0, 0, 0
	}
	if team == p.A {
		return rec.AWins, rec.BWins, rec.Ties
	}
	return rec.BWins, rec.AWins, rec.Ties
}

// WinPctAmong is team's win percentage in games against the other members
// of group. A team that never met the others scores 0.
func (h HeadToHead) WinPctAmong(team string, group []string) float64 {
	var w, l, t int
	for _, opp := range group {
		if opp == team {
			continue
		}
		gw, gl, gt := h.Versus(team, opp)
		w += gw
		l += gl
		t += gt
	}
	return ratio(float64(w)+0.5*float64(t), float64(w+l+t))
}

func (h HeadToHead) Clone() HeadToHead {
	out := make(HeadToHead, len(h))
	for p, r := range h {
		out[p] = r
	}
	return out
}

type pairEntry struct {
	A string `json:"a"`
	B string `json:"b"`
	PairRecord
}

func (h HeadToHead) MarshalJSON() ([]byte, error) {
	entries := make([]pairEntry, 0, len(h))
	for p, r := range h {
		entries = append(entries, pairEntry{A: p.A, B: p.B, PairRecord: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].A != entries[j].A {
			return entries[i].A < entries[j].A
		}
		return entries[i].B < entries[j].B
	})
	return json.Marshal(entries)
}

func (h *HeadToHead) UnmarshalJSON(data []byte) error {
	var entries []pairEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	out := make(HeadToHead, len(entries))
	for _, e := range entries {
		p := MakePair(e.A, e.B)
		rec := e.PairRecord
		if p.A != e.A {
			rec.AWins, rec.BWins = rec.BWins, rec.AWins
		}
		out[p] = rec
	}
	*h = out
	return nil
}
