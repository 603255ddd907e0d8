package league

import "fmt"

// ratio returns num/den, or 0 when den is 0. Every percentage in the
// simulation core goes through here so no NaN ever reaches a comparison.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func (r TeamRecord) GamesPlayed() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPct counts a tie as half a win.
func (r TeamRecord) WinPct() float64 {
	return ratio(float64(r.Wins)+0.5*float64(r.Ties), float64(r.GamesPlayed()))
}

func (r TeamRecord) DivisionWinPct() float64 {
	games := r.DivisionWins + r.DivisionLosses + r.DivisionTies
	return ratio(float64(r.DivisionWins)+0.5*float64(r.DivisionTies), float64(games))
}

func (r TeamRecord) AvgPointsFor() float64 {
	return ratio(r.PointsFor, float64(r.GamesPlayed()))
}

func (r TeamRecord) AvgPointsAgainst() float64 {
	return ratio(r.PointsAgainst, float64(r.GamesPlayed()))
}

// Clone copies the standings so the caller can mutate the result freely.
func (s Standings) Clone() Standings {
	out := make(Standings, len(s))
	for id, r := range s {
		out[id] = r
	}
	return out
}

// RecordString renders W-L or W-L-T.
func (r TeamRecord) RecordString() string {
	return FormatRecord(r.Wins, r.Losses, r.Ties)
}

func FormatRecord(w, l, t int) string {
	if t > 0 {
		return fmt.Sprintf("%d-%d-%d", w, l, t)
	}
	return fmt.Sprintf("%d-%d", w, l)
}
