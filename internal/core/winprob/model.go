package winprob

import (
	"gonum.org/v1/gonum/stat"

	"github.com/charleschow/playoff-odds/internal/league"
)

// Predictor estimates the probability that a beats b.
type Predictor interface {
	WinProbability(a, b string) float64
}

// Model is the points-based win probability model. Team strength is the
// season scoring average scaled by a recent-form multiplier. Everything is
// computed once from the snapshot, so a Model is safe for concurrent use.
type Model struct {
	bounds   Bounds
	strength map[string]float64
	form     map[string]float64
}

// NewModel rates every franchise in l. formWindow is how many of the most
// recent weekly scores feed the form multiplier.
func NewModel(l *league.League, formWindow int, bounds Bounds) *Model {
	m := &Model{
		bounds:   bounds,
		strength: make(map[string]float64, len(l.Standings)),
		form:     make(map[string]float64, len(l.Standings)),
	}
	for id, rec := range l.Standings {
		f := FormMultiplier(rec, l.RecentScores[id], formWindow, bounds)
		m.form[id] = f
		m.strength[id] = rec.AvgPointsFor() * f
	}
	return m
}

// FormMultiplier scales recent performance into [FormMin, FormMax]. With
// recent weekly scores it compares their mean to the season average;
// without them it maps win percentage linearly across the range.
func FormMultiplier(rec league.TeamRecord, recent []float64, window int, bounds Bounds) float64 {
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	avg := rec.AvgPointsFor()
	if len(recent) > 0 && avg > 0 {
		return clamp(stat.Mean(recent, nil)/avg, bounds.FormMin, bounds.FormMax)
	}
	span := bounds.FormMax - bounds.FormMin
	return clamp(bounds.FormMin+span*rec.WinPct(), bounds.FormMin, bounds.FormMax)
}

// WinProbability returns the clamped share of combined strength held by a.
// Two teams with no scoring history are a coin flip.
func (m *Model) WinProbability(a, b string) float64 {
	sa, sb := m.strength[a], m.strength[b]
	if sa+sb <= 0 {
		return 0.5
	}
	return m.bounds.Clamp(sa / (sa + sb))
}

// Form exposes the multiplier computed for id (0 if unknown).
func (m *Model) Form(id string) float64 {
	return m.form[id]
}
