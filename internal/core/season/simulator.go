package season

import (
	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/league"
)

// Fixtures pins the winner of specific games. A fixed game is applied
// without consulting the model.
type Fixtures map[league.GameKey]string

// Trial is one self-consistent end-of-season world. It owns its maps.
type Trial struct {
	Records    league.Standings
	HeadToHead league.HeadToHead
}

// Simulator plays out the remaining schedule. It holds only read-only
// state after construction and may be shared by concurrent workers.
type Simulator struct {
	base         league.Standings
	h2h          league.HeadToHead
	divisions    league.DivisionMap
	games        []league.Game
	avgFor       map[string]float64
	predictor    winprob.Predictor
	decider      winprob.Decider
	pointsJitter float64
	warnings     []league.Warning
}

func New(l *league.League, predictor winprob.Predictor, decider winprob.Decider, pointsJitter float64) *Simulator {
	games, warnings := l.UniqueGames()

	avg := make(map[string]float64, len(l.Standings))
	for id, rec := range l.Standings {
		avg[id] = rec.AvgPointsFor()
	}

	h2h := l.HeadToHead
	if h2h == nil {
		h2h = league.HeadToHead{}
	}

	return &Simulator{
		base:         l.Standings.Clone(),
		h2h:          h2h.Clone(),
		divisions:    l.Divisions,
		games:        games,
		avgFor:       avg,
		predictor:    predictor,
		decider:      decider,
		pointsJitter: pointsJitter,
		warnings:     warnings,
	}
}

// Games is the deduplicated remaining schedule, sorted by week.
func (s *Simulator) Games() []league.Game { return s.games }

// Warnings lists data gaps found while building the schedule.
func (s *Simulator) Warnings() []league.Warning { return s.warnings }

// Predictor is the model the simulator draws win probabilities from.
func (s *Simulator) Predictor() winprob.Predictor { return s.predictor }

// Run simulates every remaining game once. Games in fixed are decided by
// the fixture; all others are drawn from rng.
func (s *Simulator) Run(rng winprob.Source, fixed Fixtures) Trial {
	t := s.fresh()
	for _, g := range s.games {
		winner, ok := fixed[g.Key]
		if !ok || !g.Involves(winner) {
			p := s.predictor.WinProbability(g.Home, g.Away)
			winner = g.Away
			if s.decider.Decide(p, rng) == winprob.Win {
				winner = g.Home
			}
		}
		homePts := s.samplePoints(g.Home, rng)
		awayPts := s.samplePoints(g.Away, rng)
		s.apply(t, g, winner, homePts, awayPts)
	}
	return t
}

// Project applies only the fixed games, scoring each side at its season
// average. Unfixed games stay unplayed. No randomness is involved.
func (s *Simulator) Project(fixed Fixtures) Trial {
	t := s.fresh()
	for _, g := range s.games {
		winner, ok := fixed[g.Key]
		if !ok || !g.Involves(winner) {
			continue
		}
		s.apply(t, g, winner, s.avgFor[g.Home], s.avgFor[g.Away])
	}
	return t
}

func (s *Simulator) fresh() Trial {
	return Trial{
		Records:    s.base.Clone(),
		HeadToHead: s.h2h.Clone(),
	}
}

func (s *Simulator) samplePoints(id string, rng winprob.Source) float64 {
	return s.avgFor[id] * (1 + (rng.Float64()*2-1)*s.pointsJitter)
}

// apply updates both participants together.
func (s *Simulator) apply(t Trial, g league.Game, winner string, homePts, awayPts float64) {
	loser := g.Opponent(winner)
	w, l := t.Records[winner], t.Records[loser]

	w.Wins++
	l.Losses++
	if s.divisions.SameDivision(winner, loser) {
		w.DivisionWins++
		l.DivisionLosses++
	}

	winPts, losePts := homePts, awayPts
	if winner == g.Away {
		winPts, losePts = awayPts, homePts
	}
	w.PointsFor += winPts
	w.PointsAgainst += losePts
	l.PointsFor += losePts
	l.PointsAgainst += winPts

	t.Records[winner] = w
	t.Records[loser] = l
	t.HeadToHead.AddResult(winner, loser, false)
}
