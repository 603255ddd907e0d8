package season

import (
	"testing"

	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/league"
)

// homeWins always picks the home side.
type homeWins struct{}

func (homeWins) Decide(float64, winprob.Source) winprob.Outcome { return winprob.Win }

type constPredictor float64

func (p constPredictor) WinProbability(string, string) float64 { return float64(p) }

type midSource struct{}

func (midSource) Float64() float64 { return 0.5 }

func fourTeamLeague() *league.League {
	rec := func(id string, w, l int, pf float64) league.TeamRecord {
		return league.TeamRecord{FranchiseID: id, Wins: w, Losses: l, PointsFor: pf, PointsAgainst: pf}
	}
	return &league.League{
		ID:           "test",
		SeasonLength: 14,
		Standings: league.Standings{
			"a": rec("a", 8, 4, 1200),
			"b": rec("b", 6, 6, 1080),
			"c": rec("c", 6, 6, 960),
			"d": rec("d", 4, 8, 840),
		},
		Schedule: league.Schedule{
			"a": {{Week: 13, OpponentID: "b", IsHome: true}, {Week: 14, OpponentID: "c", IsHome: false}},
			"b": {{Week: 13, OpponentID: "a", IsHome: false}, {Week: 14, OpponentID: "d", IsHome: true}},
			"c": {{Week: 13, OpponentID: "d", IsHome: true}, {Week: 14, OpponentID: "a", IsHome: true}},
			"d": {{Week: 13, OpponentID: "c", IsHome: false}, {Week: 14, OpponentID: "b", IsHome: false}},
		},
		Divisions: league.DivisionMap{
			ByFranchise: map[string]string{"a": "east", "b": "east", "c": "west", "d": "west"},
		},
	}
}

func TestRunPlaysEachSharedGameOnce(t *testing.T) {
	l := fourTeamLeague()
	sim := New(l, constPredictor(0.5), homeWins{}, 0)

	trial := sim.Run(midSource{}, nil)

	totalGames := 0
	for id, rec := range trial.Records {
		played := rec.GamesPlayed() - l.Standings[id].GamesPlayed()
		if played != 2 {
			t.Errorf("%s played %d simulated games, want 2", id, played)
		}
		totalGames += played
	}
	if totalGames != 8 {
		t.Errorf("total team-games = %d, want 8 (4 games x 2 sides)", totalGames)
	}

	wantWins := map[string]int{"a": 9, "b": 7, "c": 8, "d": 4}
	for id, w := range wantWins {
		if got := trial.Records[id].Wins; got != w {
			t.Errorf("%s wins = %d, want %d", id, got, w)
		}
	}
}

func TestRunDoesNotMutateSnapshot(t *testing.T) {
	l := fourTeamLeague()
	before := l.Standings.Clone()
	sim := New(l, constPredictor(0.5), homeWins{}, 0.1)
	sim.Run(midSource{}, nil)

	for id, rec := range before {
		if l.Standings[id] != rec {
			t.Errorf("snapshot for %s changed: %+v -> %+v", id, rec, l.Standings[id])
		}
	}
}

func TestRunUpdatesDivisionRecordAndPoints(t *testing.T) {
	l := fourTeamLeague()
	sim := New(l, constPredictor(0.5), homeWins{}, 0)
	trial := sim.Run(midSource{}, nil)

	// a beat b (same division) at home in week 13, then lost at c.
	a := trial.Records["a"]
	if a.DivisionWins != 1 || a.DivisionLosses != 0 {
		t.Errorf("a division = %d-%d, want 1-0", a.DivisionWins, a.DivisionLosses)
	}
	if want := 1200.0 + 2*100; a.PointsFor != want {
		t.Errorf("a PF = %v, want %v", a.PointsFor, want)
	}
	if w, l, _ := trial.HeadToHead.Versus("a", "b"); w != 1 || l != 0 {
		t.Errorf("a vs b = %d-%d, want 1-0", w, l)
	}
}

func TestFixturesOverrideModel(t *testing.T) {
	l := fourTeamLeague()
	sim := New(l, constPredictor(0.5), homeWins{}, 0)

	key := league.GameKey{Week: 13, Pair: league.MakePair("a", "b")}
	trial := sim.Run(midSource{}, Fixtures{key: "b"})
	if got := trial.Records["b"].Wins; got != 8 {
		t.Errorf("b wins = %d, want 8 with fixed week-13 win", got)
	}

	// A winner that is not a participant is ignored.
	trial = sim.Run(midSource{}, Fixtures{key: "d"})
	if got := trial.Records["a"].Wins; got != 9 {
		t.Errorf("a wins = %d, want 9 when fixture names a non-participant", got)
	}
}

func TestProjectAppliesOnlyFixedGames(t *testing.T) {
	l := fourTeamLeague()
	sim := New(l, constPredictor(0.5), homeWins{}, 0)

	key := league.GameKey{Week: 14, Pair: league.MakePair("b", "d")}
	trial := sim.Project(Fixtures{key: "d"})

	if got := trial.Records["d"].Wins; got != 5 {
		t.Errorf("d wins = %d, want 5", got)
	}
	if got := trial.Records["a"].GamesPlayed(); got != 12 {
		t.Errorf("a games = %d, want 12 (unfixed games stay unplayed)", got)
	}
}

func TestMissingFranchiseSkippedWithWarning(t *testing.T) {
	l := fourTeamLeague()
	l.Schedule["d"] = append(l.Schedule["d"], league.RemainingGame{Week: 15, OpponentID: "ghost"})
	sim := New(l, constPredictor(0.5), homeWins{}, 0)

	if len(sim.Games()) != 4 {
		t.Errorf("len(Games()) = %d, want 4", len(sim.Games()))
	}
	if len(sim.Warnings()) != 1 || sim.Warnings()[0].Kind != league.WarnUnknownOpponent {
		t.Errorf("Warnings() = %v, want one unknown_opponent", sim.Warnings())
	}
	trial := sim.Run(midSource{}, nil)
	if _, ok := trial.Records["ghost"]; ok {
		t.Error("ghost franchise appeared in trial records")
	}
}
