package scenario

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/charleschow/playoff-odds/internal/core/montecarlo"
	"github.com/charleschow/playoff-odds/internal/core/season"
	"github.com/charleschow/playoff-odds/internal/core/seeding"
	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/league"
)

// fourTeams: two divisions, weeks 13 and 14 left for everyone.
func fourTeams() *league.League {
	rec := func(id string, w, l int, pf float64) league.TeamRecord {
		return league.TeamRecord{FranchiseID: id, Wins: w, Losses: l, PointsFor: pf, PointsAgainst: 1000}
	}
	return &league.League{
		ID:           "sc",
		SeasonLength: 14,
		Standings: league.Standings{
			"a": rec("a", 9, 3, 1440),
			"b": rec("b", 6, 6, 1200),
			"c": rec("c", 6, 6, 1140),
			"d": rec("d", 3, 9, 960),
		},
		Schedule: league.Schedule{
			"a": {{Week: 13, OpponentID: "b", IsHome: true}, {Week: 14, OpponentID: "c", IsHome: false}},
			"b": {{Week: 13, OpponentID: "a", IsHome: false}, {Week: 14, OpponentID: "d", IsHome: true}},
			"c": {{Week: 13, OpponentID: "d", IsHome: true}, {Week: 14, OpponentID: "a", IsHome: true}},
			"d": {{Week: 13, OpponentID: "c", IsHome: false}, {Week: 14, OpponentID: "b", IsHome: false}},
		},
		Divisions: league.DivisionMap{
			ByFranchise: map[string]string{"a": "east", "b": "east", "c": "west", "d": "west"},
			Names:       map[string]string{"east": "East", "west": "West"},
		},
	}
}

func newEngine(l *league.League) *Engine {
	bounds := winprob.DefaultBounds()
	model := winprob.NewModel(l, 3, bounds)
	sim := season.New(l, model, winprob.JitterDecider{Jitter: 0.1, Bounds: bounds}, 0.1)
	seeder := seeding.ForLeague(l, 2)
	mc := montecarlo.New(sim, seeder, l.FranchiseIDs())
	return New(l, sim, seeder, mc)
}

func TestBestCaseWinsEveryRemainingGame(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	for _, id := range l.FranchiseIDs() {
		res, err := e.BestCase(context.Background(), id, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if want := l.Standings[id].Wins + l.RemainingCount(id); res.Wins != want {
			t.Errorf("%s best-case wins = %d, want %d", id, res.Wins, want)
		}
		if res.Probability <= 0 || res.Probability > 100 {
			t.Errorf("%s best-case probability = %v", id, res.Probability)
		}
		if !strings.HasPrefix(res.Description, "Win out: go 2-0") {
			t.Errorf("%s description = %q", id, res.Description)
		}
		if res.PlayoffProbability != nil {
			t.Errorf("%s playoff probability set without residual", id)
		}
	}
}

func TestWorstCaseLosesEveryRemainingGame(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	res, err := e.WorstCase(context.Background(), "a", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := l.Standings["a"].Losses + 2; res.Losses != want {
		t.Errorf("worst-case losses = %d, want %d", res.Losses, want)
	}
	if res.Record != "9-5" {
		t.Errorf("record = %q, want 9-5", res.Record)
	}
}

func TestBestAndWorstProbabilitiesUseModel(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	best, _ := e.BestCase(context.Background(), "d", Options{})
	worst, _ := e.WorstCase(context.Background(), "d", Options{})

	pc := e.predictor.WinProbability("d", "c")
	pb := e.predictor.WinProbability("d", "b")
	if want := pc * pb * 100; math.Abs(best.Probability-want) > 1e-9 {
		t.Errorf("best probability = %v, want %v", best.Probability, want)
	}
	if want := (1 - pc) * (1 - pb) * 100; math.Abs(worst.Probability-want) > 1e-9 {
		t.Errorf("worst probability = %v, want %v", worst.Probability, want)
	}
}

func TestMostLikely(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	res, err := e.MostLikely(context.Background(), "a", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Wins < 9 || res.Wins > 11 {
		t.Errorf("most-likely wins = %d, want within [9, 11]", res.Wins)
	}
	if math.Mod(res.Probability, 5) != 0 {
		t.Errorf("probability %v is not banded to 5%%", res.Probability)
	}
	if res.Likelihood == "" || !strings.HasPrefix(res.Description, "Most likely: go ") {
		t.Errorf("likelihood %q description %q", res.Likelihood, res.Description)
	}
}

func TestSeasonComplete(t *testing.T) {
	l := fourTeams()
	l.Schedule = league.Schedule{}
	e := newEngine(l)

	for _, fn := range []func(context.Context, string, Options) (Result, error){e.BestCase, e.WorstCase, e.MostLikely} {
		res, err := fn(context.Background(), "a", Options{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Record != "9-3" || res.Probability != 100 || res.Seed != 1 {
			t.Errorf("season complete result = %+v", res)
		}
		if !strings.HasPrefix(res.Description, "Season complete") {
			t.Errorf("description = %q", res.Description)
		}
	}
}

func TestCustomSeasonComplete(t *testing.T) {
	l := fourTeams()
	l.Schedule = league.Schedule{}
	e := newEngine(l)

	res, err := e.Custom(context.Background(), "a", map[int]Pick{13: PickWin}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ProjectedRecord != "9-3" || res.ProjectedSeed != 1 || res.Probability != 100 {
		t.Errorf("season complete custom = %+v", res)
	}
	if !strings.HasPrefix(res.Description, "Season complete") {
		t.Errorf("description = %q, want season complete", res.Description)
	}
	if !reflect.DeepEqual(res.IgnoredWeeks, []int{13}) {
		t.Errorf("ignored weeks = %v, want [13]", res.IgnoredWeeks)
	}
}

func TestCustomPicks(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)

	res, err := e.Custom(context.Background(), "d", map[int]Pick{13: PickWin, 14: PickWin, 20: PickLoss}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ProjectedRecord != "5-9" {
		t.Errorf("projected record = %q, want 5-9", res.ProjectedRecord)
	}
	if !reflect.DeepEqual(res.IgnoredWeeks, []int{20}) {
		t.Errorf("ignored weeks = %v, want [20]", res.IgnoredWeeks)
	}

	best, _ := e.BestCase(context.Background(), "d", Options{})
	if math.Abs(res.Probability-best.Probability) > 1e-9 {
		t.Errorf("all-win custom probability %v != best case %v", res.Probability, best.Probability)
	}
}

func TestCustomUndecidedWeeksProjected(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	res, err := e.Custom(context.Background(), "a", map[int]Pick{13: PickLoss}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Week 13 is a picked loss; week 14 against the weaker c projects as a win.
	if res.ProjectedRecord != "10-4" {
		t.Errorf("projected record = %q, want 10-4", res.ProjectedRecord)
	}
}

func TestResidualSetsPlayoffProbability(t *testing.T) {
	l := fourTeams()
	e := newEngine(l)
	opts := Options{Residual: true, Iterations: 500, Workers: 2, Sources: winprob.SeededFactory(11)}

	best, err := e.BestCase(context.Background(), "a", opts)
	if err != nil {
		t.Fatal(err)
	}
	if best.PlayoffProbability == nil || *best.PlayoffProbability != 100 {
		t.Errorf("best-case residual = %v, want 100", best.PlayoffProbability)
	}

	custom, err := e.Custom(context.Background(), "d", map[int]Pick{13: PickLoss, 14: PickLoss}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if custom.PlayoffProbability == nil {
		t.Fatal("custom residual not set")
	}
}

func TestUnknownFranchise(t *testing.T) {
	e := newEngine(fourTeams())
	if _, err := e.BestCase(context.Background(), "zzz", Options{}); !errors.Is(err, league.ErrUnknownFranchise) {
		t.Errorf("BestCase error = %v, want ErrUnknownFranchise", err)
	}
	if _, err := e.Custom(context.Background(), "zzz", nil, Options{}); !errors.Is(err, league.ErrUnknownFranchise) {
		t.Errorf("Custom error = %v, want ErrUnknownFranchise", err)
	}
}

func TestExactWinsProbability(t *testing.T) {
	probs := []float64{0.5, 0.5}
	tests := []struct {
		k    int
		want float64
	}{{0, 0.25}, {1, 0.5}, {2, 0.25}, {3, 0}}
	for _, tt := range tests {
		if got := exactWinsProbability(probs, tt.k); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("exactWinsProbability(k=%d) = %v, want %v", tt.k, got, tt.want)
		}
	}
}
