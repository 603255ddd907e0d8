package scenario

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/charleschow/playoff-odds/internal/core/montecarlo"
	"github.com/charleschow/playoff-odds/internal/core/season"
	"github.com/charleschow/playoff-odds/internal/core/seeding"
	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

// Pick is a user-chosen result for one week: "W", "L", or "" (undecided).
type Pick string

const (
	PickWin       Pick = "W"
	PickLoss      Pick = "L"
	PickUndecided Pick = ""
)

// Options requests the optional residual Monte Carlo pass. Without it every
// call is a single deterministic seeding pass.
type Options struct {
	Residual   bool
	Iterations int
	Workers    int
	Sources    winprob.SourceFactory
}

// Result is a best, worst or most-likely projection. Probability is a
// percentage. PlayoffProbability is only set when a residual pass ran.
type Result struct {
	FranchiseID        string   `json:"franchise_id"`
	Record             string   `json:"record"`
	Wins               int      `json:"wins"`
	Losses             int      `json:"losses"`
	Ties               int      `json:"ties"`
	Seed               int      `json:"seed"`
	Probability        float64  `json:"probability"`
	Likelihood         string   `json:"likelihood,omitempty"`
	Description        string   `json:"description"`
	PlayoffProbability *float64 `json:"playoff_probability,omitempty"`
}

// CustomResult is the answer to a what-if pick sheet.
type CustomResult struct {
	FranchiseID        string   `json:"franchise_id"`
	ProjectedRecord    string   `json:"projected_record"`
	ProjectedSeed      int      `json:"projected_seed"`
	Probability        float64  `json:"probability"`
	Description        string   `json:"description,omitempty"`
	PlayoffProbability *float64 `json:"playoff_probability,omitempty"`
	IgnoredWeeks       []int    `json:"ignored_weeks,omitempty"`
}

// Engine projects deterministic what-if outcomes. All seeding goes through
// the shared Seeder.
type Engine struct {
	league    *league.League
	sim       *season.Simulator
	seeder    *seeding.Seeder
	mc        *montecarlo.Engine
	predictor winprob.Predictor
}

func New(l *league.League, sim *season.Simulator, seeder *seeding.Seeder, mc *montecarlo.Engine) *Engine {
	return &Engine{league: l, sim: sim, seeder: seeder, mc: mc, predictor: sim.Predictor()}
}

// BestCase fixes every remaining game of id as a win.
func (e *Engine) BestCase(ctx context.Context, id string, opts Options) (Result, error) {
	return e.extreme(ctx, id, true, opts)
}

// WorstCase fixes every remaining game of id as a loss.
func (e *Engine) WorstCase(ctx context.Context, id string, opts Options) (Result, error) {
	return e.extreme(ctx, id, false, opts)
}

func (e *Engine) extreme(ctx context.Context, id string, win bool, opts Options) (Result, error) {
	defer observe(time.Now())
	games, err := e.gamesFor(id)
	if err != nil {
		return Result{}, err
	}
	if len(games) == 0 {
		return e.seasonComplete(id), nil
	}

	fixtures := make(season.Fixtures, len(games))
	prob := 1.0
	for _, g := range games {
		p := e.predictor.WinProbability(id, g.Opponent(id))
		if win {
			fixtures[g.Key] = id
			prob *= p
		} else {
			fixtures[g.Key] = g.Opponent(id)
			prob *= 1 - p
		}
	}

	res := e.project(id, fixtures)
	res.Probability = prob * 100
	w, l := len(games), 0
	verb := "Win out"
	if !win {
		w, l = 0, len(games)
		verb = "Lose out"
	}
	res.Description = fmt.Sprintf("%s: go %s to finish %s, %s", verb, league.FormatRecord(w, l, 0), res.Record, seedPhrase(res.Seed))

	if opts.Residual {
		pp, err := e.residual(ctx, id, fixtures, opts)
		if err != nil {
			return Result{}, err
		}
		res.PlayoffProbability = &pp
	}
	return res, nil
}

// MostLikely rounds the expected win total and assigns those wins to the
// franchise's most winnable games.
func (e *Engine) MostLikely(ctx context.Context, id string, opts Options) (Result, error) {
	defer observe(time.Now())
	games, err := e.gamesFor(id)
	if err != nil {
		return Result{}, err
	}
	if len(games) == 0 {
		return e.seasonComplete(id), nil
	}

	probs := make([]float64, len(games))
	expected := 0.0
	for i, g := range games {
		probs[i] = e.predictor.WinProbability(id, g.Opponent(id))
		expected += probs[i]
	}
	wins := int(math.Round(expected))
	fixtures := likeliestFixtures(id, games, probs, wins)

	res := e.project(id, fixtures)
	exact := exactWinsProbability(probs, wins) * 100
	res.Probability = math.Round(exact/5) * 5
	res.Likelihood = likelihoodBand(exact)
	res.Description = fmt.Sprintf("Most likely: go %s to finish %s, %s (%s)",
		league.FormatRecord(wins, len(games)-wins, 0), res.Record, seedPhrase(res.Seed), res.Likelihood)

	if opts.Residual {
		pp, err := e.residual(ctx, id, nil, opts)
		if err != nil {
			return Result{}, err
		}
		res.PlayoffProbability = &pp
	}
	return res, nil
}

// Custom fixes the picked weeks and projects undecided weeks at their
// expected value. The residual pass keeps undecided weeks random.
func (e *Engine) Custom(ctx context.Context, id string, picks map[int]Pick, opts Options) (CustomResult, error) {
	defer observe(time.Now())
	games, err := e.gamesFor(id)
	if err != nil {
		return CustomResult{}, err
	}

	byWeek := make(map[int]bool, len(games))
	decided := make(season.Fixtures)
	prob := 1.0
	var openGames []league.Game
	var openProbs []float64
	for _, g := range games {
		byWeek[g.Key.Week] = true
		p := e.predictor.WinProbability(id, g.Opponent(id))
		switch picks[g.Key.Week] {
		case PickWin:
			decided[g.Key] = id
			prob *= p
		case PickLoss:
			decided[g.Key] = g.Opponent(id)
			prob *= 1 - p
		default:
			openGames = append(openGames, g)
			openProbs = append(openProbs, p)
		}
	}

	var ignored []int
	for week, pk := range picks {
		if pk != PickUndecided && !byWeek[week] {
			ignored = append(ignored, week)
		}
	}
	sort.Ints(ignored)

	expected := 0.0
	for _, p := range openProbs {
		expected += p
	}
	projected := likeliestFixtures(id, openGames, openProbs, int(math.Round(expected)))
	for k, v := range decided {
		projected[k] = v
	}

	var res Result
	if len(games) == 0 {
		res = e.seasonComplete(id)
	} else {
		res = e.project(id, projected)
	}
	out := CustomResult{
		FranchiseID:     id,
		ProjectedRecord: res.Record,
		ProjectedSeed:   res.Seed,
		Probability:     prob * 100,
		Description:     res.Description,
		IgnoredWeeks:    ignored,
	}
	if opts.Residual {
		pp, err := e.residual(ctx, id, decided, opts)
		if err != nil {
			return CustomResult{}, err
		}
		out.PlayoffProbability = &pp
	}
	return out, nil
}

func (e *Engine) gamesFor(id string) ([]league.Game, error) {
	if _, ok := e.league.Standings[id]; !ok {
		return nil, fmt.Errorf("scenario %s: %w", id, league.ErrUnknownFranchise)
	}
	return league.GamesFor(e.sim.Games(), id), nil
}

func (e *Engine) project(id string, fixtures season.Fixtures) Result {
	t := e.sim.Project(fixtures)
	rec := t.Records[id]
	res := Result{
		FranchiseID: id,
		Record:      rec.RecordString(),
		Wins:        rec.Wins,
		Losses:      rec.Losses,
		Ties:        rec.Ties,
	}
	for _, s := range e.seeder.Seed(t.Records, t.HeadToHead) {
		if s.FranchiseID == id {
			res.Seed = s.Seed
			break
		}
	}
	return res
}

func (e *Engine) seasonComplete(id string) Result {
	res := e.project(id, nil)
	res.Probability = 100
	res.Description = fmt.Sprintf("Season complete: finished %s, %s", res.Record, seedPhrase(res.Seed))
	return res
}

func (e *Engine) residual(ctx context.Context, id string, fixtures season.Fixtures, opts Options) (float64, error) {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = montecarlo.DefaultIterations
	}
	r, err := e.mc.Run(ctx, montecarlo.Options{
		Iterations: iterations,
		Workers:    opts.Workers,
		Sources:    opts.Sources,
		Fixtures:   fixtures,
	})
	if err != nil {
		return 0, fmt.Errorf("residual probability: %w", err)
	}
	return r.Teams[id].Playoff, nil
}

// likeliestFixtures marks the wins most winnable games as wins for id and
// the rest as losses.
func likeliestFixtures(id string, games []league.Game, probs []float64, wins int) season.Fixtures {
	idx := make([]int, len(games))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return probs[idx[a]] > probs[idx[b]] })

	fixtures := make(season.Fixtures, len(games))
	for rank, i := range idx {
		g := games[i]
		if rank < wins {
			fixtures[g.Key] = id
		} else {
			fixtures[g.Key] = g.Opponent(id)
		}
	}
	return fixtures
}

// exactWinsProbability is the Poisson-binomial P(exactly k successes).
func exactWinsProbability(probs []float64, k int) float64 {
	dist := make([]float64, len(probs)+1)
	dist[0] = 1
	for i, p := range probs {
		for j := i + 1; j >= 1; j-- {
			dist[j] = dist[j]*(1-p) + dist[j-1]*p
		}
		dist[0] *= 1 - p
	}
	if k < 0 || k >= len(dist) {
		return 0
	}
	return dist[k]
}

func likelihoodBand(pct float64) string {
	switch {
	case pct >= 50:
		return "very likely"
	case pct >= 30:
		return "likely"
	case pct >= 15:
		return "plausible"
	default:
		return "uncertain"
	}
}

func seedPhrase(seed int) string {
	if seed == 0 {
		return "misses the playoffs"
	}
	return fmt.Sprintf("projected #%d seed", seed)
}

func observe(start time.Time) {
	telemetry.Metrics.ScenariosRun.Inc()
	telemetry.Metrics.ScenarioLatency.Record(time.Since(start))
}
