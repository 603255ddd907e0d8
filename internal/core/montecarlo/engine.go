package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/playoff-odds/internal/core/season"
	"github.com/charleschow/playoff-odds/internal/core/seeding"
	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

const DefaultIterations = 10000

var ErrNoIterations = errors.New("iterations must be positive")

// Options controls one run. Sources is required for reproducible output;
// nil falls back to a clock-seeded factory.
type Options struct {
	Iterations int
	Workers    int
	Sources    winprob.SourceFactory
	Fixtures   season.Fixtures
}

// Probabilities are percentages in [0, 100].
type Probabilities struct {
	FranchiseID string    `json:"franchise_id"`
	Playoff     float64   `json:"playoff_probability"`
	DivisionWin float64   `json:"division_win_probability"`
	Wildcard    float64   `json:"wildcard_probability"`
	Seeds       []float64 `json:"seed_probabilities"`
	AverageSeed float64   `json:"average_seed"`
}

// Result is the aggregate of a run. Partial is set when the context ended
// the run early; the probabilities then cover Completed trials only.
type Result struct {
	Requested int                      `json:"requested"`
	Completed int                      `json:"completed"`
	Partial   bool                     `json:"partial"`
	Teams     map[string]Probabilities `json:"teams"`
	Warnings  []league.Warning         `json:"warnings,omitempty"`
}

// Engine runs independent trials of simulate-then-seed.
type Engine struct {
	sim    *season.Simulator
	seeder *seeding.Seeder
	ids    []string
}

func New(sim *season.Simulator, seeder *seeding.Seeder, franchises []string) *Engine {
	ids := make([]string, len(franchises))
	copy(ids, franchises)
	return &Engine{sim: sim, seeder: seeder, ids: ids}
}

// Run executes opts.Iterations trials across opts.Workers goroutines. Each
// worker tallies into its own accumulator; accumulators are merged once all
// workers stop. Cancellation is checked between trials only, so a trial is
// either fully counted or not at all.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("montecarlo: %d: %w", opts.Iterations, ErrNoIterations)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Iterations {
		workers = opts.Iterations
	}
	sources := opts.Sources
	if sources == nil {
		sources = winprob.ClockFactory()
	}

	slots := e.seeder.Slots()
	locals := make([]*accumulator, workers)
	var next atomic.Int64

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		acc := newAccumulator(e.ids, slots)
		locals[w] = acc
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return nil
				}
				trial := next.Add(1) - 1
				if trial >= int64(opts.Iterations) {
					return nil
				}
				t := e.sim.Run(sources(uint64(trial)), opts.Fixtures)
				acc.tally(e.seeder.Seed(t.Records, t.HeadToHead))
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newAccumulator(e.ids, slots)
	for _, acc := range locals {
		total.merge(acc)
	}
	telemetry.Metrics.TrialsRun.Add(int64(total.trials))

	res := &Result{
		Requested: opts.Iterations,
		Completed: total.trials,
		Partial:   total.trials < opts.Iterations,
		Teams:     make(map[string]Probabilities, len(e.ids)),
		Warnings:  append(append([]league.Warning(nil), e.sim.Warnings()...), e.seeder.Warnings()...),
	}
	for _, id := range e.ids {
		res.Teams[id] = toProbabilities(id, total.counts[id], total.trials)
	}
	return res, nil
}

func toProbabilities(id string, c *Counts, trials int) Probabilities {
	p := Probabilities{FranchiseID: id, Seeds: make([]float64, len(c.Seeds))}
	if trials == 0 {
		return p
	}
	n := float64(trials)
	p.Playoff = float64(c.Playoff) / n * 100
	p.DivisionWin = float64(c.DivisionWin) / n * 100
	p.Wildcard = float64(c.Wildcard) / n * 100
	for i, sc := range c.Seeds {
		p.Seeds[i] = float64(sc) / n * 100
	}
	if c.Playoff > 0 {
		p.AverageSeed = float64(c.SeedSum) / float64(c.Playoff)
	}
	return p
}
