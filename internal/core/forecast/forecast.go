package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/charleschow/playoff-odds/internal/core/clinch"
	"github.com/charleschow/playoff-odds/internal/core/montecarlo"
	"github.com/charleschow/playoff-odds/internal/core/scenario"
	"github.com/charleschow/playoff-odds/internal/core/season"
	"github.com/charleschow/playoff-odds/internal/core/seeding"
	"github.com/charleschow/playoff-odds/internal/core/winprob"
	"github.com/charleschow/playoff-odds/internal/events"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

// Config holds the simulation knobs. Zero values fall back to defaults.
type Config struct {
	Iterations    int
	Workers       int
	FormWindow    int
	WinProbJitter float64
	PointsJitter  float64
	PlayoffSlots  int
	Seed          uint64 // 0 seeds from the clock
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = montecarlo.DefaultIterations
	}
	if c.FormWindow <= 0 {
		c.FormWindow = 3
	}
	if c.PlayoffSlots <= 0 {
		c.PlayoffSlots = 6
	}
	return c
}

// TeamForecast is the per-franchise output handed to presentation.
type TeamForecast struct {
	FranchiseID            string    `json:"franchise_id"`
	Name                   string    `json:"name"`
	Record                 string    `json:"record"`
	CurrentRank            int       `json:"current_rank"`
	RemainingGames         int       `json:"remaining_games"`
	PlayoffProbability     float64   `json:"playoff_probability"`
	DivisionWinProbability float64   `json:"division_win_probability"`
	WildcardProbability    float64   `json:"wildcard_probability"`
	SeedProbabilities      []float64 `json:"seed_probabilities"`
	AverageSeed            float64   `json:"average_seed"`
	StdError               float64   `json:"std_error"`
	Form                   float64   `json:"form"`
	clinch.Metrics
}

// Report is one completed (or cut short) forecast run.
type Report struct {
	RunID       string           `json:"run_id"`
	LeagueID    string           `json:"league_id"`
	Week        int              `json:"week"`
	Requested   int              `json:"requested"`
	Completed   int              `json:"completed"`
	Partial     bool             `json:"partial"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
	GeneratedAt time.Time        `json:"generated_at"`
	Teams       []TeamForecast   `json:"teams"`
	Warnings    []league.Warning `json:"warnings,omitempty"`
}

// Kind selects a deterministic scenario.
type Kind string

const (
	KindBest   Kind = "best"
	KindWorst  Kind = "worst"
	KindLikely Kind = "likely"
)

var ErrUnknownKind = errors.New("unknown scenario kind")

// Service wires the simulation core for one league snapshot.
type Service struct {
	cfg       Config
	league    *league.League
	model     *winprob.Model
	sim       *season.Simulator
	seeder    *seeding.Seeder
	engine    *montecarlo.Engine
	scenarios *scenario.Engine
	bus       *events.Bus
	sf        singleflight.Group
}

// NewService validates l and builds every component once. bus may be nil.
func NewService(l *league.League, cfg Config, bus *events.Bus) (*Service, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	cfg = cfg.withDefaults()
	slots := cfg.PlayoffSlots
	if l.PlayoffSlots > 0 {
		slots = l.PlayoffSlots
	}

	bounds := winprob.DefaultBounds()
	model := winprob.NewModel(l, cfg.FormWindow, bounds)
	decider := winprob.JitterDecider{Jitter: cfg.WinProbJitter, Bounds: bounds}
	sim := season.New(l, model, decider, cfg.PointsJitter)
	seeder := seeding.ForLeague(l, slots)
	engine := montecarlo.New(sim, seeder, l.FranchiseIDs())

	return &Service{
		cfg:       cfg,
		league:    l,
		model:     model,
		sim:       sim,
		seeder:    seeder,
		engine:    engine,
		scenarios: scenario.New(l, sim, seeder, engine),
		bus:       bus,
	}, nil
}

func (s *Service) League() *league.League { return s.league }

// Forecast runs the Monte Carlo engine and derives clinch metrics. Callers
// asking for the same iteration count while a run is in flight share it.
func (s *Service) Forecast(ctx context.Context, iterations int) (*Report, error) {
	if iterations <= 0 {
		iterations = s.cfg.Iterations
	}
	v, err, _ := s.sf.Do(strconv.Itoa(iterations), func() (any, error) {
		return s.run(ctx, iterations)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *Service) run(ctx context.Context, iterations int) (*Report, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.engine.Run(ctx, montecarlo.Options{
		Iterations: iterations,
		Workers:    s.cfg.Workers,
		Sources:    s.sources(),
	})
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", s.league.ID, err)
	}

	report := s.buildReport(res)
	report.Elapsed = time.Since(start)

	telemetry.Metrics.ForecastsRun.Inc()
	telemetry.Metrics.ForecastLatency.Record(report.Elapsed)
	telemetry.Metrics.SimWarnings.Add(int64(len(report.Warnings)))
	if report.Partial {
		telemetry.Metrics.ForecastsCancelled.Inc()
		telemetry.Warnf("forecast: stopped early after %s of %s trials",
			humanize.Comma(int64(report.Completed)), humanize.Comma(int64(report.Requested)))
	}
	telemetry.Infof("forecast: %s trials in %s  league=%s  warnings=%d",
		humanize.Comma(int64(report.Completed)), report.Elapsed.Round(time.Millisecond), s.league.ID, len(report.Warnings))

	s.publish(events.EventForecastReady, report)
	return report, nil
}

func (s *Service) buildReport(res *montecarlo.Result) *Report {
	l := s.league
	order := s.seeder.Order(l.Standings, l.HeadToHead)
	rank := make(map[string]int, len(order))
	for _, st := range order {
		rank[st.FranchiseID] = st.Rank
	}
	remaining := make(map[string]int, len(l.Standings))
	for _, g := range s.sim.Games() {
		remaining[g.Home]++
		remaining[g.Away]++
	}

	report := &Report{
		RunID:       uuid.NewString(),
		LeagueID:    l.ID,
		Week:        l.Week,
		Requested:   res.Requested,
		Completed:   res.Completed,
		Partial:     res.Partial,
		GeneratedAt: time.Now().UTC(),
		Warnings:    res.Warnings,
	}
	for _, id := range l.FranchiseIDs() {
		p := res.Teams[id]
		metrics := clinch.Calculate(clinch.Input{
			FranchiseID:            id,
			Order:                  order,
			Standings:              l.Standings,
			Remaining:              remaining,
			Slots:                  s.seeder.Slots(),
			PlayoffProbability:     p.Playoff,
			DivisionWinProbability: p.DivisionWin,
		})
		report.Teams = append(report.Teams, TeamForecast{
			FranchiseID:            id,
			Name:                   l.DisplayName(id),
			Record:                 l.Standings[id].RecordString(),
			CurrentRank:            rank[id],
			RemainingGames:         remaining[id],
			PlayoffProbability:     p.Playoff,
			DivisionWinProbability: p.DivisionWin,
			WildcardProbability:    p.Wildcard,
			SeedProbabilities:      p.Seeds,
			AverageSeed:            p.AverageSeed,
			StdError:               stdError(p.Playoff, res.Completed),
			Form:                   s.model.Form(id),
			Metrics:                metrics,
		})
	}
	sort.SliceStable(report.Teams, func(i, j int) bool {
		a, b := report.Teams[i], report.Teams[j]
		if a.PlayoffProbability != b.PlayoffProbability {
			return a.PlayoffProbability > b.PlayoffProbability
		}
		return a.CurrentRank < b.CurrentRank
	})
	return report
}

// Scenario runs a deterministic best/worst/likely projection.
func (s *Service) Scenario(ctx context.Context, kind Kind, id string, opts scenario.Options) (scenario.Result, error) {
	opts = s.scenarioOptions(opts)
	var (
		res scenario.Result
		err error
	)
	switch kind {
	case KindBest:
		res, err = s.scenarios.BestCase(ctx, id, opts)
	case KindWorst:
		res, err = s.scenarios.WorstCase(ctx, id, opts)
	case KindLikely:
		res, err = s.scenarios.MostLikely(ctx, id, opts)
	default:
		return scenario.Result{}, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	if err != nil {
		return scenario.Result{}, err
	}
	s.publish(events.EventScenarioComputed, res)
	return res, nil
}

// Custom evaluates a per-week pick sheet.
func (s *Service) Custom(ctx context.Context, id string, picks map[int]scenario.Pick, opts scenario.Options) (scenario.CustomResult, error) {
	res, err := s.scenarios.Custom(ctx, id, picks, s.scenarioOptions(opts))
	if err != nil {
		return scenario.CustomResult{}, err
	}
	s.publish(events.EventScenarioComputed, res)
	return res, nil
}

func (s *Service) scenarioOptions(opts scenario.Options) scenario.Options {
	if opts.Iterations <= 0 {
		opts.Iterations = s.cfg.Iterations
	}
	if opts.Workers <= 0 {
		opts.Workers = s.cfg.Workers
	}
	if opts.Sources == nil {
		opts.Sources = s.sources()
	}
	return opts
}

func (s *Service) sources() winprob.SourceFactory {
	if s.cfg.Seed != 0 {
		return winprob.SeededFactory(s.cfg.Seed)
	}
	return winprob.ClockFactory()
}

func (s *Service) publish(t events.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      t,
		League:    s.league.ID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// stdError is the binomial standard error of a percentage estimate.
func stdError(pct float64, trials int) float64 {
	if trials == 0 {
		return 0
	}
	p := pct / 100
	return math.Sqrt(p*(1-p)/float64(trials)) * 100
}
