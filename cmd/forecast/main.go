package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/playoff-odds/internal/config"
	"github.com/charleschow/playoff-odds/internal/core/clinch"
	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/core/scenario"
	"github.com/charleschow/playoff-odds/internal/process"
	"github.com/charleschow/playoff-odds/internal/store/snapshots"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

func main() {
	cfg := config.Load()

	file := flag.String("file", cfg.LeagueFile, "league YAML file (falls back to the snapshot store)")
	dbPath := flag.String("db", cfg.SnapshotDBPath, "snapshot store path")
	leagueID := flag.String("league", cfg.FeedLeagueID, "league id for snapshot lookup")
	year := flag.Int("year", cfg.FeedYear, "season year for snapshot lookup")
	iterations := flag.Int("n", cfg.Iterations, "Monte Carlo iterations")
	seed := flag.Uint64("seed", cfg.Seed, "RNG seed (0 = clock)")
	workers := flag.Int("workers", cfg.Workers, "simulation workers")
	team := flag.String("team", "", "franchise id or name for scenario output")
	picks := flag.String("picks", "", "custom picks for -team, e.g. 12:W,13:L")
	residual := flag.Bool("residual", false, "run a residual Monte Carlo pass for scenarios")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	logLevel := flag.String("log", "warn", "log level")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(*logLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg.LeagueFile = *file
	cfg.FeedLeagueID = *leagueID
	cfg.FeedYear = *year

	var src process.Sources
	if cfg.LeagueFile == "" {
		store, err := snapshots.Open(*dbPath)
		if err != nil {
			fatalf("open snapshot store: %v", err)
		}
		defer store.Close()
		src.Store = store
	}
	l, source, err := process.LoadLeague(ctx, cfg, src)
	if err != nil {
		fatalf("load league: %v", err)
	}

	svc, err := forecast.NewService(l, forecast.Config{
		Iterations:    *iterations,
		Workers:       *workers,
		FormWindow:    cfg.FormWindowWeeks,
		WinProbJitter: cfg.WinProbJitter,
		PointsJitter:  cfg.PointsJitter,
		PlayoffSlots:  cfg.PlayoffSlots,
		Seed:          *seed,
		Timeout:       cfg.ForecastTimeout,
	}, nil)
	if err != nil {
		fatalf("%v", err)
	}

	report, err := svc.Forecast(ctx, *iterations)
	if err != nil {
		fatalf("forecast: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	} else {
		fmt.Printf("=== %s  week %d  (%s) ===\n", l.Name, l.Week, source)
		printReport(report)
	}

	if *team == "" {
		return
	}
	id, ok := l.ResolveFranchise(*team)
	if !ok {
		fatalf("unknown franchise %q", *team)
	}
	opts := scenario.Options{Residual: *residual}

	fmt.Printf("\n=== Scenarios: %s ===\n", l.DisplayName(id))
	for _, kind := range []forecast.Kind{forecast.KindBest, forecast.KindLikely, forecast.KindWorst} {
		res, err := svc.Scenario(ctx, kind, id, opts)
		if err != nil {
			fatalf("scenario %s: %v", kind, err)
		}
		line := fmt.Sprintf("  %-7s %s  (%.0f%%", kind, res.Description, res.Probability)
		if res.Likelihood != "" {
			line += ", " + res.Likelihood
		}
		line += ")"
		if res.PlayoffProbability != nil {
			line += fmt.Sprintf("  playoff %.1f%%", *res.PlayoffProbability)
		}
		fmt.Println(line)
	}

	if *picks != "" {
		sheet, err := parsePicks(*picks)
		if err != nil {
			fatalf("%v", err)
		}
		res, err := svc.Custom(ctx, id, sheet, opts)
		if err != nil {
			fatalf("custom: %v", err)
		}
		fmt.Printf("  custom  %s, projected seed %d  (%.1f%%)", res.ProjectedRecord, res.ProjectedSeed, res.Probability)
		if res.PlayoffProbability != nil {
			fmt.Printf("  playoff %.1f%%", *res.PlayoffProbability)
		}
		fmt.Println()
		if len(res.IgnoredWeeks) > 0 {
			fmt.Printf("  ignored weeks (no game): %v\n", res.IgnoredWeeks)
		}
	}
}

func printReport(r *forecast.Report) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tRECORD\tRANK\tFORM\tPLAYOFF\tDIV\tWC\tAVG SEED\tMAGIC\tELIM\tOUTLOOK")
	fmt.Fprintln(w, "----\t------\t----\t----\t-------\t---\t--\t--------\t-----\t----\t-------")
	for _, t := range r.Teams {
		avg := "-"
		if t.AverageSeed > 0 {
			avg = fmt.Sprintf("%.2f", t.AverageSeed)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.1f%%\t%.1f%%\t%.1f%%\t%s\t%s\t%s\t%s\n",
			t.Name, t.Record, t.CurrentRank, t.Form,
			t.PlayoffProbability, t.DivisionWinProbability, t.WildcardProbability,
			avg, sentinel(t.MagicNumber), sentinel(t.EliminationNumber),
			strings.Join(t.Scenarios, "; "))
	}
	w.Flush()

	status := "complete"
	if r.Partial {
		status = "partial"
	}
	fmt.Printf("\n%s of %s trials (%s) in %s\n",
		humanize.Comma(int64(r.Completed)), humanize.Comma(int64(r.Requested)), status, r.Elapsed.Round(time.Millisecond))
	for _, warn := range r.Warnings {
		fmt.Printf("  warning: %s\n", warn)
	}
}

func sentinel(n int) string {
	if n >= clinch.Sentinel {
		return "-"
	}
	return strconv.Itoa(n)
}

func parsePicks(s string) (map[int]scenario.Pick, error) {
	out := make(map[int]scenario.Pick)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		wk, pick, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("pick %q: want week:W|L", part)
		}
		week, err := strconv.Atoi(wk)
		if err != nil {
			return nil, fmt.Errorf("pick %q: bad week", part)
		}
		switch p := scenario.Pick(strings.ToUpper(pick)); p {
		case scenario.PickWin, scenario.PickLoss:
			out[week] = p
		default:
			return nil, fmt.Errorf("pick %q: want W or L", part)
		}
	}
	return out, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
