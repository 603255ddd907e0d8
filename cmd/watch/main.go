package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/core/scenario"
	"github.com/charleschow/playoff-odds/internal/events"
	"github.com/charleschow/playoff-odds/internal/fanout"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "forecaster host:port")
	leagueID := flag.String("league", "", "only show events for this league")
	top := flag.Int("top", 0, "rows per forecast (0 = all)")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel("info"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()
	bus.Subscribe(events.EventForecastReady, func(evt events.Event) error {
		r, ok := evt.Payload.(forecast.Report)
		if !ok {
			return fmt.Errorf("unexpected payload %T", evt.Payload)
		}
		printForecast(r, *top)
		return nil
	})
	bus.Subscribe(events.EventScenarioComputed, func(evt events.Event) error {
		switch r := evt.Payload.(type) {
		case scenario.Result:
			telemetry.Plainf("[%s] scenario %s: %s", evt.League, r.FranchiseID, r.Description)
		case scenario.CustomResult:
			telemetry.Plainf("[%s] custom %s: %s, seed %d", evt.League, r.FranchiseID, r.ProjectedRecord, r.ProjectedSeed)
		}
		return nil
	})
	bus.Subscribe(events.EventLeagueLoaded, func(evt events.Event) error {
		ll, ok := evt.Payload.(events.LeagueLoadedEvent)
		if ok {
			telemetry.Plainf("[%s] league loaded  year=%d week=%d source=%s teams=%d warnings=%d",
				ll.LeagueID, ll.Year, ll.Week, ll.Source, ll.Franchises, ll.Warnings)
		}
		return nil
	})

	fanout.NewClient(*addr, *leagueID, bus).ConnectWithRetry(ctx)
}

func printForecast(r forecast.Report, top int) {
	fmt.Printf("\n[%s] week %d forecast  %d trials  run=%s\n", r.LeagueID, r.Week, r.Completed, r.RunID)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tRECORD\tPLAYOFF\tDIV\tOUTLOOK")
	for i, t := range r.Teams {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.1f%%\t%s\n",
			t.Name, t.Record, t.PlayoffProbability, t.DivisionWinProbability, strings.Join(t.Scenarios, "; "))
	}
	w.Flush()
}
