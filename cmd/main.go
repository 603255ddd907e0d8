package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/playoff-odds/internal/adapters/inbound/httpapi"
	"github.com/charleschow/playoff-odds/internal/adapters/outbound/discord"
	"github.com/charleschow/playoff-odds/internal/adapters/outbound/leaguefeed"
	"github.com/charleschow/playoff-odds/internal/config"
	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/events"
	"github.com/charleschow/playoff-odds/internal/fanout"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/process"
	"github.com/charleschow/playoff-odds/internal/store/snapshots"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting playoff forecaster")

	bus := events.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Snapshot store ──────────────────────────────────────────
	var src process.Sources
	store, err := snapshots.Open(cfg.SnapshotDBPath)
	if err != nil {
		telemetry.Warnf("Snapshot store disabled: %v", err)
	} else {
		src.Store = store
	}

	// ── League feed ─────────────────────────────────────────────
	var feed *leaguefeed.Client
	if cfg.FeedBaseURL != "" {
		feed = leaguefeed.NewClient(cfg.FeedBaseURL, cfg.FeedAPIKey, cfg.FeedRatePerSec)
		src.Feed = feed
		telemetry.Infof("League feed  api=%s  league=%s  year=%d", cfg.FeedBaseURL, cfg.FeedLeagueID, cfg.FeedYear)
	}

	l, source, err := process.LoadLeague(ctx, cfg, src)
	if err != nil {
		telemetry.Errorf("Load league: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("League %q loaded from %s  week=%d  franchises=%d", l.Name, source, l.Week, len(l.Standings))

	// ── Forecast service ────────────────────────────────────────
	fcfg := forecast.Config{
		Iterations:    cfg.Iterations,
		Workers:       cfg.Workers,
		FormWindow:    cfg.FormWindowWeeks,
		WinProbJitter: cfg.WinProbJitter,
		PointsJitter:  cfg.PointsJitter,
		PlayoffSlots:  cfg.PlayoffSlots,
		Seed:          cfg.Seed,
		Timeout:       cfg.ForecastTimeout,
	}
	svc, err := forecast.NewService(l, fcfg, bus)
	if err != nil {
		telemetry.Errorf("Forecast service: %v", err)
		os.Exit(1)
	}

	// ── Clinch alerts ───────────────────────────────────────────
	var alerts *discord.ClinchWatcher
	if notifier := discord.NewNotifier(cfg.DiscordWebhookURL); notifier.Enabled() {
		alerts = discord.NewClinchWatcher(notifier, l.Name, bus)
		telemetry.Infof("Discord clinch alerts enabled")
	}

	// ── HTTP API + websocket hub ────────────────────────────────
	hub := fanout.NewServer(bus)
	api := httpapi.NewHandler(svc, hub.HandleWS)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	publishLoaded(bus, l, source)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q", addr)

	// ── Week refresher ──────────────────────────────────────────
	if feed != nil && cfg.FeedLeagueID != "" && source != process.SourceFile {
		r := &process.Refresher{
			LeagueID: cfg.FeedLeagueID,
			Year:     cfg.FeedYear,
			Weeks:    leaguefeed.NewWeekCache(feed, cfg.WeekCacheTTL, nil),
			Sources:  src,
			Interval: cfg.WeekCacheTTL,
			OnLoad: func(next *league.League) error {
				s, err := forecast.NewService(next, fcfg, bus)
				if err != nil {
					return err
				}
				api.SetService(s)
				publishLoaded(bus, next, process.SourceFeed)
				return nil
			},
		}
		go r.Run(ctx, l.Week)
	}

	// ── Warm-up forecast ────────────────────────────────────────
	go func() {
		if _, err := svc.Forecast(ctx, 0); err != nil {
			telemetry.Warnf("Warm-up forecast: %v", err)
		}
	}()

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...  dashboards=%d", hub.ClientCount())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if alerts != nil {
		alerts.Wait()
	}
	if store != nil {
		store.Close()
	}

	telemetry.Infof("Shutdown complete  forecasts=%d  trials=%d  scenarios=%d  feed_requests=%d  feed_errors=%d",
		telemetry.Metrics.ForecastsRun.Value(),
		telemetry.Metrics.TrialsRun.Value(),
		telemetry.Metrics.ScenariosRun.Value(),
		telemetry.Metrics.FeedRequests.Value(),
		telemetry.Metrics.FeedErrors.Value(),
	)
}

func publishLoaded(bus *events.Bus, l *league.League, source process.Source) {
	_, warnings := l.UniqueGames()
	_, divWarnings := l.Divisions.ResolveDivisions(l.FranchiseIDs())
	warnings = append(warnings, divWarnings...)
	for _, w := range warnings {
		telemetry.Warnf("league: %s", w)
	}
	bus.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventLeagueLoaded,
		League:    l.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.LeagueLoadedEvent{
			LeagueID:   l.ID,
			Year:       l.Year,
			Week:       l.Week,
			Source:     string(source),
			Franchises: len(l.Standings),
			Warnings:   len(warnings),
		},
	})
}
