package discord

import (
	"context"
	"sync"
	"time"

	"github.com/charleschow/playoff-odds/internal/core/clinch"
	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/events"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

type status int

const (
	statusAlive status = iota
	statusClinched
	statusEliminated
)

// Sender is the notifier surface used by ClinchWatcher.
type Sender interface {
	Clinched(ctx context.Context, leagueName, team, record string, divisionWin float64) error
	Eliminated(ctx context.Context, leagueName, team, record string) error
}

// ClinchWatcher alerts when a franchise first crosses the clinch or
// elimination threshold. The first report per league only records a
// baseline.
type ClinchWatcher struct {
	sender     Sender
	leagueName string

	mu   sync.Mutex
	seen map[string]map[string]status // league -> franchise -> status
	wg   sync.WaitGroup
}

func NewClinchWatcher(sender Sender, leagueName string, bus *events.Bus) *ClinchWatcher {
	w := &ClinchWatcher{
		sender:     sender,
		leagueName: leagueName,
		seen:       make(map[string]map[string]status),
	}
	bus.Subscribe(events.EventForecastReady, w.onForecast)
	return w
}

func (w *ClinchWatcher) onForecast(evt events.Event) error {
	r, ok := evt.Payload.(*forecast.Report)
	if !ok {
		if v, isVal := evt.Payload.(forecast.Report); isVal {
			r = &v
		} else {
			return nil
		}
	}
	if r.Partial {
		return nil
	}

	w.mu.Lock()
	prev, known := w.seen[r.LeagueID]
	next := make(map[string]status, len(r.Teams))
	var changed []forecast.TeamForecast
	for _, t := range r.Teams {
		st := classify(t)
		next[t.FranchiseID] = st
		if known && st != statusAlive && prev[t.FranchiseID] != st {
			changed = append(changed, t)
		}
	}
	w.seen[r.LeagueID] = next
	w.mu.Unlock()

	for _, t := range changed {
		w.wg.Add(1)
		go func(t forecast.TeamForecast) {
			defer w.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			var err error
			if classify(t) == statusClinched {
				err = w.sender.Clinched(ctx, w.leagueName, t.Name, t.Record, t.DivisionWinProbability)
			} else {
				err = w.sender.Eliminated(ctx, w.leagueName, t.Name, t.Record)
			}
			if err != nil {
				telemetry.Warnf("discord: alert for %s failed: %v", t.FranchiseID, err)
			}
		}(t)
	}
	return nil
}

// Wait blocks until pending alerts are sent.
func (w *ClinchWatcher) Wait() { w.wg.Wait() }

func classify(t forecast.TeamForecast) status {
	switch {
	case t.PlayoffProbability >= clinch.ClinchedPct:
		return statusClinched
	case t.PlayoffProbability < clinch.EliminatedPct:
		return statusEliminated
	default:
		return statusAlive
	}
}
