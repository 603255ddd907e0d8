package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charleschow/playoff-odds/internal/adapters/outbound/leaguefeed"
	"github.com/charleschow/playoff-odds/internal/config"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

var ErrNoSource = errors.New("no league source available")

// Source names where a league snapshot came from.
type Source string

const (
	SourceFile     Source = "file"
	SourceFeed     Source = "feed"
	SourceSnapshot Source = "snapshot"
)

// LeagueFetcher is the feed surface used for loading and refreshing.
type LeagueFetcher interface {
	FetchLeague(ctx context.Context, leagueID string, year int) (*league.League, error)
}

// SnapshotStore persists and recalls league inputs.
type SnapshotStore interface {
	Save(l *league.League) error
	Latest(leagueID string, year int) (*league.League, error)
}

// Sources groups the optional inputs. Nil members are skipped.
type Sources struct {
	Feed  LeagueFetcher
	Store SnapshotStore
}

// LoadLeague tries the league file, then the feed, then the newest stored
// snapshot. A successful feed load is saved to the store.
func LoadLeague(ctx context.Context, cfg *config.Config, src Sources) (*league.League, Source, error) {
	if cfg.LeagueFile != "" {
		l, err := config.LoadLeagueFile(cfg.LeagueFile)
		if err != nil {
			return nil, "", err
		}
		return l, SourceFile, nil
	}

	var feedErr error
	if src.Feed != nil && cfg.FeedLeagueID != "" {
		l, err := src.Feed.FetchLeague(ctx, cfg.FeedLeagueID, cfg.FeedYear)
		if err == nil {
			if src.Store != nil {
				if err := src.Store.Save(l); err != nil {
					telemetry.Warnf("process: snapshot save failed: %v", err)
				}
			}
			return l, SourceFeed, nil
		}
		feedErr = err
		telemetry.Warnf("process: feed unavailable, trying snapshot store: %v", err)
	}

	if src.Store != nil && cfg.FeedLeagueID != "" {
		l, err := src.Store.Latest(cfg.FeedLeagueID, cfg.FeedYear)
		if err == nil {
			return l, SourceSnapshot, nil
		}
		return nil, "", fmt.Errorf("%w: feed: %v, store: %v", ErrNoSource, feedErr, err)
	}
	if feedErr != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNoSource, feedErr)
	}
	return nil, "", ErrNoSource
}

// WeekSource reports the provider's current week. Invalidate drops any
// cached answer so the next call asks the provider again.
type WeekSource interface {
	CurrentWeek(ctx context.Context, leagueID string, year int) (int, error)
	Invalidate(leagueID string, year int)
}

// DefaultRefreshInterval is used when Refresher.Interval is not positive.
const DefaultRefreshInterval = 5 * time.Minute

var _ WeekSource = (*leaguefeed.WeekCache)(nil)

// Refresher polls the current week and reloads the league from the feed
// when it advances past the loaded snapshot.
type Refresher struct {
	LeagueID string
	Year     int
	Weeks    WeekSource
	Sources  Sources
	Interval time.Duration
	OnLoad   func(l *league.League) error
}

// Run blocks until ctx is done.
func (r *Refresher) Run(ctx context.Context, loadedWeek int) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			week, err := r.Check(ctx, loadedWeek)
			if err != nil {
				telemetry.Warnf("process: refresh failed: %v", err)
				continue
			}
			loadedWeek = week
		}
	}
}

// Check performs one poll and returns the week now loaded.
func (r *Refresher) Check(ctx context.Context, loadedWeek int) (int, error) {
	week, err := r.Weeks.CurrentWeek(ctx, r.LeagueID, r.Year)
	if err != nil {
		return loadedWeek, err
	}
	if week <= loadedWeek {
		return loadedWeek, nil
	}

	l, err := r.Sources.Feed.FetchLeague(ctx, r.LeagueID, r.Year)
	if err != nil {
		return loadedWeek, fmt.Errorf("fetch week %d: %w", week, err)
	}
	if l.Week <= loadedWeek {
		// Summary ran ahead of the league endpoints; re-read it next poll.
		r.Weeks.Invalidate(r.LeagueID, r.Year)
		return loadedWeek, nil
	}
	if r.Sources.Store != nil {
		if err := r.Sources.Store.Save(l); err != nil {
			telemetry.Warnf("process: snapshot save failed: %v", err)
		}
	}
	if err := r.OnLoad(l); err != nil {
		return loadedWeek, err
	}
	telemetry.Infof("process: league %s advanced to week %d", r.LeagueID, l.Week)
	return l.Week, nil
}
