package leaguefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/playoff-odds/internal/telemetry"
)

type weekKey struct {
	year   int
	league string
}

type weekEntry struct {
	week      int
	fetchedAt time.Time
}

// SummaryFetcher is the slice of Client the cache needs.
type SummaryFetcher interface {
	GetSummary(ctx context.Context, leagueID string, year int) (*Summary, error)
}

// WeekCache memoizes the provider's current week per (year, league).
// Concurrent misses for the same key share one request.
type WeekCache struct {
	fetcher SummaryFetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[weekKey]weekEntry
	sf      singleflight.Group
}

func NewWeekCache(fetcher SummaryFetcher, ttl time.Duration, now func() time.Time) *WeekCache {
	if now == nil {
		now = time.Now
	}
	return &WeekCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     now,
		entries: make(map[weekKey]weekEntry),
	}
}

// CurrentWeek returns the cached week when fresh, otherwise refreshes it.
func (c *WeekCache) CurrentWeek(ctx context.Context, leagueID string, year int) (int, error) {
	key := weekKey{year: year, league: leagueID}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.week, nil
	}

	v, err, _ := c.sf.Do(fmt.Sprintf("%d/%s", year, leagueID), func() (any, error) {
		sum, err := c.fetcher.GetSummary(ctx, leagueID, year)
		if err != nil {
			return 0, err
		}
		c.mu.Lock()
		c.entries[key] = weekEntry{week: sum.CurrentWeek, fetchedAt: c.now()}
		c.mu.Unlock()
		telemetry.Debugf("leaguefeed: week cache refreshed %s/%d -> week %d", leagueID, year, sum.CurrentWeek)
		return sum.CurrentWeek, nil
	})
	if err != nil {
		if ok {
			telemetry.Warnf("leaguefeed: week refresh failed for %s/%d, serving stale week %d: %v", leagueID, year, e.week, err)
			return e.week, nil
		}
		return 0, err
	}
	return v.(int), nil
}

// Invalidate drops the cached week for one league.
func (c *WeekCache) Invalidate(leagueID string, year int) {
	c.mu.Lock()
	delete(c.entries, weekKey{year: year, league: leagueID})
	c.mu.Unlock()
}
