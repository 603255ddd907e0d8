package leaguefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/playoff-odds/internal/telemetry"
)

var ErrStatus = errors.New("unexpected feed status")

// Client talks to the league data provider. All requests share one
// token-bucket limiter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string, ratePerSec float64) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 2
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	telemetry.Metrics.FeedRequests.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.FeedErrors.Inc()
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.Metrics.FeedErrors.Inc()
		return fmt.Errorf("read response: %w", err)
	}

	telemetry.Debugf("leaguefeed: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		telemetry.Metrics.FeedErrors.Inc()
		return fmt.Errorf("GET %s: %d %s: %w", path, resp.StatusCode, truncate(body, 200), ErrStatus)
	}
	if err := json.Unmarshal(body, out); err != nil {
		telemetry.Metrics.FeedErrors.Inc()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func leaguePath(leagueID string, year int, suffix string) string {
	return fmt.Sprintf("/leagues/%s/%d/%s", url.PathEscape(leagueID), year, suffix)
}

// GetSummary returns league metadata including the current week.
func (c *Client) GetSummary(ctx context.Context, leagueID string, year int) (*Summary, error) {
	var s Summary
	if err := c.get(ctx, leaguePath(leagueID, year, "summary"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetStandings(ctx context.Context, leagueID string, year int) ([]FranchiseStanding, error) {
	var resp StandingsResponse
	if err := c.get(ctx, leaguePath(leagueID, year, "standings"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Franchises, nil
}

// GetSchedule returns every game of the season, played or not.
func (c *Client) GetSchedule(ctx context.Context, leagueID string, year int) ([]ScheduledGame, error) {
	var resp ScheduleResponse
	if err := c.get(ctx, leaguePath(leagueID, year, "schedule"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Games, nil
}

func (c *Client) GetDivisions(ctx context.Context, leagueID string, year int) ([]DivisionInfo, error) {
	var resp DivisionsResponse
	if err := c.get(ctx, leaguePath(leagueID, year, "divisions"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Divisions, nil
}
