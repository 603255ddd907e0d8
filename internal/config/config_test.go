package config

import (
	"errors"
	"testing"
	"time"

	"github.com/charleschow/playoff-odds/internal/league"
)

func TestLoadLeagueFile(t *testing.T) {
	l, err := LoadLeagueFile("testdata/league.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if l.ID != "20481" || l.Week != 13 || l.SeasonLength != 14 || l.PlayoffSlots != 4 {
		t.Errorf("header = %+v", l)
	}
	if len(l.Standings) != 6 {
		t.Fatalf("len(Standings) = %d, want 6", len(l.Standings))
	}

	r := l.Standings["0001"]
	if r.FranchiseID != "0001" || r.Wins != 9 || r.DivisionWins != 3 || r.PointsFor != 1502.4 {
		t.Errorf("0001 record = %+v", r)
	}
	if got := l.Divisions.ByFranchise["0005"]; got != "south" {
		t.Errorf("0005 division = %q, want south", got)
	}
	if got := l.Schedule["0001"][1].OpponentID; got != "0004" {
		t.Errorf("opponent by name resolved to %q, want 0004", got)
	}
	if got := len(l.RecentScores["0001"]); got != 3 {
		t.Errorf("len(RecentScores) = %d, want 3", got)
	}

	if w, lo, _ := l.HeadToHead.Versus("0001", "0004"); w != 1 || lo != 1 {
		t.Errorf("0001 vs 0004 = %d-%d, want 1-1", w, lo)
	}

	games, warnings := l.UniqueGames()
	if len(games) != 6 || len(warnings) != 0 {
		t.Errorf("UniqueGames = %d games %v warnings, want 6 and none", len(games), warnings)
	}
}

func TestParseLeagueErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown result team",
			yaml: `
franchises:
  - {id: a, wins: 1}
results:
  - {week: 1, winner: a, loser: nobody}
`,
			want: league.ErrUnknownFranchise,
		},
		{
			name: "record longer than season",
			yaml: `
league: {id: x, season_length: 2}
franchises:
  - {id: a, wins: 3}
`,
			want: league.ErrSeasonLength,
		},
	}
	for _, tt := range tests {
		if _, err := ParseLeague([]byte(tt.yaml)); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	if _, err := ParseLeague([]byte("franchises:\n  - {id: a}\n  - {id: a}\n")); err == nil {
		t.Error("duplicate franchise: want error")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FORECAST_ITERATIONS", "2500")
	t.Setenv("WIN_PROB_JITTER", "0.2")
	t.Setenv("FORECAST_TIMEOUT", "45")
	t.Setenv("WEEK_CACHE_TTL", "5m")
	t.Setenv("HTTP_PORT", "not-a-port")

	cfg := Load()
	if cfg.Iterations != 2500 {
		t.Errorf("Iterations = %d, want 2500", cfg.Iterations)
	}
	if cfg.WinProbJitter != 0.2 {
		t.Errorf("WinProbJitter = %v, want 0.2", cfg.WinProbJitter)
	}
	if cfg.ForecastTimeout != 45*time.Second {
		t.Errorf("ForecastTimeout = %v, want 45s", cfg.ForecastTimeout)
	}
	if cfg.WeekCacheTTL != 5*time.Minute {
		t.Errorf("WeekCacheTTL = %v, want 5m", cfg.WeekCacheTTL)
	}
	if cfg.HTTPPort != 8090 {
		t.Errorf("HTTPPort = %d, want fallback 8090", cfg.HTTPPort)
	}
	if cfg.FormWindowWeeks != 3 || cfg.PlayoffSlots != 6 {
		t.Errorf("defaults: form window %d slots %d", cfg.FormWindowWeeks, cfg.PlayoffSlots)
	}
}
