package leaguefeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /leagues/L1/2025/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "no auth", http.StatusUnauthorized)
			return
		}
		write(w, Summary{ID: "L1", Name: "Test League", Year: 2025, CurrentWeek: 13, SeasonLength: 14, PlayoffSlots: 2})
	})
	mux.HandleFunc("GET /leagues/L1/2025/standings", func(w http.ResponseWriter, _ *http.Request) {
		write(w, StandingsResponse{Franchises: []FranchiseStanding{
			{ID: "a", Name: "Aces", DivisionID: "d1", Wins: 8, Losses: 4, PointsFor: 1400, RecentScores: []float64{120, 130}},
			{ID: "b", Name: "Bees", DivisionID: "d1", Wins: 6, Losses: 6, PointsFor: 1300},
			{ID: "c", Name: "Cats", DivisionID: "d2", Wins: 5, Losses: 7, PointsFor: 1200},
			{ID: "d", Name: "Dogs", DivisionID: "d2", Wins: 5, Losses: 7, PointsFor: 1100},
		}})
	})
	mux.HandleFunc("GET /leagues/L1/2025/schedule", func(w http.ResponseWriter, _ *http.Request) {
		write(w, ScheduleResponse{Games: []ScheduledGame{
			{Week: 3, HomeID: "a", AwayID: "b", Final: true, Winner: "b"},
			{Week: 7, HomeID: "c", AwayID: "d", Final: true, Tie: true},
			{Week: 12, HomeID: "a", AwayID: "c"},
			{Week: 14, HomeID: "b", AwayID: "d"},
			{Week: 13, HomeID: "a", AwayID: "d"},
			{Week: 13, HomeID: "c", AwayID: "b"},
		}})
	})
	mux.HandleFunc("GET /leagues/L1/2025/divisions", func(w http.ResponseWriter, _ *http.Request) {
		write(w, DivisionsResponse{Divisions: []DivisionInfo{{ID: "d1", Name: "East"}, {ID: "d2", Name: "West"}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLeague(t *testing.T) {
	srv := fakeProvider(t)
	c := NewClient(srv.URL, "secret", 100)

	l, err := c.FetchLeague(context.Background(), "L1", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if l.Week != 13 || l.PlayoffSlots != 2 || len(l.Standings) != 4 {
		t.Errorf("league = week %d slots %d teams %d", l.Week, l.PlayoffSlots, len(l.Standings))
	}
	if l.DisplayName("a") != "Aces" || l.Divisions.Names["d2"] != "West" {
		t.Errorf("names: %q %q", l.DisplayName("a"), l.Divisions.Names["d2"])
	}

	// Week 12 is before the current week and not final: dropped.
	if got := len(l.Schedule["a"]); got != 1 {
		t.Errorf("a remaining = %d, want 1", got)
	}
	b := l.Schedule["b"]
	if len(b) != 2 || b[0].Week != 13 || b[1].Week != 14 {
		t.Errorf("b schedule = %+v, want weeks 13, 14 in order", b)
	}
	if b[0].OpponentID != "c" || b[0].IsHome {
		t.Errorf("b week 13 = %+v, want away at c", b[0])
	}

	if w, _, _ := l.HeadToHead.Versus("b", "a"); w != 1 {
		t.Errorf("b vs a wins = %d, want 1", w)
	}
	if _, _, ties := l.HeadToHead.Versus("c", "d"); ties != 1 {
		t.Errorf("c vs d ties = %d, want 1", ties)
	}
	if len(l.RecentScores["a"]) != 2 {
		t.Errorf("recent scores = %v", l.RecentScores["a"])
	}
}

func TestClientStatusError(t *testing.T) {
	srv := fakeProvider(t)
	c := NewClient(srv.URL, "wrong", 100)
	_, err := c.GetSummary(context.Background(), "L1", 2025)
	if !errors.Is(err, ErrStatus) {
		t.Errorf("GetSummary error = %v, want ErrStatus", err)
	}

	c = NewClient(srv.URL, "secret", 100)
	if _, err := c.GetStandings(context.Background(), "nope", 2025); !errors.Is(err, ErrStatus) {
		t.Errorf("GetStandings(unknown) error = %v, want ErrStatus", err)
	}
}

func TestClientHonoursContext(t *testing.T) {
	srv := fakeProvider(t)
	c := NewClient(srv.URL, "secret", 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetSummary(ctx, "L1", 2025); err == nil {
		t.Error("GetSummary on cancelled context: want error")
	}
}
