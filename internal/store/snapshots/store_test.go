package snapshots

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/charleschow/playoff-odds/internal/league"
)

func sample(week int) *league.League {
	h2h := league.HeadToHead{}
	h2h.AddResult("b", "a", false)
	return &league.League{
		ID:           "L1",
		Name:         "Test",
		Year:         2025,
		Week:         week,
		SeasonLength: 14,
		Standings: league.Standings{
			"a": {FranchiseID: "a", Wins: 5, Losses: 3, PointsFor: 900.5},
			"b": {FranchiseID: "b", Wins: 4, Losses: 4, PointsFor: 850},
		},
		Schedule: league.Schedule{
			"a": {{Week: week, OpponentID: "b", IsHome: true}},
			"b": {{Week: week, OpponentID: "a"}},
		},
		Divisions:  league.DivisionMap{ByFranchise: map[string]string{"a": "x", "b": "x"}},
		HeadToHead: h2h,
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLatest(t *testing.T) {
	s := openTemp(t)
	for _, wk := range []int{9, 11, 10} {
		if err := s.Save(sample(wk)); err != nil {
			t.Fatalf("Save(week %d): %v", wk, err)
		}
	}

	l, err := s.Latest("L1", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if l.Week != 11 {
		t.Errorf("Latest week = %d, want 11", l.Week)
	}
	if l.Standings["a"].PointsFor != 900.5 {
		t.Errorf("a PF = %v, want 900.5", l.Standings["a"].PointsFor)
	}
	if w, _, _ := l.HeadToHead.Versus("b", "a"); w != 1 {
		t.Errorf("head-to-head lost in round trip: b vs a wins = %d", w)
	}
	if len(l.Schedule["b"]) != 1 {
		t.Errorf("schedule lost in round trip: %+v", l.Schedule)
	}
}

func TestSaveReplacesSameWeek(t *testing.T) {
	s := openTemp(t)
	first := sample(12)
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	second := sample(12)
	second.Standings["a"] = league.TeamRecord{FranchiseID: "a", Wins: 6, Losses: 3}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	metas, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 {
		t.Fatalf("len(List) = %d, want 1", len(metas))
	}
	if metas[0].Franchises != 2 || metas[0].Bytes == 0 || metas[0].SavedAt.IsZero() {
		t.Errorf("meta = %+v", metas[0])
	}
	l, _ := s.Latest("L1", 2025)
	if l.Standings["a"].Wins != 6 {
		t.Errorf("a wins = %d, want replaced value 6", l.Standings["a"].Wins)
	}
}

func TestLatestNotFound(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Latest("missing", 2025); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
}

func TestListLimit(t *testing.T) {
	s := openTemp(t)
	for wk := 1; wk <= 5; wk++ {
		if err := s.Save(sample(wk)); err != nil {
			t.Fatal(err)
		}
	}
	metas, err := s.List(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Errorf("len(List(3)) = %d, want 3", len(metas))
	}
}
