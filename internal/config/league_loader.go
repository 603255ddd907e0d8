package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/playoff-odds/internal/league"
)

type leagueFile struct {
	League struct {
		ID           string `yaml:"id"`
		Name         string `yaml:"name"`
		Year         int    `yaml:"year"`
		Week         int    `yaml:"week"`
		SeasonLength int    `yaml:"season_length"`
		PlayoffSlots int    `yaml:"playoff_slots"`
	} `yaml:"league"`
	Divisions  []divisionEntry  `yaml:"divisions"`
	Franchises []franchiseEntry `yaml:"franchises"`
	Results    []resultEntry    `yaml:"results"`
}

type divisionEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

type franchiseEntry struct {
	ID                string                 `yaml:"id"`
	Name              string                 `yaml:"name"`
	Division          string                 `yaml:"division"`
	league.TeamRecord `yaml:",inline"`
	RecentScores      []float64              `yaml:"recent_scores"`
	Schedule          []league.RemainingGame `yaml:"schedule"`
}

type resultEntry struct {
	Week   int    `yaml:"week"`
	Winner string `yaml:"winner"`
	Loser  string `yaml:"loser"`
	Tie    bool   `yaml:"tie"`
}

// LoadLeagueFile reads a YAML league definition.
func LoadLeagueFile(path string) (*league.League, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league file: %w", err)
	}
	l, err := ParseLeague(data)
	if err != nil {
		return nil, fmt.Errorf("parse league file %s: %w", path, err)
	}
	return l, nil
}

// ParseLeague decodes a league definition. Opponents and result teams may
// be given by franchise id or by display name.
func ParseLeague(data []byte) (*league.League, error) {
	var f leagueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	l := &league.League{
		ID:           f.League.ID,
		Name:         f.League.Name,
		Year:         f.League.Year,
		Week:         f.League.Week,
		SeasonLength: f.League.SeasonLength,
		PlayoffSlots: f.League.PlayoffSlots,
		Standings:    make(league.Standings, len(f.Franchises)),
		Schedule:     make(league.Schedule, len(f.Franchises)),
		Divisions: league.DivisionMap{
			ByFranchise: make(map[string]string),
			Names:       make(map[string]string),
		},
		HeadToHead:   league.HeadToHead{},
		RecentScores: make(map[string][]float64),
		Names:        make(map[string]string),
	}

	for _, d := range f.Divisions {
		name := d.Name
		if name == "" {
			name = d.ID
		}
		l.Divisions.Names[d.ID] = name
		for _, m := range d.Members {
			l.Divisions.ByFranchise[m] = d.ID
		}
	}

	for _, fr := range f.Franchises {
		if fr.ID == "" {
			return nil, fmt.Errorf("franchise %q has no id", fr.Name)
		}
		if _, dup := l.Standings[fr.ID]; dup {
			return nil, fmt.Errorf("franchise %s listed twice", fr.ID)
		}
		rec := fr.TeamRecord
		rec.FranchiseID = fr.ID
		l.Standings[fr.ID] = rec
		if fr.Name != "" {
			l.Names[fr.ID] = fr.Name
		}
		if fr.Division != "" {
			l.Divisions.ByFranchise[fr.ID] = fr.Division
		}
		if len(fr.RecentScores) > 0 {
			l.RecentScores[fr.ID] = fr.RecentScores
		}
		if fr.Schedule != nil {
			l.Schedule[fr.ID] = fr.Schedule
		}
	}

	// Second pass: names are only resolvable once every franchise is known.
	for id, games := range l.Schedule {
		for i, g := range games {
			if resolved, ok := l.ResolveFranchise(g.OpponentID); ok {
				games[i].OpponentID = resolved
			}
		}
		l.Schedule[id] = games
	}
	for _, r := range f.Results {
		w, okW := l.ResolveFranchise(r.Winner)
		lo, okL := l.ResolveFranchise(r.Loser)
		if !okW || !okL {
			return nil, fmt.Errorf("week %d result %s vs %s: %w", r.Week, r.Winner, r.Loser, league.ErrUnknownFranchise)
		}
		l.HeadToHead.AddResult(w, lo, r.Tie)
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
