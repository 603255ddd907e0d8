package league

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownFranchise = errors.New("unknown franchise")
	ErrSeasonLength     = errors.New("record exceeds season length")
)

// TeamRecord is one franchise's standings line. Snapshots handed to the
// simulation core are never mutated; every trial works on its own copy.
type TeamRecord struct {
	FranchiseID    string  `json:"franchise_id" yaml:"franchise_id"`
	Wins           int     `json:"wins" yaml:"wins"`
	Losses         int     `json:"losses" yaml:"losses"`
	Ties           int     `json:"ties" yaml:"ties"`
	PointsFor      float64 `json:"points_for" yaml:"points_for"`
	PointsAgainst  float64 `json:"points_against" yaml:"points_against"`
	DivisionWins   int     `json:"division_wins" yaml:"division_wins"`
	DivisionLosses int     `json:"division_losses" yaml:"division_losses"`
	DivisionTies   int     `json:"division_ties" yaml:"division_ties"`
}

// RemainingGame is one unplayed week on a franchise's schedule. The same
// matchup normally appears on both participants' lists.
type RemainingGame struct {
	Week       int    `json:"week" yaml:"week"`
	OpponentID string `json:"opponent_id" yaml:"opponent"`
	IsHome     bool   `json:"is_home" yaml:"home"`
}

// Division groups franchises; its best-ranked member gets an automatic berth.
type Division struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Standings maps franchise id to its current record.
type Standings map[string]TeamRecord

// Schedule maps franchise id to its remaining games ordered by week.
type Schedule map[string][]RemainingGame

// DivisionMap is the division structure as delivered by the data provider.
type DivisionMap struct {
	ByFranchise map[string]string `json:"by_franchise"`
	Names       map[string]string `json:"names"`
}

// League is the fully resolved input snapshot for one forecast.
type League struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Year         int                  `json:"year"`
	Week         int                  `json:"week"`
	SeasonLength int                  `json:"season_length"`
	PlayoffSlots int                  `json:"playoff_slots"`
	Standings    Standings            `json:"standings"`
	Schedule     Schedule             `json:"schedule"`
	Divisions    DivisionMap          `json:"divisions"`
	HeadToHead   HeadToHead           `json:"head_to_head,omitempty"`
	RecentScores map[string][]float64 `json:"recent_scores,omitempty"`
	Names        map[string]string    `json:"names,omitempty"`
}

// FranchiseIDs returns every franchise in the standings, sorted.
func (l *League) FranchiseIDs() []string {
	ids := make([]string, 0, len(l.Standings))
	for id := range l.Standings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DisplayName falls back to the franchise id when no name is known.
func (l *League) DisplayName(id string) string {
	if n, ok := l.Names[id]; ok && n != "" {
		return n
	}
	return id
}

// RemainingCount is the number of games left on a franchise's schedule.
func (l *League) RemainingCount(id string) int {
	return len(l.Schedule[id])
}

// Validate checks the season-length invariant on every record.
func (l *League) Validate() error {
	if l.SeasonLength <= 0 {
		return nil
	}
	for _, id := range l.FranchiseIDs() {
		r := l.Standings[id]
		if r.GamesPlayed() > l.SeasonLength {
			return fmt.Errorf("franchise %s has %d games for a %d-game season: %w",
				id, r.GamesPlayed(), l.SeasonLength, ErrSeasonLength)
		}
	}
	return nil
}
