package leaguefeed

import (
	"context"
	"fmt"
	"sort"

	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

// FetchLeague pulls all four resources and assembles a League snapshot.
func (c *Client) FetchLeague(ctx context.Context, leagueID string, year int) (*league.League, error) {
	sum, err := c.GetSummary(ctx, leagueID, year)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	standings, err := c.GetStandings(ctx, leagueID, year)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	sched, err := c.GetSchedule(ctx, leagueID, year)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	divs, err := c.GetDivisions(ctx, leagueID, year)
	if err != nil {
		return nil, fmt.Errorf("divisions: %w", err)
	}

	l := BuildLeague(sum, standings, sched, divs)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// BuildLeague converts provider payloads. Games at or after the current
// week that are not final become remaining games on both schedules;
// final games feed the head-to-head ledger.
func BuildLeague(sum *Summary, standings []FranchiseStanding, sched []ScheduledGame, divs []DivisionInfo) *league.League {
	l := &league.League{
		ID:           sum.ID,
		Name:         sum.Name,
		Year:         sum.Year,
		Week:         sum.CurrentWeek,
		SeasonLength: sum.SeasonLength,
		PlayoffSlots: sum.PlayoffSlots,
		Standings:    make(league.Standings, len(standings)),
		Schedule:     make(league.Schedule, len(standings)),
		Divisions: league.DivisionMap{
			ByFranchise: make(map[string]string, len(standings)),
			Names:       make(map[string]string, len(divs)),
		},
		HeadToHead:   make(league.HeadToHead),
		RecentScores: make(map[string][]float64),
		Names:        make(map[string]string, len(standings)),
	}

	for _, d := range divs {
		l.Divisions.Names[d.ID] = d.Name
	}
	for _, f := range standings {
		l.Standings[f.ID] = league.TeamRecord{
			FranchiseID:    f.ID,
			Wins:           f.Wins,
			Losses:         f.Losses,
			Ties:           f.Ties,
			PointsFor:      f.PointsFor,
			PointsAgainst:  f.PointsAgainst,
			DivisionWins:   f.DivisionWins,
			DivisionLosses: f.DivisionLosses,
			DivisionTies:   f.DivisionTies,
		}
		if f.Name != "" {
			l.Names[f.ID] = f.Name
		}
		if f.DivisionID != "" {
			l.Divisions.ByFranchise[f.ID] = f.DivisionID
		}
		if len(f.RecentScores) > 0 {
			l.RecentScores[f.ID] = f.RecentScores
		}
	}

	skipped := 0
	for _, g := range sched {
		if g.Final {
			switch {
			case g.Tie:
				l.HeadToHead.AddResult(g.HomeID, g.AwayID, true)
			case g.Winner == g.HomeID:
				l.HeadToHead.AddResult(g.HomeID, g.AwayID, false)
			case g.Winner == g.AwayID:
				l.HeadToHead.AddResult(g.AwayID, g.HomeID, false)
			default:
				skipped++
			}
			continue
		}
		if g.Week < sum.CurrentWeek {
			skipped++
			continue
		}
		l.Schedule[g.HomeID] = append(l.Schedule[g.HomeID], league.RemainingGame{Week: g.Week, OpponentID: g.AwayID, IsHome: true})
		l.Schedule[g.AwayID] = append(l.Schedule[g.AwayID], league.RemainingGame{Week: g.Week, OpponentID: g.HomeID, IsHome: false})
	}
	if skipped > 0 {
		telemetry.Warnf("leaguefeed: %s/%d skipped %d games (stale or missing winner)", sum.ID, sum.Year, skipped)
	}

	for id, games := range l.Schedule {
		sort.Slice(games, func(i, j int) bool { return games[i].Week < games[j].Week })
		l.Schedule[id] = games
	}
	return l
}
