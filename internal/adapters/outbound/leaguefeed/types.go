package leaguefeed

// Summary is the provider's league header.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Year         int    `json:"year"`
	CurrentWeek  int    `json:"current_week"`
	SeasonLength int    `json:"season_length"`
	PlayoffSlots int    `json:"playoff_slots"`
}

type FranchiseStanding struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DivisionID     string    `json:"division_id"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Ties           int       `json:"ties"`
	PointsFor      float64   `json:"points_for"`
	PointsAgainst  float64   `json:"points_against"`
	DivisionWins   int       `json:"division_wins"`
	DivisionLosses int       `json:"division_losses"`
	DivisionTies   int       `json:"division_ties"`
	RecentScores   []float64 `json:"recent_scores"`
}

type StandingsResponse struct {
	Franchises []FranchiseStanding `json:"franchises"`
}

// ScheduledGame is one matchup. Played games carry Final and either a
// winner or Tie.
type ScheduledGame struct {
	Week   int    `json:"week"`
	HomeID string `json:"home_id"`
	AwayID string `json:"away_id"`
	Final  bool   `json:"final"`
	Winner string `json:"winner_id,omitempty"`
	Tie    bool   `json:"tie,omitempty"`
}

type ScheduleResponse struct {
	Games []ScheduledGame `json:"games"`
}

type DivisionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DivisionsResponse struct {
	Divisions []DivisionInfo `json:"divisions"`
}
