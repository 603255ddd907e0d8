package events

// LeagueLoadedEvent announces which snapshot the service is forecasting.
type LeagueLoadedEvent struct {
	LeagueID   string `json:"league_id"`
	Year       int    `json:"year"`
	Week       int    `json:"week"`
	Source     string `json:"source"` // "file", "feed" or "snapshot"
	Franchises int    `json:"franchises"`
	Warnings   int    `json:"warnings"`
}
