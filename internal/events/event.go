package events

import "time"

// Event is the envelope that flows through the bus. Payload is one of the
// forecast package's report or scenario result types.
type Event struct {
	ID        string
	Type      EventType
	League    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	EventForecastReady    EventType = "forecast_ready"
	EventScenarioComputed EventType = "scenario_computed"
	EventLeagueLoaded     EventType = "league_loaded"
)
