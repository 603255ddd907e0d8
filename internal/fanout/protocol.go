package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/core/scenario"
	"github.com/charleschow/playoff-odds/internal/events"
)

// Envelope is the wire format for events sent over the broadcast websocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	League    string          `json:"league,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		League:    evt.League,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	})
}

// UnmarshalEvent decodes an Envelope back into a typed Event. Scenario
// payloads decode as scenario.CustomResult when they carry a projected
// record and as scenario.Result otherwise.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		League:    env.League,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventForecastReady:
		var r forecast.Report
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			return evt, fmt.Errorf("unmarshal forecast_ready: %w", err)
		}
		evt.Payload = r
	case events.EventScenarioComputed:
		var shape struct {
			ProjectedRecord string `json:"projected_record"`
		}
		if err := json.Unmarshal(env.Payload, &shape); err != nil {
			return evt, fmt.Errorf("unmarshal scenario_computed: %w", err)
		}
		if shape.ProjectedRecord != "" {
			var r scenario.CustomResult
			if err := json.Unmarshal(env.Payload, &r); err != nil {
				return evt, fmt.Errorf("unmarshal scenario_computed: %w", err)
			}
			evt.Payload = r
		} else {
			var r scenario.Result
			if err := json.Unmarshal(env.Payload, &r); err != nil {
				return evt, fmt.Errorf("unmarshal scenario_computed: %w", err)
			}
			evt.Payload = r
		}
	case events.EventLeagueLoaded:
		var ll events.LeagueLoadedEvent
		if err := json.Unmarshal(env.Payload, &ll); err != nil {
			return evt, fmt.Errorf("unmarshal league_loaded: %w", err)
		}
		evt.Payload = ll
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
