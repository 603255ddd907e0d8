package events

import (
	"errors"
	"testing"
)

func TestBusDispatchOrderAndErrors(t *testing.T) {
	b := NewBus()
	var order []string
	b.Subscribe(EventForecastReady, func(Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	b.Subscribe(EventForecastReady, func(Event) error {
		order = append(order, "second")
		return nil
	})
	b.Subscribe(EventScenarioComputed, func(Event) error {
		order = append(order, "other")
		return nil
	})

	b.Publish(Event{Type: EventForecastReady})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("dispatch order = %v, want [first second]", order)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	NewBus().Publish(Event{Type: EventLeagueLoaded})
}
