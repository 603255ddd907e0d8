package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrettyHandlerFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo)
	defer Init(slog.LevelInfo)

	Debugf("hidden %d", 1)
	Warnf("forecast stopped after %d trials", 512)
	L().With("league", "L1").Info("loaded", "week", 9)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "WARN: forecast stopped after 512 trials") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "league=L1") || !strings.Contains(out, "week=9") {
		t.Errorf("attrs missing: %q", out)
	}
}

func TestLatencyTracker(t *testing.T) {
	lt := NewLatencyTracker(3)
	for _, ms := range []int{50, 10, 20, 30} {
		lt.Record(time.Duration(ms) * time.Millisecond)
	}
	if lt.Count() != 3 {
		t.Errorf("Count() = %d, want 3", lt.Count())
	}
	if got := lt.P50(); got != 20*time.Millisecond {
		t.Errorf("P50() = %v, want 20ms", got)
	}
	if got := lt.P99(); got != 20*time.Millisecond {
		t.Errorf("P99() = %v, want 20ms", got)
	}
}

func TestGauge(t *testing.T) {
	var g Gauge
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 1 {
		t.Errorf("Value() = %d, want 1", g.Value())
	}
}
