package winprob

import (
	"math"
	"testing"

	"github.com/charleschow/playoff-odds/internal/league"
)

type fixedSource struct {
	vals []float64
	i    int
}

func (s *fixedSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestDefaultBoundsFromEmbeddedConfig(t *testing.T) {
	b := DefaultBounds()
	if b.ProbFloor != 0.05 || b.ProbCeiling != 0.95 {
		t.Errorf("prob bounds = [%v, %v], want [0.05, 0.95]", b.ProbFloor, b.ProbCeiling)
	}
	if b.FormMin != 0.8 || b.FormMax != 1.2 {
		t.Errorf("form bounds = [%v, %v], want [0.8, 1.2]", b.FormMin, b.FormMax)
	}
}

func TestFormMultiplier(t *testing.T) {
	b := DefaultBounds()
	rec := league.TeamRecord{Wins: 5, Losses: 5, PointsFor: 1000}

	tests := []struct {
		name   string
		recent []float64
		window int
		want   float64
	}{
		{"no recent scores uses win pct", nil, 3, 1.0},
		{"hot streak", []float64{110, 110, 110}, 3, 1.1},
		{"window keeps last scores", []float64{10, 100, 100}, 2, 1.0},
		{"clamped high", []float64{500}, 3, 1.2},
		{"clamped low", []float64{1}, 3, 0.8},
	}
	for _, tt := range tests {
		got := FormMultiplier(rec, tt.recent, tt.window, b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: FormMultiplier = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWinProbabilityClampedAndSymmetric(t *testing.T) {
	l := &league.League{
		Standings: league.Standings{
			"strong": {Wins: 5, Losses: 5, PointsFor: 1500},
			"weak":   {Wins: 5, Losses: 5, PointsFor: 500},
			"mega":   {Wins: 5, Losses: 5, PointsFor: 100000},
			"zero":   {},
			"zero2":  {},
		},
	}
	m := NewModel(l, 3, DefaultBounds())

	p := m.WinProbability("strong", "weak")
	if math.Abs(p-0.75) > 1e-9 {
		t.Errorf("WinProbability(strong, weak) = %v, want 0.75", p)
	}
	if q := m.WinProbability("weak", "strong"); math.Abs(p+q-1) > 1e-9 {
		t.Errorf("p + q = %v, want 1", p+q)
	}
	if got := m.WinProbability("mega", "weak"); got != 0.95 {
		t.Errorf("WinProbability(mega, weak) = %v, want ceiling 0.95", got)
	}
	if got := m.WinProbability("weak", "mega"); got != 0.05 {
		t.Errorf("WinProbability(weak, mega) = %v, want floor 0.05", got)
	}
	if got := m.WinProbability("zero", "zero2"); got != 0.5 {
		t.Errorf("WinProbability(no scoring) = %v, want 0.5", got)
	}
}

func TestJitterDecider(t *testing.T) {
	d := JitterDecider{Jitter: 0.1, Bounds: DefaultBounds()}

	// jitter draw 0.5 leaves p unchanged; outcome draw then decides.
	if got := d.Decide(0.6, &fixedSource{vals: []float64{0.5, 0.59}}); got != Win {
		t.Errorf("Decide(0.6, draw 0.59) = %v, want W", got)
	}
	if got := d.Decide(0.6, &fixedSource{vals: []float64{0.5, 0.61}}); got != Loss {
		t.Errorf("Decide(0.6, draw 0.61) = %v, want L", got)
	}
	// max jitter pushes 0.94 past the ceiling, which is re-clamped to 0.95.
	if got := d.Decide(0.94, &fixedSource{vals: []float64{0.9999, 0.951}}); got != Loss {
		t.Errorf("Decide re-clamp: got %v, want L", got)
	}
}

func TestSeededFactoryReproducible(t *testing.T) {
	a := SeededFactory(42)(7)
	b := SeededFactory(42)(7)
	c := SeededFactory(42)(8)
	same := true
	for i := 0; i < 10; i++ {
		x, y, z := a.Float64(), b.Float64(), c.Float64()
		if x != y {
			t.Fatalf("draw %d: %v != %v for identical seed and trial", i, x, y)
		}
		if x != z {
			same = false
		}
	}
	if same {
		t.Error("different trials produced identical streams")
	}
}
