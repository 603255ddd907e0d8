package winprob

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed model_config.yaml
var modelConfigData []byte

// Bounds are the clamps applied by the model.
type Bounds struct {
	ProbFloor   float64 `yaml:"prob_floor"`
	ProbCeiling float64 `yaml:"prob_ceiling"`
	FormMin     float64 `yaml:"form_min"`
	FormMax     float64 `yaml:"form_max"`
}

var defaultBounds = Bounds{
	ProbFloor:   0.05,
	ProbCeiling: 0.95,
	FormMin:     0.8,
	FormMax:     1.2,
}

func init() {
	var b Bounds
	if err := yaml.Unmarshal(modelConfigData, &b); err != nil {
		return
	}
	if b.ProbFloor > 0 && b.ProbCeiling > b.ProbFloor && b.ProbCeiling < 1 {
		defaultBounds.ProbFloor = b.ProbFloor
		defaultBounds.ProbCeiling = b.ProbCeiling
	}
	if b.FormMin > 0 && b.FormMax > b.FormMin {
		defaultBounds.FormMin = b.FormMin
		defaultBounds.FormMax = b.FormMax
	}
}

// DefaultBounds returns the embedded model bounds.
func DefaultBounds() Bounds { return defaultBounds }

// Clamp pins p into [ProbFloor, ProbCeiling].
func (b Bounds) Clamp(p float64) float64 {
	return clamp(p, b.ProbFloor, b.ProbCeiling)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
