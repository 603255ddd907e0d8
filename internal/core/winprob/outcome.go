package winprob

// Source is the random stream consumed by the simulator. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

type Outcome int

const (
	Loss Outcome = iota
	Win
)

func (o Outcome) String() string {
	if o == Win {
		return "W"
	}
	return "L"
}

// Decider turns a win probability into a single game result.
type Decider interface {
	Decide(p float64, rng Source) Outcome
}

// JitterDecider perturbs p by a uniform amount in [-Jitter, +Jitter],
// re-clamps it, then draws. It keeps no state between calls.
type JitterDecider struct {
	Jitter float64
	Bounds Bounds
}

func (d JitterDecider) Decide(p float64, rng Source) Outcome {
	jittered := d.Bounds.Clamp(p + (rng.Float64()*2-1)*d.Jitter)
	if rng.Float64() < jittered {
		return Win
	}
	return Loss
}
