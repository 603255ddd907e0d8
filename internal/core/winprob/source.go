package winprob

import (
	"math/rand/v2"
	"time"
)

// SourceFactory hands out an independent random stream per trial. Trials
// draw from their own stream, so results do not depend on which worker ran
// which trial.
type SourceFactory func(trial uint64) Source

// SeededFactory derives every trial stream from one seed.
func SeededFactory(seed uint64) SourceFactory {
	return func(trial uint64) Source {
		return rand.New(rand.NewPCG(seed, trial))
	}
}

// ClockFactory seeds from the wall clock; output is not reproducible.
func ClockFactory() SourceFactory {
	return SeededFactory(uint64(time.Now().UnixNano()))
}
