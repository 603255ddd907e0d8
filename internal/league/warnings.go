package league

import "fmt"

type WarningKind string

const (
	WarnMissingStanding WarningKind = "missing_standing"
	WarnMissingSchedule WarningKind = "missing_schedule"
	WarnUnknownDivision WarningKind = "unknown_division"
	WarnUnknownOpponent WarningKind = "unknown_opponent"
)

// Warning reports a data gap that was worked around instead of failing
// the run.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	FranchiseID string      `json:"franchise_id"`
	Detail      string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.FranchiseID, w.Detail)
}
