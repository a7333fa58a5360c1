package airport

import (
	"errors"
	"fmt"
)

// ErrPrecondition marks a call the caller should never have made. Scripts
// are expected to check the advisory queries first.
var ErrPrecondition = errors.New("precondition failed")

// Check names the precondition that failed.
type Check string

const (
	CheckValidTile     Check = "valid tile"
	CheckBuildable     Check = "airport type buildable"
	CheckValidView     Check = "valid airport view"
	CheckStationChoice Check = "well-formed station choice"
	CheckAirportTile   Check = "airport or hangar tile"
)

// PreconditionError reports which precondition of which operation failed.
type PreconditionError struct {
	Op    string
	Check Check
	Value any
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Check, e.Value)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// IsPrecondition reports whether err is a contract violation.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
