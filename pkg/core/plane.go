// pkg/core/plane.go
package core

// PlaneType is the category of aircraft trying to land.
// The numeric values are persisted and exchanged with scripts; 2 is unused
// on purpose and the codes must never be renumbered.
type PlaneType int32

const (
	PlaneHelicopter PlaneType = 0
	PlaneSmall      PlaneType = 1
	PlaneBig        PlaneType = 3

	PlaneInvalid PlaneType = -1
)

// IsValidPlaneType reports whether pt is one of the known plane types.
func IsValidPlaneType(pt PlaneType) bool {
	return pt == PlaneSmall || pt == PlaneBig || pt == PlaneHelicopter
}

func (pt PlaneType) String() string {
	switch pt {
	case PlaneHelicopter:
		return "helicopter"
	case PlaneSmall:
		return "small"
	case PlaneBig:
		return "big"
	default:
		return "invalid"
	}
}
