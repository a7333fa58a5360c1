// pkg/core/result.go
package core

// Reason explains why an advisory query has no answer.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInvalidTile
	ReasonTypeUnavailable
	ReasonNotBuildable
	ReasonInvalidView
	ReasonInvalidPlaneType
	ReasonCannotLand
	ReasonNotStationTile
	ReasonNotAirport
	ReasonNotOwner
	ReasonNoHangar
	ReasonNoTown
)

var reasonNames = [...]string{
	ReasonNone:             "ok",
	ReasonInvalidTile:      "invalid tile",
	ReasonTypeUnavailable:  "airport type information unavailable",
	ReasonNotBuildable:     "airport type not buildable",
	ReasonInvalidView:      "invalid airport view",
	ReasonInvalidPlaneType: "invalid plane type",
	ReasonCannotLand:       "plane type cannot land",
	ReasonNotStationTile:   "not a station tile",
	ReasonNotAirport:       "station has no airport",
	ReasonNotOwner:         "station owned by another company",
	ReasonNoHangar:         "no such hangar",
	ReasonNoTown:           "no town",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Result is the answer of an advisory query. When Reason is not
// ReasonNone, Value holds the documented sentinel for the query.
type Result[T any] struct {
	Value  T
	Reason Reason
}

// OK reports whether the query produced an answer.
func (r Result[T]) OK() bool {
	return r.Reason == ReasonNone
}

// Ok wraps a successful answer.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a sentinel with the reason it was returned.
func Fail[T any](sentinel T, reason Reason) Result[T] {
	return Result[T]{Value: sentinel, Reason: reason}
}
