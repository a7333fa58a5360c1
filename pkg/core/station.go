// pkg/core/station.go
package core

import "fmt"

// StationChoiceKind tags a StationChoice.
type StationChoiceKind uint8

const (
	// AllocateNew builds a new station, never joining a neighbour.
	AllocateNew StationChoiceKind = iota + 1
	// JoinAdjacent joins an adjacent station when one exists.
	JoinAdjacent
	// JoinExisting joins the named station.
	JoinExisting
)

// StationChoice says which station a new airport becomes part of.
// The zero value is malformed.
type StationChoice struct {
	kind StationChoiceKind
	id   StationID
}

// NewStation returns the choice to allocate a new station.
func NewStation() StationChoice {
	return StationChoice{kind: AllocateNew, id: InvalidStation}
}

// JoinAdjacentStation returns the choice to join an adjacent station.
func JoinAdjacentStation() StationChoice {
	return StationChoice{kind: JoinAdjacent, id: InvalidStation}
}

// JoinStation returns the choice to join station id.
func JoinStation(id StationID) StationChoice {
	return StationChoice{kind: JoinExisting, id: id}
}

// StationChoiceFromID maps the script encoding (StationNew,
// StationJoinAdjacent or a concrete ID) to a StationChoice.
func StationChoiceFromID(id StationID) StationChoice {
	switch id {
	case StationNew:
		return NewStation()
	case StationJoinAdjacent:
		return JoinAdjacentStation()
	default:
		return JoinStation(id)
	}
}

// Kind returns the tag, or 0 for a malformed choice.
func (c StationChoice) Kind() StationChoiceKind { return c.kind }

// Station returns the concrete station for JoinExisting, InvalidStation otherwise.
func (c StationChoice) Station() StationID {
	if c.kind != JoinExisting {
		return InvalidStation
	}
	return c.id
}

func (c StationChoice) String() string {
	switch c.kind {
	case AllocateNew:
		return "new"
	case JoinAdjacent:
		return "join-adjacent"
	case JoinExisting:
		return fmt.Sprintf("join(%d)", c.id)
	default:
		return "malformed"
	}
}
