// pkg/core/command.go
package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CommandKind tags a mutation request.
type CommandKind uint8

const (
	CmdInvalid CommandKind = iota
	CmdBuildAirport
	CmdLandscapeClear
)

// Name is the dispatcher route for the command.
func (k CommandKind) Name() string {
	switch k {
	case CmdBuildAirport:
		return "build_airport"
	case CmdLandscapeClear:
		return "landscape_clear"
	default:
		return "invalid"
	}
}

func (k CommandKind) String() string { return k.Name() }

// Request is a mutation handed to the command executor.
type Request struct {
	ID          uuid.UUID
	Kind        CommandKind
	Tile        TileIndex
	P1          uint32
	P2          uint32
	Company     CompanyID
	SubmittedAt time.Time
}

// Bit layout of the build parameters.
const (
	joinFlagBit      = 1 << 0
	stationIDShift   = 16
	airportViewShift = 8
)

// EncodeAirport packs type and view into P1: type in bits 0-7, view in bits 8-15.
func EncodeAirport(t AirportType, v AirportView) uint32 {
	return uint32(t) | uint32(v)<<airportViewShift
}

// DecodeAirport is the inverse of EncodeAirport.
func DecodeAirport(p1 uint32) (AirportType, AirportView) {
	return AirportType(p1 & 0xFF), AirportView((p1 >> airportViewShift) & 0xFF)
}

// EncodeStationChoice packs a station choice into P2.
// Bit 0 set means "do not auto-join"; bits 16-31 carry the station to join,
// or InvalidStation when none was named.
func EncodeStationChoice(c StationChoice) uint32 {
	var p2 uint32
	if c.Kind() != JoinAdjacent {
		p2 = joinFlagBit
	}
	p2 |= uint32(c.Station()) << stationIDShift
	return p2
}

// DecodeStationChoice unpacks P2. adjacent is true when the request may join
// an adjacent station.
func DecodeStationChoice(p2 uint32) (adjacent bool, id StationID) {
	return p2&joinFlagBit == 0, StationID(p2 >> stationIDShift)
}

// Errors reported asynchronously by the executor for requests that were
// accepted but could not be applied to the world.
var (
	ErrAreaNotClear                    = errors.New("area not clear")
	ErrFlatLandRequired                = errors.New("flat land required")
	ErrLocalAuthorityRefuses           = errors.New("local authority refuses")
	ErrStationTooLarge                 = errors.New("station too large")
	ErrStationTooCloseToAnotherStation = errors.New("station too close to another station")
	ErrOwnedByAnotherCompany           = errors.New("owned by another company")
	ErrNotEnoughCash                   = errors.New("not enough cash")
	ErrUnknownStation                  = errors.New("unknown station")
	ErrAirportNotAvailable             = errors.New("airport type not available")
	ErrNothingToClear                  = errors.New("nothing to clear")
	ErrAirportAlreadyPresent           = errors.New("station already has an airport")
	ErrDistantJoinDisabled             = errors.New("joining a non-adjacent station is disabled")
	ErrUnknownCompany                  = errors.New("unknown company")
)

// Outcome reports what happened to a submitted request.
type Outcome struct {
	RequestID uuid.UUID
	Kind      CommandKind
	Tile      TileIndex
	Company   CompanyID
	Station   StationID
	Cost      Money
	Err       error
	AppliedAt time.Time
}

// Succeeded reports whether the request changed the world.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// ErrorText returns the outcome error message, or "" on success.
func (o Outcome) ErrorText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
