// pkg/core/ids.go
package core

import "fmt"

// TileIndex identifies a single grid cell of the map.
// Validity depends on the map size and must be checked before use.
type TileIndex uint32

// InvalidTile is the reserved out-of-range tile value.
const InvalidTile TileIndex = 0xFFFFFFFF

// AirportType indexes the airport type catalog.
type AirportType uint8

const (
	// NumAirportTypes bounds the closed range of airport type indices.
	NumAirportTypes = 128

	// AirportTypeInvalid is returned when no airport type applies.
	AirportTypeInvalid AirportType = 0xFF
)

// AirportView selects one layout of an airport type. A view has no
// meaning without the type it belongs to.
type AirportView uint8

// AirportViewInvalid is returned when no view applies.
const AirportViewInvalid AirportView = 0xFF

// StationID identifies a station.
type StationID uint16

const (
	// StationNew asks the executor to allocate a new station.
	StationNew StationID = 0xFFFD
	// StationJoinAdjacent asks the executor to join an adjacent station if there is one.
	StationJoinAdjacent StationID = 0xFFFE
	// InvalidStation marks the absence of a concrete station.
	InvalidStation StationID = 0xFFFF
)

// TownID identifies a town.
type TownID uint16

// InvalidTown is returned when no town applies.
const InvalidTown TownID = 0xFFFF

// CompanyID identifies a company, and with it the agent acting for it.
type CompanyID uint8

const (
	// OwnerNone owns tiles nobody has claimed.
	OwnerNone CompanyID = 0x10
	// InvalidCompany marks the absence of a company.
	InvalidCompany CompanyID = 0xFF
)

// MaxCompanies is the number of company slots.
const MaxCompanies = 15

// Money is an amount of in-game currency.
type Money int64

func (t TileIndex) String() string {
	if t == InvalidTile {
		return "tile(invalid)"
	}
	return fmt.Sprintf("tile(%d)", uint32(t))
}
