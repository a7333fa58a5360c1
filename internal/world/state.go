// Package world holds the read-only view of the simulated world that the
// airport queries and the command façade consult. Implementations own the
// data; callers only ever see the snapshot valid at call time.
package world

import "github.com/skyhaul/airportscript/pkg/core"

// Facility is a bit set of the parts a station consists of.
type Facility uint8

const (
	FacilityTrain Facility = 1 << iota
	FacilityTruckStop
	FacilityBusStop
	FacilityAirport
	FacilityDock
)

// Has reports whether all bits of f2 are set.
func (f Facility) Has(f2 Facility) bool { return f&f2 == f2 }

// AirportInfo describes the airport part of a station.
type AirportInfo struct {
	Type    core.AirportType
	View    core.AirportView
	Tile    core.TileIndex // top-left corner
	Width   uint32
	Height  uint32
	Hangars []core.TileIndex
}

// Area returns the footprint of the airport.
func (a AirportInfo) Area() Area {
	return Area{Tile: a.Tile, Width: a.Width, Height: a.Height}
}

// StationInfo is a snapshot of one station.
type StationInfo struct {
	ID         core.StationID
	Name       string
	Owner      core.CompanyID
	Facilities Facility
	Town       core.TownID
	Airport    AirportInfo
}

// Town is a snapshot of one town.
type Town struct {
	ID       core.TownID
	Name     string
	Tile     core.TileIndex
	Noise    uint32 // noise already caused by airports
	MaxNoise uint32
}

// Settings are the game rules the queries depend on.
type Settings struct {
	// NoiseLevel enables the per-town airport noise limit.
	NoiseLevel bool
	// TownCouncilTolerance is 0 (permissive) to 2 (hostile).
	TownCouncilTolerance int
	// StationSpread is the largest side a station may cover.
	StationSpread uint32
	// DistantJoinStations allows joining a named, non-adjacent station.
	DistantJoinStations bool
}

// DefaultSettings mirrors the usual game defaults.
func DefaultSettings() Settings {
	return Settings{
		NoiseLevel:           true,
		TownCouncilTolerance: 0,
		StationSpread:        12,
		DistantJoinStations:  true,
	}
}

// State is the read-only world the airport layer works against.
type State interface {
	Map() Map
	Settings() Settings

	// IsStationTile reports whether the tile belongs to any station.
	IsStationTile(t core.TileIndex) bool
	// IsAirport reports whether the tile is a non-hangar airport tile.
	IsAirport(t core.TileIndex) bool
	// IsHangar reports whether the tile is an airport hangar.
	IsHangar(t core.TileIndex) bool

	StationIndex(t core.TileIndex) (core.StationID, bool)
	Station(id core.StationID) (StationInfo, bool)

	Towns() []Town
}
