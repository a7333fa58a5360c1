// Package airport answers questions about airports on the map and turns
// validated build and remove calls into executor requests.
package airport

import (
	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/noise"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// PublicQueries are the tile queries any agent may ask.
type PublicQueries interface {
	IsHangarTile(tile core.TileIndex) bool
	IsAirportTile(tile core.TileIndex) bool
	AirportType(tile core.TileIndex) core.Result[core.AirportType]
	AirportView(tile core.TileIndex) core.Result[core.AirportView]
	NoiseLevelIncrease(tile core.TileIndex, t core.AirportType) core.Result[int32]
	NearestTown(tile core.TileIndex, t core.AirportType) core.Result[core.TownID]
}

// OwnerQueries only answer for airports owned by the asking company.
type OwnerQueries interface {
	NumHangars(company core.CompanyID, tile core.TileIndex) core.Result[int32]
	HangarTile(company core.CompanyID, tile core.TileIndex, index int) core.Result[core.TileIndex]
}

// Query reads the live world on every call, settings included.
type Query struct {
	state   world.State
	catalog *catalog.Catalog
}

var (
	_ PublicQueries = (*Query)(nil)
	_ OwnerQueries  = (*Query)(nil)
)

// NewQuery creates a query layer over state.
func NewQuery(state world.State, cat *catalog.Catalog) *Query {
	return &Query{state: state, catalog: cat}
}

// Catalog returns the type catalog the queries use.
func (q *Query) Catalog() *catalog.Catalog { return q.catalog }

// State returns the world the queries read.
func (q *Query) State() world.State { return q.state }

func (q *Query) validTile(tile core.TileIndex) bool {
	return q.state.Map().IsValidTile(tile)
}

// IsHangarTile reports whether tile is a hangar of some airport.
func (q *Query) IsHangarTile(tile core.TileIndex) bool {
	return q.validTile(tile) && q.state.IsStationTile(tile) && q.state.IsHangar(tile)
}

// IsAirportTile reports whether tile is part of an airport. Hangar tiles
// are not airport tiles.
func (q *Query) IsAirportTile(tile core.TileIndex) bool {
	return q.validTile(tile) && q.state.IsStationTile(tile) && q.state.IsAirport(tile)
}

// airportStation returns the station of tile when it has an airport.
func (q *Query) airportStation(tile core.TileIndex) (world.StationInfo, core.Reason) {
	if !q.validTile(tile) {
		return world.StationInfo{}, core.ReasonInvalidTile
	}
	if !q.state.IsStationTile(tile) {
		return world.StationInfo{}, core.ReasonNotStationTile
	}
	id, ok := q.state.StationIndex(tile)
	if !ok {
		return world.StationInfo{}, core.ReasonNotStationTile
	}
	st, ok := q.state.Station(id)
	if !ok || !st.Facilities.Has(world.FacilityAirport) {
		return world.StationInfo{}, core.ReasonNotAirport
	}
	return st, core.ReasonNone
}

// AirportType returns the type of the airport on tile.
func (q *Query) AirportType(tile core.TileIndex) core.Result[core.AirportType] {
	st, reason := q.airportStation(tile)
	if reason != core.ReasonNone {
		return core.Fail(core.AirportTypeInvalid, reason)
	}
	return core.Ok(st.Airport.Type)
}

// AirportView returns the view of the airport on tile.
func (q *Query) AirportView(tile core.TileIndex) core.Result[core.AirportView] {
	st, reason := q.airportStation(tile)
	if reason != core.ReasonNone {
		return core.Fail(core.AirportViewInvalid, reason)
	}
	return core.Ok(st.Airport.View)
}

// ownedAirport applies the owner gate on top of airportStation.
func (q *Query) ownedAirport(company core.CompanyID, tile core.TileIndex) (world.StationInfo, core.Reason) {
	st, reason := q.airportStation(tile)
	if reason != core.ReasonNone {
		return st, reason
	}
	if st.Owner != company {
		return world.StationInfo{}, core.ReasonNotOwner
	}
	return st, core.ReasonNone
}

// NumHangars is the hangar count of the airport on tile, -1 unless it
// belongs to company.
func (q *Query) NumHangars(company core.CompanyID, tile core.TileIndex) core.Result[int32] {
	st, reason := q.ownedAirport(company, tile)
	if reason != core.ReasonNone {
		return core.Fail[int32](-1, reason)
	}
	return core.Ok(int32(len(st.Airport.Hangars)))
}

// HangarTile returns the index-th hangar of the airport on tile.
func (q *Query) HangarTile(company core.CompanyID, tile core.TileIndex, index int) core.Result[core.TileIndex] {
	st, reason := q.ownedAirport(company, tile)
	if reason != core.ReasonNone {
		return core.Fail(core.InvalidTile, reason)
	}
	if index < 0 || index >= len(st.Airport.Hangars) {
		return core.Fail(core.InvalidTile, core.ReasonNoHangar)
	}
	return core.Ok(st.Airport.Hangars[index])
}

// footprint returns the area an airport of type t would cover at tile,
// using the default view.
func (q *Query) footprint(tile core.TileIndex, t core.AirportType) (world.Area, core.Reason) {
	if !q.validTile(tile) {
		return world.Area{}, core.ReasonInvalidTile
	}
	if !q.catalog.IsInformationAvailable(t) {
		return world.Area{}, core.ReasonTypeUnavailable
	}
	w := q.catalog.Width(t)
	h := q.catalog.Height(t)
	return world.Area{Tile: tile, Width: uint32(w.Value), Height: uint32(h.Value)}, core.ReasonNone
}

// NoiseLevelIncrease is the noise an airport of type t at tile would add
// to its nearest town. It is 1 when the noise rule is off.
func (q *Query) NoiseLevelIncrease(tile core.TileIndex, t core.AirportType) core.Result[int32] {
	area, reason := q.footprint(tile, t)
	if reason != core.ReasonNone {
		return core.Fail[int32](-1, reason)
	}
	settings := q.state.Settings()
	if !settings.NoiseLevel {
		return core.Ok[int32](1)
	}
	model := noise.NewModel(settings)
	spec, _ := q.catalog.Spec(t)
	_, distance, ok := model.NearestTown(q.state.Map(), q.state.Towns(), area)
	if !ok {
		return core.Ok(int32(spec.NoiseLevel))
	}
	return core.Ok(int32(model.Level(spec.NoiseLevel, distance)))
}

// NearestTown returns the town an airport of type t at tile would belong to.
func (q *Query) NearestTown(tile core.TileIndex, t core.AirportType) core.Result[core.TownID] {
	area, reason := q.footprint(tile, t)
	if reason != core.ReasonNone {
		return core.Fail(core.InvalidTown, reason)
	}
	town, _, ok := noise.NewModel(q.state.Settings()).NearestTown(q.state.Map(), q.state.Towns(), area)
	if !ok {
		return core.Fail(core.InvalidTown, core.ReasonNoTown)
	}
	return core.Ok(town.ID)
}
