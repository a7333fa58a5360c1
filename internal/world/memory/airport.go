package memory

import (
	"fmt"

	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// AirportPlan is a fully resolved airport placement.
type AirportPlan struct {
	Company core.CompanyID
	Type    core.AirportType
	View    core.AirportView
	Area    world.Area
	Hangars []core.TileIndex

	// Adjacent lets the airport join the one station next to it.
	Adjacent bool
	// Join names the station to join, InvalidStation for none.
	Join core.StationID

	Cost  core.Money
	Town  core.TownID // town charged with the noise
	Noise uint32
}

// BuildAirport places an airport and debits its cost. It returns the
// station the airport belongs to.
func (w *World) BuildAirport(p AirportPlan) (core.StationID, error) {
	if !w.m.Fits(p.Area) {
		return core.InvalidStation, fmt.Errorf("%v: %w", p.Area.Tile, core.ErrAreaNotClear)
	}
	footprint := w.m.Tiles(p.Area)
	hangars := make(map[core.TileIndex]bool, len(p.Hangars))
	for _, h := range p.Hangars {
		hangars[h] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkClear(footprint); err != nil {
		return core.InvalidStation, err
	}

	company, ok := w.companies[p.Company]
	if !ok {
		return core.InvalidStation, fmt.Errorf("company %d: %w", p.Company, core.ErrUnknownCompany)
	}

	target, err := w.resolveStation(p)
	if err != nil {
		return core.InvalidStation, err
	}
	if target != nil {
		if target.info.Facilities.Has(world.FacilityAirport) {
			return core.InvalidStation, fmt.Errorf("station %d: %w", target.info.ID, core.ErrAirportAlreadyPresent)
		}
		if err := w.checkSpread(target, p.Area); err != nil {
			return core.InvalidStation, err
		}
	} else if err := w.checkSpread(nil, p.Area); err != nil {
		return core.InvalidStation, err
	}

	if company.Cash < p.Cost {
		return core.InvalidStation, fmt.Errorf("need %d, have %d: %w", p.Cost, company.Cash, core.ErrNotEnoughCash)
	}

	if target == nil {
		target = w.newStation(p.Company, "", p.Town)
	}
	id := target.info.ID
	for _, t := range footprint {
		kind := tileAirport
		if hangars[t] {
			kind = tileHangar
		}
		w.tiles[t] = tileEntry{kind: kind, station: id}
		target.tiles[t] = struct{}{}
	}

	hangarList := make([]core.TileIndex, len(p.Hangars))
	copy(hangarList, p.Hangars)
	target.info.Facilities |= world.FacilityAirport
	target.info.Airport = world.AirportInfo{
		Type:    p.Type,
		View:    p.View,
		Tile:    p.Area.Tile,
		Width:   p.Area.Width,
		Height:  p.Area.Height,
		Hangars: hangarList,
	}
	if town, ok := w.towns[p.Town]; ok {
		town.Noise += p.Noise
		target.noise = p.Noise
		target.noiseTown = p.Town
		if target.info.Town == core.InvalidTown {
			target.info.Town = p.Town
		}
	}
	company.Cash -= p.Cost
	return id, nil
}

// resolveStation picks the station the plan joins, or nil for a new one.
func (w *World) resolveStation(p AirportPlan) (*stationRecord, error) {
	adjacent := w.adjacentStations(p.Area)

	if p.Join != core.InvalidStation {
		target, ok := w.stations[p.Join]
		if !ok {
			return nil, fmt.Errorf("station %d: %w", p.Join, core.ErrUnknownStation)
		}
		if target.info.Owner != p.Company {
			return nil, fmt.Errorf("station %d: %w", p.Join, core.ErrOwnedByAnotherCompany)
		}
		nextTo := false
		for id := range adjacent {
			if id != p.Join {
				return nil, fmt.Errorf("station %d: %w", id, core.ErrStationTooCloseToAnotherStation)
			}
			nextTo = true
		}
		if !nextTo && !w.settings.DistantJoinStations {
			return nil, fmt.Errorf("station %d: %w", p.Join, core.ErrDistantJoinDisabled)
		}
		return target, nil
	}

	if !p.Adjacent {
		return nil, nil
	}
	var target *stationRecord
	for id := range adjacent {
		rec := w.stations[id]
		if rec.info.Owner != p.Company || target != nil {
			return nil, fmt.Errorf("station %d: %w", id, core.ErrStationTooCloseToAnotherStation)
		}
		target = rec
	}
	return target, nil
}

// adjacentStations returns the stations on the ring of tiles around a.
func (w *World) adjacentStations(a world.Area) map[core.StationID]struct{} {
	found := make(map[core.StationID]struct{})
	for dy := -1; dy <= int(a.Height); dy++ {
		for dx := -1; dx <= int(a.Width); dx++ {
			if dx >= 0 && dy >= 0 && dx < int(a.Width) && dy < int(a.Height) {
				continue
			}
			t := w.m.Add(a.Tile, dx, dy)
			if t == core.InvalidTile {
				continue
			}
			if e := w.tiles[t]; e.kind >= tileStation {
				found[e.station] = struct{}{}
			}
		}
	}
	return found
}

// checkSpread rejects stations whose bounding box grows beyond the spread.
func (w *World) checkSpread(rec *stationRecord, a world.Area) error {
	spread := w.settings.StationSpread
	if spread == 0 {
		return nil
	}
	minX, minY := w.m.TileX(a.Tile), w.m.TileY(a.Tile)
	maxX, maxY := minX+a.Width-1, minY+a.Height-1
	if rec != nil {
		for t := range rec.tiles {
			x, y := w.m.TileX(t), w.m.TileY(t)
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX-minX+1 > spread || maxY-minY+1 > spread {
		return fmt.Errorf("%dx%d exceeds spread %d: %w", maxX-minX+1, maxY-minY+1, spread, core.ErrStationTooLarge)
	}
	return nil
}

// ClearTile demolishes what stands on t on behalf of company. Clearing an
// airport or hangar tile removes the whole airport. costPerTile is charged
// for every tile cleared. It returns the affected station, if any, and the
// total cost.
func (w *World) ClearTile(company core.CompanyID, t core.TileIndex, costPerTile core.Money) (core.StationID, core.Money, error) {
	if !w.m.IsValidTile(t) {
		return core.InvalidStation, 0, fmt.Errorf("%v: %w", t, core.ErrNothingToClear)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.companies[company]
	if !ok {
		return core.InvalidStation, 0, fmt.Errorf("company %d: %w", company, core.ErrUnknownCompany)
	}

	e := w.tiles[t]
	switch e.kind {
	case tileClear:
		return core.InvalidStation, 0, fmt.Errorf("%v: %w", t, core.ErrNothingToClear)

	case tileObstacle:
		if e.obstacle == ObstacleWater {
			return core.InvalidStation, 0, fmt.Errorf("%v: water: %w", t, core.ErrAreaNotClear)
		}
		if c.Cash < costPerTile {
			return core.InvalidStation, 0, core.ErrNotEnoughCash
		}
		delete(w.tiles, t)
		c.Cash -= costPerTile
		return core.InvalidStation, costPerTile, nil
	}

	rec := w.stations[e.station]
	if rec.info.Owner != company {
		return e.station, 0, fmt.Errorf("station %d: %w", e.station, core.ErrOwnedByAnotherCompany)
	}

	var cleared []core.TileIndex
	if e.kind == tileStation {
		cleared = []core.TileIndex{t}
	} else {
		for tile := range rec.tiles {
			if k := w.kind(tile); k == tileAirport || k == tileHangar {
				cleared = append(cleared, tile)
			}
		}
	}
	cost := costPerTile * core.Money(len(cleared))
	if c.Cash < cost {
		return e.station, 0, fmt.Errorf("need %d, have %d: %w", cost, c.Cash, core.ErrNotEnoughCash)
	}

	for _, tile := range cleared {
		delete(w.tiles, tile)
		delete(rec.tiles, tile)
	}
	if e.kind != tileStation {
		if town, ok := w.towns[rec.noiseTown]; ok && rec.noise > 0 {
			town.Noise -= min(town.Noise, rec.noise)
		}
		rec.noise = 0
		rec.info.Facilities &^= world.FacilityAirport
		rec.info.Airport = world.AirportInfo{
			Type: core.AirportTypeInvalid,
			View: core.AirportViewInvalid,
			Tile: core.InvalidTile,
		}
	}
	if len(rec.tiles) == 0 {
		delete(w.stations, e.station)
	}
	c.Cash -= cost
	return e.station, cost, nil
}
