// internal/world/memory/memory.go
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// Obstacle is something occupying a tile that is not a station.
type Obstacle uint8

const (
	ObstacleNone Obstacle = iota
	// ObstacleHouse blocks building until cleared.
	ObstacleHouse
	// ObstacleSlope is sloped terrain; airports need flat land.
	ObstacleSlope
	// ObstacleWater cannot be built on.
	ObstacleWater
)

type tileKind uint8

const (
	tileClear tileKind = iota
	tileObstacle
	tileStation // station part other than an airport
	tileAirport
	tileHangar
)

type tileEntry struct {
	kind     tileKind
	obstacle Obstacle
	station  core.StationID
}

// Company is a player slot with its bank balance.
type Company struct {
	ID   core.CompanyID
	Name string
	Cash core.Money
}

type stationRecord struct {
	info      world.StationInfo
	tiles     map[core.TileIndex]struct{}
	noise     uint32 // noise the airport adds to noiseTown
	noiseTown core.TownID
}

// World is an in-memory world.State with the mutation primitives the
// executor needs. All methods are safe for concurrent use.
type World struct {
	m        world.Map
	settings world.Settings

	tiles     map[core.TileIndex]tileEntry // absent means clear
	stations  map[core.StationID]*stationRecord
	towns     map[core.TownID]*world.Town
	companies map[core.CompanyID]*Company

	nextStation core.StationID
	mu          sync.RWMutex
}

// New creates an empty world.
func New(m world.Map, settings world.Settings) *World {
	return &World{
		m:         m,
		settings:  settings,
		tiles:     make(map[core.TileIndex]tileEntry),
		stations:  make(map[core.StationID]*stationRecord),
		towns:     make(map[core.TownID]*world.Town),
		companies: make(map[core.CompanyID]*Company),
	}
}

var _ world.State = (*World)(nil)

func (w *World) Map() world.Map { return w.m }

func (w *World) Settings() world.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// SetSettings replaces the game rules.
func (w *World) SetSettings(s world.Settings) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings = s
}

func (w *World) kind(t core.TileIndex) tileKind {
	return w.tiles[t].kind
}

func (w *World) IsStationTile(t core.TileIndex) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	k := w.kind(t)
	return k == tileStation || k == tileAirport || k == tileHangar
}

func (w *World) IsAirport(t core.TileIndex) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.kind(t) == tileAirport
}

func (w *World) IsHangar(t core.TileIndex) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.kind(t) == tileHangar
}

func (w *World) StationIndex(t core.TileIndex) (core.StationID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.tiles[t]
	if !ok || e.kind < tileStation {
		return core.InvalidStation, false
	}
	return e.station, true
}

func (w *World) Station(id core.StationID) (world.StationInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rec, ok := w.stations[id]
	if !ok {
		return world.StationInfo{}, false
	}
	return copyStation(rec.info), true
}

// Stations returns every station ordered by ID.
func (w *World) Stations() []world.StationInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]world.StationInfo, 0, len(w.stations))
	for _, rec := range w.stations {
		out = append(out, copyStation(rec.info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) Towns() []world.Town {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]world.Town, 0, len(w.towns))
	for _, t := range w.towns {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Town returns the town with the given ID.
func (w *World) Town(id core.TownID) (world.Town, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.towns[id]
	if !ok {
		return world.Town{}, false
	}
	return *t, true
}

// AddTown places a town. The centre tile must be valid and IDs unique.
func (w *World) AddTown(t world.Town) error {
	if !w.m.IsValidTile(t.Tile) {
		return fmt.Errorf("town %q: invalid tile %v", t.Name, t.Tile)
	}
	if t.ID == core.InvalidTown {
		return fmt.Errorf("town %q: reserved id", t.Name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.towns[t.ID]; ok {
		return fmt.Errorf("town %d already exists", t.ID)
	}
	w.towns[t.ID] = &t
	return nil
}

// AddCompany registers a company with its starting cash.
func (w *World) AddCompany(c Company) error {
	if c.ID >= core.MaxCompanies {
		return fmt.Errorf("company id %d out of range", c.ID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.companies[c.ID]; ok {
		return fmt.Errorf("company %d already exists", c.ID)
	}
	w.companies[c.ID] = &c
	return nil
}

// Cash returns the bank balance of a company.
func (w *World) Cash(id core.CompanyID) (core.Money, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.companies[id]
	if !ok {
		return 0, false
	}
	return c.Cash, true
}

// Companies returns every company ordered by ID.
func (w *World) Companies() []Company {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Company, 0, len(w.companies))
	for _, c := range w.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetObstacle places or removes an obstacle on a clear tile.
func (w *World) SetObstacle(t core.TileIndex, o Obstacle) error {
	if !w.m.IsValidTile(t) {
		return fmt.Errorf("invalid tile %v", t)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.kind(t) >= tileStation {
		return fmt.Errorf("%v: %w", t, core.ErrAreaNotClear)
	}
	if o == ObstacleNone {
		delete(w.tiles, t)
		return nil
	}
	w.tiles[t] = tileEntry{kind: tileObstacle, obstacle: o}
	return nil
}

// AddStation places a non-airport station on the given tiles, as found in
// a saved scenario.
func (w *World) AddStation(owner core.CompanyID, name string, facilities world.Facility, town core.TownID, tiles []core.TileIndex) (core.StationID, error) {
	if facilities.Has(world.FacilityAirport) {
		return core.InvalidStation, fmt.Errorf("station %q: airports must be built with BuildAirport", name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkClear(tiles); err != nil {
		return core.InvalidStation, err
	}
	rec := w.newStation(owner, name, town)
	rec.info.Facilities = facilities
	for _, t := range tiles {
		w.tiles[t] = tileEntry{kind: tileStation, station: rec.info.ID}
		rec.tiles[t] = struct{}{}
	}
	return rec.info.ID, nil
}

func (w *World) newStation(owner core.CompanyID, name string, town core.TownID) *stationRecord {
	for {
		id := w.nextStation
		w.nextStation++
		if id >= core.StationNew {
			w.nextStation = 0
			continue
		}
		if _, taken := w.stations[id]; taken {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("Station #%d", id)
		}
		rec := &stationRecord{
			info: world.StationInfo{
				ID:    id,
				Name:  name,
				Owner: owner,
				Town:  town,
				Airport: world.AirportInfo{
					Type: core.AirportTypeInvalid,
					View: core.AirportViewInvalid,
					Tile: core.InvalidTile,
				},
			},
			tiles: make(map[core.TileIndex]struct{}),
		}
		w.stations[id] = rec
		return rec
	}
}

func (w *World) checkClear(tiles []core.TileIndex) error {
	for _, t := range tiles {
		if !w.m.IsValidTile(t) {
			return fmt.Errorf("%v: %w", t, core.ErrAreaNotClear)
		}
		e := w.tiles[t]
		switch {
		case e.kind == tileObstacle && e.obstacle == ObstacleSlope:
			return fmt.Errorf("%v: %w", t, core.ErrFlatLandRequired)
		case e.kind != tileClear:
			return fmt.Errorf("%v: %w", t, core.ErrAreaNotClear)
		}
	}
	return nil
}

func copyStation(s world.StationInfo) world.StationInfo {
	if s.Airport.Hangars != nil {
		h := make([]core.TileIndex, len(s.Airport.Hangars))
		copy(h, s.Airport.Hangars)
		s.Airport.Hangars = h
	}
	return s
}
