// Package scenario loads a scenario file (map size, towns, companies and
// pre-built stations) into an in-memory world.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/executor"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

// File is the YAML scenario document.
type File struct {
	Name      string     `yaml:"name"`
	Map       MapSize    `yaml:"map"`
	Year      int        `yaml:"year"`
	Settings  Settings   `yaml:"settings"`
	Companies []Company  `yaml:"companies"`
	Towns     []Town     `yaml:"towns"`
	Obstacles []Obstacle `yaml:"obstacles"`
	Stations  []Station  `yaml:"stations"`
	Airports  []Airport  `yaml:"airports"`
}

// MapSize is the size of the map in tiles.
type MapSize struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// Settings override the configured game rules; unset fields keep them.
type Settings struct {
	NoiseLevel           *bool   `yaml:"noiseLevel"`
	TownCouncilTolerance *int    `yaml:"townCouncilTolerance"`
	StationSpread        *uint32 `yaml:"stationSpread"`
	DistantJoinStations  *bool   `yaml:"distantJoinStations"`
}

// Position is a tile given by its coordinates.
type Position struct {
	X uint32 `yaml:"x"`
	Y uint32 `yaml:"y"`
}

type Company struct {
	ID   core.CompanyID `yaml:"id"`
	Cash core.Money     `yaml:"cash"`
}

type Town struct {
	ID       core.TownID `yaml:"id"`
	Name     string      `yaml:"name"`
	X        uint32      `yaml:"x"`
	Y        uint32      `yaml:"y"`
	Noise    uint32      `yaml:"noise"`
	MaxNoise uint32      `yaml:"maxNoise"`
}

// Obstacle is one of house, slope or water.
type Obstacle struct {
	X    uint32 `yaml:"x"`
	Y    uint32 `yaml:"y"`
	Kind string `yaml:"kind"`
}

// Station is a non-airport station.
type Station struct {
	Owner      core.CompanyID `yaml:"owner"`
	Name       string         `yaml:"name"`
	Town       core.TownID    `yaml:"town"`
	Facilities []string       `yaml:"facilities"`
	Tiles      []Position     `yaml:"tiles"`
}

// Airport is placed for free before the session starts, even when its
// type is no longer buildable.
type Airport struct {
	Company core.CompanyID   `yaml:"company"`
	Type    core.AirportType `yaml:"type"`
	View    core.AirportView `yaml:"view"`
	X       uint32           `yaml:"x"`
	Y       uint32           `yaml:"y"`
}

var obstacleKinds = map[string]memory.Obstacle{
	"house": memory.ObstacleHouse,
	"slope": memory.ObstacleSlope,
	"water": memory.ObstacleWater,
}

var facilityNames = map[string]world.Facility{
	"train": world.FacilityTrain,
	"truck": world.FacilityTruckStop,
	"bus":   world.FacilityBusStop,
	"dock":  world.FacilityDock,
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML scenario. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if f.Map.Width == 0 || f.Map.Height == 0 {
		return nil, fmt.Errorf("scenario %q: map size missing", f.Name)
	}
	return &f, nil
}

// Apply overlays the scenario settings on base.
func (s Settings) Apply(base world.Settings) world.Settings {
	if s.NoiseLevel != nil {
		base.NoiseLevel = *s.NoiseLevel
	}
	if s.TownCouncilTolerance != nil {
		base.TownCouncilTolerance = *s.TownCouncilTolerance
	}
	if s.StationSpread != nil {
		base.StationSpread = *s.StationSpread
	}
	if s.DistantJoinStations != nil {
		base.DistantJoinStations = *s.DistantJoinStations
	}
	return base
}

// Build creates the world the scenario describes. Pre-built airports use
// the catalog layouts and charge their noise to the nearest town.
func (f *File) Build(cat *catalog.Catalog, base world.Settings) (*memory.World, error) {
	m, err := world.NewMap(f.Map.Width, f.Map.Height)
	if err != nil {
		return nil, err
	}
	w := memory.New(m, f.Settings.Apply(base))

	for _, c := range f.Companies {
		if err := w.AddCompany(memory.Company{ID: c.ID, Cash: c.Cash}); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Towns {
		err := w.AddTown(world.Town{
			ID:       t.ID,
			Name:     t.Name,
			Tile:     m.TileXY(t.X, t.Y),
			Noise:    t.Noise,
			MaxNoise: t.MaxNoise,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, o := range f.Obstacles {
		kind, ok := obstacleKinds[strings.ToLower(o.Kind)]
		if !ok {
			return nil, fmt.Errorf("obstacle at %d,%d: unknown kind %q", o.X, o.Y, o.Kind)
		}
		if err := w.SetObstacle(m.TileXY(o.X, o.Y), kind); err != nil {
			return nil, err
		}
	}
	for _, s := range f.Stations {
		var facilities world.Facility
		for _, name := range s.Facilities {
			fac, ok := facilityNames[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("station %q: unknown facility %q", s.Name, name)
			}
			facilities |= fac
		}
		tiles := make([]core.TileIndex, 0, len(s.Tiles))
		for _, p := range s.Tiles {
			t := m.TileXY(p.X, p.Y)
			if !m.IsValidTile(t) {
				return nil, fmt.Errorf("station %q: invalid tile %d,%d", s.Name, p.X, p.Y)
			}
			tiles = append(tiles, t)
		}
		if _, err := w.AddStation(s.Owner, s.Name, facilities, s.Town, tiles); err != nil {
			return nil, fmt.Errorf("station %q: %w", s.Name, err)
		}
	}
	for _, a := range f.Airports {
		plan, err := executor.PlanAirport(w, cat, a.Company, m.TileXY(a.X, a.Y), a.Type, a.View)
		if err != nil {
			return nil, fmt.Errorf("airport at %d,%d: %w", a.X, a.Y, err)
		}
		if _, err := w.BuildAirport(plan); err != nil {
			return nil, fmt.Errorf("airport at %d,%d: %w", a.X, a.Y, err)
		}
	}
	return w, nil
}
