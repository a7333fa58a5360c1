// Package noise resolves the town an airport placement belongs to and the
// noise it would add there.
package noise

import (
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// Model computes airport noise for a given town council tolerance.
type Model struct {
	// Tolerance is 0 (permissive) to 2 (hostile).
	Tolerance int
}

// NewModel returns the model for the tolerance in settings.
func NewModel(s world.Settings) Model {
	return Model{Tolerance: s.TownCouncilTolerance}
}

// NearestTown returns the town whose centre is closest to the footprint,
// lowest ID on ties, and that distance. ok is false when there are no towns.
func (Model) NearestTown(m world.Map, towns []world.Town, footprint world.Area) (town world.Town, distance uint32, ok bool) {
	for _, t := range towns {
		d := m.DistanceToArea(footprint, t.Tile)
		if !ok || d < distance || (d == distance && t.ID < town.ID) {
			town, distance, ok = t, d, true
		}
	}
	return town, distance, ok
}

// Level is the noise an airport with the given base level causes at a
// town distance tiles away. Base levels below 2 are never reduced; above
// that, every 8+4*tolerance tiles of distance take one point off, but the
// result never drops below 1.
func (m Model) Level(base, distance uint32) uint32 {
	if base < 2 {
		return base
	}
	reduction := distance / uint32(8+max(m.Tolerance, 0)*4)
	if reduction >= base {
		return 1
	}
	return base - reduction
}

// LevelForTown is Level for a town centre and a footprint.
func (m Model) LevelForTown(mp world.Map, base uint32, townTile core.TileIndex, footprint world.Area) uint32 {
	return m.Level(base, mp.DistanceToArea(footprint, townTile))
}

// Permits reports whether the town accepts an airport adding increase noise.
func (Model) Permits(t world.Town, increase uint32) bool {
	return t.Noise+increase <= t.MaxNoise
}
