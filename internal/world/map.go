package world

import (
	"fmt"

	"github.com/skyhaul/airportscript/pkg/core"
)

// Map describes the grid dimensions. Tiles are numbered row by row,
// tile = y*SizeX + x. The last row and column are the void border and
// never hold anything.
type Map struct {
	SizeX uint32
	SizeY uint32
}

// NewMap returns a map of the given size. Both sides must be at least 2.
func NewMap(sizeX, sizeY uint32) (Map, error) {
	if sizeX < 2 || sizeY < 2 {
		return Map{}, fmt.Errorf("map size %dx%d too small", sizeX, sizeY)
	}
	if uint64(sizeX)*uint64(sizeY) >= uint64(core.InvalidTile) {
		return Map{}, fmt.Errorf("map size %dx%d too large", sizeX, sizeY)
	}
	return Map{SizeX: sizeX, SizeY: sizeY}, nil
}

// Size returns the number of tiles.
func (m Map) Size() uint32 { return m.SizeX * m.SizeY }

// IsValidTile reports whether t lies on the playable part of the map.
func (m Map) IsValidTile(t core.TileIndex) bool {
	if t == core.InvalidTile || uint32(t) >= m.Size() {
		return false
	}
	return m.TileX(t) < m.SizeX-1 && m.TileY(t) < m.SizeY-1
}

// TileXY returns the tile at (x, y), or InvalidTile when outside the map.
func (m Map) TileXY(x, y uint32) core.TileIndex {
	if x >= m.SizeX || y >= m.SizeY {
		return core.InvalidTile
	}
	return core.TileIndex(y*m.SizeX + x)
}

func (m Map) TileX(t core.TileIndex) uint32 { return uint32(t) % m.SizeX }

func (m Map) TileY(t core.TileIndex) uint32 { return uint32(t) / m.SizeX }

// Add offsets t by (dx, dy), returning InvalidTile when it leaves the map.
func (m Map) Add(t core.TileIndex, dx, dy int) core.TileIndex {
	x := int64(m.TileX(t)) + int64(dx)
	y := int64(m.TileY(t)) + int64(dy)
	if x < 0 || y < 0 {
		return core.InvalidTile
	}
	return m.TileXY(uint32(x), uint32(y))
}

// DistanceManhattan returns |dx| + |dy| between two tiles.
func (m Map) DistanceManhattan(a, b core.TileIndex) uint32 {
	return absDiff(m.TileX(a), m.TileX(b)) + absDiff(m.TileY(a), m.TileY(b))
}

// Area is a rectangle of tiles anchored at its top-left corner.
type Area struct {
	Tile   core.TileIndex
	Width  uint32
	Height uint32
}

// Tiles lists every tile in the area. Tiles beyond the map are skipped.
func (m Map) Tiles(a Area) []core.TileIndex {
	tiles := make([]core.TileIndex, 0, a.Width*a.Height)
	for dy := uint32(0); dy < a.Height; dy++ {
		for dx := uint32(0); dx < a.Width; dx++ {
			if t := m.Add(a.Tile, int(dx), int(dy)); t != core.InvalidTile {
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}

// Fits reports whether every tile of the area is valid.
func (m Map) Fits(a Area) bool {
	if !m.IsValidTile(a.Tile) || a.Width == 0 || a.Height == 0 {
		return false
	}
	return m.IsValidTile(m.Add(a.Tile, int(a.Width)-1, int(a.Height)-1))
}

// DistanceToArea is the Manhattan distance from t to the closest tile of a.
func (m Map) DistanceToArea(a Area, t core.TileIndex) uint32 {
	return axisDistance(m.TileX(t), m.TileX(a.Tile), a.Width) +
		axisDistance(m.TileY(t), m.TileY(a.Tile), a.Height)
}

func axisDistance(p, start, length uint32) uint32 {
	if length == 0 {
		length = 1
	}
	end := start + length - 1
	switch {
	case p < start:
		return start - p
	case p > end:
		return p - end
	default:
		return 0
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
