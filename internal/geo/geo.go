// Package geo turns tiles and airport footprints into simplefeatures
// geometries. Coordinates are tile units: x grows east, y grows south, and
// tile (x, y) covers the unit square with its top-left corner at (x, y).
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// ErrInvalidTile is returned when a tile reference cannot be resolved
var ErrInvalidTile = errors.New("invalid tile")

func point(x, y float64) (geom.Point, error) {
	p, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}, Type: geom.DimXY})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), fmt.Errorf("point (%g, %g): %w", x, y, err)
	}
	return p, nil
}

// TilePoint returns the centre of a tile. An invalid tile gives the empty
// point and no error.
func TilePoint(m world.Map, t core.TileIndex) (geom.Point, error) {
	if !m.IsValidTile(t) {
		return geom.NewEmptyPoint(geom.DimXY), nil
	}
	return point(float64(m.TileX(t))+0.5, float64(m.TileY(t))+0.5)
}

func emptyArea(m world.Map, a world.Area) bool {
	return a.Width == 0 || a.Height == 0 || !m.IsValidTile(a.Tile)
}

// Footprint returns the outline of an area as a closed rectangle. A
// degenerate area gives the empty polygon and no error.
func Footprint(m world.Map, a world.Area) (geom.Polygon, error) {
	if emptyArea(m, a) {
		return geom.Polygon{}, nil
	}
	x0, y0 := float64(m.TileX(a.Tile)), float64(m.TileY(a.Tile))
	x1, y1 := x0+float64(a.Width), y0+float64(a.Height)
	ring, err := geom.NewLineString(geom.NewSequence([]float64{
		x0, y0,
		x1, y0,
		x1, y1,
		x0, y1,
		x0, y0,
	}, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("footprint ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("footprint: %w", err)
	}
	return poly, nil
}

// Anchor returns the centre of an area.
func Anchor(m world.Map, a world.Area) (geom.Point, error) {
	if emptyArea(m, a) {
		return geom.NewEmptyPoint(geom.DimXY), nil
	}
	return point(
		float64(m.TileX(a.Tile))+float64(a.Width)/2,
		float64(m.TileY(a.Tile))+float64(a.Height)/2,
	)
}

// HangarPoints collects hangar tile centres. Invalid tiles are skipped.
func HangarPoints(m world.Map, hangars []core.TileIndex) (geom.MultiPoint, error) {
	pts := make([]geom.Point, 0, len(hangars))
	for _, h := range hangars {
		if !m.IsValidTile(h) {
			continue
		}
		p, err := TilePoint(m, h)
		if err != nil {
			return geom.MultiPoint{}, err
		}
		pts = append(pts, p)
	}
	return geom.NewMultiPoint(pts), nil
}

// ParseTile resolves "index" or "x,y" to a tile of m.
func ParseTile(m world.Map, s string) (core.TileIndex, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return core.InvalidTile, ErrInvalidTile
		}
		t := core.TileIndex(v)
		if !m.IsValidTile(t) {
			return core.InvalidTile, ErrInvalidTile
		}
		return t, nil
	case 2:
		x, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			return core.InvalidTile, ErrInvalidTile
		}
		y, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
		if err != nil {
			return core.InvalidTile, ErrInvalidTile
		}
		if x >= uint64(m.SizeX) || y >= uint64(m.SizeY) {
			return core.InvalidTile, ErrInvalidTile
		}
		t := m.TileXY(uint32(x), uint32(y))
		if !m.IsValidTile(t) {
			return core.InvalidTile, ErrInvalidTile
		}
		return t, nil
	default:
		return core.InvalidTile, ErrInvalidTile
	}
}
