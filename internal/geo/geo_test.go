package geo

import (
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

func testMap(t *testing.T) world.Map {
	t.Helper()
	m, err := world.NewMap(64, 32)
	require.NoError(t, err)
	return m
}

func TestTilePoint(t *testing.T) {
	m := testMap(t)

	p, err := TilePoint(m, m.TileXY(3, 5))
	require.NoError(t, err)
	xy, ok := p.XY()
	require.True(t, ok)
	assert.Equal(t, 3.5, xy.X)
	assert.Equal(t, 5.5, xy.Y)
	assert.Equal(t, geom.DimXY, p.CoordinatesType())

	p, err = TilePoint(m, core.InvalidTile)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestFootprint(t *testing.T) {
	m := testMap(t)
	a := world.Area{Tile: m.TileXY(10, 4), Width: 4, Height: 3}

	poly, err := Footprint(m, a)
	require.NoError(t, err)
	require.False(t, poly.IsEmpty())
	assert.InDelta(t, 12.0, poly.Area(), 1e-9)
	assert.Equal(t, "POLYGON((10 4,14 4,14 7,10 7,10 4))", poly.AsText())

	tests := []struct {
		name string
		area world.Area
	}{
		{"zero width", world.Area{Tile: a.Tile, Height: 3}},
		{"zero height", world.Area{Tile: a.Tile, Width: 4}},
		{"invalid tile", world.Area{Tile: core.InvalidTile, Width: 4, Height: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poly, err := Footprint(m, tt.area)
			require.NoError(t, err)
			assert.True(t, poly.IsEmpty())
		})
	}
}

func TestAnchor(t *testing.T) {
	m := testMap(t)
	p, err := Anchor(m, world.Area{Tile: m.TileXY(10, 4), Width: 4, Height: 3})
	require.NoError(t, err)
	xy, ok := p.XY()
	require.True(t, ok)
	assert.Equal(t, 12.0, xy.X)
	assert.Equal(t, 5.5, xy.Y)
}

func TestHangarPoints(t *testing.T) {
	m := testMap(t)
	mp, err := HangarPoints(m, []core.TileIndex{m.TileXY(1, 1), core.InvalidTile, m.TileXY(2, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2, mp.NumPoints())
}

func TestParseTile(t *testing.T) {
	m := testMap(t)

	tests := []struct {
		name    string
		input   string
		want    core.TileIndex
		wantErr bool
	}{
		{"index", "650", 650, false},
		{"coordinates", "10,4", m.TileXY(10, 4), false},
		{"coordinates with spaces", " 10 , 4 ", m.TileXY(10, 4), false},
		{"void border column", "63,0", 0, true},
		{"outside map", "100,2", 0, true},
		{"index out of range", "99999", 0, true},
		{"not a number", "abc", 0, true},
		{"too many parts", "1,2,3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTile(m, tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTile)
				assert.Equal(t, core.InvalidTile, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
