package script

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/dispatcher"
	"github.com/skyhaul/airportscript/internal/executor"
	"github.com/skyhaul/airportscript/internal/logging"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

type fixture struct {
	world  *memory.World
	mgr    *executor.Manager
	facade *airport.Facade
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := world.NewMap(64, 64)
	require.NoError(t, err)
	w := memory.New(m, world.DefaultSettings())
	require.NoError(t, w.AddCompany(memory.Company{ID: 0, Cash: 1_000_000}))
	require.NoError(t, w.AddCompany(memory.Company{ID: 1, Cash: 1_000_000}))
	require.NoError(t, w.AddTown(world.Town{ID: 1, Name: "Easton", Tile: m.TileXY(30, 30), MaxNoise: 20}))

	cat, err := catalog.Default(catalog.Settings{BaseAirportPrice: 5000, CurrentYear: 1950})
	require.NoError(t, err)

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop(), nil))
	require.NoError(t, err)

	mgr := executor.NewManager(executor.Dependencies{
		World:            w,
		Catalog:          cat,
		Mode:             executor.ModeDeferred,
		ClearCostPerTile: 100,
	})
	mgr.RegisterHandlers(d)

	q := airport.NewQuery(w, cat)
	return &fixture{world: w, mgr: mgr, facade: airport.NewFacade(q, mgr, nil)}
}

func (f *fixture) tile(x, y uint32) core.TileIndex {
	return f.world.Map().TileXY(x, y)
}

func (f *fixture) tick(t *testing.T) []core.Outcome {
	t.Helper()
	n, err := f.mgr.Tick(context.Background())
	require.NoError(t, err)
	out := make([]core.Outcome, 0, n)
	for range n {
		out = append(out, <-f.mgr.Outcomes())
	}
	return out
}

func run(t *testing.T, s *Sandbox, src string, args ...any) {
	t.Helper()
	require.NoError(t, s.Run(context.Background(), t.Name(), fmt.Sprintf(src, args...)))
}

func TestConstants(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	run(t, s, `
		assert(AIAirport.PT_HELICOPTER == 0)
		assert(AIAirport.PT_SMALL_PLANE == 1)
		assert(AIAirport.PT_BIG_PLANE == 3)
		assert(AIAirport.PT_INVALID == -1)
		assert(AIAirport.AT_INVALID == 255)
		assert(STATION_NEW == 65533)
		assert(STATION_JOIN_ADJACENT == 65534)
		assert(INVALID_STATION == 65535)
		assert(INVALID_TILE == 4294967295)
		assert(INVALID_TOWN == 65535)
	`)
}

func TestLibrariesRestricted(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	run(t, s, `
		assert(io == nil)
		assert(os == nil)
		assert(dofile == nil)
		assert(loadfile == nil)
		assert(string.format("%%d", 7) == "7")
		assert(math.max(1, 2) == 2)
	`)
}

func TestAirportTypeQueries(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	run(t, s, `
		assert(AIAirportType.IsBuildable(0))
		assert(AIAirportType.IsInformationAvailable(1))
		assert(not AIAirportType.IsBuildable(1))
		assert(not AIAirportType.IsInformationAvailable(1000))

		assert(AIAirportType.GetPrice(0) == 60000)
		assert(AIAirportType.GetPrice(1) == -1)
		assert(AIAirportType.GetWidth(0) == 4)
		assert(AIAirportType.GetHeight(0) == 3)
		assert(AIAirportType.GetWidth(200) == -1)
		assert(AIAirportType.GetCoverageRadius(0) == 4)
		assert(AIAirportType.GetNumHangars(0) == 1)
		assert(AIAirportType.GetNumHelipads(2) == 1)
		assert(AIAirportType.GetNumTerminals(0) == 2)

		assert(AIAirportType.IsValidView(0, 3))
		assert(not AIAirportType.IsValidView(0, 4))
		assert(#AIAirportType.Views(0) == 4)
		assert(#AIAirportType.Views(200) == 0)
		assert(AIAirportType.List()[1] == 0)

		assert(AIAirportType.IsValidPlaneType(AIAirport.PT_BIG_PLANE))
		assert(not AIAirportType.IsValidPlaneType(2))
		assert(AIAirportType.CanPlaneTypeLand(0, AIAirport.PT_HELICOPTER))
		assert(AIAirportType.IsLandingExtraDangerous(0, AIAirport.PT_BIG_PLANE))
		assert(not AIAirportType.IsLandingExtraDangerous(0, AIAirport.PT_SMALL_PLANE))
		assert(not AIAirportType.CanPlaneTypeLand(2, AIAirport.PT_SMALL_PLANE))
	`)
}

func TestPlacementQueries(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	run(t, s, `
		assert(AIAirportType.GetNearestTown(%d, 0) == 1)
		assert(AIAirportType.GetNoiseLevelIncrease(%d, 0) >= 0)
		assert(AIAirportType.GetNoiseLevelIncrease(INVALID_TILE, 0) == -1)
		assert(AIAirportType.GetNearestTown(-5, 0) == INVALID_TOWN)
	`, f.tile(10, 10), f.tile(10, 10))
}

func TestBuildAndInspect(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)
	tile := f.tile(10, 10)
	hangar := f.tile(12, 10)

	run(t, s, `
		assert(not AIAirport.IsAirportTile(%d))
		assert(AIAirport.EstimateBuildCost(%d, 0, 0, STATION_NEW) == 60000)
		assert(AIAirport.BuildAirport(%d, 0, 0, STATION_NEW))
	`, tile, tile, tile)

	outcomes := f.tick(t)
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)

	run(t, s, `
		assert(AIAirport.IsAirportTile(%d))
		assert(AIAirport.GetAirportType(%d) == 0)
		assert(AIAirport.GetAirportView(%d) == 0)
		assert(AIAirport.GetNumHangars(%d) == 1)
		assert(AIAirport.GetHangarOfAirport(%d) == %d)
		assert(AIAirport.GetHangarOfAirport(%d, 1) == INVALID_TILE)
		assert(AIAirport.IsHangarTile(%d))
		assert(not AIAirport.IsAirportTile(%d))
	`, tile, tile, tile, tile, tile, hangar, tile, hangar, hangar)

	other := New(f.facade, 1, nil)
	run(t, other, `
		assert(AIAirport.GetNumHangars(%d) == -1)
		assert(AIAirport.GetHangarOfAirport(%d) == INVALID_TILE)
		assert(AIAirport.IsAirportTile(%d))
	`, tile, tile, tile)

	run(t, s, `assert(AIAirport.RemoveAirport(%d))`, hangar)
	outcomes = f.tick(t)
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.False(t, f.world.IsAirport(tile))
}

func TestPreconditionAbortsScript(t *testing.T) {
	tests := []struct {
		name  string
		call  string
		check airport.Check
	}{
		{"invalid tile", "AIAirport.BuildAirport(INVALID_TILE, 0, 0, STATION_NEW)", airport.CheckValidTile},
		{"not buildable", "AIAirport.BuildAirport(650, 1, 0, STATION_NEW)", airport.CheckBuildable},
		{"bad view", "AIAirport.BuildAirport(650, 0, 9, STATION_NEW)", airport.CheckValidView},
		{"unknown station", "AIAirport.BuildAirport(650, 0, 0, 42)", airport.CheckStationChoice},
		{"remove empty tile", "AIAirport.RemoveAirport(650)", airport.CheckAirportTile},
		{"estimate not buildable", "AIAirport.EstimateBuildCost(650, 1, 0, STATION_NEW)", airport.CheckBuildable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := New(f.facade, 0, nil)

			err := s.Run(context.Background(), "abort", "reached = false\n"+tt.call+"\nreached = true")
			require.Error(t, err)
			assert.True(t, airport.IsPrecondition(err))

			var pe *airport.PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.check, pe.Check)

			s.state.Global("reached")
			assert.False(t, s.state.ToBoolean(-1))
			s.state.Pop(1)

			assert.Zero(t, f.mgr.Pending())
		})
	}
}

func TestPreconditionCaughtByPcall(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	run(t, s, `
		local ok, msg = pcall(AIAirport.RemoveAirport, 650)
		assert(not ok)
		assert(string.find(msg, "airport or hangar tile"))
	`)
}

func TestCaughtPreconditionDoesNotMaskLaterError(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantContains string
		wantPrecond  bool
	}{
		{
			name:         "unrelated error after pcall",
			src:          "pcall(AIAirport.BuildAirport, INVALID_TILE, 0, 0, STATION_NEW)\nerror(\"unrelated script bug\")",
			wantContains: "unrelated script bug",
		},
		{
			name:         "second uncaught precondition",
			src:          "pcall(AIAirport.BuildAirport, INVALID_TILE, 0, 0, STATION_NEW)\nAIAirport.RemoveAirport(650)",
			wantContains: "airport or hangar tile",
			wantPrecond:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := New(f.facade, 0, nil)

			err := s.Run(context.Background(), "caught", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantContains)
			assert.Equal(t, tt.wantPrecond, airport.IsPrecondition(err))
		})
	}
}

func TestPreconditionNotCarriedAcrossRuns(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	require.Error(t, s.Run(context.Background(), "first", "AIAirport.RemoveAirport(650)"))

	err := s.Run(context.Background(), "second", `error("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, airport.IsPrecondition(err))
	assert.Zero(t, s.state.Top())
}

func TestRunErrors(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	err := s.Run(context.Background(), "broken", "this is not lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load broken")

	err = s.Run(context.Background(), "fails", `error("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, airport.IsPrecondition(err))

	s.Close()
	assert.ErrorIs(t, s.Run(context.Background(), "closed", ""), ErrClosed)
}

func TestRunFile(t *testing.T) {
	f := newFixture(t)
	s := New(f.facade, 0, nil)

	path := filepath.Join(t.TempDir(), "ai.lua")
	require.NoError(t, os.WriteFile(path, []byte("assert(AIAirport.BuildAirport(650, 0, 0, STATION_JOIN_ADJACENT))"), 0o644))

	require.NoError(t, s.RunFile(context.Background(), path))
	assert.Equal(t, 1, f.mgr.Pending())

	err := s.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}

func TestPrintLogs(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	s := New(f.facade, 3, slog.New(slog.NewTextHandler(&buf, nil)))

	run(t, s, `print("hello", 42)`)
	assert.Contains(t, buf.String(), `msg="hello\t42"`)
	assert.Contains(t, buf.String(), "company=3")
	assert.Equal(t, core.CompanyID(3), s.Company())
}
