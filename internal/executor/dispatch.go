package executor

import (
	"fmt"

	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/dispatcher"
	"github.com/skyhaul/airportscript/internal/noise"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

// RegisterHandlers registers the command handlers with the dispatcher and
// binds Submit to it.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	commands := []core.CommandKind{core.CmdBuildAirport, core.CmdLandscapeClear}

	switch m.deps.Mode {
	case ModeAsync:
		// applied on the buffer goroutine, in order per command
		for _, k := range commands {
			d.Register(k.Name(), m.handleApply, dispatcher.Buffered(m.deps.BufferSize), dispatcher.Blocking(), dispatcher.Logged())
		}
	default:
		// queued until Tick - sync so acceptance means queued
		for _, k := range commands {
			d.Register(k.Name(), m.handleEnqueue, dispatcher.Logged())
		}
	}
	m.dispatcher = d
}

func (m *Manager) handleEnqueue(e dispatcher.Event) (any, error) {
	m.journalRequest(e.Request)
	m.pending.Push(e.Request)
	return "queued", nil
}

func (m *Manager) handleApply(e dispatcher.Event) (any, error) {
	m.journalRequest(e.Request)
	out := m.apply(e.Request)
	return out, out.Err
}

// build decodes a build_airport request and places the airport.
func (m *Manager) build(req core.Request) (core.StationID, core.Money, error) {
	cat := m.deps.Catalog
	w := m.deps.World

	typ, view := core.DecodeAirport(req.P1)
	adjacent, join := core.DecodeStationChoice(req.P2)

	// buildability can change between submit and apply
	if !cat.IsBuildable(typ) {
		return core.InvalidStation, 0, fmt.Errorf("type %d: %w", typ, core.ErrAirportNotAvailable)
	}
	plan, err := PlanAirport(w, cat, req.Company, req.Tile, typ, view)
	if err != nil {
		return core.InvalidStation, 0, err
	}
	plan.Adjacent = adjacent
	plan.Join = join
	plan.Cost = cat.Price(typ).Value

	if w.Settings().NoiseLevel {
		if town, ok := w.Town(plan.Town); ok && !noise.NewModel(w.Settings()).Permits(town, plan.Noise) {
			return core.InvalidStation, 0, fmt.Errorf("town %d: %w", town.ID, core.ErrLocalAuthorityRefuses)
		}
	}

	id, err := w.BuildAirport(plan)
	if err != nil {
		return core.InvalidStation, 0, err
	}
	return id, plan.Cost, nil
}

// PlanAirport lays out an airport of type t with view v at tile: its
// footprint, hangar tiles, nearest town and the noise it causes there. The
// plan allocates a new station and costs nothing until the caller says
// otherwise.
func PlanAirport(w *memory.World, cat *catalog.Catalog, company core.CompanyID, tile core.TileIndex, t core.AirportType, v core.AirportView) (memory.AirportPlan, error) {
	mp := w.Map()
	layout, ok := cat.Layout(t, v)
	if !ok {
		return memory.AirportPlan{}, fmt.Errorf("type %d view %d: %w", t, v, core.ErrAirportNotAvailable)
	}
	width, height := layout.Size()
	area := world.Area{Tile: tile, Width: width, Height: height}
	if !mp.IsValidTile(tile) || !mp.Fits(area) {
		return memory.AirportPlan{}, fmt.Errorf("%v: %w", tile, core.ErrAreaNotClear)
	}

	offsets := layout.Hangars()
	hangars := make([]core.TileIndex, 0, len(offsets))
	for _, off := range offsets {
		hangars = append(hangars, mp.Add(tile, off.X, off.Y))
	}

	plan := memory.AirportPlan{
		Company: company,
		Type:    t,
		View:    v,
		Area:    area,
		Hangars: hangars,
		Join:    core.InvalidStation,
		Town:    core.InvalidTown,
	}

	settings := w.Settings()
	model := noise.NewModel(settings)
	if town, distance, ok := model.NearestTown(mp, w.Towns(), area); ok {
		plan.Town = town.ID
		if settings.NoiseLevel {
			spec, _ := cat.Spec(t)
			plan.Noise = model.Level(spec.NoiseLevel, distance)
		}
	}
	return plan, nil
}
