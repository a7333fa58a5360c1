package script

import (
	"github.com/Shopify/go-lua"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/pkg/core"
)

func (s *Sandbox) airportFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "IsHangarTile", Function: s.isHangarTile},
		{Name: "IsAirportTile", Function: s.isAirportTile},
		{Name: "GetNumHangars", Function: s.getNumHangars},
		{Name: "GetHangarOfAirport", Function: s.getHangarOfAirport},
		{Name: "GetAirportType", Function: s.getAirportType},
		{Name: "GetAirportView", Function: s.getAirportView},
		{Name: "BuildAirport", Function: s.buildAirport},
		{Name: "RemoveAirport", Function: s.removeAirport},
		{Name: "EstimateBuildCost", Function: s.estimateBuildCost},
	}
}

func (s *Sandbox) airportTypeFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "IsBuildable", Function: s.isBuildable},
		{Name: "IsInformationAvailable", Function: s.isInformationAvailable},
		{Name: "IsValidView", Function: s.isValidView},
		{Name: "IsValidPlaneType", Function: s.isValidPlaneType},
		{Name: "GetPrice", Function: s.getPrice},
		{Name: "GetWidth", Function: s.catalogCount((*catalog.Catalog).Width)},
		{Name: "GetHeight", Function: s.catalogCount((*catalog.Catalog).Height)},
		{Name: "GetCoverageRadius", Function: s.catalogCount((*catalog.Catalog).CoverageRadius)},
		{Name: "GetNumHangars", Function: s.catalogCount((*catalog.Catalog).NumHangars)},
		{Name: "GetNumHelipads", Function: s.catalogCount((*catalog.Catalog).NumHelipads)},
		{Name: "GetNumTerminals", Function: s.catalogCount((*catalog.Catalog).NumTerminals)},
		{Name: "CanPlaneTypeLand", Function: s.canPlaneTypeLand},
		{Name: "IsLandingExtraDangerous", Function: s.isLandingExtraDangerous},
		{Name: "GetNoiseLevelIncrease", Function: s.getNoiseLevelIncrease},
		{Name: "GetNearestTown", Function: s.getNearestTown},
		{Name: "List", Function: s.list},
		{Name: "Views", Function: s.views},
	}
}

func (s *Sandbox) query() *airport.Query { return s.facade.Query() }

// AIAirport

func (s *Sandbox) isHangarTile(l *lua.State) int {
	l.PushBoolean(s.query().IsHangarTile(checkTile(l, 1)))
	return 1
}

func (s *Sandbox) isAirportTile(l *lua.State) int {
	l.PushBoolean(s.query().IsAirportTile(checkTile(l, 1)))
	return 1
}

func (s *Sandbox) getNumHangars(l *lua.State) int {
	l.PushInteger(int(s.query().NumHangars(s.company, checkTile(l, 1)).Value))
	return 1
}

func (s *Sandbox) getHangarOfAirport(l *lua.State) int {
	tile := checkTile(l, 1)
	index := lua.OptInteger(l, 2, 0)
	l.PushInteger(int(s.query().HangarTile(s.company, tile, index).Value))
	return 1
}

func (s *Sandbox) getAirportType(l *lua.State) int {
	l.PushInteger(int(s.query().AirportType(checkTile(l, 1)).Value))
	return 1
}

func (s *Sandbox) getAirportView(l *lua.State) int {
	l.PushInteger(int(s.query().AirportView(checkTile(l, 1)).Value))
	return 1
}

func (s *Sandbox) buildArgs(l *lua.State) (core.TileIndex, core.AirportType, core.AirportView, core.StationChoice) {
	return checkTile(l, 1), checkAirportType(l, 2), checkAirportView(l, 3), core.StationChoiceFromID(checkStation(l, 4))
}

func (s *Sandbox) buildAirport(l *lua.State) int {
	tile, t, v, choice := s.buildArgs(l)
	ok, err := s.facade.BuildAirport(s.ctx, s.company, tile, t, v, choice)
	s.pushAccepted(l, "BuildAirport", ok, err)
	return 1
}

func (s *Sandbox) removeAirport(l *lua.State) int {
	ok, err := s.facade.RemoveAirport(s.ctx, s.company, checkTile(l, 1))
	s.pushAccepted(l, "RemoveAirport", ok, err)
	return 1
}

func (s *Sandbox) estimateBuildCost(l *lua.State) int {
	tile, t, v, choice := s.buildArgs(l)
	cost, err := s.facade.Estimate(s.ctx, s.company, tile, t, v, choice)
	if airport.IsPrecondition(err) {
		s.abort(err)
	}
	if err != nil {
		cost = -1
	}
	l.PushInteger(int(cost))
	return 1
}

// pushAccepted raises contract violations and reports any other submit
// failure to the script as false.
func (s *Sandbox) pushAccepted(l *lua.State, op string, ok bool, err error) {
	if airport.IsPrecondition(err) {
		s.abort(err)
	}
	if err != nil {
		s.logger.Warn("Command not accepted", "op", op, "error", err)
		ok = false
	}
	l.PushBoolean(ok)
}

// AIAirportType

func (s *Sandbox) catalogCount(f func(*catalog.Catalog, core.AirportType) core.Result[int32]) lua.Function {
	return func(l *lua.State) int {
		l.PushInteger(int(f(s.query().Catalog(), checkAirportType(l, 1)).Value))
		return 1
	}
}

func (s *Sandbox) isBuildable(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().IsBuildable(checkAirportType(l, 1)))
	return 1
}

func (s *Sandbox) isInformationAvailable(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().IsInformationAvailable(checkAirportType(l, 1)))
	return 1
}

func (s *Sandbox) isValidView(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().IsValidView(checkAirportType(l, 1), checkAirportView(l, 2)))
	return 1
}

func (s *Sandbox) isValidPlaneType(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().IsValidPlaneType(checkPlaneType(l, 1)))
	return 1
}

func (s *Sandbox) getPrice(l *lua.State) int {
	l.PushInteger(int(s.query().Catalog().Price(checkAirportType(l, 1)).Value))
	return 1
}

func (s *Sandbox) canPlaneTypeLand(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().CanPlaneTypeLand(checkAirportType(l, 1), checkPlaneType(l, 2)).Value)
	return 1
}

func (s *Sandbox) isLandingExtraDangerous(l *lua.State) int {
	l.PushBoolean(s.query().Catalog().IsLandingExtraDangerous(checkAirportType(l, 1), checkPlaneType(l, 2)).Value)
	return 1
}

func (s *Sandbox) getNoiseLevelIncrease(l *lua.State) int {
	l.PushInteger(int(s.query().NoiseLevelIncrease(checkTile(l, 1), checkAirportType(l, 2)).Value))
	return 1
}

func (s *Sandbox) getNearestTown(l *lua.State) int {
	l.PushInteger(int(s.query().NearestTown(checkTile(l, 1), checkAirportType(l, 2)).Value))
	return 1
}

func (s *Sandbox) list(l *lua.State) int {
	types := s.query().Catalog().Types()
	l.CreateTable(len(types), 0)
	for i, t := range types {
		l.PushInteger(int(t))
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func (s *Sandbox) views(l *lua.State) int {
	views := s.query().Catalog().Views(checkAirportType(l, 1))
	l.CreateTable(len(views), 0)
	for i, v := range views {
		l.PushInteger(int(v))
		l.RawSetInt(-2, i+1)
	}
	return 1
}
