// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"github.com/skyhaul/airportscript/internal/geo"
	"github.com/skyhaul/airportscript/internal/model"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// BuildParams is the decoded form of a build_airport request stored next
// to the packed words.
type BuildParams struct {
	AirportType  core.AirportType `json:"airportType"`
	AirportView  core.AirportView `json:"airportView"`
	JoinAdjacent bool             `json:"joinAdjacent"`
	Station      core.StationID   `json:"station"`
}

// sessionSummary is stored in Session.Catalog.
type sessionSummary struct {
	CatalogSize int `json:"catalogSize"`
}

func toJSON(v any, empty string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(empty)
	}
	return datatypes.JSON(data)
}

// CoreToSession converts a core.SessionInfo to a GORM model.Session.
func CoreToSession(s core.SessionInfo) model.Session {
	return model.Session{
		UUID:       s.ID.String(),
		Name:       s.Name,
		Scenario:   s.Scenario,
		MapSizeX:   s.MapSizeX,
		MapSizeY:   s.MapSizeY,
		Year:       s.Year,
		NoiseLevel: s.NoiseLevel,
		Tolerance:  s.Tolerance,
		Catalog:    toJSON(sessionSummary{CatalogSize: s.CatalogSize}, "{}"),
		StartedAt:  s.StartedAt,
	}
}

// CoreToCommand converts a core.Request to a GORM model.Command. Build
// requests also carry their decoded parameters.
func CoreToCommand(r core.Request) model.Command {
	params := datatypes.JSON("{}")
	if r.Kind == core.CmdBuildAirport {
		typ, view := core.DecodeAirport(r.P1)
		adjacent, station := core.DecodeStationChoice(r.P2)
		params = toJSON(BuildParams{
			AirportType:  typ,
			AirportView:  view,
			JoinAdjacent: adjacent,
			Station:      station,
		}, "{}")
	}
	return model.Command{
		RequestID:   r.ID.String(),
		Kind:        r.Kind.Name(),
		Company:     uint8(r.Company),
		Tile:        uint32(r.Tile),
		P1:          r.P1,
		P2:          r.P2,
		Params:      params,
		SubmittedAt: r.SubmittedAt,
	}
}

// CoreToOutcome converts a core.Outcome to a GORM model.CommandOutcome.
func CoreToOutcome(o core.Outcome) model.CommandOutcome {
	return model.CommandOutcome{
		RequestID: o.RequestID.String(),
		Succeeded: o.Succeeded(),
		Error:     o.ErrorText(),
		Station:   uint16(o.Station),
		Cost:      int64(o.Cost),
		AppliedAt: o.AppliedAt,
	}
}

// CoreToStationSnapshot converts a core.StationSnapshot to a GORM
// model.StationSnapshot, deriving its geometry on map m. A zero map leaves
// the geometry empty. When the geometry cannot be built the row is still
// returned, with empty geometry, alongside the error.
func CoreToStationSnapshot(s core.StationSnapshot, m world.Map) (model.StationSnapshot, error) {
	hangars := s.Hangars
	if hangars == nil {
		hangars = []core.TileIndex{}
	}
	out := model.StationSnapshot{
		RequestID:   s.RequestID.String(),
		StationID:   uint16(s.Station),
		Name:        s.Name,
		Owner:       uint8(s.Owner),
		Town:        uint16(s.Town),
		HasAirport:  s.HasAirport,
		AirportType: uint8(s.AirportType),
		AirportView: uint8(s.AirportView),
		Tile:        uint32(s.Tile),
		Width:       s.Width,
		Height:      s.Height,
		Hangars:     toJSON(hangars, "[]"),
		Removed:     s.Removed,
		RecordedAt:  s.RecordedAt,
	}
	if !s.HasAirport || m.SizeX == 0 {
		return out, nil
	}
	area := world.Area{Tile: s.Tile, Width: s.Width, Height: s.Height}
	footprint, ferr := geo.Footprint(m, area)
	anchor, aerr := geo.Anchor(m, area)
	if err := errors.Join(ferr, aerr); err != nil {
		return out, err
	}
	out.Footprint = footprint
	out.Anchor = anchor
	return out, nil
}
