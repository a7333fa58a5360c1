package convert

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/skyhaul/airportscript/internal/model"
	"github.com/skyhaul/airportscript/pkg/core"
)

// kindByName maps stored command names back to kinds.
var kindByName = map[string]core.CommandKind{
	core.CmdBuildAirport.Name():   core.CmdBuildAirport,
	core.CmdLandscapeClear.Name(): core.CmdLandscapeClear,
}

// CommandToCore converts a GORM model.Command back to a core.Request.
func CommandToCore(c model.Command) (core.Request, error) {
	id, err := uuid.Parse(c.RequestID)
	if err != nil {
		return core.Request{}, fmt.Errorf("command %d: bad request id: %w", c.ID, err)
	}
	kind, ok := kindByName[c.Kind]
	if !ok {
		return core.Request{}, fmt.Errorf("command %d: unknown kind %q", c.ID, c.Kind)
	}
	return core.Request{
		ID:          id,
		Kind:        kind,
		Tile:        core.TileIndex(c.Tile),
		P1:          c.P1,
		P2:          c.P2,
		Company:     core.CompanyID(c.Company),
		SubmittedAt: c.SubmittedAt,
	}, nil
}

// StationSnapshotToCore converts a GORM model.StationSnapshot back to a
// core.StationSnapshot. Geometry is not carried back; it derives from the
// tile fields.
func StationSnapshotToCore(s model.StationSnapshot) (core.StationSnapshot, error) {
	var reqID uuid.UUID
	if s.RequestID != "" {
		id, err := uuid.Parse(s.RequestID)
		if err != nil {
			return core.StationSnapshot{}, fmt.Errorf("snapshot %d: bad request id: %w", s.ID, err)
		}
		reqID = id
	}
	var hangars []core.TileIndex
	if len(s.Hangars) > 0 {
		if err := json.Unmarshal(s.Hangars, &hangars); err != nil {
			return core.StationSnapshot{}, fmt.Errorf("snapshot %d: bad hangars: %w", s.ID, err)
		}
	}
	return core.StationSnapshot{
		RequestID:   reqID,
		Station:     core.StationID(s.StationID),
		Name:        s.Name,
		Owner:       core.CompanyID(s.Owner),
		Town:        core.TownID(s.Town),
		HasAirport:  s.HasAirport,
		AirportType: core.AirportType(s.AirportType),
		AirportView: core.AirportView(s.AirportView),
		Tile:        core.TileIndex(s.Tile),
		Width:       s.Width,
		Height:      s.Height,
		Hangars:     hangars,
		Removed:     s.Removed,
		RecordedAt:  s.RecordedAt,
	}, nil
}
