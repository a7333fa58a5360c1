package v1

import (
	"sort"
	"time"

	"github.com/skyhaul/airportscript/pkg/core"
)

// SessionData contains all the data needed to build an export
type SessionData struct {
	Session  *core.SessionInfo
	Commands []CommandRecord
	Stations []core.StationSnapshot
}

// CommandRecord groups a request with its outcome, nil while pending
type CommandRecord struct {
	Request core.Request
	Outcome *core.Outcome
}

// Build creates an Export from the session data
func Build(data *SessionData) Export {
	export := Export{
		Version:  FormatVersion,
		Commands: make([]Command, 0, len(data.Commands)),
		Stations: make([]Station, 0),
	}

	if s := data.Session; s != nil {
		export.Session = Session{
			ID:         s.ID.String(),
			Name:       s.Name,
			Scenario:   s.Scenario,
			MapSize:    [2]uint32{s.MapSizeX, s.MapSizeY},
			Year:       s.Year,
			NoiseLevel: s.NoiseLevel,
			StartedAt:  formatTime(s.StartedAt),
		}
	}

	for _, rec := range data.Commands {
		export.Commands = append(export.Commands, buildCommand(rec))
	}

	// Keep the last snapshot of every station.
	latest := make(map[core.StationID]core.StationSnapshot)
	for _, snap := range data.Stations {
		latest[snap.Station] = snap
	}
	for _, snap := range latest {
		export.Stations = append(export.Stations, buildStation(snap))
	}
	sort.Slice(export.Stations, func(i, j int) bool {
		return export.Stations[i].ID < export.Stations[j].ID
	})

	return export
}

func buildCommand(rec CommandRecord) Command {
	req := rec.Request
	cmd := Command{
		ID:          req.ID.String(),
		Kind:        req.Kind.Name(),
		Company:     uint8(req.Company),
		Tile:        uint32(req.Tile),
		P1:          req.P1,
		P2:          req.P2,
		SubmittedAt: formatTime(req.SubmittedAt),
	}
	if req.Kind == core.CmdBuildAirport {
		typ, view := core.DecodeAirport(req.P1)
		adjacent, station := core.DecodeStationChoice(req.P2)
		cmd.Build = &BuildParams{
			AirportType:  uint8(typ),
			AirportView:  uint8(view),
			JoinAdjacent: adjacent,
			Station:      uint16(station),
		}
	}
	if o := rec.Outcome; o != nil {
		cmd.Result = &Result{
			Succeeded: o.Succeeded(),
			Error:     o.ErrorText(),
			Station:   uint16(o.Station),
			Cost:      int64(o.Cost),
			AppliedAt: formatTime(o.AppliedAt),
		}
	}
	return cmd
}

func buildStation(snap core.StationSnapshot) Station {
	st := Station{
		ID:      uint16(snap.Station),
		Name:    snap.Name,
		Owner:   uint8(snap.Owner),
		Town:    uint16(snap.Town),
		Removed: snap.Removed,
	}
	if snap.HasAirport && !snap.Removed {
		hangars := make([]uint32, 0, len(snap.Hangars))
		for _, h := range snap.Hangars {
			hangars = append(hangars, uint32(h))
		}
		st.Airport = &Airport{
			Type:    uint8(snap.AirportType),
			View:    uint8(snap.AirportView),
			Tile:    uint32(snap.Tile),
			Width:   snap.Width,
			Height:  snap.Height,
			Hangars: hangars,
		}
	}
	return st
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
