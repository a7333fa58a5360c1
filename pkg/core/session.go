package core

import (
	"time"

	"github.com/google/uuid"
)

// SessionInfo describes one scripted session: a loaded scenario that
// agents issue commands against.
type SessionInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Scenario    string    `json:"scenario"`
	MapSizeX    uint32    `json:"mapSizeX"`
	MapSizeY    uint32    `json:"mapSizeY"`
	Year        int       `json:"year"`
	NoiseLevel  bool      `json:"noiseLevel"`
	Tolerance   int       `json:"townCouncilTolerance"`
	StartedAt   time.Time `json:"startedAt"`
	CatalogSize int       `json:"catalogSize"`
}

// StationSnapshot is the state of a station right after a command changed
// it. Removed is set when the command deleted the station entirely.
type StationSnapshot struct {
	RequestID   uuid.UUID   `json:"requestId"`
	Station     StationID   `json:"station"`
	Name        string      `json:"name"`
	Owner       CompanyID   `json:"owner"`
	Town        TownID      `json:"town"`
	HasAirport  bool        `json:"hasAirport"`
	AirportType AirportType `json:"airportType"`
	AirportView AirportView `json:"airportView"`
	Tile        TileIndex   `json:"tile"`
	Width       uint32      `json:"width"`
	Height      uint32      `json:"height"`
	Hangars     []TileIndex `json:"hangars"`
	Removed     bool        `json:"removed"`
	RecordedAt  time.Time   `json:"recordedAt"`
}
