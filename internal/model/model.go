// Package model holds the GORM tables of the command journal.
package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&Command{},
	&CommandOutcome{},
	&StationSnapshot{},
}

////////////////////////
// JOURNAL MODELS
////////////////////////

// Session is one loaded scenario that agents issued commands against
type Session struct {
	gorm.Model
	UUID       string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	Name       string         `json:"name" gorm:"size:127"`
	Scenario   string         `json:"scenario" gorm:"size:255"`
	MapSizeX   uint32         `json:"mapSizeX"`
	MapSizeY   uint32         `json:"mapSizeY"`
	Year       int            `json:"year"`
	NoiseLevel bool           `json:"noiseLevel"`
	Tolerance  int            `json:"townCouncilTolerance"`
	Catalog    datatypes.JSON `json:"catalog"` // session summary, e.g. catalog size
	StartedAt  time.Time      `json:"startedAt"`
	EndedAt    sql.NullTime   `json:"endedAt"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Command is a mutation request accepted by the executor
type Command struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID   uint           `json:"sessionId" gorm:"index:idx_command_session_id"`
	Session     Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	RequestID   string         `json:"requestId" gorm:"size:36;uniqueIndex"`
	Kind        string         `json:"kind" gorm:"size:32"`
	Company     uint8          `json:"company"`
	Tile        uint32         `json:"tile"`
	P1          uint32         `json:"p1"`
	P2          uint32         `json:"p2"`
	Params      datatypes.JSON `json:"params"` // decoded P1/P2
	SubmittedAt time.Time      `json:"submittedAt"`
}

func (*Command) TableName() string {
	return "commands"
}

// CommandOutcome is what applying a command did to the world
type CommandOutcome struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_outcome_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	RequestID string    `json:"requestId" gorm:"size:36;index:idx_outcome_request_id"`
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error" gorm:"size:255"`
	Station   uint16    `json:"station"`
	Cost      int64     `json:"cost"`
	AppliedAt time.Time `json:"appliedAt"`
}

func (*CommandOutcome) TableName() string {
	return "command_outcomes"
}

// StationSnapshot is the state of a station after a command changed it
type StationSnapshot struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID   uint           `json:"sessionId" gorm:"index:idx_snapshot_session_id"`
	Session     Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	RequestID   string         `json:"requestId" gorm:"size:36"`
	StationID   uint16         `json:"stationId" gorm:"index:idx_snapshot_station_id"`
	Name        string         `json:"name" gorm:"size:127"`
	Owner       uint8          `json:"owner"`
	Town        uint16         `json:"town"`
	HasAirport  bool           `json:"hasAirport"`
	AirportType uint8          `json:"airportType"`
	AirportView uint8          `json:"airportView"`
	Tile        uint32         `json:"tile"`
	Width       uint32         `json:"width"`
	Height      uint32         `json:"height"`
	Hangars     datatypes.JSON `json:"hangars"`
	Footprint   geom.Polygon   `json:"footprint"` // airport outline in tile units
	Anchor      geom.Point     `json:"anchor"`    // airport centre in tile units
	Removed     bool           `json:"removed"`
	RecordedAt  time.Time      `json:"recordedAt"`
}

func (*StationSnapshot) TableName() string {
	return "station_snapshots"
}
