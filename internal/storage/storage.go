// Package storage defines the command journal. Every request the executor
// applies, its outcome and the stations it touched are handed to a Backend.
package storage

import "github.com/skyhaul/airportscript/pkg/core"

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.SessionInfo) error
	EndSession() error

	// Journal
	RecordRequest(r *core.Request) error
	RecordOutcome(o *core.Outcome) error
	RecordStation(s *core.StationSnapshot) error
}

// Exportable is an optional interface for backends that write the journal
// to a file when the session ends.
type Exportable interface {
	GetExportedFilePath() string
}
