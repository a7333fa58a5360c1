// Package memory keeps the session journal in memory and exports it to a
// JSON file when the session ends.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skyhaul/airportscript/internal/config"
	v1 "github.com/skyhaul/airportscript/internal/storage/memory/export/v1"
	"github.com/skyhaul/airportscript/pkg/core"
)

// CommandRecord groups a request with its outcome
type CommandRecord struct {
	Request core.Request
	Outcome *core.Outcome
}

// Backend stores the journal in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.SessionInfo

	commands []*CommandRecord
	byID     map[uuid.UUID]*CommandRecord
	stations []core.StationSnapshot
	orphans  int // outcomes for requests never recorded

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		byID: make(map[uuid.UUID]*CommandRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins a new journal, discarding anything recorded before
func (b *Backend) StartSession(s *core.SessionInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.commands = nil
	b.byID = make(map[uuid.UUID]*CommandRecord)
	b.stations = nil
	b.orphans = 0
	b.lastExportPath = ""

	return nil
}

// EndSession exports the journal. It is a no-op without a session or
// output directory.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil || b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// RecordRequest journals a request the executor accepted
func (b *Backend) RecordRequest(r *core.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := &CommandRecord{Request: *r}
	b.commands = append(b.commands, rec)
	b.byID[r.ID] = rec
	return nil
}

// RecordOutcome attaches an outcome to its request
func (b *Backend) RecordOutcome(o *core.Outcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.byID[o.RequestID]
	if !ok {
		b.orphans++
		return nil // silently ignore if request not found
	}
	cp := *o
	rec.Outcome = &cp
	return nil
}

// RecordStation journals a station snapshot
func (b *Backend) RecordStation(s *core.StationSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *s
	cp.Hangars = append([]core.TileIndex(nil), s.Hangars...)
	b.stations = append(b.stations, cp)
	return nil
}

// GetCommand looks up a journaled request by ID
func (b *Backend) GetCommand(id uuid.UUID) (CommandRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.byID[id]
	if !ok {
		return CommandRecord{}, false
	}
	return *rec, true
}

// Commands returns the journal in submission order
func (b *Backend) Commands() []CommandRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]CommandRecord, 0, len(b.commands))
	for _, rec := range b.commands {
		out = append(out, *rec)
	}
	return out
}

// Stations returns every snapshot in the order recorded
func (b *Backend) Stations() []core.StationSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.StationSnapshot, len(b.stations))
	copy(out, b.stations)
	return out
}

// Export builds the v1 export of the current journal
func (b *Backend) Export() v1.Export {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buildExport()
}

func (b *Backend) buildExport() v1.Export {
	data := &v1.SessionData{
		Session:  b.session,
		Commands: make([]v1.CommandRecord, 0, len(b.commands)),
		Stations: b.stations,
	}
	for _, rec := range b.commands {
		data.Commands = append(data.Commands, v1.CommandRecord{Request: rec.Request, Outcome: rec.Outcome})
	}
	return v1.Build(data)
}
