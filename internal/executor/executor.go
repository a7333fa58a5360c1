// Package executor applies the mutation requests the airport façade
// submits. Requests are routed through the dispatcher and either queued
// until the next Tick (deferred mode) or applied on a dispatcher goroutine
// (async mode). Outcomes are journaled and published on Outcomes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/channel"
	"github.com/skyhaul/airportscript/internal/dispatcher"
	"github.com/skyhaul/airportscript/internal/queue"
	"github.com/skyhaul/airportscript/internal/storage"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

// Mode selects when requests are applied.
type Mode string

const (
	// ModeDeferred queues requests until Tick.
	ModeDeferred Mode = "deferred"
	// ModeAsync applies requests on a dispatcher goroutine as they arrive.
	ModeAsync Mode = "async"
)

// ParseMode validates a configured mode. An empty string is ModeDeferred.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeDeferred:
		return ModeDeferred, nil
	case ModeAsync:
		return ModeAsync, nil
	default:
		return "", fmt.Errorf("unknown executor mode %q", s)
	}
}

const defaultBufferSize = 1000

var (
	// ErrNotRegistered is returned by Submit before RegisterHandlers.
	ErrNotRegistered = errors.New("executor handlers not registered")
	// ErrUnknownCommand is returned by Submit for a request kind it cannot apply.
	ErrUnknownCommand = errors.New("unknown command")
)

// Recorder receives every outcome, e.g. for metrics.
type Recorder interface {
	RecordOutcome(o core.Outcome) error
}

// Dependencies holds all dependencies for the executor.
type Dependencies struct {
	World   *memory.World
	Catalog *catalog.Catalog
	// Backend journals requests, outcomes and station snapshots. Optional.
	Backend storage.Backend
	// Recorder is optional.
	Recorder Recorder
	Logger   *slog.Logger

	Mode             Mode
	BufferSize       int
	ClearCostPerTile core.Money
}

// Manager applies requests to the world.
type Manager struct {
	deps       Dependencies
	log        *slog.Logger
	dispatcher *dispatcher.Dispatcher

	pending  *queue.Queue[core.Request]
	outcomes channel.Channel[core.Outcome]

	applyMu   sync.Mutex // one request at a time touches the world
	applied   atomic.Int64
	failed    atomic.Int64
	unsent    atomic.Int64
	closeOnce sync.Once
}

// NewManager creates a new executor.
func NewManager(deps Dependencies) *Manager {
	if deps.Mode == "" {
		deps.Mode = ModeDeferred
	}
	if deps.BufferSize <= 0 {
		deps.BufferSize = defaultBufferSize
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		deps:     deps,
		log:      log.With("component", "executor"),
		pending:  queue.New[core.Request](),
		outcomes: channel.New[core.Outcome](deps.BufferSize),
	}
}

// Mode returns the mode requests are applied in.
func (m *Manager) Mode() Mode { return m.deps.Mode }

// Submit accepts a request for execution. The request gets a fresh ID and
// submission time; whatever the caller set there is overwritten.
func (m *Manager) Submit(ctx context.Context, req core.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.dispatcher == nil {
		return false, ErrNotRegistered
	}
	switch req.Kind {
	case core.CmdBuildAirport, core.CmdLandscapeClear:
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownCommand, req.Kind)
	}

	req.ID = uuid.New()
	req.SubmittedAt = time.Now()

	if _, err := m.dispatcher.Dispatch(dispatcher.NewEvent(req)); err != nil {
		return false, err
	}
	return true, nil
}

// Pending returns the number of requests waiting for Tick.
func (m *Manager) Pending() int {
	return m.pending.Len()
}

// Tick applies every pending request in submission order and returns how
// many were applied. It stops early when ctx is cancelled; the rest stay
// queued.
func (m *Manager) Tick(ctx context.Context) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		req, ok := m.pending.Pop()
		if !ok {
			return n, nil
		}
		m.apply(req)
		n++
	}
}

// Outcomes publishes the outcome of every applied request. Outcomes are
// dropped when nobody drains the channel.
func (m *Manager) Outcomes() <-chan core.Outcome {
	return m.outcomes.Receive()
}

// Stats returns how many requests were applied, how many of those failed
// and how many outcomes could not be published.
func (m *Manager) Stats() (applied, failed, unsent int64) {
	return m.applied.Load(), m.failed.Load(), m.unsent.Load()
}

// Close closes the outcome channel. The dispatcher must be closed first.
func (m *Manager) Close() {
	m.closeOnce.Do(m.outcomes.Close)
}

// apply runs one request against the world and reports its outcome.
func (m *Manager) apply(req core.Request) core.Outcome {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	out := core.Outcome{
		RequestID: req.ID,
		Kind:      req.Kind,
		Tile:      req.Tile,
		Company:   req.Company,
		Station:   core.InvalidStation,
	}

	switch req.Kind {
	case core.CmdBuildAirport:
		out.Station, out.Cost, out.Err = m.build(req)
	case core.CmdLandscapeClear:
		out.Station, out.Cost, out.Err = m.deps.World.ClearTile(req.Company, req.Tile, m.deps.ClearCostPerTile)
	default:
		out.Err = fmt.Errorf("%w: %d", ErrUnknownCommand, req.Kind)
	}
	out.AppliedAt = time.Now()

	m.applied.Add(1)
	if out.Err != nil {
		m.failed.Add(1)
		m.log.Info("Command failed", "command", req.Kind.Name(), "request", req.ID.String(), "company", req.Company, "tile", uint32(req.Tile), "error", out.Err)
	} else {
		m.log.Debug("Command applied", "command", req.Kind.Name(), "request", req.ID.String(), "station", out.Station, "cost", int64(out.Cost))
	}

	m.journalOutcome(out)
	if m.deps.Recorder != nil {
		if err := m.deps.Recorder.RecordOutcome(out); err != nil {
			m.log.Warn("Failed to record outcome metric", "error", err)
		}
	}
	if !m.outcomes.TrySend(out) {
		m.unsent.Add(1)
	}
	return out
}

func (m *Manager) journalRequest(req core.Request) {
	if m.deps.Backend == nil {
		return
	}
	if err := m.deps.Backend.RecordRequest(&req); err != nil {
		m.log.Warn("Failed to journal request", "request", req.ID.String(), "error", err)
	}
}

func (m *Manager) journalOutcome(out core.Outcome) {
	if m.deps.Backend == nil {
		return
	}
	if err := m.deps.Backend.RecordOutcome(&out); err != nil {
		m.log.Warn("Failed to journal outcome", "request", out.RequestID.String(), "error", err)
	}
	if out.Err != nil || out.Station == core.InvalidStation {
		return
	}
	snap := m.snapshot(out)
	if err := m.deps.Backend.RecordStation(&snap); err != nil {
		m.log.Warn("Failed to journal station", "station", out.Station, "error", err)
	}
}

// snapshot captures the station an outcome touched. A station that no
// longer exists is reported as removed.
func (m *Manager) snapshot(out core.Outcome) core.StationSnapshot {
	snap := core.StationSnapshot{
		RequestID:  out.RequestID,
		Station:    out.Station,
		RecordedAt: out.AppliedAt,
	}
	st, ok := m.deps.World.Station(out.Station)
	if !ok {
		snap.Removed = true
		return snap
	}
	snap.Name = st.Name
	snap.Owner = st.Owner
	snap.Town = st.Town
	if st.Facilities.Has(world.FacilityAirport) {
		a := st.Airport
		snap.HasAirport = true
		snap.AirportType = a.Type
		snap.AirportView = a.View
		snap.Tile = a.Tile
		snap.Width = a.Width
		snap.Height = a.Height
		snap.Hangars = append([]core.TileIndex(nil), a.Hangars...)
	}
	return snap
}
