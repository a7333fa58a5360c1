// Package websocket streams the session journal to a remote journal server.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/skyhaul/airportscript/pkg/core"
	"github.com/skyhaul/airportscript/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams journal entries over WebSocket.
// It implements storage.Backend but not storage.Exportable.
type Backend struct {
	stream *stream
}

// New creates a new WebSocket storage backend. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{stream: newStream(cfg.URL, cfg.Secret, logger.With("backend", "websocket"))}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.stream.open()
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.stream.close()
}

// Dropped returns how many journal entries were lost to back-pressure.
func (b *Backend) Dropped() int64 {
	return b.stream.dropped.Load()
}

// Pending returns how many journal entries wait to be written.
func (b *Backend) Pending() int {
	return len(b.stream.outbox)
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(seq uint64, msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Seq: seq, Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (b *Backend) frame(msgType string, payload any) ([]byte, error) {
	return marshalEnvelope(b.stream.seq.Add(1), msgType, payload)
}

// send queues an entry without waiting for the server.
func (b *Backend) send(msgType string, payload any) error {
	data, err := b.frame(msgType, payload)
	if err != nil {
		return err
	}
	b.stream.push(data)
	return nil
}

// StartSession sends the session and waits for server ack. Sequence
// numbers restart at 1.
func (b *Backend) StartSession(s *core.SessionInfo) error {
	b.stream.seq.Store(0)
	data, err := b.frame(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}
	b.stream.setSession(data)
	return b.stream.pushAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	defer b.stream.setSession(nil)
	data, err := b.frame(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	return b.stream.pushAndWait(data, streaming.TypeEndSession, ackTimeout)
}

// RecordRequest queues a submitted request.
func (b *Backend) RecordRequest(r *core.Request) error {
	return b.send(streaming.TypeRequest, streaming.RequestPayload{
		ID:          r.ID.String(),
		Kind:        r.Kind.Name(),
		Tile:        r.Tile,
		P1:          r.P1,
		P2:          r.P2,
		Company:     r.Company,
		SubmittedAt: r.SubmittedAt.UTC().Format(time.RFC3339Nano),
	})
}

// RecordOutcome queues the outcome of an applied request.
func (b *Backend) RecordOutcome(o *core.Outcome) error {
	return b.send(streaming.TypeOutcome, streaming.OutcomePayload{
		RequestID: o.RequestID.String(),
		Kind:      o.Kind.Name(),
		Tile:      o.Tile,
		Company:   o.Company,
		Station:   o.Station,
		Cost:      o.Cost,
		Error:     o.ErrorText(),
		AppliedAt: o.AppliedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (b *Backend) RecordStation(s *core.StationSnapshot) error {
	return b.send(streaming.TypeStation, s)
}
