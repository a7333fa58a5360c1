// Package streaming defines the messages the websocket journal backend
// exchanges with a journal server.
package streaming

import (
	"encoding/json"

	"github.com/skyhaul/airportscript/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeRequest      = "request"
	TypeOutcome      = "outcome"
	TypeStation      = "station"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket. Seq increases by one
// per message of a session; a frame replayed after a reconnect keeps its Seq.
type Envelope struct {
	Seq     uint64          `json:"seq"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session being journaled.
type StartSessionPayload struct {
	Session *core.SessionInfo `json:"session"`
}

// OutcomePayload is core.Outcome with the error flattened to text.
type OutcomePayload struct {
	RequestID string         `json:"requestId"`
	Kind      string         `json:"kind"`
	Tile      core.TileIndex `json:"tile"`
	Company   core.CompanyID `json:"company"`
	Station   core.StationID `json:"station"`
	Cost      core.Money     `json:"cost"`
	Error     string         `json:"error,omitempty"`
	AppliedAt string         `json:"appliedAt"`
}

// RequestPayload is core.Request with the command named.
type RequestPayload struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Tile        core.TileIndex `json:"tile"`
	P1          uint32         `json:"p1"`
	P2          uint32         `json:"p2"`
	Company     core.CompanyID `json:"company"`
	SubmittedAt string         `json:"submittedAt"`
}
