// Package v1 contains the v1 export format of a session journal.
package v1

// FormatVersion is written into every export.
const FormatVersion = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	Version  string    `json:"version"`
	Session  Session   `json:"session"`
	Commands []Command `json:"commands"`
	Stations []Station `json:"stations"`
}

// Session describes the scenario the commands ran against
type Session struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Scenario   string    `json:"scenario"`
	MapSize    [2]uint32 `json:"mapSize"`
	Year       int       `json:"year"`
	NoiseLevel bool      `json:"noiseLevel"`
	StartedAt  string    `json:"startedAt"`
}

// Command is one journaled request with its decoded parameters and result
type Command struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	Company     uint8        `json:"company"`
	Tile        uint32       `json:"tile"`
	P1          uint32       `json:"p1"`
	P2          uint32       `json:"p2"`
	Build       *BuildParams `json:"build,omitempty"`
	SubmittedAt string       `json:"submittedAt"`
	Result      *Result      `json:"result,omitempty"`
}

// BuildParams holds the decoded build_airport parameters
type BuildParams struct {
	AirportType  uint8  `json:"airportType"`
	AirportView  uint8  `json:"airportView"`
	JoinAdjacent bool   `json:"joinAdjacent"`
	Station      uint16 `json:"station"`
}

// Result is the outcome of a command; absent while still pending
type Result struct {
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
	Station   uint16 `json:"station"`
	Cost      int64  `json:"cost"`
	AppliedAt string `json:"appliedAt"`
}

// Station is the last known state of a station touched in the session
type Station struct {
	ID      uint16   `json:"id"`
	Name    string   `json:"name"`
	Owner   uint8    `json:"owner"`
	Town    uint16   `json:"town"`
	Removed bool     `json:"removed"`
	Airport *Airport `json:"airport,omitempty"`
}

// Airport is the airport part of a station
type Airport struct {
	Type    uint8    `json:"type"`
	View    uint8    `json:"view"`
	Tile    uint32   `json:"tile"`
	Width   uint32   `json:"width"`
	Height  uint32   `json:"height"`
	Hangars []uint32 `json:"hangars"`
}
