package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeAirport(t *testing.T) {
	p1 := EncodeAirport(4, 2)
	assert.Equal(t, uint32(0x0204), p1)

	typ, view := DecodeAirport(p1)
	assert.Equal(t, AirportType(4), typ)
	assert.Equal(t, AirportView(2), view)
}

func TestEncodeStationChoice(t *testing.T) {
	tests := []struct {
		name        string
		choice      StationChoice
		wantP2      uint32
		adjacent    bool
		wantStation StationID
	}{
		{
			name:        "allocate new",
			choice:      NewStation(),
			wantP2:      1 | uint32(InvalidStation)<<16,
			adjacent:    false,
			wantStation: InvalidStation,
		},
		{
			name:        "join adjacent",
			choice:      JoinAdjacentStation(),
			wantP2:      uint32(InvalidStation) << 16,
			adjacent:    true,
			wantStation: InvalidStation,
		},
		{
			name:        "join existing",
			choice:      JoinStation(42),
			wantP2:      1 | 42<<16,
			adjacent:    false,
			wantStation: 42,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p2 := EncodeStationChoice(tt.choice)
			assert.Equal(t, tt.wantP2, p2)

			adjacent, id := DecodeStationChoice(p2)
			assert.Equal(t, tt.adjacent, adjacent)
			assert.Equal(t, tt.wantStation, id)
		})
	}
}

func TestCommandKind_Name(t *testing.T) {
	assert.Equal(t, "build_airport", CmdBuildAirport.Name())
	assert.Equal(t, "landscape_clear", CmdLandscapeClear.Name())
	assert.Equal(t, "invalid", CmdInvalid.String())
}

func TestOutcome_Succeeded(t *testing.T) {
	assert.True(t, Outcome{}.Succeeded())
	assert.False(t, Outcome{Err: ErrAreaNotClear}.Succeeded())
}
