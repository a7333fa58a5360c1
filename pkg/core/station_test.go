package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStationChoiceFromID(t *testing.T) {
	assert.Equal(t, AllocateNew, StationChoiceFromID(StationNew).Kind())
	assert.Equal(t, JoinAdjacent, StationChoiceFromID(StationJoinAdjacent).Kind())

	c := StationChoiceFromID(7)
	assert.Equal(t, JoinExisting, c.Kind())
	assert.Equal(t, StationID(7), c.Station())
	assert.Equal(t, "join(7)", c.String())
}

func TestStationChoice_ZeroValueMalformed(t *testing.T) {
	var c StationChoice
	assert.Equal(t, StationChoiceKind(0), c.Kind())
	assert.Equal(t, InvalidStation, c.Station())
	assert.Equal(t, "malformed", c.String())
}

func TestPlaneType_Codes(t *testing.T) {
	assert.Equal(t, int32(0), int32(PlaneHelicopter))
	assert.Equal(t, int32(1), int32(PlaneSmall))
	assert.Equal(t, int32(3), int32(PlaneBig))
	assert.Equal(t, int32(-1), int32(PlaneInvalid))

	assert.True(t, IsValidPlaneType(PlaneHelicopter))
	assert.False(t, IsValidPlaneType(2))
	assert.False(t, IsValidPlaneType(PlaneInvalid))
	assert.Equal(t, "big", PlaneBig.String())
}

func TestResult(t *testing.T) {
	r := Fail[int32](-1, ReasonTypeUnavailable)
	assert.False(t, r.OK())
	assert.Equal(t, int32(-1), r.Value)
	assert.Equal(t, "airport type information unavailable", r.Reason.String())

	assert.True(t, Ok(true).OK())
	assert.Equal(t, "unknown", Reason(200).String())
}
