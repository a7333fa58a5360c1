package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/pkg/core"
)

const (
	typeRegional core.AirportType = 0
	typeHeliport core.AirportType = 2
	typeRetired  core.AirportType = 9
	typeFuture   core.AirportType = 7
)

func newTestCatalog(t *testing.T, settings Settings) *Catalog {
	t.Helper()
	if settings.BaseAirportPrice == 0 {
		settings.BaseAirportPrice = 5000
	}
	if settings.CurrentYear == 0 {
		settings.CurrentYear = 1950
	}
	c, err := Default(settings)
	require.NoError(t, err)
	return c
}

func TestDefault_Loads(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.Equal(t, []core.AirportType{0, 1, 2, 3, 4, 5, 6, 7, 8}, c.Types())
}

func TestIsInformationAvailable(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	tests := []struct {
		name string
		typ  core.AirportType
		want bool
	}{
		{"regional", typeRegional, true},
		{"not yet introduced", typeFuture, true},
		{"retired slot", typeRetired, false},
		{"empty slot", 42, false},
		{"out of range", 200, false},
		{"invalid marker", core.AirportTypeInvalid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsInformationAvailable(tt.typ))
		})
	}
}

func TestIsBuildable_ImpliesInformationAvailable(t *testing.T) {
	c := newTestCatalog(t, Settings{Disabled: []core.AirportType{1}})

	for i := 0; i < 256; i++ {
		typ := core.AirportType(i)
		if c.IsBuildable(typ) {
			assert.True(t, c.IsInformationAvailable(typ), "type %d buildable but not available", i)
		}
	}
}

func TestIsBuildable_ConverseDoesNotHold(t *testing.T) {
	c := newTestCatalog(t, Settings{Disabled: []core.AirportType{1}})

	// Disabled for this session, instances may still exist on the map.
	assert.True(t, c.IsInformationAvailable(1))
	assert.False(t, c.IsBuildable(1))

	// Not introduced yet.
	assert.True(t, c.IsInformationAvailable(typeFuture))
	assert.False(t, c.IsBuildable(typeFuture))
}

func TestIsBuildable_Expiry(t *testing.T) {
	expired := newTestCatalog(t, Settings{CurrentYear: 1970})
	assert.False(t, expired.IsBuildable(typeRegional))
	assert.True(t, expired.IsInformationAvailable(typeRegional))

	neverExpire := newTestCatalog(t, Settings{CurrentYear: 1970, NeverExpireAirports: true})
	assert.True(t, neverExpire.IsBuildable(typeRegional))
}

func TestIsValidView(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.True(t, c.IsValidView(typeRegional, 0))
	assert.True(t, c.IsValidView(typeRegional, 3))
	assert.False(t, c.IsValidView(typeRegional, 4))
	assert.True(t, c.IsValidView(typeHeliport, 0))
	assert.False(t, c.IsValidView(typeHeliport, 1))
	assert.False(t, c.IsValidView(typeRetired, 0))
}

func TestIsValidView_ImpliesInformationAvailable(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	for i := 0; i < 256; i++ {
		for v := 0; v < 8; v++ {
			if c.IsValidView(core.AirportType(i), core.AirportView(v)) {
				assert.True(t, c.IsInformationAvailable(core.AirportType(i)))
			}
		}
	}
}

func TestLayout_RotatedSize(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	l, ok := c.Layout(typeRegional, 0)
	require.True(t, ok)
	w, h := l.Size()
	assert.Equal(t, uint32(4), w)
	assert.Equal(t, uint32(3), h)

	l, ok = c.Layout(typeRegional, 1)
	require.True(t, ok)
	w, h = l.Size()
	assert.Equal(t, uint32(3), w)
	assert.Equal(t, uint32(4), h)
	assert.Equal(t, typeRegional, l.Type())
	assert.Equal(t, core.AirportView(1), l.View())
	assert.True(t, l.Valid())

	_, ok = c.Layout(typeRegional, 9)
	assert.False(t, ok)
	assert.False(t, Layout{}.Valid())
}

func TestDimensionAccessors(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.Equal(t, int32(4), c.Width(typeRegional).Value)
	assert.Equal(t, int32(3), c.Height(typeRegional).Value)
	assert.Equal(t, int32(1), c.NumHangars(typeRegional).Value)
	assert.Equal(t, int32(0), c.NumHelipads(typeRegional).Value)
	assert.Equal(t, int32(2), c.NumTerminals(typeRegional).Value)
	assert.Equal(t, int32(1), c.NumHelipads(typeHeliport).Value)
	assert.Equal(t, int32(0), c.NumHangars(typeHeliport).Value)

	for _, r := range []core.Result[int32]{
		c.Width(typeRetired),
		c.Height(typeRetired),
		c.NumHangars(typeRetired),
		c.NumHelipads(typeRetired),
		c.NumTerminals(typeRetired),
		c.CoverageRadius(typeRetired),
	} {
		assert.Equal(t, int32(-1), r.Value)
		assert.Equal(t, core.ReasonTypeUnavailable, r.Reason)
	}
}

func TestCoverageRadius(t *testing.T) {
	plain := newTestCatalog(t, Settings{})
	assert.Equal(t, int32(4), plain.CoverageRadius(1).Value)

	modified := newTestCatalog(t, Settings{ModifiedCatchment: true})
	assert.Equal(t, int32(5), modified.CoverageRadius(1).Value)
}

func TestPrice(t *testing.T) {
	c := newTestCatalog(t, Settings{BaseAirportPrice: 7000})

	p := c.Price(typeRegional)
	require.True(t, p.OK())
	assert.Equal(t, core.Money(7000*4*3), p.Value)

	p = c.Price(typeRetired)
	assert.Equal(t, core.Money(-1), p.Value)
	assert.Equal(t, core.ReasonTypeUnavailable, p.Reason)

	// Known but not buildable yet.
	p = c.Price(typeFuture)
	assert.Equal(t, core.Money(-1), p.Value)
	assert.Equal(t, core.ReasonNotBuildable, p.Reason)
}

func TestPrice_NoLossAtLimits(t *testing.T) {
	specs := []Spec{{
		Type: 0, Name: "huge", Enabled: true, Width: 64, Height: 64,
		Layouts: []LayoutSpec{{Rotation: 0}},
	}}
	c, err := New(specs, Settings{BaseAirportPrice: 1_000_000})
	require.NoError(t, err)

	assert.Equal(t, core.Money(1_000_000*64*64), c.Price(0).Value)
}

func TestCanPlaneTypeLand(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.True(t, c.CanPlaneTypeLand(typeRegional, core.PlaneSmall).Value)
	assert.True(t, c.CanPlaneTypeLand(typeRegional, core.PlaneBig).Value)
	assert.True(t, c.CanPlaneTypeLand(typeRegional, core.PlaneHelicopter).Value)
	assert.True(t, c.CanPlaneTypeLand(typeHeliport, core.PlaneHelicopter).Value)

	r := c.CanPlaneTypeLand(typeHeliport, core.PlaneBig)
	assert.False(t, r.Value)
	assert.True(t, r.OK())

	r = c.CanPlaneTypeLand(typeRegional, core.PlaneType(2))
	assert.False(t, r.Value)
	assert.Equal(t, core.ReasonInvalidPlaneType, r.Reason)

	r = c.CanPlaneTypeLand(typeRetired, core.PlaneHelicopter)
	assert.False(t, r.Value)
	assert.Equal(t, core.ReasonTypeUnavailable, r.Reason)
}

func TestIsLandingExtraDangerous(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.True(t, c.IsLandingExtraDangerous(typeRegional, core.PlaneBig).Value)
	assert.False(t, c.IsLandingExtraDangerous(typeRegional, core.PlaneSmall).Value)
	assert.False(t, c.IsLandingExtraDangerous(1, core.PlaneBig).Value)
}

func TestIsLandingExtraDangerous_CannotLand(t *testing.T) {
	specs := []Spec{{
		Type: 0, Name: "short helipad", Enabled: true, Width: 2, Height: 2,
		Layouts:     []LayoutSpec{{Rotation: 0}},
		Helicopters: true, ShortStrip: true,
	}}
	c, err := New(specs, Settings{})
	require.NoError(t, err)

	land := c.CanPlaneTypeLand(0, core.PlaneBig)
	assert.False(t, land.Value)

	r := c.IsLandingExtraDangerous(0, core.PlaneBig)
	assert.False(t, r.Value)
	assert.Equal(t, core.ReasonCannotLand, r.Reason)
}

func TestViews(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	assert.Equal(t, []core.AirportView{0, 1, 2, 3}, c.Views(typeRegional))
	assert.Equal(t, []core.AirportView{0}, c.Views(typeHeliport))
	assert.Nil(t, c.Views(typeRetired))
}

func TestSpec_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t, Settings{})

	s, ok := c.Spec(typeRegional)
	require.True(t, ok)
	s.Layouts[0].Hangars[0].X = 99
	s.Width = 1

	again, _ := c.Spec(typeRegional)
	assert.Equal(t, 2, again.Layouts[0].Hangars[0].X)
	assert.Equal(t, uint32(4), again.Width)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
	}{
		{"duplicate", []Spec{
			{Type: 1, Enabled: true, Width: 1, Height: 1, Layouts: []LayoutSpec{{}}},
			{Type: 1, Enabled: true, Width: 1, Height: 1, Layouts: []LayoutSpec{{}}},
		}},
		{"zero size", []Spec{{Type: 1, Width: 0, Height: 1, Layouts: []LayoutSpec{{}}}}},
		{"no layouts", []Spec{{Type: 1, Width: 1, Height: 1}}},
		{"hangar outside", []Spec{{Type: 1, Width: 2, Height: 2, Layouts: []LayoutSpec{{Hangars: []Offset{{X: 2, Y: 0}}}}}}},
		{"bad rotation", []Spec{{Type: 1, Width: 2, Height: 2, Layouts: []LayoutSpec{{Rotation: 4}}}}},
		{"out of range", []Spec{{Type: 200, Width: 1, Height: 1, Layouts: []LayoutSpec{{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.specs, Settings{})
			assert.Error(t, err)
		})
	}
}
