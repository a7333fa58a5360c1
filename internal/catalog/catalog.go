// Package catalog is the read-only registry of airport types. It is built
// once when a session loads and never written afterwards.
package catalog

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/skyhaul/airportscript/pkg/core"
)

// Settings are the session rules that decide which types can be built and
// what they cost.
type Settings struct {
	// BaseAirportPrice is the build cost of one airport tile.
	BaseAirportPrice core.Money
	// CurrentYear is compared against each type's availability window.
	CurrentYear int
	// NeverExpireAirports keeps types buildable after their MaxYear.
	NeverExpireAirports bool
	// ModifiedCatchment enables per-type coverage radii.
	ModifiedCatchment bool
	// Disabled types stay known but cannot be built this session.
	Disabled []core.AirportType
}

// Catalog answers questions about airport types.
type Catalog struct {
	specs    [core.NumAirportTypes]*Spec
	settings Settings
	disabled map[core.AirportType]bool
}

// New builds a catalog from specs. Specs are copied; later changes to the
// slice do not affect the catalog.
func New(specs []Spec, settings Settings) (*Catalog, error) {
	c := &Catalog{
		settings: settings,
		disabled: make(map[core.AirportType]bool, len(settings.Disabled)),
	}
	for _, t := range settings.Disabled {
		c.disabled[t] = true
	}

	for i := range specs {
		s := specs[i]
		if int(s.Type) >= core.NumAirportTypes {
			return nil, fmt.Errorf("airport type %d out of range", s.Type)
		}
		if c.specs[s.Type] != nil {
			return nil, fmt.Errorf("airport type %d defined twice", s.Type)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		cp := deepcopy.Copy(s).(Spec)
		c.specs[s.Type] = &cp
	}
	return c, nil
}

// Settings returns the session settings the catalog was built with.
func (c *Catalog) Settings() Settings { return c.settings }

func (c *Catalog) get(t core.AirportType) *Spec {
	if int(t) >= core.NumAirportTypes {
		return nil
	}
	return c.specs[t]
}

// IsInformationAvailable reports whether t is a known, enabled type.
// Types that are no longer buildable still have information available.
func (c *Catalog) IsInformationAvailable(t core.AirportType) bool {
	s := c.get(t)
	return s != nil && s.Enabled
}

// IsBuildable reports whether t can be built right now.
// IsBuildable implies IsInformationAvailable.
func (c *Catalog) IsBuildable(t core.AirportType) bool {
	if !c.IsInformationAvailable(t) || c.disabled[t] {
		return false
	}
	s := c.specs[t]
	year := c.settings.CurrentYear
	if s.MinYear != 0 && year < s.MinYear {
		return false
	}
	if s.MaxYear != 0 && year > s.MaxYear && !c.settings.NeverExpireAirports {
		return false
	}
	return true
}

// IsValidPlaneType reports whether pt is a known plane type.
func (c *Catalog) IsValidPlaneType(pt core.PlaneType) bool {
	return core.IsValidPlaneType(pt)
}

// IsValidView reports whether v is a layout of t.
func (c *Catalog) IsValidView(t core.AirportType, v core.AirportView) bool {
	_, ok := c.Layout(t, v)
	return ok
}

// Spec returns a copy of the description of t.
func (c *Catalog) Spec(t core.AirportType) (Spec, bool) {
	if !c.IsInformationAvailable(t) {
		return Spec{}, false
	}
	return deepcopy.Copy(*c.specs[t]).(Spec), true
}

// Types lists every type with information available, in index order.
func (c *Catalog) Types() []core.AirportType {
	var types []core.AirportType
	for i := 0; i < core.NumAirportTypes; i++ {
		if c.IsInformationAvailable(core.AirportType(i)) {
			types = append(types, core.AirportType(i))
		}
	}
	return types
}

// Views lists the layouts of t, or nil when t has no information available.
func (c *Catalog) Views(t core.AirportType) []core.AirportView {
	if !c.IsInformationAvailable(t) {
		return nil
	}
	views := make([]core.AirportView, len(c.specs[t].Layouts))
	for i := range views {
		views[i] = core.AirportView(i)
	}
	return views
}

func (c *Catalog) count(t core.AirportType, f func(*Spec) int32) core.Result[int32] {
	if !c.IsInformationAvailable(t) {
		return core.Fail[int32](-1, core.ReasonTypeUnavailable)
	}
	return core.Ok(f(c.specs[t]))
}

// Width is the footprint width of t in tiles, -1 when unavailable.
func (c *Catalog) Width(t core.AirportType) core.Result[int32] {
	return c.count(t, func(s *Spec) int32 { return int32(s.Width) })
}

// Height is the footprint height of t in tiles, -1 when unavailable.
func (c *Catalog) Height(t core.AirportType) core.Result[int32] {
	return c.count(t, func(s *Spec) int32 { return int32(s.Height) })
}

// CoverageRadius is the catchment radius of t, -1 when unavailable.
func (c *Catalog) CoverageRadius(t core.AirportType) core.Result[int32] {
	return c.count(t, func(s *Spec) int32 {
		if c.settings.ModifiedCatchment {
			return s.Catchment
		}
		return unmodifiedCatchment
	})
}

// NumHangars is the hangar count of type t, -1 when unavailable.
func (c *Catalog) NumHangars(t core.AirportType) core.Result[int32] {
	return c.count(t, (*Spec).NumHangars)
}

// NumHelipads is the helipad count of type t, -1 when unavailable.
func (c *Catalog) NumHelipads(t core.AirportType) core.Result[int32] {
	return c.count(t, func(s *Spec) int32 { return s.Helipads })
}

// NumTerminals is the terminal count of type t, -1 when unavailable.
func (c *Catalog) NumTerminals(t core.AirportType) core.Result[int32] {
	return c.count(t, func(s *Spec) int32 { return s.Terminals })
}

// Price is the cost of building t, -1 unless t is buildable.
func (c *Catalog) Price(t core.AirportType) core.Result[core.Money] {
	if !c.IsInformationAvailable(t) {
		return core.Fail[core.Money](-1, core.ReasonTypeUnavailable)
	}
	if !c.IsBuildable(t) {
		return core.Fail[core.Money](-1, core.ReasonNotBuildable)
	}
	s := c.specs[t]
	return core.Ok(c.settings.BaseAirportPrice * core.Money(s.Width) * core.Money(s.Height))
}

// CanPlaneTypeLand reports whether pt can use airports of type t.
func (c *Catalog) CanPlaneTypeLand(t core.AirportType, pt core.PlaneType) core.Result[bool] {
	if !c.IsInformationAvailable(t) {
		return core.Fail(false, core.ReasonTypeUnavailable)
	}
	if !core.IsValidPlaneType(pt) {
		return core.Fail(false, core.ReasonInvalidPlaneType)
	}

	flags := c.specs[t].Flags()
	switch pt {
	case core.PlaneSmall, core.PlaneBig:
		return core.Ok(flags.Has(FlagAirplanes))
	default:
		return core.Ok(flags.Has(FlagHelicopters))
	}
}

// IsLandingExtraDangerous reports whether pt risks crashing on t. Only big
// planes on short strips are in danger. The answer is false, with
// ReasonCannotLand, when pt cannot land on t at all.
func (c *Catalog) IsLandingExtraDangerous(t core.AirportType, pt core.PlaneType) core.Result[bool] {
	land := c.CanPlaneTypeLand(t, pt)
	if !land.OK() {
		return land
	}
	if !land.Value {
		return core.Fail(false, core.ReasonCannotLand)
	}
	return core.Ok(pt == core.PlaneBig && c.specs[t].Flags().Has(FlagShortStrip))
}
