package catalog

import "github.com/skyhaul/airportscript/pkg/core"

// Layout is an airport view bound to its type. Layouts can only be obtained
// from Catalog.Layout, so holding one proves the pair was valid for the
// catalog it came from.
type Layout struct {
	typ    core.AirportType
	view   core.AirportView
	width  uint32
	height uint32
	hangar []Offset
	valid  bool
}

// Layout returns the (t, v) pair when v is a view of the type t and t has
// information available.
func (c *Catalog) Layout(t core.AirportType, v core.AirportView) (Layout, bool) {
	if !c.IsInformationAvailable(t) {
		return Layout{}, false
	}
	s := c.specs[t]
	if int(v) >= len(s.Layouts) {
		return Layout{}, false
	}
	w, h := s.Size(v)
	hangars := make([]Offset, len(s.Layouts[v].Hangars))
	copy(hangars, s.Layouts[v].Hangars)
	return Layout{typ: t, view: v, width: w, height: h, hangar: hangars, valid: true}, true
}

// Valid reports whether the layout came from a catalog.
func (l Layout) Valid() bool { return l.valid }

// Type is the airport type the layout belongs to.
func (l Layout) Type() core.AirportType { return l.typ }

// View is the rotation index of this layout within its type.
func (l Layout) View() core.AirportView { return l.view }

// Size is the footprint of this view; rotated views swap width and height.
func (l Layout) Size() (w, h uint32) { return l.width, l.height }

// Hangars returns the hangar offsets of this view.
func (l Layout) Hangars() []Offset {
	out := make([]Offset, len(l.hangar))
	copy(out, l.hangar)
	return out
}
