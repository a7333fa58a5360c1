package catalog

import (
	"fmt"

	"github.com/skyhaul/airportscript/pkg/core"
)

// Flags describe what the airport's movement graph supports.
type Flags uint8

const (
	FlagAirplanes Flags = 1 << iota
	FlagHelicopters
	FlagShortStrip

	FlagAll = FlagAirplanes | FlagHelicopters
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// unmodifiedCatchment is the coverage radius of every airport when the
// modified catchment rule is off.
const unmodifiedCatchment = 4

// Offset is a tile offset from the top-left corner of a layout.
type Offset struct {
	X int `yaml:"x" toml:"x" json:"x"`
	Y int `yaml:"y" toml:"y" json:"y"`
}

// LayoutSpec is one view of an airport type.
type LayoutSpec struct {
	Rotation int      `yaml:"rotation" toml:"rotation" json:"rotation"`
	Hangars  []Offset `yaml:"hangars" toml:"hangars" json:"hangars"`
}

// Spec is the static description of one airport type.
type Spec struct {
	Type        core.AirportType `yaml:"type" toml:"type" json:"type"`
	Name        string           `yaml:"name" toml:"name" json:"name"`
	Enabled     bool             `yaml:"enabled" toml:"enabled" json:"enabled"`
	Width       uint32           `yaml:"width" toml:"width" json:"width"`
	Height      uint32           `yaml:"height" toml:"height" json:"height"`
	Layouts     []LayoutSpec     `yaml:"layouts" toml:"layouts" json:"layouts"`
	Helipads    int32            `yaml:"helipads" toml:"helipads" json:"helipads"`
	Terminals   int32            `yaml:"terminals" toml:"terminals" json:"terminals"`
	Airplanes   bool             `yaml:"airplanes" toml:"airplanes" json:"airplanes"`
	Helicopters bool             `yaml:"helicopters" toml:"helicopters" json:"helicopters"`
	ShortStrip  bool             `yaml:"shortStrip" toml:"shortStrip" json:"shortStrip"`
	Catchment   int32            `yaml:"catchment" toml:"catchment" json:"catchment"`
	NoiseLevel  uint32           `yaml:"noiseLevel" toml:"noiseLevel" json:"noiseLevel"`
	MinYear     int              `yaml:"minYear" toml:"minYear" json:"minYear"`
	MaxYear     int              `yaml:"maxYear" toml:"maxYear" json:"maxYear"`
}

// Flags returns the movement graph capabilities.
func (s Spec) Flags() Flags {
	var f Flags
	if s.Airplanes {
		f |= FlagAirplanes
	}
	if s.Helicopters {
		f |= FlagHelicopters
	}
	if s.ShortStrip {
		f |= FlagShortStrip
	}
	return f
}

// NumHangars is the hangar count of the type, taken from its first layout.
func (s Spec) NumHangars() int32 {
	if len(s.Layouts) == 0 {
		return 0
	}
	return int32(len(s.Layouts[0].Hangars))
}

// Size returns the footprint of the given layout; odd rotations swap sides.
func (s Spec) Size(v core.AirportView) (w, h uint32) {
	if int(v) < len(s.Layouts) && s.Layouts[v].Rotation%2 == 1 {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

func (s Spec) validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("airport type %d (%s): zero size", s.Type, s.Name)
	}
	if len(s.Layouts) == 0 {
		return fmt.Errorf("airport type %d (%s): no layouts", s.Type, s.Name)
	}
	if len(s.Layouts) >= int(core.AirportViewInvalid) {
		return fmt.Errorf("airport type %d (%s): too many layouts", s.Type, s.Name)
	}
	for i, l := range s.Layouts {
		if l.Rotation < 0 || l.Rotation > 3 {
			return fmt.Errorf("airport type %d (%s): layout %d: rotation %d out of range", s.Type, s.Name, i, l.Rotation)
		}
		w, h := s.Size(core.AirportView(i))
		for _, o := range l.Hangars {
			if o.X < 0 || o.Y < 0 || o.X >= int(w) || o.Y >= int(h) {
				return fmt.Errorf("airport type %d (%s): layout %d: hangar %+v outside footprint", s.Type, s.Name, i, o)
			}
		}
	}
	if s.MaxYear != 0 && s.MaxYear < s.MinYear {
		return fmt.Errorf("airport type %d (%s): maxYear before minYear", s.Type, s.Name)
	}
	return nil
}
