package t7

import (
	"fmt"
	"slices"
	"strings"
)

// Variant selects the header shape and row order of a T7 file.
type Variant int

const (
	// Oscillating is the Superfish (RF) table: Z axis, frequency, R axis.
	Oscillating Variant = iota + 1
	// Static is the Poisson (electrostatic or magnetostatic) table: R axis, Z axis.
	Static
)

// String returns the canonical config spelling of the variant.
func (v Variant) String() string {
	switch v {
	case Oscillating:
		return "oscillating"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant accepts "oscillating"/"fish" and "static"/"poisson".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oscillating", "fish", "superfish":
		return Oscillating, nil
	case "static", "poisson":
		return Static, nil
	default:
		return 0, fmt.Errorf("unknown T7 variant: '%s'", s)
	}
}

// ChannelType picks the column pair of a static table.
type ChannelType int

const (
	Electric ChannelType = iota + 1
	Magnetic
)

// String returns the canonical config spelling of the channel type.
func (c ChannelType) String() string {
	switch c {
	case Electric:
		return "electric"
	case Magnetic:
		return "magnetic"
	default:
		return fmt.Sprintf("ChannelType(%d)", int(c))
	}
}

// ParseChannelType accepts "electric" and "magnetic".
func ParseChannelType(s string) (ChannelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "electric":
		return Electric, nil
	case "magnetic":
		return Magnetic, nil
	default:
		return 0, fmt.Errorf("unknown channel type: '%s'", s)
	}
}

// ChannelTypeFromXJFACT maps the Poisson header variable XJFACT to the field
// kind SF7 tabulates: zero means an electrostatic problem.
func ChannelTypeFromXJFACT(xjfact float64) ChannelType {
	if xjfact == 0 {
		return Electric
	}
	return Magnetic
}

var (
	oscillatingChannels = []string{"Ez", "Er", "E", "Hphi"}
	electricChannels    = []string{"Er", "Ez"}
	magneticChannels    = []string{"Br", "Bz"}
)

// ChannelsFor returns the column names, in file order, for a variant. The
// channel type is ignored for oscillating tables.
func ChannelsFor(v Variant, ct ChannelType) ([]string, error) {
	var src []string
	switch v {
	case Oscillating:
		src = oscillatingChannels
	case Static:
		switch ct {
		case Electric:
			src = electricChannels
		case Magnetic:
			src = magneticChannels
		default:
			return nil, fmt.Errorf("static T7 tables need a channel type, got %s", ct)
		}
	default:
		return nil, fmt.Errorf("unsupported T7 variant: %s", v)
	}
	return append([]string(nil), src...), nil
}

// Axis is one sampled coordinate range. Count is the number of points, one
// more than the segment count stored in the file.
type Axis struct {
	Min   float64
	Max   float64
	Count int
}

// Segments returns the value written to the file header.
func (a Axis) Segments() int {
	return a.Count - 1
}

// Step returns the spacing between neighbouring points.
func (a Axis) Step() float64 {
	if a.Count < 2 {
		return 0
	}
	return (a.Max - a.Min) / float64(a.Count-1)
}

// Values returns the sampled coordinates.
func (a Axis) Values() []float64 {
	out := make([]float64, a.Count)
	step := a.Step()
	for i := range out {
		out[i] = a.Min + float64(i)*step
	}
	if a.Count > 1 {
		out[a.Count-1] = a.Max
	}
	return out
}

// Grid is a parsed T7 table. Every field is indexed [ir][iz].
type Grid struct {
	Variant Variant
	R       Axis
	Z       Axis

	// Frequency is in MHz and only carried by oscillating tables.
	Frequency    float64
	HasFrequency bool

	// Channels lists the field names in file column order.
	Channels []string
	Fields   map[string][][]float64
}

// Rows returns the number of data rows the grid occupies in a file.
func (g *Grid) Rows() int {
	return g.R.Count * g.Z.Count
}

// Field returns the samples of a single channel.
func (g *Grid) Field(name string) ([][]float64, bool) {
	f, ok := g.Fields[name]
	return f, ok
}

// newFields allocates an nr x nz array per channel.
func newFields(channels []string, nr, nz int) map[string][][]float64 {
	fields := make(map[string][][]float64, len(channels))
	for _, name := range channels {
		backing := make([]float64, nr*nz)
		rows := make([][]float64, nr)
		for ir := range rows {
			rows[ir] = backing[ir*nz : (ir+1)*nz : (ir+1)*nz]
		}
		fields[name] = rows
	}
	return fields
}

// validate checks that g can be written as variant v without losing data.
func (g *Grid) validate(v Variant) error {
	if g == nil {
		return fmt.Errorf("grid is nil")
	}
	if g.R.Count < 1 || g.Z.Count < 1 {
		return fmt.Errorf("grid axes need at least one point (nr=%d, nz=%d)", g.R.Count, g.Z.Count)
	}

	switch v {
	case Oscillating:
		if !g.HasFrequency {
			return fmt.Errorf("oscillating T7 tables need a frequency")
		}
		if !slices.Equal(g.Channels, oscillatingChannels) {
			return fmt.Errorf("oscillating T7 channels must be %v, got %v", oscillatingChannels, g.Channels)
		}
	case Static:
		if g.HasFrequency {
			return fmt.Errorf("static T7 tables carry no frequency")
		}
		if !slices.Equal(g.Channels, electricChannels) && !slices.Equal(g.Channels, magneticChannels) {
			return fmt.Errorf("static T7 channels must be %v or %v, got %v", electricChannels, magneticChannels, g.Channels)
		}
	default:
		return fmt.Errorf("unsupported T7 variant: %s", v)
	}

	for _, name := range g.Channels {
		f, ok := g.Fields[name]
		if !ok {
			return fmt.Errorf("channel '%s' has no data", name)
		}
		if len(f) != g.R.Count {
			return fmt.Errorf("channel '%s' has %d radial rows, expected %d", name, len(f), g.R.Count)
		}
		for ir, row := range f {
			if len(row) != g.Z.Count {
				return fmt.Errorf("channel '%s' row %d has %d samples, expected %d", name, ir, len(row), g.Z.Count)
			}
		}
	}
	return nil
}
