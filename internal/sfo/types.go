package sfo

import (
	"fmt"
	"strconv"
)

// Group is one labelled block of report lines as found by Segment.
type Group struct {
	Label string
	// Line is the 1-based line number of the label in the source text.
	Line int
	// Lines is the group body; LineNumbers holds the source line of each entry.
	Lines       []string
	LineNumbers []int
}

// lineNo returns the source line of body line i, or 0 when unknown.
func (g Group) lineNo(i int) int {
	if i < len(g.LineNumbers) {
		return g.LineNumbers[i]
	}
	return 0
}

// Kind identifies the interpreter a group is routed to.
type Kind int

const (
	KindRaw Kind = iota
	KindSummary
	KindWallSegment
	KindBeamEnergy
	KindHeader
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindSummary:
		return "summary"
	case KindWallSegment:
		return "wall_segment"
	case KindBeamEnergy:
		return "beam_energy"
	case KindHeader:
		return "header"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Section is the decoded form of one group. It is implemented only by
// *Summary, *WallSegment, *Header, *BeamEnergy and *RawGroup.
type Section interface {
	Kind() Kind
	section()
}

// Quantity is a number with the unit string printed next to it.
type Quantity struct {
	Value float64
	Unit  string
}

// Summary holds the named quantities of the "All calculated values" block.
type Summary struct {
	Quantities map[string]Quantity
	// Keys lists quantity names in the order they were first seen.
	Keys []string
}

func newSummary() *Summary {
	return &Summary{Quantities: make(map[string]Quantity)}
}

// Set stores a quantity, replacing any earlier value under the same key.
func (s *Summary) Set(key string, q Quantity) {
	if _, exists := s.Quantities[key]; !exists {
		s.Keys = append(s.Keys, key)
	}
	s.Quantities[key] = q
}

// Get returns a quantity by name.
func (s *Summary) Get(key string) (Quantity, bool) {
	q, ok := s.Quantities[key]
	return q, ok
}

func (*Summary) Kind() Kind { return KindSummary }
func (*Summary) section()   {}

// WallTable is one tabulated data block of a wall segment. Every column of
// Values has the same length.
type WallTable struct {
	Columns []string
	Units   map[string]string
	Values  map[string][]float64
}

// Len returns the number of rows.
func (t *WallTable) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Values[t.Columns[0]])
}

// WallSegment is the "Power and fields on wall segment" block.
type WallSegment struct {
	SegmentNumber int
	KBeg, LBeg    int
	KEnd, LEnd    int
	// Info holds the key=value lines of the group.
	Info   map[string]string
	Tables []*WallTable
}

// Table returns the first data table, or nil when there is none.
func (w *WallSegment) Table() *WallTable {
	if len(w.Tables) == 0 {
		return nil
	}
	return w.Tables[0]
}

func (*WallSegment) Kind() Kind { return KindWallSegment }
func (*WallSegment) section()   {}

// Variable is one row of the header's variable table.
type Variable struct {
	Code        string
	Value       float64
	IsInt       bool
	Description string
	// Automesh marks values set by the automesh pre-pass ("A" flag).
	Automesh bool
}

// String renders the value the way it was written: integers without a
// fractional part.
func (v *Variable) String() string {
	if v.IsInt {
		return strconv.FormatInt(int64(v.Value), 10)
	}
	return strconv.FormatFloat(v.Value, 'g', -1, 64)
}

// Header is the preamble of the report.
type Header struct {
	// Comments holds the free-form lines before the variable table, newline-joined.
	Comments  string
	Variables map[string]*Variable
	// Codes lists variable codes in file order.
	Codes []string
}

// Float returns the value of a header variable.
func (h *Header) Float(code string) (float64, bool) {
	v, ok := h.Variables[code]
	if !ok {
		return 0, false
	}
	return v.Value, true
}

func (*Header) Kind() Kind { return KindHeader }
func (*Header) section()   {}

// BeamEnergy is the V0 value of the ASCALE normalization block, in the unit
// printed by the report (eV).
type BeamEnergy struct {
	Value float64
	Unit  string
}

func (*BeamEnergy) Kind() Kind { return KindBeamEnergy }
func (*BeamEnergy) section()   {}

// RawGroup keeps a group that has no dedicated interpreter.
type RawGroup struct {
	Label string
	Lines []string
}

func (*RawGroup) Kind() Kind { return KindRaw }
func (*RawGroup) section()   {}

// Report is a fully decoded SFO file.
type Report struct {
	Mode SeparatorMode
	// Groups are the raw groups in file order.
	Groups       []Group
	WallSegments []*WallSegment
	// Summary, Header and BeamEnergy keep the last group of their kind.
	Summary    *Summary
	Header     *Header
	BeamEnergy *BeamEnergy
	// Other maps labels without an interpreter to their lines; a repeated
	// label replaces the earlier entry.
	Other map[string]*RawGroup
}

// Options tunes report parsing.
type Options struct {
	Mode SeparatorMode
	// AllowMultipleTables accepts more than one data table per wall segment.
	AllowMultipleTables bool
}
