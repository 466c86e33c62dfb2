// Package encode turns decoded reports and grids into cty values, the common
// currency handed to sinks, and renders those values as JSON.
package encode

import (
	"fmt"
	"math"

	"github.com/vk/fishgrid/internal/sfo"
	"github.com/vk/fishgrid/internal/t7"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type quantityDoc struct {
	Value float64 `cty:"value"`
	Unit  string  `cty:"unit"`
}

type variableDoc struct {
	Value       float64 `cty:"value"`
	IsInt       bool    `cty:"is_int"`
	Description string  `cty:"description"`
	Automesh    bool    `cty:"automesh"`
}

type headerDoc struct {
	Comments  string                 `cty:"comments"`
	Codes     []string               `cty:"codes"`
	Variables map[string]variableDoc `cty:"variables"`
}

type tableDoc struct {
	Columns []string             `cty:"columns"`
	Units   map[string]string    `cty:"units"`
	Values  map[string][]float64 `cty:"values"`
}

type wallDoc struct {
	SegmentNumber int               `cty:"segment_number"`
	KBeg          int               `cty:"k_beg"`
	LBeg          int               `cty:"l_beg"`
	KEnd          int               `cty:"k_end"`
	LEnd          int               `cty:"l_end"`
	Info          map[string]string `cty:"info"`
	Tables        []tableDoc        `cty:"tables"`
}

type reportDoc struct {
	Mode         string                 `cty:"mode"`
	Header       *headerDoc             `cty:"header"`
	Summary      map[string]quantityDoc `cty:"summary"`
	SummaryKeys  []string               `cty:"summary_keys"`
	WallSegments []wallDoc              `cty:"wall_segments"`
	BeamEnergy   *quantityDoc           `cty:"beam_energy"`
	Other        map[string][]string    `cty:"other"`
}

type axisDoc struct {
	Min   float64 `cty:"min"`
	Max   float64 `cty:"max"`
	Count int     `cty:"count"`
}

type gridDoc struct {
	Variant   string                 `cty:"variant"`
	Channels  []string               `cty:"channels"`
	R         axisDoc                `cty:"r"`
	Z         axisDoc                `cty:"z"`
	Frequency *float64               `cty:"frequency"`
	Fields    map[string][][]float64 `cty:"fields"`
}

// Report encodes rep as a cty object. Absent sections are null.
func Report(rep *sfo.Report) (cty.Value, error) {
	if rep == nil {
		return cty.NilVal, fmt.Errorf("nil report")
	}
	doc := reportDoc{
		Mode:         rep.Mode.String(),
		WallSegments: make([]wallDoc, 0, len(rep.WallSegments)),
		Other:        make(map[string][]string, len(rep.Other)),
	}
	var chk finiteCheck

	if h := rep.Header; h != nil {
		hd := &headerDoc{
			Comments:  h.Comments,
			Codes:     append([]string{}, h.Codes...),
			Variables: make(map[string]variableDoc, len(h.Variables)),
		}
		for code, v := range h.Variables {
			chk.check("header."+code, v.Value)
			hd.Variables[code] = variableDoc{Value: v.Value, IsInt: v.IsInt, Description: v.Description, Automesh: v.Automesh}
		}
		doc.Header = hd
	}

	if s := rep.Summary; s != nil {
		doc.Summary = make(map[string]quantityDoc, len(s.Quantities))
		doc.SummaryKeys = append([]string{}, s.Keys...)
		for k, q := range s.Quantities {
			chk.check("summary."+k, q.Value)
			doc.Summary[k] = quantityDoc(q)
		}
	}

	for i, ws := range rep.WallSegments {
		wd := wallDoc{
			SegmentNumber: ws.SegmentNumber,
			KBeg:          ws.KBeg,
			LBeg:          ws.LBeg,
			KEnd:          ws.KEnd,
			LEnd:          ws.LEnd,
			Info:          make(map[string]string, len(ws.Info)),
			Tables:        make([]tableDoc, 0, len(ws.Tables)),
		}
		for k, v := range ws.Info {
			wd.Info[k] = v
		}
		for _, tbl := range ws.Tables {
			td := tableDoc{
				Columns: append([]string{}, tbl.Columns...),
				Units:   make(map[string]string, len(tbl.Units)),
				Values:  make(map[string][]float64, len(tbl.Values)),
			}
			for k, u := range tbl.Units {
				td.Units[k] = u
			}
			for col, vals := range tbl.Values {
				chk.check(fmt.Sprintf("wall_segments[%d].%s", i, col), vals...)
				td.Values[col] = append([]float64{}, vals...)
			}
			wd.Tables = append(wd.Tables, td)
		}
		doc.WallSegments = append(doc.WallSegments, wd)
	}

	if be := rep.BeamEnergy; be != nil {
		chk.check("beam_energy", be.Value)
		doc.BeamEnergy = &quantityDoc{Value: be.Value, Unit: be.Unit}
	}

	for label, raw := range rep.Other {
		doc.Other[label] = append([]string{}, raw.Lines...)
	}

	if chk.err != nil {
		return cty.NilVal, chk.err
	}
	return toCty(doc)
}

// Grid encodes g as a cty object. Fields keep the [ir][iz] layout.
func Grid(g *t7.Grid) (cty.Value, error) {
	if g == nil {
		return cty.NilVal, fmt.Errorf("nil grid")
	}
	doc := gridDoc{
		Variant:  g.Variant.String(),
		Channels: append([]string{}, g.Channels...),
		R:        axisDoc(g.R),
		Z:        axisDoc(g.Z),
		Fields:   make(map[string][][]float64, len(g.Fields)),
	}
	var chk finiteCheck
	if g.HasFrequency {
		chk.check("frequency", g.Frequency)
		f := g.Frequency
		doc.Frequency = &f
	}
	for name, rows := range g.Fields {
		for _, row := range rows {
			chk.check("fields."+name, row...)
		}
		doc.Fields[name] = rows
	}
	if chk.err != nil {
		return cty.NilVal, chk.err
	}
	return toCty(doc)
}

// JSON renders v as plain JSON without type annotations.
func JSON(v cty.Value) ([]byte, error) {
	return ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
}

func toCty(doc any) (cty.Value, error) {
	ty, err := gocty.ImpliedType(doc)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(doc, ty)
}

// finiteCheck records the first NaN or infinite value; cty numbers and JSON
// cannot represent them.
type finiteCheck struct {
	err error
}

func (c *finiteCheck) check(path string, vs ...float64) {
	if c.err != nil {
		return
	}
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.err = fmt.Errorf("%s: non-finite value %v cannot be encoded", path, v)
			return
		}
	}
}
