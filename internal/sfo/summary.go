package sfo

import (
	"strconv"
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

type summaryEntry struct {
	key string
	q   Quantity
}

type summaryLineParser struct {
	prefix string
	parse  func(line string) ([]summaryEntry, error)
}

// summaryLineParsers recognize the fixed line shapes by their leading text.
// Lines matching none of them go through parseSimpleSummaryLine.
var summaryLineParsers = []summaryLineParser{
	// Field normalization (NORM = 0):     EZERO =    1.00000 MV/m
	{prefix: "Field normalization", parse: parseFieldNormalization},
	// for the integration path from point Z1,R1 =     50.50000 cm,   0.00000 cm
	{prefix: "for the integration path", parse: integrationPoint("integration_Z1", "integration_R1")},
	// to ending point                     Z2,R2 =     50.51000 cm,   0.00000 cm
	{prefix: "to ending point", parse: integrationPoint("integration_Z2", "integration_R2")},
	// Beta = 0.9999  Kinetic energy = 1.000E+04 MeV
	{prefix: "Beta ", parse: valuePair("beta", "", "kinetic_energy", "MeV")},
	// Q    =  0.334933E+10      Shunt impedance =  2001715.397 MOhm/m
	{prefix: "Q ", parse: valuePair("Q", "", "Shunt impedance", "MOhm/m")},
	// Rs*Q =    81.364 Ohm                Z*T*T =  1956056.397 MOhm/m
	{prefix: "Rs*Q ", parse: valuePair("Rs*Q", "Ohm", "Z*T*T", "MOhm/m")},
	// r/Q  =   134.323 Ohm  Wake loss parameter =      0.04044 V/pC
	{prefix: "r/Q ", parse: valuePair("r/Q", "Ohm", "Wake loss parameter", "V/pC")},
	// Average magnetic field on the outer wall  =      16678.8 A/m, 0.337887 mW/cm^2
	{prefix: "Average magnetic ", parse: parseAverageH},
	// Maximum H (at Z,R = 25.1487,18.4727)      =       41189. A/m, 2.06066 mW/cm^2
	{prefix: "Maximum H ", parse: peakField("MaxH", "A/m")},
	// Maximum E (at Z,R = 49.9969,0.624269)     =      41.1564 MV/m, 2.84161 Kilp.
	{prefix: "Maximum E ", parse: peakField("MaxE", "MV/m")},
}

// parseSummary reads lines up to the first blank line after content.
func parseSummary(g Group) (*Summary, error) {
	s := newSummary()
	started := false
	for i, raw := range g.Lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if started {
				break
			}
			continue
		}
		started = true

		entries, err := parseSummaryLine(line)
		if err != nil {
			if fe, ok := err.(*parseerr.FormatError); ok {
				fe.Line = g.lineNo(i)
			}
			return nil, err
		}
		for _, e := range entries {
			s.Set(e.key, e.q)
		}
	}
	return s, nil
}

func parseSummaryLine(line string) ([]summaryEntry, error) {
	for _, p := range summaryLineParsers {
		if strings.HasPrefix(line, p.prefix) {
			return p.parse(line)
		}
	}
	return parseSimpleSummaryLine(line)
}

// parseSimpleSummaryLine handles "key = value [unit]". Lines without "=" are
// prose and yield nothing.
func parseSimpleSummaryLine(line string) ([]summaryEntry, error) {
	parts := strings.Split(line, "=")
	if len(parts) == 1 {
		return nil, nil
	}
	key := strings.TrimSpace(parts[0])
	tokens := strings.Fields(parts[len(parts)-1])
	if key == "" || len(tokens) == 0 {
		return nil, parseerr.Errorf(0, line, "expected 'key = value [unit]'")
	}
	v, err := parseNumber(tokens[0], line)
	if err != nil {
		return nil, err
	}
	unit := ""
	if len(tokens) > 1 {
		unit = tokens[1]
	}
	return []summaryEntry{{key: key, q: Quantity{Value: v, Unit: unit}}}, nil
}

func parseFieldNormalization(line string) ([]summaryEntry, error) {
	parts := strings.Split(line, "=")
	tokens := strings.Fields(parts[len(parts)-1])
	if len(parts) < 2 || len(tokens) == 0 {
		return nil, parseerr.Errorf(0, line, "field normalization line has no value")
	}
	v, err := parseNumber(tokens[0], line)
	if err != nil {
		return nil, err
	}
	unit := ""
	if len(tokens) > 1 {
		unit = tokens[1]
	}
	return []summaryEntry{{key: "Enorm", q: Quantity{Value: v, Unit: unit}}}, nil
}

func integrationPoint(zKey, rKey string) func(string) ([]summaryEntry, error) {
	return func(line string) ([]summaryEntry, error) {
		parts := strings.Split(line, "=")
		coords := strings.Split(parts[len(parts)-1], ",")
		if len(parts) < 2 || len(coords) < 2 {
			return nil, parseerr.Errorf(0, line, "integration point needs 'Z, R' after '='")
		}
		z, err := parseNumber(firstToken(coords[0]), line)
		if err != nil {
			return nil, err
		}
		r, err := parseNumber(firstToken(coords[1]), line)
		if err != nil {
			return nil, err
		}
		return []summaryEntry{
			{key: zKey, q: Quantity{Value: z, Unit: "cm"}},
			{key: rKey, q: Quantity{Value: r, Unit: "cm"}},
		}, nil
	}
}

// valuePair handles lines carrying two "name = value" pairs: the first value
// follows the first "=", the second follows the last one.
func valuePair(key1, unit1, key2, unit2 string) func(string) ([]summaryEntry, error) {
	return func(line string) ([]summaryEntry, error) {
		parts := strings.Split(line, "=")
		if len(parts) < 3 {
			return nil, parseerr.Errorf(0, line, "expected two '=' separated values")
		}
		v1, err := parseNumber(firstToken(parts[1]), line)
		if err != nil {
			return nil, err
		}
		v2, err := parseNumber(firstToken(parts[len(parts)-1]), line)
		if err != nil {
			return nil, err
		}
		return []summaryEntry{
			{key: key1, q: Quantity{Value: v1, Unit: unit1}},
			{key: key2, q: Quantity{Value: v2, Unit: unit2}},
		}, nil
	}
}

func parseAverageH(line string) ([]summaryEntry, error) {
	parts := strings.Split(line, "=")
	if len(parts) < 2 {
		return nil, parseerr.Errorf(0, line, "average field line has no value")
	}
	head, _, _ := strings.Cut(parts[len(parts)-1], ",")
	v, err := parseNumber(firstToken(head), line)
	if err != nil {
		return nil, err
	}
	return []summaryEntry{{key: "AvgH", q: Quantity{Value: v, Unit: "A/m"}}}, nil
}

// peakField handles "Maximum X (at Z,R = z,r) = value unit, ...".
func peakField(key, unit string) func(string) ([]summaryEntry, error) {
	return func(line string) ([]summaryEntry, error) {
		parts := strings.Split(line, "=")
		if len(parts) < 3 {
			return nil, parseerr.Errorf(0, line, "peak field line needs a location and a value")
		}
		zs, rs, ok := strings.Cut(parts[1], ",")
		if !ok {
			return nil, parseerr.Errorf(0, line, "peak field location needs 'Z,R'")
		}
		rs, _, _ = strings.Cut(rs, ")")
		z, err := parseNumber(strings.TrimSpace(zs), line)
		if err != nil {
			return nil, err
		}
		r, err := parseNumber(strings.TrimSpace(rs), line)
		if err != nil {
			return nil, err
		}
		head, _, _ := strings.Cut(parts[len(parts)-1], ",")
		v, err := parseNumber(firstToken(head), line)
		if err != nil {
			return nil, err
		}
		return []summaryEntry{
			{key: key + "_z", q: Quantity{Value: z, Unit: "cm"}},
			{key: key + "_r", q: Quantity{Value: r, Unit: "cm"}},
			{key: key, q: Quantity{Value: v, Unit: unit}},
		}, nil
	}
}

func firstToken(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

func parseNumber(tok, line string) (float64, error) {
	if tok == "" {
		return 0, parseerr.Errorf(0, line, "missing number")
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &parseerr.FormatError{Text: line, Msg: "invalid number " + strconv.Quote(tok), Err: err}
	}
	return v, nil
}
