package sfo

import (
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

const (
	summaryPrefix     = "All calculated values below refer to the mesh geometry only"
	wallSegmentPrefix = "Power and fields on wall segment"
	fieldsOnSegment   = "Fields on segment"
	beamEnergyPrefix  = "The field normalization factor ASCALE for this problem is based"
)

// classifyRule claims a group when its label starts with one of prefixes or
// equals exact.
type classifyRule struct {
	kind     Kind
	prefixes []string
	exact    string
}

func (r classifyRule) matches(label string) bool {
	if r.exact != "" && label == r.exact {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(label, p) {
			return true
		}
	}
	return false
}

// classifyRules are tried in order; the first match wins.
var classifyRules = []classifyRule{
	{kind: KindSummary, prefixes: []string{summaryPrefix}},
	{kind: KindWallSegment, prefixes: []string{wallSegmentPrefix, fieldsOnSegment}},
	{kind: KindBeamEnergy, prefixes: []string{beamEnergyPrefix}},
	{kind: KindHeader, exact: headerLabel},
}

// Classify returns the interpreter kind for a group label. Labels no rule
// claims are KindRaw.
func Classify(label string) Kind {
	for _, r := range classifyRules {
		if r.matches(label) {
			return r.kind
		}
	}
	return KindRaw
}

// Interpret decodes one group. Structural errors are returned as
// *parseerr.FormatError carrying the group label.
func Interpret(g Group, opts Options) (Section, error) {
	var (
		sec Section
		err error
	)
	switch Classify(g.Label) {
	case KindSummary:
		sec, err = parseSummary(g)
	case KindWallSegment:
		sec, err = parseWallSegment(g, opts.AllowMultipleTables)
	case KindBeamEnergy:
		sec, err = parseBeamEnergy(g)
	case KindHeader:
		sec, err = parseHeader(g)
	default:
		sec = &RawGroup{Label: g.Label, Lines: append([]string(nil), g.Lines...)}
	}
	if err != nil {
		if fe, ok := err.(*parseerr.FormatError); ok && fe.Group == "" {
			fe.Group = g.Label
		}
		return nil, err
	}
	return sec, nil
}
