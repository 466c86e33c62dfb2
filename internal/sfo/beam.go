package sfo

import (
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

// parseBeamEnergy takes the value of the last "V0 = value unit" line.
func parseBeamEnergy(g Group) (*BeamEnergy, error) {
	var be *BeamEnergy
	for i, raw := range g.Lines {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "V0") {
			continue
		}
		eq := strings.LastIndex(line, "=")
		tokens := strings.Fields(line[eq+1:])
		if eq < 0 || len(tokens) < 2 {
			return nil, parseerr.Errorf(g.lineNo(i), line, "expected 'V0 = value unit'")
		}
		v, err := parseNumber(tokens[0], line)
		if err != nil {
			err.(*parseerr.FormatError).Line = g.lineNo(i)
			return nil, err
		}
		be = &BeamEnergy{Value: v, Unit: tokens[1]}
	}
	if be == nil {
		return nil, parseerr.Errorf(g.Line, g.Label, "beam energy block has no V0 line")
	}
	return be, nil
}
