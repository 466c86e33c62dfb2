package sfo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/parseerr"
)

// ParseFile reads and parses the report at path. Errors carry the path.
func ParseFile(ctx context.Context, path string, opts Options) (*Report, error) {
	f, err := parseerr.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep, err := Parse(ctx, f, opts)
	if err != nil {
		return nil, parseerr.WithSource(err, path)
	}
	return rep, nil
}

// ParseString parses an in-memory report.
func ParseString(ctx context.Context, text string, opts Options) (*Report, error) {
	return Parse(ctx, strings.NewReader(text), opts)
}

// Parse segments the report, interprets each group in file order and then
// applies the cross-group derivations. The first interpreter error aborts
// the parse.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	text := string(data)

	mode := opts.Mode
	if mode == ModeAuto {
		mode = DetectMode(text)
	}
	groups, err := Segment(text, mode)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Segmented report.", "mode", mode, "groups", len(groups))

	rep := &Report{
		Mode:   mode,
		Groups: groups,
		Other:  make(map[string]*RawGroup),
	}
	for _, g := range groups {
		sec, err := Interpret(g, opts)
		if err != nil {
			return nil, err
		}
		switch s := sec.(type) {
		case *Summary:
			rep.Summary = s
		case *WallSegment:
			rep.WallSegments = append(rep.WallSegments, s)
		case *Header:
			rep.Header = s
		case *BeamEnergy:
			rep.BeamEnergy = s
		case *RawGroup:
			if _, dup := rep.Other[s.Label]; dup {
				logger.Debug("Replacing earlier group with the same label.", "label", s.Label, "line", g.Line)
			} else {
				logger.Debug("No interpreter for group, keeping raw lines.", "label", s.Label, "line", g.Line)
			}
			rep.Other[s.Label] = s
		}
	}

	deriveKineticEnergy(rep)
	return rep, nil
}

// deriveKineticEnergy replaces the summary kinetic energy with V0 in MeV.
func deriveKineticEnergy(rep *Report) {
	if rep.Summary == nil || rep.BeamEnergy == nil {
		return
	}
	rep.Summary.Set("kinetic_energy", Quantity{Value: rep.BeamEnergy.Value / 1e6, Unit: "MeV"})
}
