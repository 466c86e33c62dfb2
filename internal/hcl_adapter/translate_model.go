// This file translates decoded HCL blocks into the format-agnostic job model.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/sfo"
	"github.com/vk/fishgrid/internal/t7"
	"github.com/zclconf/go-cty/cty"
)

// SF7 request defaults for omitted interpolation bounds.
const (
	defaultZMin = -1000.0
	defaultZMax = 1000.0
	defaultNZ   = 100
	defaultNR   = 1
)

func (l *Loader) translateTool(ctx context.Context, b *ToolBlock, dir string) (*config.Tool, error) {
	logger := ctxlog.FromContext(ctx).With("tool", b.Name)
	logger.Debug("Translating HCL tool block.")

	if len(b.Args) == 0 {
		return nil, fmt.Errorf("tool %q: args must name a program", b.Name)
	}
	tool := &config.Tool{
		Name:     b.Name,
		Args:     b.Args,
		WorkDir:  resolvePath(dir, b.WorkDir),
		Image:    b.Image,
		Local:    b.Local,
		Automesh: resolvePath(dir, b.Automesh),
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("tool %q: invalid timeout: %w", b.Name, err)
		}
		tool.Timeout = d
	}

	if in := b.Interpolation; in != nil {
		problem, err := t7.ParseVariant(in.Problem)
		if err != nil {
			return nil, fmt.Errorf("tool %q: interpolation: %w", b.Name, err)
		}
		req := t7.Request{
			Problem: problem,
			ZMin:    floatOr(in.ZMin, defaultZMin),
			ZMax:    floatOr(in.ZMax, defaultZMax),
			NZ:      intOr(in.NZ, defaultNZ),
			RMin:    floatOr(in.RMin, 0),
			RMax:    floatOr(in.RMax, 0),
			NR:      intOr(in.NR, defaultNR),
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("tool %q: interpolation: %w", b.Name, err)
		}
		tool.Interpolation = &config.Interpolation{Basename: in.Basename, Request: req}
		logger.Debug("Tool requests interpolation.", "problem", problem, "nz", req.NZ, "nr", req.NR)
	}
	return tool, nil
}

func (l *Loader) translateReport(ctx context.Context, b *ReportBlock, dir string) (*config.ReportJob, error) {
	ctxlog.FromContext(ctx).Debug("Translating HCL report block.", "report", b.Name)

	mode, err := sfo.ParseSeparatorMode(b.Separator)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", b.Name, err)
	}
	return &config.ReportJob{
		Name:    b.Name,
		Path:    resolvePath(dir, b.Path),
		Dir:     dir,
		Options: sfo.Options{Mode: mode, AllowMultipleTables: b.AllowMultipleTables},
		Sinks:   translateSinks(b.Sinks),
	}, nil
}

func (l *Loader) translateGrid(ctx context.Context, b *GridBlock, dir string, evalCtx *hcl.EvalContext) (*config.GridJob, error) {
	ctx = ctxlog.With(ctx, "grid", b.Name)
	ctxlog.FromContext(ctx).Debug("Translating HCL grid block.")

	variant, err := t7.ParseVariant(b.Variant)
	if err != nil {
		return nil, fmt.Errorf("grid %q: %w", b.Name, err)
	}
	job := &config.GridJob{
		Name:    b.Name,
		Path:    resolvePath(dir, b.Path),
		Dir:     dir,
		Variant: variant,
		Sinks:   translateSinks(b.Sinks),
	}
	if b.ChannelType != "" {
		if job.ChannelType, err = t7.ParseChannelType(b.ChannelType); err != nil {
			return nil, fmt.Errorf("grid %q: %w", b.Name, err)
		}
	}
	if isExprDefined(ctx, b.ChannelTypeFrom, "channel_type_from") {
		if job.ChannelTypeFrom, err = reportReference(b.ChannelTypeFrom, evalCtx); err != nil {
			return nil, fmt.Errorf("grid %q: channel_type_from: %w", b.Name, err)
		}
	}
	if variant == t7.Static && job.ChannelType == 0 && job.ChannelTypeFrom == "" {
		return nil, fmt.Errorf("grid %q: static tables need channel_type or channel_type_from", b.Name)
	}
	if r := b.Rewrite; r != nil {
		format := r.Format
		if format == "" {
			format = t7.DefaultFormat
		}
		if err := t7.CheckFormat(format); err != nil {
			return nil, fmt.Errorf("grid %q: rewrite: %w", b.Name, err)
		}
		job.Rewrite = &config.Rewrite{Path: resolvePath(dir, r.Path), Format: format}
	}
	return job, nil
}

// reportReference accepts either a `report.<name>` traversal or a string
// naming the report job.
func reportReference(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	if trav, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		if len(trav) != 2 || trav.RootName() != "report" {
			return "", fmt.Errorf("expected report.<name>, got a reference to %q", trav.RootName())
		}
		attr, ok := trav[1].(hcl.TraverseAttr)
		if !ok {
			return "", fmt.Errorf("expected report.<name>")
		}
		return attr.Name, nil
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return "", fmt.Errorf("expected a report name, got %s", val.Type().FriendlyName())
	}
	return val.AsString(), nil
}

func translateSinks(blocks []*SinkBlock) []*config.Sink {
	sinks := make([]*config.Sink, 0, len(blocks))
	for _, b := range blocks {
		sinks = append(sinks, &config.Sink{Type: b.Type, Arguments: extractBodyAttributes(b.Body)})
	}
	return sinks
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
