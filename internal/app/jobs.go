package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/sfo"
	"github.com/vk/fishgrid/internal/t7"
	"github.com/vk/fishgrid/internal/toolrun"
)

// xjfactCode is the header variable that tells electric from magnetic
// problems.
const xjfactCode = "XJFACT"

// runTool runs a tool block and, when requested, the SF7 interpolation that
// follows it.
func (a *App) runTool(ctx context.Context, tool *config.Tool) error {
	ctx = ctxlog.With(ctx, "tool", tool.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Running tool.", "args", tool.Args, "workdir", tool.WorkDir, "local", tool.Local)

	if err := os.MkdirAll(tool.WorkDir, 0o755); err != nil {
		return fmt.Errorf("tool '%s': failed to create work directory: %w", tool.Name, err)
	}

	basename := ""
	if tool.Automesh != "" {
		staged, err := toolrun.StageAutomesh(tool.Automesh, tool.WorkDir)
		if err != nil {
			return fmt.Errorf("tool '%s': %w", tool.Name, err)
		}
		basename = toolrun.Basename(staged)
		logger.Debug("Automesh input staged.", "file", staged)
	}

	inv := toolrun.Invocation{
		Name:    tool.Name,
		Args:    tool.Args,
		WorkDir: tool.WorkDir,
		Image:   tool.Image,
		Local:   tool.Local,
		Timeout: tool.Timeout,
	}
	if err := a.invoke(ctx, inv); err != nil {
		return fmt.Errorf("tool '%s': %w", tool.Name, err)
	}

	interp := tool.Interpolation
	if interp == nil {
		return nil
	}
	if interp.Basename != "" {
		basename = interp.Basename
	}
	if basename == "" {
		return fmt.Errorf("tool '%s': interpolation needs a basename or an automesh input", tool.Name)
	}
	in7, err := toolrun.PrepareInterpolation(tool.WorkDir, basename, interp.Request)
	if err != nil {
		return fmt.Errorf("tool '%s': %w", tool.Name, err)
	}
	inv.Name = tool.Name + ".sf7"
	inv.Args = toolrun.InterpolationArgs(basename, in7)
	if err := a.invoke(ctx, inv); err != nil {
		return fmt.Errorf("tool '%s': interpolation: %w", tool.Name, err)
	}
	table, err := toolrun.FindT7(tool.WorkDir)
	if err != nil {
		return fmt.Errorf("tool '%s': %w", tool.Name, err)
	}
	logger.Info("Interpolation table ready.", "file", table)
	return nil
}

func (a *App) invoke(ctx context.Context, inv toolrun.Invocation) error {
	code, err := a.runner.Run(ctx, inv)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("'%s' exited with code %d (see %s)", inv.Args[0], code, toolrun.LogFile)
	}
	return nil
}

// runReport parses a report job and hands it to the job's sinks.
func (a *App) runReport(ctx context.Context, job *config.ReportJob) (*sfo.Report, error) {
	ctx = ctxlog.With(ctx, "report", job.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Parsing report.", "path", job.Path)

	rep, err := sfo.ParseFile(ctx, job.Path, job.Options)
	if err != nil {
		return nil, fmt.Errorf("report '%s': %w", job.Name, err)
	}
	val, err := encode.Report(rep)
	if err != nil {
		return nil, fmt.Errorf("report '%s': %w", job.Name, err)
	}
	logger.Debug("Report parsed.", "groups", len(rep.Groups), "wall_segments", len(rep.WallSegments), "other", len(rep.Other))

	if err := a.deliver(ctx, "report", job.Name, job.Path, job.Dir, val, job.Sinks); err != nil {
		return nil, fmt.Errorf("report '%s': %w", job.Name, err)
	}
	return rep, nil
}

// runGrid loads a T7 table, optionally rewrites it, and hands it to the
// job's sinks.
func (a *App) runGrid(ctx context.Context, job *config.GridJob, reports *reportStore) error {
	ctx = ctxlog.With(ctx, "grid", job.Name)
	logger := ctxlog.FromContext(ctx)

	ct := job.ChannelType
	if job.ChannelTypeFrom != "" {
		rep, ok := reports.get(job.ChannelTypeFrom)
		if !ok {
			return fmt.Errorf("grid '%s': report '%s' was not parsed", job.Name, job.ChannelTypeFrom)
		}
		var err error
		if ct, err = channelTypeOf(rep); err != nil {
			return fmt.Errorf("grid '%s': report '%s': %w", job.Name, job.ChannelTypeFrom, err)
		}
		logger.Debug("Channel type taken from report header.", "report", job.ChannelTypeFrom, "channel_type", ct)
	}
	logger.Info("Reading grid.", "path", job.Path, "variant", job.Variant, "channel_type", ct)

	grid, err := t7.ReadFile(job.Path, job.Variant, ct)
	if err != nil {
		return fmt.Errorf("grid '%s': %w", job.Name, err)
	}
	if rw := job.Rewrite; rw != nil {
		if err := t7.WriteFile(rw.Path, grid, job.Variant, rw.Format); err != nil {
			return fmt.Errorf("grid '%s': rewrite: %w", job.Name, err)
		}
		logger.Info("Grid rewritten.", "path", rw.Path)
	}

	val, err := encode.Grid(grid)
	if err != nil {
		return fmt.Errorf("grid '%s': %w", job.Name, err)
	}
	if err := a.deliver(ctx, "grid", job.Name, job.Path, job.Dir, val, job.Sinks); err != nil {
		return fmt.Errorf("grid '%s': %w", job.Name, err)
	}
	return nil
}

func channelTypeOf(rep *sfo.Report) (t7.ChannelType, error) {
	if rep.Header == nil {
		return 0, errors.New("no header group")
	}
	x, ok := rep.Header.Float(xjfactCode)
	if !ok {
		return 0, fmt.Errorf("header has no numeric %s", xjfactCode)
	}
	return t7.ChannelTypeFromXJFACT(x), nil
}
