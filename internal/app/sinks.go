package app

import (
	"context"
	"fmt"

	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// jobVars is exposed to sink blocks as the `job` variable.
type jobVars struct {
	Name string `cty:"name"`
	Kind string `cty:"kind"`
	Path string `cty:"path"`
	Dir  string `cty:"dir"`
}

// deliver hands a finished document to each sink in order. Sink arguments
// may refer to the `job` variable (name, kind, path, dir).
func (a *App) deliver(ctx context.Context, kind, name, source, dir string, val cty.Value, sinks []*config.Sink) error {
	if len(sinks) == 0 {
		ctxlog.FromContext(ctx).Debug("Job has no sinks.")
		return nil
	}
	doc := &registry.Document{Kind: kind, Job: name, Source: source, Dir: dir, Value: val}
	jobVal, err := a.converter.ToCtyValue(jobVars{Name: name, Kind: kind, Path: source, Dir: dir})
	if err != nil {
		return fmt.Errorf("failed to build job variable: %w", err)
	}
	vars := map[string]cty.Value{"job": jobVal}

	for i, s := range sinks {
		logger := ctxlog.FromContext(ctx).With("sink", s.Type, "index", i)
		handler, ok := a.registry.Sink(s.Type)
		if !ok {
			return fmt.Errorf("sink '%s' is not registered", s.Type)
		}
		input := handler.NewInput()
		if err := a.converter.DecodeArguments(ctx, input, s.Arguments, vars); err != nil {
			return fmt.Errorf("sink '%s': %w", s.Type, err)
		}
		logger.Debug("Delivering document to sink.")
		if err := handler.Fn(ctx, doc, input); err != nil {
			return fmt.Errorf("sink '%s': %w", s.Type, err)
		}
	}
	return nil
}
