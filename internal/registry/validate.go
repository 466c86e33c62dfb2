package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
)

// argTag must match the tag the configuration converter decodes with.
const argTag = "fishgrid"

// ValidateModel checks every sink block in the model against the registry:
// the type must be registered, every argument must map to an input field
// and every required input field must be given.
func (r *Registry) ValidateModel(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	check := func(kind, job string, sinks []*config.Sink) {
		for _, s := range sinks {
			where := fmt.Sprintf("%s '%s', sink '%s'", kind, job, s.Type)
			handler, ok := r.SinkRegistry[s.Type]
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: unknown sink type (registered: %s)", where, strings.Join(r.Names(), ", ")))
				continue
			}
			fields := inputFields(reflect.TypeOf(handler.NewInput()).Elem())
			for name := range s.Arguments {
				if _, ok := fields[name]; !ok {
					errs = append(errs, fmt.Sprintf("%s: unsupported argument '%s'", where, name))
				}
			}
			for name, optional := range fields {
				if _, given := s.Arguments[name]; !given && !optional {
					errs = append(errs, fmt.Sprintf("%s: missing required argument '%s'", where, name))
				}
			}
			logger.Debug("Sink block validated.", "kind", kind, "job", job, "sink", s.Type)
		}
	}

	for _, job := range model.Reports {
		check("report", job.Name, job.Sinks)
	}
	for _, job := range model.Grids {
		check("grid", job.Name, job.Sinks)
	}

	if len(errs) > 0 {
		return errors.New("sink validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// inputFields maps each tagged argument name to whether it is optional.
func inputFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get(argTag), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = opts == "optional"
	}
	return fields
}
