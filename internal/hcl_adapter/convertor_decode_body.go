package hcl_adapter

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// argTag is the struct tag naming the HCL argument a field is decoded from.
// The ",optional" flag allows the argument to be omitted.
const argTag = "fishgrid"

// DecodeArguments evaluates args and stores them into the tagged fields of
// target, which must be a non-nil pointer to a struct. Arguments that match
// no field are rejected.
func (c *Converter) DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression, vars map[string]cty.Value) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL argument decoding.", "arg_count", len(args))

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	evalCtx := c.evalCtx
	if len(vars) > 0 {
		evalCtx = c.evalCtx.NewChild()
		evalCtx.Variables = vars
	}

	known := make(map[string]struct{})
	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			continue
		}
		name, opts, _ := strings.Cut(fieldDef.Tag.Get(argTag), ",")
		if name == "" || name == "-" {
			continue
		}
		known[name] = struct{}{}

		expr, provided := args[name]
		if !provided {
			if opts == "optional" {
				continue
			}
			return fmt.Errorf("missing required argument %q", name)
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("argument %q: %w", name, diags)
		}
		if err := c.decode(ctx, val, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", name, err)
		}
	}

	var unknown []string
	for name := range args {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unsupported argument(s): %s", strings.Join(unknown, ", "))
	}

	logger.Debug("Finished HCL argument decoding successfully.")
	return nil
}
