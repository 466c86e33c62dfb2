package hcl_adapter

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// decodeMap decodes a cty map or object into a Go map keyed by string.
// map[string]any takes the ctyToNative fast path.
func (c *Converter) decodeMap(ctx context.Context, val cty.Value, goPtr reflect.Value) error {
	logger := ctxlog.FromContext(ctx).With("go_type", goPtr.Type().String(), "cty_type", val.Type().FriendlyName())
	logger.Debug("Decoding into Go map.")

	ty := val.Type()
	if !ty.IsMapType() && !ty.IsObjectType() {
		return fmt.Errorf("type mismatch: cannot decode %s into Go map %s", ty.FriendlyName(), goPtr.Type())
	}
	if goPtr.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("unsupported map key type %s", goPtr.Type().Key())
	}

	if goPtr.Type() == reflect.TypeOf((map[string]any)(nil)) {
		native, err := ctyToNative(val)
		if err != nil {
			return err
		}
		if native != nil {
			goPtr.Set(reflect.ValueOf(native))
		}
		return nil
	}

	out := reflect.MakeMap(goPtr.Type())
	it := val.ElementIterator()
	for it.Next() {
		key, elem := it.Element()
		ptr := reflect.New(goPtr.Type().Elem())
		if err := c.decode(ctx, elem, ptr.Interface()); err != nil {
			return fmt.Errorf("failed to decode map element '%s': %w", key.AsString(), err)
		}
		out.SetMapIndex(reflect.ValueOf(key.AsString()).Convert(goPtr.Type().Key()), ptr.Elem())
	}
	goPtr.Set(out)
	return nil
}
