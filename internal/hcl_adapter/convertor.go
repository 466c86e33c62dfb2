package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fishgrid/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL implementation of config.Converter. It evaluates
// expressions against the eval context of the files it was loaded with.
type Converter struct {
	evalCtx *hcl.EvalContext
}

// NewConverter creates a converter; a nil evalCtx means no variables or
// functions are available.
func NewConverter(evalCtx *hcl.EvalContext) *Converter {
	if evalCtx == nil {
		evalCtx = &hcl.EvalContext{}
	}
	return &Converter{evalCtx: evalCtx}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

var _ config.Converter = (*Converter)(nil)
