package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific job file loader.
type Loader interface {
	// Load reads every job file under paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw configuration to the Go types used by sink modules.
type Converter interface {
	// DecodeArguments evaluates args and stores them in the tagged fields of
	// target. vars are added to the evaluation context for this call only.
	DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression, vars map[string]cty.Value) error

	// ToCtyValue converts a native Go value into its cty.Value equivalent.
	ToCtyValue(v any) (cty.Value, error)
}
