package hcl_adapter

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// parseArgs parses src as a block body and returns its attributes.
func parseArgs(t *testing.T, src string) map[string]hcl.Expression {
	t.Helper()
	file, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return extractBodyAttributes(file.Body)
}

type nested struct {
	Host string `cty:"host"`
	Port int    `cty:"port"`
}

type sinkArgs struct {
	Path    string            `fishgrid:"path"`
	Indent  bool              `fishgrid:"indent,optional"`
	Count   int               `fishgrid:"count,optional"`
	Ratio   float64           `fishgrid:"ratio,optional"`
	Tags    []string          `fishgrid:"tags,optional"`
	Headers map[string]string `fishgrid:"headers,optional"`
	Extra   map[string]any    `fishgrid:"extra,optional"`
	Server  nested            `fishgrid:"server,optional"`
	Any     any               `fishgrid:"any,optional"`
	Raw     cty.Value         `fishgrid:"raw,optional"`
	ignored string
}

func TestDecodeArguments(t *testing.T) {
	args := parseArgs(t, `
path    = "${job.dir}/${upper(job.name)}.json"
indent  = true
count   = "3"
ratio   = 0.25
tags    = ["a", "b"]
headers = { "X-Token" = env.TOKEN }
extra   = { n = 1, list = [true, "x"] }
server  = { host = "localhost", port = 8080 }
any     = [1, 2]
raw     = 5
`)
	conv := NewConverter(newEvalContext([]string{"TOKEN=secret"}))
	vars := map[string]cty.Value{"job": cty.ObjectVal(map[string]cty.Value{
		"dir":  cty.StringVal("/out"),
		"name": cty.StringVal("cavity"),
	})}

	var got sinkArgs
	require.NoError(t, conv.DecodeArguments(context.Background(), &got, args, vars))

	assert.Equal(t, "/out/CAVITY.json", got.Path)
	assert.True(t, got.Indent)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 0.25, got.Ratio)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, map[string]string{"X-Token": "secret"}, got.Headers)
	assert.Equal(t, map[string]any{"n": float64(1), "list": []any{true, "x"}}, got.Extra)
	assert.Equal(t, nested{Host: "localhost", Port: 8080}, got.Server)
	assert.Equal(t, []any{float64(1), float64(2)}, got.Any)
	assert.True(t, got.Raw.RawEquals(cty.NumberIntVal(5)))
}

func TestDecodeArguments_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		target  any
		wantErr string
	}{
		{name: "missing required", src: `indent = true`, target: &sinkArgs{}, wantErr: `missing required argument "path"`},
		{name: "unsupported argument", src: "path = \"x\"\ncolor = 1", target: &sinkArgs{}, wantErr: "unsupported argument(s): color"},
		{name: "untagged field", src: "path = \"x\"\nignored = 1", target: &sinkArgs{}, wantErr: "unsupported argument(s): ignored"},
		{name: "type mismatch", src: "path = \"x\"\ncount = \"many\"", target: &sinkArgs{}, wantErr: "failed to decode argument 'count'"},
		{name: "unknown variable", src: `path = job.dir`, target: &sinkArgs{}, wantErr: `argument "path"`},
		{name: "slice from string", src: "path = \"x\"\ntags = \"a\"", target: &sinkArgs{}, wantErr: "cannot decode string into Go slice"},
		{name: "non-pointer target", src: `path = "x"`, target: sinkArgs{}, wantErr: "non-nil pointer to a struct"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewConverter(nil).DecodeArguments(context.Background(), tc.target, parseArgs(t, tc.src), nil)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDecodeArguments_NullKeepsZero(t *testing.T) {
	var got sinkArgs
	err := NewConverter(nil).DecodeArguments(context.Background(), &got, parseArgs(t, "path = \"p\"\ncount = null"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
}

func TestToCtyValue(t *testing.T) {
	conv := NewConverter(nil)

	v, err := conv.ToCtyValue(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, v)

	v, err = conv.ToCtyValue(nested{Host: "h", Port: 1})
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.ObjectVal(map[string]cty.Value{
		"host": cty.StringVal("h"),
		"port": cty.NumberIntVal(1),
	})))

	_, err = conv.ToCtyValue(make(chan int))
	require.Error(t, err)
}
