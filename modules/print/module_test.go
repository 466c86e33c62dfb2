package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func testDoc() *registry.Document {
	return &registry.Document{
		Kind:   "report",
		Job:    "cavity",
		Source: "cavity.sfo",
		Value: cty.ObjectVal(map[string]cty.Value{
			"mode":    cty.StringVal("fixed"),
			"summary": cty.MapVal(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(2)}),
			"freq":    cty.NumberFloatVal(1300.5),
			"beam":    cty.NullVal(cty.String),
			"ok":      cty.True,
		}),
	}
}

func TestPrint_Summary(t *testing.T) {
	var out bytes.Buffer
	err := Print(context.Background(), &out, testDoc(), &Input{})
	require.NoError(t, err)

	want := `report "cavity" (cavity.sfo)
      beam = (null)
      freq = 1300.5
      mode = "fixed"
      ok = true
      summary = (2 items)
`
	require.Equal(t, want, out.String())
}

func TestPrint_JSON(t *testing.T) {
	var out bytes.Buffer
	doc := &registry.Document{Kind: "grid", Job: "g", Value: cty.ObjectVal(map[string]cty.Value{"variant": cty.StringVal("static")})}
	require.NoError(t, Print(context.Background(), &out, doc, &Input{Format: "JSON"}))
	require.Equal(t, `{"variant":"static"}`+"\n", out.String())
}

func TestPrint_UnknownFormat(t *testing.T) {
	var out bytes.Buffer
	err := Print(context.Background(), &out, testDoc(), &Input{Format: "yaml"})
	require.ErrorContains(t, err, `unknown print format "yaml"`)
	require.Empty(t, out.String())
}

func TestRegister(t *testing.T) {
	var out bytes.Buffer
	r := registry.New()
	(&Module{Out: &out}).Register(r)

	sink, ok := r.Sink("print")
	require.True(t, ok)
	input := sink.NewInput().(*Input)
	require.NoError(t, sink.Fn(context.Background(), testDoc(), input))
	require.Contains(t, out.String(), `report "cavity"`)
}
