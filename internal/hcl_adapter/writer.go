package hcl_adapter

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteStarter writes an example job file covering every block type. The
// output loads with Loader once the referenced files exist.
func WriteStarter(w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	tool := root.AppendNewBlock("tool", []string{"superfish"}).Body()
	tool.SetAttributeValue("args", cty.ListVal([]cty.Value{
		cty.StringVal("autofish"), cty.StringVal("CAVITY.AM"),
	}))
	tool.SetAttributeValue("workdir", cty.StringVal("run"))
	tool.SetAttributeValue("automesh", cty.StringVal("cavity.am"))
	tool.SetAttributeValue("timeout", cty.StringVal("10m"))
	interp := tool.AppendNewBlock("interpolation", nil).Body()
	interp.SetAttributeValue("problem", cty.StringVal("oscillating"))
	interp.SetAttributeValue("zmin", cty.NumberFloatVal(-10))
	interp.SetAttributeValue("zmax", cty.NumberFloatVal(10))
	interp.SetAttributeValue("nz", cty.NumberIntVal(200))
	interp.SetAttributeValue("rmax", cty.NumberFloatVal(5))
	interp.SetAttributeValue("nr", cty.NumberIntVal(50))
	root.AppendNewline()

	report := root.AppendNewBlock("report", []string{"cavity"}).Body()
	report.SetAttributeValue("path", cty.StringVal("run/CAVITY.SFO"))
	report.SetAttributeValue("separator", cty.StringVal("auto"))
	report.AppendNewBlock("sink", []string{"print"})
	jsonSink := report.AppendNewBlock("sink", []string{"json_file"}).Body()
	jsonSink.SetAttributeValue("path", cty.StringVal("out/cavity.json"))
	jsonSink.SetAttributeValue("indent", cty.True)
	root.AppendNewline()

	grid := root.AppendNewBlock("grid", []string{"fields"}).Body()
	grid.SetAttributeValue("path", cty.StringVal("run/CAVITY.T7"))
	grid.SetAttributeValue("variant", cty.StringVal("oscillating"))
	grid.SetAttributeTraversal("channel_type_from", hcl.Traversal{
		hcl.TraverseRoot{Name: "report"},
		hcl.TraverseAttr{Name: "cavity"},
	})
	rewrite := grid.AppendNewBlock("rewrite", nil).Body()
	rewrite.SetAttributeValue("path", cty.StringVal("out/CAVITY_CLEAN.T7"))
	gridSink := grid.AppendNewBlock("sink", []string{"json_file"}).Body()
	gridSink.SetAttributeValue("path", cty.StringVal("out/fields.json"))

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write starter job file: %w", err)
	}
	return nil
}
