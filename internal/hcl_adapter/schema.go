package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a job file may contain.
type fileRoot struct {
	Tools   []*ToolBlock   `hcl:"tool,block"`
	Reports []*ReportBlock `hcl:"report,block"`
	Grids   []*GridBlock   `hcl:"grid,block"`
}

// ToolBlock is a `tool "<name>"` block.
type ToolBlock struct {
	Name          string              `hcl:"name,label"`
	Args          []string            `hcl:"args"`
	WorkDir       string              `hcl:"workdir"`
	Image         string              `hcl:"image,optional"`
	Local         bool                `hcl:"local,optional"`
	Timeout       string              `hcl:"timeout,optional"`
	Automesh      string              `hcl:"automesh,optional"`
	Interpolation *InterpolationBlock `hcl:"interpolation,block"`
}

// InterpolationBlock requests an SF7 table. Omitted bounds take the SF7
// defaults, which the solver clips to the problem domain.
type InterpolationBlock struct {
	Basename string   `hcl:"basename,optional"`
	Problem  string   `hcl:"problem"`
	ZMin     *float64 `hcl:"zmin,optional"`
	ZMax     *float64 `hcl:"zmax,optional"`
	NZ       *int     `hcl:"nz,optional"`
	RMin     *float64 `hcl:"rmin,optional"`
	RMax     *float64 `hcl:"rmax,optional"`
	NR       *int     `hcl:"nr,optional"`
}

// ReportBlock is a `report "<name>"` block.
type ReportBlock struct {
	Name                string       `hcl:"name,label"`
	Path                string       `hcl:"path"`
	Separator           string       `hcl:"separator,optional"`
	AllowMultipleTables bool         `hcl:"allow_multiple_tables,optional"`
	Sinks               []*SinkBlock `hcl:"sink,block"`
}

// GridBlock is a `grid "<name>"` block.
type GridBlock struct {
	Name            string         `hcl:"name,label"`
	Path            string         `hcl:"path"`
	Variant         string         `hcl:"variant"`
	ChannelType     string         `hcl:"channel_type,optional"`
	ChannelTypeFrom hcl.Expression `hcl:"channel_type_from,optional"`
	Rewrite         *RewriteBlock  `hcl:"rewrite,block"`
	Sinks           []*SinkBlock   `hcl:"sink,block"`
}

// RewriteBlock writes a loaded grid back out as a T7 table.
type RewriteBlock struct {
	Path   string `hcl:"path"`
	Format string `hcl:"format,optional"`
}

// SinkBlock is a `sink "<type>"` block; its attributes belong to the sink.
type SinkBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}
