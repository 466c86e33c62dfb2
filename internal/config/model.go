package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fishgrid/internal/sfo"
	"github.com/vk/fishgrid/internal/t7"
)

// Model is the format-agnostic representation of every job file loaded for
// one run.
type Model struct {
	Tools   []*Tool
	Reports []*ReportJob
	Grids   []*GridJob
}

// Tool is a `tool` block: one solver program run, optionally followed by an
// SF7 interpolation pass.
type Tool struct {
	Name    string
	Args    []string
	WorkDir string
	Image   string
	Local   bool
	Timeout time.Duration
	// Automesh is an .AM file staged into WorkDir before the run.
	Automesh      string
	Interpolation *Interpolation
}

// Interpolation asks SF7 for a T7 table after the tool has run.
type Interpolation struct {
	// Basename names the .IN7/.T35 files; defaults to the automesh stem.
	Basename string
	Request  t7.Request
}

// ReportJob is a `report` block.
type ReportJob struct {
	Name string
	Path string
	// Dir is the directory of the job file that declared the block.
	Dir     string
	Options sfo.Options
	Sinks   []*Sink
}

// GridJob is a `grid` block.
type GridJob struct {
	Name        string
	Path        string
	Dir         string
	Variant     t7.Variant
	ChannelType t7.ChannelType
	// ChannelTypeFrom names a report job whose header XJFACT selects the
	// channel type. It overrides ChannelType.
	ChannelTypeFrom string
	Rewrite         *Rewrite
	Sinks           []*Sink
}

// Rewrite writes the loaded grid back out as a T7 table.
type Rewrite struct {
	Path   string
	Format string
}

// Sink is a `sink` block. Arguments are decoded by the sink's module.
type Sink struct {
	Type      string
	Arguments map[string]hcl.Expression
}

// Report returns the report job with the given name.
func (m *Model) Report(name string) (*ReportJob, bool) {
	for _, r := range m.Reports {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
