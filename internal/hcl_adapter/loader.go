package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	environ []string
}

// NewLoader creates a loader whose `env` variable reflects the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ()}
}

// NewLoaderWithEnv creates a loader with a fixed environment in KEY=VALUE form.
func NewLoaderWithEnv(environ []string) *Loader {
	return &Loader{environ: environ}
}

// Load parses every .hcl file under paths into a single model. Job names must
// be unique per kind across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl job files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := newEvalContext(l.environ)
	parser := hclparse.NewParser()
	model := &config.Model{}
	seen := make(map[string]string)

	claim := func(kind, name, file string) error {
		key := kind + "." + name
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("duplicate %s %q in %s (first defined in %s)", kind, name, file, prev)
		}
		seen[key] = file
		return nil
	}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		dir := filepath.Dir(file)
		for _, b := range root.Tools {
			if err := claim("tool", b.Name, file); err != nil {
				return nil, nil, err
			}
			tool, err := l.translateTool(ctx, b, dir)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Tools = append(model.Tools, tool)
		}
		for _, b := range root.Reports {
			if err := claim("report", b.Name, file); err != nil {
				return nil, nil, err
			}
			job, err := l.translateReport(ctx, b, dir)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Reports = append(model.Reports, job)
		}
		for _, b := range root.Grids {
			if err := claim("grid", b.Name, file); err != nil {
				return nil, nil, err
			}
			job, err := l.translateGrid(ctx, b, dir, evalCtx)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Grids = append(model.Grids, job)
		}
	}

	if err := validateReferences(model); err != nil {
		return nil, nil, err
	}

	logger.Debug("HCL loading complete.", "tools", len(model.Tools), "reports", len(model.Reports), "grids", len(model.Grids))
	return model, NewConverter(evalCtx), nil
}

// findAllHCLFiles expands paths into a de-duplicated list of .hcl files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error accessing job path %s: %w", path, err)
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				all = append(all, f)
			}
		}
	}
	return all, nil
}

// validateReferences checks that every channel_type_from names a report job.
func validateReferences(model *config.Model) error {
	for _, g := range model.Grids {
		if g.ChannelTypeFrom == "" {
			continue
		}
		if _, ok := model.Report(g.ChannelTypeFrom); !ok {
			return fmt.Errorf("grid %q: channel_type_from refers to unknown report %q", g.Name, g.ChannelTypeFrom)
		}
	}
	return nil
}

// resolvePath anchors a relative path at the directory of its job file.
func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

var _ config.Loader = (*Loader)(nil)
