package json_file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the json_file sink.
type Input struct {
	Path   string `fishgrid:"path"`
	Indent bool   `fishgrid:"indent,optional"`
}

// WriteJSON writes the document as JSON to input.Path. Relative paths are
// resolved against the job file's directory.
func WriteJSON(ctx context.Context, doc *registry.Document, input *Input) error {
	if input.Path == "" {
		return fmt.Errorf("json_file: path must not be empty")
	}
	path := input.Path
	if !filepath.IsAbs(path) && doc.Dir != "" {
		path = filepath.Join(doc.Dir, path)
	}
	logger := ctxlog.FromContext(ctx).With("sink", "json_file", "job", doc.Job, "path", path)

	data, err := encode.JSON(doc.Value)
	if err != nil {
		return err
	}
	if input.Indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("failed to indent JSON: %w", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	logger.Info("Document written.", "bytes", len(data))
	return nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("json_file", &registry.RegisteredSink{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			return WriteJSON(ctx, doc, input.(*Input))
		},
	})
}
