package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package. Out
// defaults to standard output.
type Module struct {
	Out io.Writer
}

// Input defines the arguments for the print sink.
type Input struct {
	// Format is "summary" (default) or "json".
	Format string `fishgrid:"format,optional"`
}

// outMu keeps documents from interleaving when jobs finish concurrently.
var outMu sync.Mutex

// Print writes a document to out.
func Print(ctx context.Context, out io.Writer, doc *registry.Document, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("sink", "print", "job", doc.Job)

	var text string
	switch strings.ToLower(input.Format) {
	case "", "summary":
		text = summarize(doc)
	case "json":
		b, err := encode.JSON(doc.Value)
		if err != nil {
			return err
		}
		text = string(b) + "\n"
	default:
		return fmt.Errorf("unknown print format %q", input.Format)
	}

	outMu.Lock()
	defer outMu.Unlock()
	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("failed to print document: %w", err)
	}
	logger.Debug("Document printed.")
	return nil
}

// summarize lists the top-level attributes of a document, one per line,
// with collections reduced to their size.
func summarize(doc *registry.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q (%s)\n", doc.Kind, doc.Job, doc.Source)

	if !doc.Value.Type().IsObjectType() {
		return sb.String()
	}
	attrs := doc.Value.AsValueMap()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "      %s = %s\n", k, describe(attrs[k]))
	}
	return sb.String()
}

func describe(v cty.Value) string {
	switch {
	case v.IsNull():
		return "(null)"
	case v.Type() == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', 10)
	case v.Type() == cty.Bool:
		return fmt.Sprintf("%t", v.True())
	case v.CanIterateElements():
		return fmt.Sprintf("(%d items)", v.LengthInt())
	default:
		return v.Type().FriendlyName()
	}
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.RegisterSink("print", &registry.RegisteredSink{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			return Print(ctx, out, doc, input.(*Input))
		},
	})
}
