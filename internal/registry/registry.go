package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Module is the interface that all sink modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Document is one finished result handed to a sink.
type Document struct {
	// Kind is "report" or "grid".
	Kind string
	// Job is the name of the job block that produced the document.
	Job string
	// Source is the file the document was parsed from.
	Source string
	// Dir is the directory of the job file; sinks resolve relative paths
	// against it.
	Dir   string
	Value cty.Value
}

// SinkFunc consumes a document. input is the value returned by the sink's
// NewInput, already decoded from the sink block.
type SinkFunc func(ctx context.Context, doc *Document, input any) error

// RegisteredSink holds the compiled Go parts of a sink.
type RegisteredSink struct {
	NewInput func() any
	Fn       SinkFunc
}

// Registry holds the sinks registered for a single application instance.
type Registry struct {
	SinkRegistry map[string]*RegisteredSink
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{SinkRegistry: make(map[string]*RegisteredSink)}
}

// RegisterSink registers a sink under its block type name.
func (r *Registry) RegisterSink(name string, sink *RegisteredSink) {
	if _, exists := r.SinkRegistry[name]; exists {
		panic(fmt.Sprintf("sink with name '%s' already registered", name))
	}
	if sink == nil || sink.NewInput == nil || sink.Fn == nil {
		panic(fmt.Sprintf("sink '%s' must provide NewInput and Fn", name))
	}
	if t := reflect.TypeOf(sink.NewInput()); t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("sink '%s': NewInput must return a pointer to a struct", name))
	}
	slog.Debug("Registering sink.", "name", name)
	r.SinkRegistry[name] = sink
}

// Sink returns the sink registered under name.
func (r *Registry) Sink(name string) (*RegisteredSink, bool) {
	s, ok := r.SinkRegistry[name]
	return s, ok
}

// Names returns the registered sink names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.SinkRegistry))
	for name := range r.SinkRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
