package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/fishgrid/internal/registry"
)

// CaptureInput is the argument struct of the capture sink.
type CaptureInput struct {
	Label string `fishgrid:"label,optional"`
	Fail  bool   `fishgrid:"fail,optional"`
}

// Captured is one document received by the capture sink.
type Captured struct {
	Doc   *registry.Document
	Input CaptureInput
}

// CaptureModule registers a "capture" sink that stores every document it
// receives. Setting fail = true in the sink block makes it return an error.
type CaptureModule struct {
	mu   sync.Mutex
	docs []Captured
}

// Register implements registry.Module.
func (m *CaptureModule) Register(r *registry.Registry) {
	r.RegisterSink("capture", &registry.RegisteredSink{
		NewInput: func() any { return new(CaptureInput) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			in := input.(*CaptureInput)
			if in.Fail {
				return fmt.Errorf("capture sink failed for %s", doc.Job)
			}
			m.mu.Lock()
			defer m.mu.Unlock()
			m.docs = append(m.docs, Captured{Doc: doc, Input: *in})
			return nil
		},
	})
}

// Documents returns the captured documents sorted by kind and job name.
func (m *CaptureModule) Documents() []Captured {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]Captured(nil), m.docs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Doc.Kind != out[j].Doc.Kind {
			return out[i].Doc.Kind < out[j].Doc.Kind
		}
		return out[i].Doc.Job < out[j].Doc.Job
	})
	return out
}

// Find returns the first captured document for a job.
func (m *CaptureModule) Find(kind, job string) (Captured, bool) {
	for _, c := range m.Documents() {
		if c.Doc.Kind == kind && c.Doc.Job == job {
			return c, true
		}
	}
	return Captured{}, false
}
