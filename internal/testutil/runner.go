package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/fishgrid/internal/toolrun"
)

// FakeRunner records invocations instead of executing them. Files maps a
// program name to files (name -> content) it "produces" in the work
// directory; ExitCodes maps a program name to its exit code.
type FakeRunner struct {
	Files     map[string]map[string]string
	ExitCodes map[string]int

	mu    sync.Mutex
	calls []toolrun.Invocation
}

// Run implements toolrun.Runner.
func (r *FakeRunner) Run(ctx context.Context, inv toolrun.Invocation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	program := inv.Args[0]
	for name, content := range r.Files[program] {
		if err := os.WriteFile(filepath.Join(inv.WorkDir, name), []byte(content), 0o644); err != nil {
			return 0, err
		}
	}
	return r.ExitCodes[program], nil
}

// Calls returns the recorded invocations in order.
func (r *FakeRunner) Calls() []toolrun.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toolrun.Invocation(nil), r.calls...)
}

var _ toolrun.Runner = (*FakeRunner)(nil)
