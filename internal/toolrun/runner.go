// Package toolrun invokes the Poisson/Superfish executables, either inside the
// solver container or as local programs, and prepares their work directories.
package toolrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/fishgrid/internal/ctxlog"
)

const (
	// DefaultImage is the container image used when an invocation names none.
	DefaultImage = "hhslepicka/poisson-superfish:latest"
	// LogFile collects the output of every run inside the work directory.
	LogFile = "output.log"
	// containerDataDir is where the work directory is mounted in the container.
	containerDataDir = "/data/"
)

// Invocation describes one solver program run.
type Invocation struct {
	// Name labels the run in logs.
	Name string
	// Args holds the program followed by its arguments, e.g. autofish CAVITY.AM.
	Args    []string
	WorkDir string
	Image   string
	// Local runs Args[0] directly instead of through the container.
	Local   bool
	Timeout time.Duration
}

// Runner executes invocations. Run returns the exit code of the program; err
// is set only when the program could not be started or was cancelled.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (exitCode int, err error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct {
	// Docker is the container CLI, "docker" when empty.
	Docker string
}

// NewExecRunner returns a runner that uses the docker CLI from PATH.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Docker: "docker"}
}

// Command returns the program and arguments that would be executed for inv.
func (r *ExecRunner) Command(inv Invocation) (string, []string, error) {
	if len(inv.Args) == 0 {
		return "", nil, errors.New("invocation has no program")
	}
	if inv.Local {
		return inv.Args[0], inv.Args[1:], nil
	}

	workDir, err := filepath.Abs(inv.WorkDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve work dir '%s': %w", inv.WorkDir, err)
	}
	image := inv.Image
	if image == "" {
		image = DefaultImage
	}
	docker := r.Docker
	if docker == "" {
		docker = "docker"
	}
	args := []string{"run", "--rm", "-v", workDir + ":" + containerDataDir, image}
	return docker, append(args, inv.Args...), nil
}

// Run executes inv and appends its combined output to LogFile in the work
// directory.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (int, error) {
	logger := ctxlog.FromContext(ctx).With("tool", inv.Name)

	name, args, err := r.Command(inv)
	if err != nil {
		return -1, err
	}
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	logPath := filepath.Join(inv.WorkDir, LogFile)
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return -1, fmt.Errorf("failed to open run log: %w", err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = inv.WorkDir
	cmd.Stdout = out
	cmd.Stderr = out

	logger.Info("Running tool.", "command", name+" "+strings.Join(args, " "), "work_dir", inv.WorkDir)
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Info("Tool finished.", "duration", elapsed)
		return 0, nil
	case ctx.Err() != nil:
		return -1, fmt.Errorf("tool '%s' aborted after %s: %w", inv.Name, elapsed.Round(time.Millisecond), ctx.Err())
	case errors.As(err, &exitErr):
		logger.Warn("Tool exited with an error.", "exit_code", exitErr.ExitCode(), "duration", elapsed, "log", logPath)
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("failed to start tool '%s': %w", inv.Name, err)
	}
}
