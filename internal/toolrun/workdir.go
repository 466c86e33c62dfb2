package toolrun

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/fishgrid/internal/fsutil"
	"github.com/vk/fishgrid/internal/sfo"
	"github.com/vk/fishgrid/internal/t7"
)

const (
	iniFile = "SF.INI"
	// iniContents keeps SF7 from rescaling fields to 1 MV/m average.
	iniContents = "[global]\nForce1MVperMeter=No\n"
	t7Suffix    = "T7"
)

// Basename returns the upper-case stem the solver uses for a problem file.
func Basename(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// StageAutomesh copies the automesh input src into workDir as <BASENAME>.AM
// and returns the staged file name.
func StageAutomesh(src, workDir string) (string, error) {
	lines, err := sfo.ReadAutomesh(src)
	if err != nil {
		return "", err
	}
	name := Basename(src) + ".AM"
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(workDir, name), []byte(data), 0o644); err != nil {
		return "", fmt.Errorf("failed to stage automesh input: %w", err)
	}
	return name, nil
}

// PrepareInterpolation removes stale T7 tables from workDir and writes the
// SF7 request <basename>.IN7 plus SF.INI. It returns the request file name.
func PrepareInterpolation(workDir, basename string, req t7.Request) (string, error) {
	stale, err := fsutil.FindFilesBySuffix(workDir, t7Suffix)
	if err != nil {
		return "", err
	}
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			return "", fmt.Errorf("failed to remove old table: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := t7.WriteRequest(&buf, req); err != nil {
		return "", err
	}
	in7 := basename + ".IN7"
	if err := os.WriteFile(filepath.Join(workDir, in7), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write interpolation request: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, iniFile), []byte(iniContents), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", iniFile, err)
	}
	return in7, nil
}

// InterpolationArgs returns the SF7 command line for a prepared request.
func InterpolationArgs(basename, in7 string) []string {
	return []string{"sf7", in7, basename + ".T35"}
}

// FindT7 returns the single T7 table in workDir.
func FindT7(workDir string) (string, error) {
	files, err := fsutil.FindFilesBySuffix(workDir, t7Suffix)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 1:
		return files[0], nil
	case 0:
		return "", fmt.Errorf("no T7 table in '%s'", workDir)
	default:
		return "", fmt.Errorf("expected one T7 table in '%s', found %d", workDir, len(files))
	}
}
