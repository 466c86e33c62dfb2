package sfo

import (
	"bufio"
	"fmt"

	"github.com/vk/fishgrid/internal/parseerr"
)

// ReadAutomesh returns the lines of an automesh input (.AM) file unchanged.
func ReadAutomesh(path string) ([]string, error) {
	f, err := parseerr.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read automesh file %s: %w", path, err)
	}
	return lines, nil
}
