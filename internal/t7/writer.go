package t7

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultFormat is the numeric format of data values when none is given.
const DefaultFormat = "%10.8e"

// WriteFile writes g to path, replacing any existing file.
func WriteFile(path string, g *Grid, v Variant, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create T7 file '%s': %w", path, err)
	}
	if err := Write(f, g, v, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close T7 file '%s': %w", path, err)
	}
	return nil
}

// Write serializes g in the layout of variant v. Header numbers use their
// shortest exact decimal form; data values use format (DefaultFormat if empty).
// The header values survive a rewrite but the original spacing and padding do
// not: an SF7 header "0.00000 11.5300 100" is written back as "0 11.53 100".
func Write(w io.Writer, g *Grid, v Variant, format string) error {
	if format == "" {
		format = DefaultFormat
	}
	if err := CheckFormat(format); err != nil {
		return err
	}
	if err := g.validate(v); err != nil {
		return fmt.Errorf("cannot write %s T7 table: %w", v, err)
	}

	bw := bufio.NewWriter(w)
	switch v {
	case Oscillating:
		writeAxis(bw, g.Z)
		bw.WriteString(formatHeaderNumber(g.Frequency))
		bw.WriteByte('\n')
		writeAxis(bw, g.R)
	case Static:
		writeAxis(bw, g.R)
		writeAxis(bw, g.Z)
	}

	cols := make([][][]float64, len(g.Channels))
	for c, name := range g.Channels {
		cols[c] = g.Fields[name]
	}

	nr, nz := g.R.Count, g.Z.Count
	for row := 0; row < nr*nz; row++ {
		ir, iz := rowIndex(v, row, nr, nz)
		for c := range cols {
			if c > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, format, cols[c][ir][iz])
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write T7 table: %w", err)
	}
	return nil
}

// CheckFormat verifies that format renders a single float64 as one token that
// parses back as a number.
func CheckFormat(format string) error {
	s := fmt.Sprintf(format, 1.5)
	if strings.Contains(s, "%!") {
		return fmt.Errorf("invalid T7 number format %q: renders as %q", format, s)
	}
	tokens := strings.Fields(s)
	if len(tokens) != 1 {
		return fmt.Errorf("invalid T7 number format %q: must render a single token, got %q", format, s)
	}
	if _, err := strconv.ParseFloat(tokens[0], 64); err != nil {
		return fmt.Errorf("invalid T7 number format %q: %q does not parse back: %w", format, s, err)
	}
	return nil
}

func writeAxis(bw *bufio.Writer, a Axis) {
	bw.WriteString(formatHeaderNumber(a.Min))
	bw.WriteByte(' ')
	bw.WriteString(formatHeaderNumber(a.Max))
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(a.Segments()))
	bw.WriteByte('\n')
}

func formatHeaderNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
