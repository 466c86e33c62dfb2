package t7

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

const (
	maxLineBytes = 1 << 20
	// maxSegments bounds a single axis; maxPoints bounds the whole mesh.
	maxSegments = 1 << 20
	maxPoints   = 1 << 26
)

// ReadFile opens path and parses it with Read. A missing file yields an error
// matching parseerr.ErrMissingFile.
func ReadFile(path string, v Variant, ct ChannelType) (*Grid, error) {
	f, err := parseerr.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Read(f, v, ct)
	if err != nil {
		return nil, parseerr.WithSource(err, path)
	}
	return g, nil
}

// Read parses a T7 table. The channel type only matters for static tables.
func Read(r io.Reader, v Variant, ct ChannelType) (*Grid, error) {
	channels, err := ChannelsFor(v, ct)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0

	// Header lines are positional: no blank lines are skipped before them.
	headerLine := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("failed to read T7 header: %w", err)
			}
			return "", parseerr.Errorf(lineNo+1, "", "unexpected end of file, expected %s line", what)
		}
		lineNo++
		return sc.Text(), nil
	}

	g := &Grid{Variant: v, Channels: channels}

	switch v {
	case Oscillating:
		line, err := headerLine("Z axis")
		if err != nil {
			return nil, err
		}
		if g.Z, err = parseAxis(line, lineNo); err != nil {
			return nil, err
		}
		if line, err = headerLine("frequency"); err != nil {
			return nil, err
		}
		if g.Frequency, err = parseFrequency(line, lineNo); err != nil {
			return nil, err
		}
		g.HasFrequency = true
		if line, err = headerLine("R axis"); err != nil {
			return nil, err
		}
		if g.R, err = parseAxis(line, lineNo); err != nil {
			return nil, err
		}
	case Static:
		line, err := headerLine("R axis")
		if err != nil {
			return nil, err
		}
		if g.R, err = parseAxis(line, lineNo); err != nil {
			return nil, err
		}
		if line, err = headerLine("Z axis"); err != nil {
			return nil, err
		}
		if g.Z, err = parseAxis(line, lineNo); err != nil {
			return nil, err
		}
	}

	nr, nz := g.R.Count, g.Z.Count
	if nr > maxPoints/nz {
		return nil, parseerr.Errorf(lineNo, "", "mesh of %d x %d points exceeds the limit of %d", nr, nz, maxPoints)
	}
	total := nr * nz

	// Rows land in flat per-channel buffers sized by the file itself; the
	// header count is only trusted once the data confirms it.
	flat := make([][]float64, len(channels))
	row := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != len(channels) {
			return nil, parseerr.Errorf(lineNo, line, "expected %d columns, got %d", len(channels), len(tokens))
		}
		if row >= total {
			return nil, parseerr.Errorf(lineNo, line, "data block has more than the %d rows implied by %dx%d axes", total, nr, nz)
		}
		for c, tok := range tokens {
			x, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &parseerr.FormatError{Line: lineNo, Text: line, Msg: fmt.Sprintf("column %d is not a number", c+1), Err: err}
			}
			flat[c] = append(flat[c], x)
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read T7 data: %w", err)
	}
	if row != total {
		return nil, parseerr.Errorf(0, "", "data block has %d rows, expected %d (%d x %d)", row, total, nr, nz)
	}

	g.Fields = newFields(channels, nr, nz)
	for c, name := range channels {
		field := g.Fields[name]
		for k, x := range flat[c] {
			ir, iz := rowIndex(v, k, nr, nz)
			field[ir][iz] = x
		}
	}

	return g, nil
}

// rowIndex maps a file row to field coordinates. Rows iterate the second
// header axis in the outer loop: R for oscillating tables, Z for static ones.
func rowIndex(v Variant, row, nr, nz int) (ir, iz int) {
	if v == Static {
		return row % nr, row / nr
	}
	return row / nz, row % nz
}

func parseAxis(line string, lineNo int) (Axis, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return Axis{}, parseerr.Errorf(lineNo, line, "axis header needs 3 values (min max segments), got %d", len(tokens))
	}
	lo, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return Axis{}, &parseerr.FormatError{Line: lineNo, Text: line, Msg: "axis minimum is not a number", Err: err}
	}
	hi, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Axis{}, &parseerr.FormatError{Line: lineNo, Text: line, Msg: "axis maximum is not a number", Err: err}
	}
	segments, err := parseSegments(tokens[2])
	if err != nil {
		return Axis{}, &parseerr.FormatError{Line: lineNo, Text: line, Msg: "axis segment count is invalid", Err: err}
	}
	return Axis{Min: lo, Max: hi, Count: segments + 1}, nil
}

// parseSegments accepts an integer, or a Fortran real such as "20." that is integral.
func parseSegments(tok string) (int, error) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative segment count %d", n)
		}
		if n > maxSegments {
			return 0, fmt.Errorf("segment count %d exceeds the limit of %d", n, maxSegments)
		}
		return n, nil
	}
	x, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if x < 0 || x != math.Trunc(x) || x > maxSegments {
		return 0, fmt.Errorf("segment count %q is not a non-negative integer", tok)
	}
	return int(x), nil
}

func parseFrequency(line string, lineNo int) (float64, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 1 {
		return 0, parseerr.Errorf(lineNo, line, "frequency header needs 1 value, got %d", len(tokens))
	}
	f, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, &parseerr.FormatError{Line: lineNo, Text: line, Msg: "frequency is not a number", Err: err}
	}
	return f, nil
}
