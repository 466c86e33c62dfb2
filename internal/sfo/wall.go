package sfo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

// wallColumnHeaders are the two column-title shapes. The leading tokens are
// index columns that carry no channel data.
var wallColumnHeaders = [][]string{
	{"K", "L"},
	{"m", "K", "L"},
}

// parseWallSegmentLabel reads "... segment N K,L = k0, l0 to k1, l1".
func parseWallSegmentLabel(label string) (*WallSegment, error) {
	bad := func(msg string) error { return parseerr.Errorf(0, label, "%s", msg) }

	idx := strings.Index(label, "segment")
	if idx < 0 {
		return nil, bad("wall segment label has no 'segment' keyword")
	}
	num, span, ok := strings.Cut(label[idx+len("segment"):], "K,L =")
	if !ok {
		return nil, bad("wall segment label has no 'K,L =' marker")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return nil, &parseerr.FormatError{Text: label, Msg: "invalid segment number", Err: err}
	}
	from, to, ok := strings.Cut(span, "to")
	if !ok {
		return nil, bad("wall segment label has no 'to' between endpoints")
	}
	k0, l0, err := parseKL(from, label)
	if err != nil {
		return nil, err
	}
	k1, l1, err := parseKL(to, label)
	if err != nil {
		return nil, err
	}
	return &WallSegment{
		SegmentNumber: int(n),
		KBeg:          k0,
		LBeg:          l0,
		KEnd:          k1,
		LEnd:          l1,
		Info:          make(map[string]string),
	}, nil
}

func parseKL(s, label string) (int, int, error) {
	ks, ls, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, parseerr.Errorf(0, label, "endpoint %q is not 'K, L'", strings.TrimSpace(s))
	}
	k, err := strconv.Atoi(strings.TrimSpace(ks))
	if err != nil {
		return 0, 0, &parseerr.FormatError{Text: label, Msg: "invalid K index", Err: err}
	}
	l, err := strconv.Atoi(strings.TrimSpace(ls))
	if err != nil {
		return 0, 0, &parseerr.FormatError{Text: label, Msg: "invalid L index", Err: err}
	}
	return k, l, nil
}

// wallColumns reports whether tokens form a column-title line and, if so,
// how many leading index columns data rows may carry.
func wallColumns(tokens []string) (skip int, ok bool) {
	for _, h := range wallColumnHeaders {
		if len(tokens) >= len(h) && slices.Equal(tokens[:len(h)], h) {
			return len(h), true
		}
	}
	return 0, false
}

type wallState int

const (
	wallPreamble wallState = iota
	wallUnits
	wallData
	wallClosed
)

// parseWallSegment decodes a wall segment group. The label carries the
// segment number and endpoints; the body holds info lines and the table.
func parseWallSegment(g Group, allowMultiple bool) (*WallSegment, error) {
	ws, err := parseWallSegmentLabel(g.Label)
	if err != nil {
		if fe, ok := err.(*parseerr.FormatError); ok {
			fe.Line = g.Line
		}
		return nil, err
	}

	var (
		state = wallPreamble
		table *WallTable
		skip  int
	)
	for i, raw := range g.Lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fail := func(format string, args ...any) error {
			return parseerr.Errorf(g.lineNo(i), line, format, args...)
		}

		if state == wallData && strings.HasPrefix(line, "Summary") {
			state = wallClosed
		}
		if key, val, ok := strings.Cut(line, "="); ok {
			ws.Info[strings.TrimSpace(key)] = strings.TrimSpace(val)
			continue
		}

		tokens := strings.Fields(line)
		if n, ok := wallColumns(tokens); ok {
			if len(ws.Tables) > 0 && !allowMultiple {
				return nil, fail("more than one data table in wall segment")
			}
			table, err = newWallTable(tokens[n:])
			if err != nil {
				return nil, fail("%v", err)
			}
			ws.Tables = append(ws.Tables, table)
			skip = n
			state = wallUnits
			continue
		}

		switch state {
		case wallPreamble, wallClosed:
			// Prose outside a table.
		case wallUnits:
			if len(tokens) != len(table.Columns) {
				return nil, fail("got %d unit labels for %d columns", len(tokens), len(table.Columns))
			}
			for j, name := range table.Columns {
				table.Units[name] = tokens[j]
			}
			state = wallData
		case wallData:
			if len(tokens) == len(table.Columns)+skip {
				tokens = tokens[skip:]
			}
			if len(tokens) != len(table.Columns) {
				return nil, fail("got %d values for %d columns", len(tokens), len(table.Columns))
			}
			for j, name := range table.Columns {
				v, err := strconv.ParseFloat(tokens[j], 64)
				if err != nil {
					return nil, &parseerr.FormatError{
						Line: g.lineNo(i),
						Text: line,
						Msg:  "invalid value in column " + strconv.Quote(name),
						Err:  err,
					}
				}
				table.Values[name] = append(table.Values[name], v)
			}
		}
	}

	if len(ws.Tables) == 0 {
		return nil, parseerr.Errorf(g.Line, g.Label, "wall segment has no data table")
	}
	if state == wallUnits {
		return nil, parseerr.Errorf(g.Line, g.Label, "wall segment table has no unit line")
	}
	return ws, nil
}

func newWallTable(names []string) (*WallTable, error) {
	t := &WallTable{
		Units:  make(map[string]string),
		Values: make(map[string][]float64),
	}
	for _, raw := range names {
		name := strings.Trim(raw, "|")
		if name == "" {
			continue
		}
		if _, dup := t.Values[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		t.Columns = append(t.Columns, name)
		t.Values[name] = []float64{}
	}
	if len(t.Columns) == 0 {
		return nil, errors.New("column header names no channels")
	}
	return t, nil
}
