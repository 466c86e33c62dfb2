package sfo

import (
	"strconv"
	"strings"

	"github.com/vk/fishgrid/internal/parseerr"
)

// variableTitle is the column title that opens the variable table, compared
// after collapsing runs of whitespace.
const variableTitle = "Variable Code Value Description"

// automeshFlag marks a variable set by the automesh pre-pass.
const automeshFlag = "A"

func parseHeader(g Group) (*Header, error) {
	h := &Header{Variables: make(map[string]*Variable)}
	var comments []string
	inTable := false
	for i, line := range g.Lines {
		if !inTable {
			if strings.Join(strings.Fields(line), " ") == variableTitle {
				inTable = true
				continue
			}
			comments = append(comments, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, err := parseVariable(line)
		if err != nil {
			if fe, ok := err.(*parseerr.FormatError); ok {
				fe.Line = g.lineNo(i)
			}
			return nil, err
		}
		if _, seen := h.Variables[v.Code]; !seen {
			h.Codes = append(h.Codes, v.Code)
		}
		h.Variables[v.Code] = v
	}
	h.Comments = strings.Join(comments, "\n")
	return h, nil
}

// parseVariable reads "CODE [A] value description...".
func parseVariable(line string) (*Variable, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return nil, parseerr.Errorf(0, line, "variable row needs a code and a value")
	}
	v := &Variable{Code: tokens[0]}
	rest := tokens[1:]
	if rest[0] == automeshFlag {
		if len(rest) < 2 {
			return nil, parseerr.Errorf(0, line, "automesh variable %s has no value", v.Code)
		}
		v.Automesh = true
		rest = rest[1:]
	}
	if n, err := strconv.ParseInt(rest[0], 10, 64); err == nil {
		v.Value, v.IsInt = float64(n), true
	} else {
		f, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return nil, &parseerr.FormatError{Text: line, Msg: "invalid value for " + v.Code, Err: err}
		}
		v.Value = f
	}
	v.Description = strings.Join(rest[1:], " ")
	return v, nil
}
