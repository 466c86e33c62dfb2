package sfo

import (
	"bufio"
	"fmt"
	"strings"
)

// SeparatorMode selects how group separators and blank lines are recognized.
type SeparatorMode int

const (
	// ModeAuto resolves to ModeFixedWidth when the text contains an exact
	// 81-dash line and to ModeCompact otherwise.
	ModeAuto SeparatorMode = iota
	// ModeCompact: any line starting with 19 dashes separates groups; blank
	// lines are dropped and every line is trimmed.
	ModeCompact
	// ModeFixedWidth: only an 81-dash line separates groups; body lines keep
	// their order and blanks and lose trailing whitespace only.
	ModeFixedWidth
)

func (m SeparatorMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCompact:
		return "compact"
	case ModeFixedWidth:
		return "fixed"
	default:
		return fmt.Sprintf("SeparatorMode(%d)", int(m))
	}
}

// ParseSeparatorMode accepts "auto", "compact" and "fixed".
func ParseSeparatorMode(s string) (SeparatorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "compact", "short":
		return ModeCompact, nil
	case "fixed", "fixed_width", "long":
		return ModeFixedWidth, nil
	default:
		return 0, fmt.Errorf("unknown separator mode: '%s'", s)
	}
}

// headerLabel is the label of the group before the first separator.
const headerLabel = "header"

var (
	compactSeparator = strings.Repeat("-", 19)
	fixedSeparator   = strings.Repeat("-", 81)
)

// DetectMode picks the separator convention used by text.
func DetectMode(text string) SeparatorMode {
	sc := newLineScanner(text)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == fixedSeparator {
			return ModeFixedWidth
		}
	}
	return ModeCompact
}

func (m SeparatorMode) isSeparator(trimmed string) bool {
	if m == ModeFixedWidth {
		return trimmed == fixedSeparator
	}
	return strings.HasPrefix(trimmed, compactSeparator)
}

// Segment splits text into groups in file order. Duplicate labels are kept.
func Segment(text string, mode SeparatorMode) ([]Group, error) {
	if mode == ModeAuto {
		mode = DetectMode(text)
	}
	if mode != ModeCompact && mode != ModeFixedWidth {
		return nil, fmt.Errorf("unsupported separator mode: %s", mode)
	}

	groups := []Group{{Label: headerLabel}}
	cur := &groups[0]
	awaitingLabel := false

	sc := newLineScanner(text)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		trimmed := strings.TrimSpace(raw)

		if mode.isSeparator(trimmed) {
			awaitingLabel = true
			continue
		}
		if trimmed == "" {
			if mode == ModeFixedWidth && !awaitingLabel {
				cur.Lines = append(cur.Lines, "")
				cur.LineNumbers = append(cur.LineNumbers, lineNo)
			}
			continue
		}
		if awaitingLabel {
			awaitingLabel = false
			groups = append(groups, Group{Label: trimmed, Line: lineNo})
			cur = &groups[len(groups)-1]
			continue
		}

		line := trimmed
		if mode == ModeFixedWidth {
			line = strings.TrimRight(raw, " \t")
		}
		cur.Lines = append(cur.Lines, line)
		cur.LineNumbers = append(cur.LineNumbers, lineNo)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	return groups, nil
}

// Render rebuilds report text from groups so that Segment(Render(g, m), m)
// yields g again (line numbers aside).
func Render(groups []Group, mode SeparatorMode) string {
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 || g.Label != headerLabel {
			sb.WriteString(fixedSeparator)
			sb.WriteByte('\n')
			sb.WriteString(g.Label)
			sb.WriteByte('\n')
		}
		for _, line := range g.Lines {
			if mode != ModeFixedWidth && strings.TrimSpace(line) == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func newLineScanner(text string) *bufio.Scanner {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	return sc
}
