// Package parseerr holds the error taxonomy shared by the T7 and SFO parsers.
//
// Structural problems are reported as *FormatError and match ErrFormat through
// errors.Is. A requested input that does not exist matches ErrMissingFile (and
// fs.ErrNotExist). Unrecognized report groups are not errors at all.
package parseerr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("format error")
	// ErrMissingFile is returned when a report or grid file does not exist.
	ErrMissingFile = errors.New("file not found")
)

// FormatError describes input that does not match any recognized fixed layout.
type FormatError struct {
	Source string // file path or stream name, may be empty
	Group  string // report group label, empty for grid files
	Line   int    // 1-based line number, 0 when unknown
	Text   string // offending line
	Msg    string
	Err    error // optional underlying cause, e.g. a strconv error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
		sb.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	if e.Group != "" {
		fmt.Fprintf(&sb, "group %q: ", e.Group)
	}
	sb.WriteString(e.Msg)
	if e.Text != "" {
		fmt.Fprintf(&sb, " (line %q)", e.Text)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is lets errors.Is(err, ErrFormat) match any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Errorf builds a FormatError for a single offending line.
func Errorf(line int, text, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Text: text, Msg: fmt.Sprintf(format, args...)}
}

// WithSource stamps the source name on a FormatError found anywhere in err's
// chain and returns err unchanged otherwise.
func WithSource(err error, source string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Source == "" {
		fe.Source = source
	}
	return err
}

// missingFileError keeps both ErrMissingFile and the os error reachable.
type missingFileError struct {
	path string
	err  error
}

func (e *missingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFile, e.path)
}

func (e *missingFileError) Unwrap() []error {
	return []error{ErrMissingFile, e.err}
}

// Open opens path for reading, mapping a not-exist condition to ErrMissingFile.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &missingFileError{path: path, err: err}
		}
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	return f, nil
}
