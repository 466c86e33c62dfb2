package t7

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Request describes the interpolation grid asked of SF7. Coordinates are in
// the problem's input units (cm for cylindrical problems).
type Request struct {
	Problem Variant
	ZMin    float64
	ZMax    float64
	NZ      int
	RMin    float64
	RMax    float64
	NR      int
}

// Validate reports requests SF7 would reject.
func (r Request) Validate() error {
	if r.Problem != Oscillating && r.Problem != Static {
		return fmt.Errorf("unknown problem for interpolation request: %s", r.Problem)
	}
	if r.NZ < 1 || r.NR < 1 {
		return fmt.Errorf("interpolation request needs at least one point per axis (nz=%d, nr=%d)", r.NZ, r.NR)
	}
	return nil
}

// WriteRequest writes the .IN7 "Parmela" block. Superfish and Poisson expect
// the axes in opposite order, matching the T7 header each one produces.
func WriteRequest(w io.Writer, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

	bw := bufio.NewWriter(w)
	bw.WriteString("Parmela\n")
	if req.Problem == Oscillating {
		fmt.Fprintf(bw, "%s %s %s %s\n", f(req.ZMin), f(req.RMin), f(req.ZMax), f(req.RMax))
		fmt.Fprintf(bw, "%d %d\n", req.NZ-1, req.NR-1)
	} else {
		fmt.Fprintf(bw, "%s %s %s %s\n", f(req.RMin), f(req.ZMin), f(req.RMax), f(req.ZMax))
		fmt.Fprintf(bw, "%d %d\n", req.NR-1, req.NZ-1)
	}
	bw.WriteString("End\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write interpolation request: %w", err)
	}
	return nil
}
