package t7

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/parseerr"
)

// staticTable renders a Poisson table with nr=3, nz=5 whose values encode
// their own coordinates: Er = ir + 10*iz, Ez = 100 + ir + 10*iz.
func staticTable(rows int) string {
	var sb strings.Builder
	sb.WriteString("0.0 2.0 2\n")
	sb.WriteString("-4.0 4.0 4\n")
	for k := 0; k < rows; k++ {
		iz, ir := k/3, k%3
		fmt.Fprintf(&sb, "%g %g\n", float64(ir+10*iz), float64(100+ir+10*iz))
	}
	return sb.String()
}

func TestRead_StaticShapeAndTranspose(t *testing.T) {
	g, err := Read(strings.NewReader(staticTable(15)), Static, Electric)
	require.NoError(t, err)

	assert.Equal(t, Axis{Min: 0, Max: 2, Count: 3}, g.R)
	assert.Equal(t, Axis{Min: -4, Max: 4, Count: 5}, g.Z)
	assert.False(t, g.HasFrequency)
	assert.Equal(t, []string{"Er", "Ez"}, g.Channels)

	er, ok := g.Field("Er")
	require.True(t, ok)
	require.Len(t, er, 3)
	for ir := 0; ir < 3; ir++ {
		require.Len(t, er[ir], 5)
		for iz := 0; iz < 5; iz++ {
			assert.Equal(t, float64(ir+10*iz), er[ir][iz], "Er[%d][%d]", ir, iz)
			assert.Equal(t, float64(100+ir+10*iz), g.Fields["Ez"][ir][iz], "Ez[%d][%d]", ir, iz)
		}
	}
}

func TestRead_StaticRowCount(t *testing.T) {
	testCases := []struct {
		name      string
		rows      int
		expectErr bool
	}{
		{name: "exact 15 rows", rows: 15},
		{name: "14 rows is short", rows: 14, expectErr: true},
		{name: "16 rows is long", rows: 16, expectErr: true},
		{name: "empty data block", rows: 0, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(staticTable(tc.rows)), Static, Electric)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, parseerr.ErrFormat), "expected a format error, got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRead_Oscillating(t *testing.T) {
	input := `-1 1 3
1300.5
0 0.5 1
1 2 3 4
5 6 7 8
9 10 11 12
13 14 15 16

17 18 19 20
21 22 23 24
25 26 27 28
29 30 31 32
`
	g, err := Read(strings.NewReader(input), Oscillating, 0)
	require.NoError(t, err)

	assert.Equal(t, Axis{Min: -1, Max: 1, Count: 4}, g.Z)
	assert.Equal(t, Axis{Min: 0, Max: 0.5, Count: 2}, g.R)
	assert.True(t, g.HasFrequency)
	assert.Equal(t, 1300.5, g.Frequency)

	// R is the outer loop: the second block of four rows is ir=1.
	expectedEz := [][]float64{{1, 5, 9, 13}, {17, 21, 25, 29}}
	expectedHphi := [][]float64{{4, 8, 12, 16}, {20, 24, 28, 32}}
	if diff := cmp.Diff(expectedEz, g.Fields["Ez"]); diff != "" {
		t.Errorf("Ez mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expectedHphi, g.Fields["Hphi"]); diff != "" {
		t.Errorf("Hphi mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_Magnetic(t *testing.T) {
	input := "0 1 1\n0 1 0\n1.5E+03 -2.0e1\n3 4\n"
	g, err := Read(strings.NewReader(input), Static, Magnetic)
	require.NoError(t, err)
	assert.Equal(t, []string{"Br", "Bz"}, g.Channels)
	assert.Equal(t, [][]float64{{1500}, {3}}, g.Fields["Br"])
	assert.Equal(t, [][]float64{{-20}, {4}}, g.Fields["Bz"])
}

func TestRead_FormatErrors(t *testing.T) {
	testCases := []struct {
		name    string
		variant Variant
		input   string
		line    int
	}{
		{name: "short axis header", variant: Static, input: "0 1\n0 1 0\n1 2\n", line: 1},
		{name: "long axis header", variant: Static, input: "0 1 1 9\n0 1 0\n1 2\n", line: 1},
		{name: "fractional segments", variant: Static, input: "0 1 1.5\n0 1 0\n1 2\n", line: 1},
		{name: "frequency with extra token", variant: Oscillating, input: "0 1 0\n1300 MHz\n0 1 0\n1 2 3 4\n", line: 2},
		{name: "missing third header line", variant: Oscillating, input: "0 1 0\n1300\n", line: 3},
		{name: "wrong column count", variant: Static, input: "0 1 0\n0 1 0\n1 2 3\n", line: 3},
		{name: "non numeric value", variant: Static, input: "0 1 0\n0 1 0\n1 abc\n", line: 3},
		{name: "huge segment count", variant: Static, input: "0 1 4294967295\n0 1 4294967295\n1 2\n", line: 1},
		{name: "huge fortran segment count", variant: Static, input: "0 1 1e12\n0 1 0\n1 2\n", line: 1},
		{name: "mesh over the point limit", variant: Static, input: "0 1 1048576\n0 1 1048576\n1 2\n", line: 2},
		{name: "oscillating mesh over the point limit", variant: Oscillating, input: "0 1 1048576\n1300\n0 1 1048576\n1 2 3 4\n", line: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input), tc.variant, Electric)
			require.Error(t, err)

			var fe *parseerr.FormatError
			require.True(t, errors.As(err, &fe), "expected *FormatError, got %T: %v", err, err)
			assert.Equal(t, tc.line, fe.Line)
		})
	}
}

func TestRead_FortranSegmentCount(t *testing.T) {
	g, err := Read(strings.NewReader("0 1 1.\n0 1 0.\n1 2\n3 4\n"), Static, Electric)
	require.NoError(t, err)
	assert.Equal(t, 2, g.R.Count)
	assert.Equal(t, 1, g.Z.Count)
}

func TestRead_StaticWithoutChannelType(t *testing.T) {
	_, err := Read(strings.NewReader(staticTable(15)), Static, 0)
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "MISSING.T7"), Static, Electric)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parseerr.ErrMissingFile))

	path := filepath.Join(dir, "BAD.T7")
	require.NoError(t, os.WriteFile(path, []byte(staticTable(14)), 0644))
	_, err = ReadFile(path, Static, Electric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD.T7")
}
