package sfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/parseerr"
)

func TestParseWallSegmentLabel(t *testing.T) {
	testCases := []struct {
		name      string
		label     string
		want      [5]int
		expectErr bool
	}{
		{
			name:  "power and fields",
			label: "Power and fields on wall segment   3 K,L =    1,   2 to    5,   6",
			want:  [5]int{3, 1, 2, 5, 6},
		},
		{
			name:  "fields on segment",
			label: "Fields on segment  12 K,L =   40,   1 to   40,  21",
			want:  [5]int{12, 40, 1, 40, 21},
		},
		{name: "missing K,L", label: "Power and fields on wall segment 3", expectErr: true},
		{name: "missing to", label: "Power and fields on wall segment 3 K,L = 1, 2", expectErr: true},
		{name: "bad index", label: "Power and fields on wall segment 3 K,L = 1, x to 5, 6", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ws, err := parseWallSegmentLabel(tc.label)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, parseerr.ErrFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, [5]int{ws.SegmentNumber, ws.KBeg, ws.LBeg, ws.KEnd, ws.LEnd})
		})
	}
}

func wallGroup(lines ...string) Group {
	g := Group{Label: "Power and fields on wall segment   1 K,L =    1,   1 to    3,   1", Line: 1, Lines: lines}
	for i := range lines {
		g.LineNumbers = append(g.LineNumbers, i+2)
	}
	return g
}

func TestParseWallSegment(t *testing.T) {
	g := wallGroup(
		"Conductor: copper",
		"Frequency = 1300.0 MHz",
		"m     K     L       Z          R        |E|",
		"                  (cm)       (cm)     (MV/m)",
		"1     1     1    0.0        4.0       0.1",
		"                 1.0        4.0       0.2",
		"Summary   Total power = 1.5 W",
		"This prose follows the table",
	)

	ws, err := parseWallSegment(g, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Frequency": "1300.0 MHz", "Summary   Total power": "1.5 W"}, ws.Info)
	require.Len(t, ws.Tables, 1)
	tbl := ws.Table()
	assert.Equal(t, []string{"Z", "R", "E"}, tbl.Columns)
	assert.Equal(t, map[string]string{"Z": "(cm)", "R": "(cm)", "E": "(MV/m)"}, tbl.Units)
	assert.Equal(t, []float64{0, 1}, tbl.Values["Z"])
	assert.Equal(t, []float64{4, 4}, tbl.Values["R"])
	assert.Equal(t, []float64{0.1, 0.2}, tbl.Values["E"])
	assert.Equal(t, 2, tbl.Len())
}

func TestParseWallSegment_MultipleTables(t *testing.T) {
	lines := []string{
		"K    L    Z    R",
		"(cm) (cm)",
		"1 1 0.0 1.0",
		"Summary",
		"K    L    Z    R",
		"(cm) (cm)",
		"2.0 3.0",
		"4.0 5.0",
	}

	_, err := parseWallSegment(wallGroup(lines...), false)
	require.Error(t, err)
	var fe *parseerr.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 6, fe.Line)

	ws, err := parseWallSegment(wallGroup(lines...), true)
	require.NoError(t, err)
	require.Len(t, ws.Tables, 2)
	assert.Equal(t, 1, ws.Tables[0].Len())
	assert.Equal(t, []float64{2, 4}, ws.Tables[1].Values["Z"])
}

func TestParseWallSegment_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		lines []string
	}{
		{name: "no table", lines: []string{"Frequency = 1300 MHz"}},
		{name: "unit count mismatch", lines: []string{"K L Z R", "(cm)"}},
		{name: "missing units", lines: []string{"K L Z R"}},
		{name: "short data row", lines: []string{"K L Z R", "(cm) (cm)", "1 2 3"}},
		{name: "non-numeric value", lines: []string{"K L Z R", "(cm) (cm)", "1.0 abc"}},
		{name: "duplicate column", lines: []string{"K L Z Z", "(cm) (cm)"}},
		{name: "no channels", lines: []string{"K L |", "(cm)"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseWallSegment(wallGroup(tc.lines...), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, parseerr.ErrFormat))
		})
	}
}
