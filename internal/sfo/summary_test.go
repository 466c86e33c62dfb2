package sfo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/parseerr"
)

func TestParseSummaryLine(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want []summaryEntry
	}{
		{
			name: "field normalization",
			line: "Field normalization (NORM = 0):     EZERO =    1.00000 MV/m",
			want: []summaryEntry{{"Enorm", Quantity{1, "MV/m"}}},
		},
		{
			name: "integration start",
			line: "for the integration path from point Z1,R1 =     50.50000 cm,   0.00000 cm",
			want: []summaryEntry{
				{"integration_Z1", Quantity{50.5, "cm"}},
				{"integration_R1", Quantity{0, "cm"}},
			},
		},
		{
			name: "integration end",
			line: "to ending point                     Z2,R2 =     50.51000 cm,   0.00000 cm",
			want: []summaryEntry{
				{"integration_Z2", Quantity{50.51, "cm"}},
				{"integration_R2", Quantity{0, "cm"}},
			},
		},
		{
			name: "beta and kinetic energy",
			line: "Beta = 0.9999  Kinetic energy = 1.000E+04 MeV",
			want: []summaryEntry{
				{"beta", Quantity{0.9999, ""}},
				{"kinetic_energy", Quantity{1e4, "MeV"}},
			},
		},
		{
			name: "Q and shunt impedance",
			line: "Q    =  0.334933E+10      Shunt impedance =  2001715.397 MOhm/m",
			want: []summaryEntry{
				{"Q", Quantity{3349330000, ""}},
				{"Shunt impedance", Quantity{2001715.397, "MOhm/m"}},
			},
		},
		{
			name: "Rs*Q and ZTT",
			line: "Rs*Q =    81.364 Ohm                Z*T*T =  1956056.397 MOhm/m",
			want: []summaryEntry{
				{"Rs*Q", Quantity{81.364, "Ohm"}},
				{"Z*T*T", Quantity{1956056.397, "MOhm/m"}},
			},
		},
		{
			name: "r/Q and wake loss",
			line: "r/Q  =   134.323 Ohm  Wake loss parameter =      0.04044 V/pC",
			want: []summaryEntry{
				{"r/Q", Quantity{134.323, "Ohm"}},
				{"Wake loss parameter", Quantity{0.04044, "V/pC"}},
			},
		},
		{
			name: "average magnetic field",
			line: "Average magnetic field on the outer wall  =      16678.8 A/m, 0.337887 mW/cm^2",
			want: []summaryEntry{{"AvgH", Quantity{16678.8, "A/m"}}},
		},
		{
			name: "maximum H",
			line: "Maximum H (at Z,R = 25.1487,18.4727)      =       41189. A/m, 2.06066 mW/cm^2",
			want: []summaryEntry{
				{"MaxH_z", Quantity{25.1487, "cm"}},
				{"MaxH_r", Quantity{18.4727, "cm"}},
				{"MaxH", Quantity{41189, "A/m"}},
			},
		},
		{
			name: "maximum E",
			line: "Maximum E (at Z,R = 49.9969,0.624269)     =      41.1564 MV/m, 2.84161 Kilp.",
			want: []summaryEntry{
				{"MaxE_z", Quantity{49.9969, "cm"}},
				{"MaxE_r", Quantity{0.624269, "cm"}},
				{"MaxE", Quantity{41.1564, "MV/m"}},
			},
		},
		{
			name: "generic with unit",
			line: "Frequency                                 =   1300.12345 MHz",
			want: []summaryEntry{{"Frequency", Quantity{1300.12345, "MHz"}}},
		},
		{
			name: "generic without unit",
			line: "Transit-time factor = 0.7571",
			want: []summaryEntry{{"Transit-time factor", Quantity{0.7571, ""}}},
		},
		{
			name: "prose",
			line: "Superfish cavity computed with default settings",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSummaryLine(tc.line)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(summaryEntry{}), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("parseSummaryLine() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSummaryLine_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		line string
	}{
		{name: "non-numeric value", line: "Frequency = fast MHz"},
		{name: "missing value", line: "Frequency ="},
		{name: "Q line with one pair", line: "Q    =  0.334933E+10"},
		{name: "integration point without R", line: "for the integration path from point Z1,R1 =     50.50000 cm"},
		{name: "peak without location", line: "Maximum E = 41.1564 MV/m"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSummaryLine(tc.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, parseerr.ErrFormat))
		})
	}
}

func TestParseSummary_StopsAtBlankAndLastWins(t *testing.T) {
	g := Group{
		Label: summaryPrefix,
		Lines: []string{
			"",
			"Frequency = 1300 MHz",
			"Beta = 0.5  Kinetic energy = 80 MeV",
			"Frequency = 1301 MHz",
			"",
			"Frequency = 9999 MHz",
		},
	}

	s, err := parseSummary(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"Frequency", "beta", "kinetic_energy"}, s.Keys)
	q, ok := s.Get("Frequency")
	require.True(t, ok)
	assert.Equal(t, Quantity{Value: 1301, Unit: "MHz"}, q)
	assert.Equal(t, KindSummary, s.Kind())
}
