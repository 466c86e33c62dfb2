package integration_tests

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// cavityReport returns the shared SFO fixture.
func cavityReport(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "sfo", "testdata", "cavity.sfo"))
	require.NoError(t, err)
	return string(data)
}

// staticTable renders an electrostatic table with a 3x5 grid whose values
// encode their coordinates: Er = ir + 10*iz.
func staticTable() string {
	var sb strings.Builder
	sb.WriteString("0.0 2.0 2\n")
	sb.WriteString("-4.0 4.0 4\n")
	for k := 0; k < 15; k++ {
		iz, ir := k/3, k%3
		fmt.Fprintf(&sb, "%g %g\n", float64(ir+10*iz), float64(100+ir+10*iz))
	}
	return sb.String()
}

// oscillatingTable renders a 2x2 Superfish table.
func oscillatingTable() string {
	return "0.0 1.0 1\n1300.0\n0.0 1.0 1\n" +
		"1 2 3 4\n" +
		"5 6 7 8\n" +
		"9 10 11 12\n" +
		"13 14 15 16\n"
}

func number(t *testing.T, v cty.Value) float64 {
	t.Helper()
	require.Equal(t, cty.Number, v.Type())
	f, _ := v.AsBigFloat().Float64()
	return f
}

func ctyString(s string) cty.Value { return cty.StringVal(s) }

func ctyInt(i int64) cty.Value { return cty.NumberIntVal(i) }
