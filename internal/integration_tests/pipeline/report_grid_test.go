package integration_tests

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/parseerr"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/vk/fishgrid/internal/t7"
	"github.com/vk/fishgrid/internal/testutil"
	"github.com/vk/fishgrid/modules/json_file"
)

func TestReportAndGrid_EndToEnd(t *testing.T) {
	capture := &testutil.CaptureModule{}
	files := map[string]string{
		"data/cavity.sfo": cavityReport(t),
		"data/static.T7":  staticTable(),
		"jobs.hcl": `
report "cavity" {
  path = "data/cavity.sfo"
  sink "capture" {
    label = "${job.kind}:${job.name}"
  }
  sink "json_file" {
    path = "out/cavity.json"
  }
}

grid "fields" {
  path              = "data/static.T7"
  variant           = "static"
  channel_type      = "magnetic"
  channel_type_from = report.cavity
  rewrite {
    path = "out/clean.T7"
  }
  sink "capture" {}
}
`,
	}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{
		Modules: []registry.Module{capture, &json_file.Module{}},
	})
	require.NoError(t, res.Err, res.LogOutput)

	rep, ok := capture.Find("report", "cavity")
	require.True(t, ok)
	assert.Equal(t, "report:cavity", rep.Input.Label)
	assert.Equal(t, filepath.Join(res.Dir, "data", "cavity.sfo"), rep.Doc.Source)
	assert.Equal(t, "fixed", rep.Doc.Value.GetAttr("mode").AsString())
	assert.Equal(t, 1.25e8, number(t, rep.Doc.Value.GetAttr("beam_energy").GetAttr("value")))
	ke := rep.Doc.Value.GetAttr("summary").Index(ctyString("kinetic_energy"))
	assert.Equal(t, 125.0, number(t, ke.GetAttr("value")))
	assert.Equal(t, "MeV", ke.GetAttr("unit").AsString())
	assert.Equal(t, 1, rep.Doc.Value.GetAttr("wall_segments").LengthInt())

	// XJFACT = 0 in the header overrides the configured magnetic channel type.
	grid, ok := capture.Find("grid", "fields")
	require.True(t, ok)
	fields := grid.Doc.Value.GetAttr("fields")
	er := fields.Index(ctyString("Er"))
	assert.Equal(t, 3, er.LengthInt())
	assert.Equal(t, 21.0, number(t, er.Index(ctyInt(1)).Index(ctyInt(2))))

	require.FileExists(t, filepath.Join(res.Dir, "out", "cavity.json"))

	clean, err := t7.ReadFile(filepath.Join(res.Dir, "out", "clean.T7"), t7.Static, t7.Electric)
	require.NoError(t, err)
	orig, err := t7.ReadFile(filepath.Join(res.Dir, "data", "static.T7"), t7.Static, t7.Electric)
	require.NoError(t, err)
	assert.Equal(t, orig.Fields, clean.Fields)
}

func TestReportJobs_RunConcurrently(t *testing.T) {
	capture := &testutil.CaptureModule{}
	report := cavityReport(t)
	files := map[string]string{"jobs.hcl": ""}
	hcl := ""
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files["data/"+name+".sfo"] = report
		hcl += "report \"" + name + "\" {\n  path = \"data/" + name + ".sfo\"\n  sink \"capture\" {}\n}\n"
	}
	files["jobs.hcl"] = hcl

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{
		Modules: []registry.Module{capture},
		Workers: 2,
	})
	require.NoError(t, res.Err, res.LogOutput)

	docs := capture.Documents()
	require.Len(t, docs, 6)
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.Equal(t, name, docs[i].Doc.Job)
	}
}

func TestReportJob_FormatErrorFailsRun(t *testing.T) {
	capture := &testutil.CaptureModule{}
	broken := "Variable Code Value Description\n  XJFACT   not-a-number\n"
	files := map[string]string{
		"bad.sfo": broken,
		"jobs.hcl": `
report "bad" {
  path = "bad.sfo"
  sink "capture" {}
}
`,
	}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{capture}})
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, parseerr.ErrFormat), res.Err.Error())
	assert.Contains(t, res.Err.Error(), "report 'bad'")
	assert.Contains(t, res.Err.Error(), "bad.sfo")
	assert.Empty(t, capture.Documents())
}

func TestReportJob_MissingFile(t *testing.T) {
	files := map[string]string{"jobs.hcl": "report \"gone\" {\n  path = \"nowhere.sfo\"\n}\n"}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{&testutil.CaptureModule{}}})
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, parseerr.ErrMissingFile))
	assert.True(t, errors.Is(res.Err, os.ErrNotExist))
}

func TestGridJob_ShortTableFails(t *testing.T) {
	files := map[string]string{
		"short.T7": "0.0 2.0 2\n-4.0 4.0 4\n1 2\n",
		"jobs.hcl": "grid \"g\" {\n  path = \"short.T7\"\n  variant = \"static\"\n  channel_type = \"electric\"\n}\n",
	}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{&testutil.CaptureModule{}}})
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, parseerr.ErrFormat))
	assert.Contains(t, res.Err.Error(), "grid 'g'")
}

func TestSinkFailure_NamesJobAndSink(t *testing.T) {
	files := map[string]string{
		"cavity.sfo": cavityReport(t),
		"jobs.hcl": `
report "cavity" {
  path = "cavity.sfo"
  sink "capture" {
    fail = true
  }
}
`,
	}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{&testutil.CaptureModule{}}})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "report 'cavity': sink 'capture': capture sink failed for cavity")
}

func TestStartup_UnknownSinkPanicsIntoError(t *testing.T) {
	files := map[string]string{
		"jobs.hcl": "report \"cavity\" {\n  path = \"cavity.sfo\"\n  sink \"ftp\" {}\n}\n",
	}

	res := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{&testutil.CaptureModule{}}})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "application startup panicked")
	assert.Contains(t, res.Err.Error(), "unknown sink type")
	assert.Nil(t, res.App)
}
