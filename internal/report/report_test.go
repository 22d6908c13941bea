package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convlint/convlint/internal/aggregate"
	"github.com/convlint/convlint/internal/catalog"
)

func fixtureReport() *Report {
	findings := []aggregate.Finding{
		{
			RuleID:      "R1",
			Catalog:     "async-web",
			Domain:      "async-web",
			Severity:    catalog.SeverityFail,
			FilePath:    "server.py",
			Line:        8,
			Title:       "Blocking HTTP call in async handler",
			Remediation: "Replace requests.get with an async client inside get_users.",
			ExampleRef:  "https://example.com/async#blocking",
		},
		{
			RuleID:   "C1",
			Catalog:  "interactive-app",
			Domain:   "interactive-app",
			Severity: catalog.SeverityWarn,
			FilePath: "app.py",
			Line:     3,
			Title:    "Data cache without resource cache",
		},
		{
			RuleID:   "N1",
			Catalog:  "async-web",
			Domain:   "async-web",
			Severity: catalog.SeverityInfo,
			FilePath: "plain.py",
			Line:     0,
			Title:    "No async HTTP client imported",
		},
	}
	warnings := []Warning{
		{Kind: "extraction", Path: "broken.py", Message: `decorator "st.cache_data" at line 1 is not attached to a function`},
	}
	return New("run-fixture", []string{"async-web@1.0", "interactive-app@1.0"}, 4, 120*time.Millisecond, findings, warnings)
}

func TestNewComputesSeverityCounts(t *testing.T) {
	r := fixtureReport()

	assert.Equal(t, 1, r.SeverityCounts["fail"])
	assert.Equal(t, 1, r.SeverityCounts["warn"])
	assert.Equal(t, 1, r.SeverityCounts["info"])
	assert.Equal(t, 4, r.FilesScanned)
	assert.Equal(t, int64(120), r.ElapsedMS)
}

func TestRenderSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSARIF(fixtureReport(), &buf))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	runs := doc["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})

	driver := run["tool"].(map[string]interface{})["driver"].(map[string]interface{})
	assert.Equal(t, "convlint", driver["name"])

	results := run["results"].([]interface{})
	require.Len(t, results, 3)

	first := results[0].(map[string]interface{})
	assert.Equal(t, "R1", first["ruleId"])
	assert.Equal(t, "error", first["level"])

	second := results[1].(map[string]interface{})
	assert.Equal(t, "warning", second["level"])
	third := results[2].(map[string]interface{})
	assert.Equal(t, "note", third["level"])

	props := run["properties"].(map[string]interface{})
	assert.Equal(t, "run-fixture", props["run_id"])
	assert.Equal(t, float64(4), props["files_scanned"])
	require.Len(t, props["warnings"], 1)
}

func TestRenderSARIFIsStable(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, RenderSARIF(fixtureReport(), &first))
	require.NoError(t, RenderSARIF(fixtureReport(), &second))
	assert.Equal(t, first.String(), second.String(), "identical input renders byte-identical artifacts")
}

func TestRenderSARIFAnchorsAbsenceFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSARIF(fixtureReport(), &buf))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	results := doc["runs"].([]interface{})[0].(map[string]interface{})["results"].([]interface{})
	absence := results[2].(map[string]interface{})
	region := absence["locations"].([]interface{})[0].(map[string]interface{})["physicalLocation"].(map[string]interface{})["region"].(map[string]interface{})
	assert.Equal(t, float64(1), region["startLine"], "line 0 findings anchor at the top of the file")
}

func TestRenderHuman(t *testing.T) {
	restore := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = restore }()

	var buf bytes.Buffer
	require.NoError(t, RenderHuman(fixtureReport(), &buf))
	out := buf.String()

	assert.Contains(t, out, "FAIL R1 server.py:8  Blocking HTTP call in async handler")
	assert.Contains(t, out, "Replace requests.get with an async client inside get_users.")
	assert.Contains(t, out, "WARN C1 app.py:3")
	assert.Contains(t, out, "INFO N1 plain.py ", "absence finding renders without a line number")
	assert.Contains(t, out, "Not fully checked:")
	assert.Contains(t, out, "broken.py (extraction)")
	assert.Contains(t, out, "3 finding(s) (1 fail, 1 warn, 1 info) across 4 file(s)")
	assert.Contains(t, out, "catalogs: async-web@1.0, interactive-app@1.0")

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[len(lines)-2], "run run-fixture")
}
