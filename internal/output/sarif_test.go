package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/vuln-analyzer/internal/analysis"
)

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := &SARIFWriter{}
	require.NoError(t, w.Write(&buf, &Run{Tool: "vuln-analyzer", Version: "0.1.0"}))

	doc := buf.Bytes()
	require.True(t, gjson.ValidBytes(doc), "invalid SARIF JSON")
	assert.Equal(t, "2.1.0", gjson.GetBytes(doc, "version").String())
	assert.Equal(t, int64(1), gjson.GetBytes(doc, "runs.#").Int())
	assert.Equal(t, int64(0), gjson.GetBytes(doc, "runs.0.results.#").Int())
	assert.Equal(t, "vuln-analyzer", gjson.GetBytes(doc, "runs.0.tool.driver.name").String())
}

func TestSARIFWriter_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	w := &SARIFWriter{}
	require.NoError(t, w.Write(&buf, sampleRun()))

	doc := buf.Bytes()
	require.True(t, gjson.ValidBytes(doc))

	assert.Equal(t, "0.1.0", gjson.GetBytes(doc, "runs.0.tool.driver.version").String())
	assert.Equal(t, int64(2), gjson.GetBytes(doc, "runs.0.tool.driver.rules.#").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(doc, "runs.0.results.#").Int(), "failed files produce no results")

	first := gjson.GetBytes(doc, "runs.0.results.0")
	assert.Equal(t, "vuln/buffer-overflow", first.Get("ruleId").String())
	assert.Equal(t, "warning", first.Get("level").String())
	assert.Equal(t, "Buffer Overflow: gets() doesn't check bounds", first.Get("message.text").String())
	assert.Equal(t, "src/io.c", first.Get("locations.0.physicalLocation.artifactLocation.uri").String())
	assert.Equal(t, int64(4), first.Get("locations.0.physicalLocation.region.startLine").Int())
	assert.Equal(t, "Use fgets() with size limit", first.Get("properties.fix").String())
}

func TestSARIFWriter_SharedRuleForSameType(t *testing.T) {
	run := &Run{Results: []analysis.Result{{
		Path: "a.c",
		Report: &analysis.Report{Path: "a.c", Findings: []analysis.Finding{
			{Line: 1, VulnerabilityType: "Buffer Overflow"},
			{Line: 2, VulnerabilityType: "buffer overflow"},
		}},
	}}}

	var buf bytes.Buffer
	require.NoError(t, (&SARIFWriter{}).Write(&buf, run))
	assert.Equal(t, int64(1), gjson.GetBytes(buf.Bytes(), "runs.0.tool.driver.rules.#").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(buf.Bytes(), "runs.0.results.#").Int())
}

func TestRuleIDFor(t *testing.T) {
	tests := map[string]string{
		"Buffer Overflow":                "vuln/buffer-overflow",
		"Use-After-Free":                 "vuln/use-after-free",
		"  Integer  Overflow (CWE-190) ": "vuln/integer-overflow-cwe-190",
		"":                               "vuln/",
	}
	for in, want := range tests {
		assert.Equal(t, want, ruleIDFor(in), "ruleIDFor(%q)", in)
	}
}
