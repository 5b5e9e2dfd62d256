package analysis

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vuln-analyzer/internal/cache"
	"github.com/dshills/vuln-analyzer/internal/llm"
)

// fakeGenerator answers each call from a script, keyed by call order.
type fakeGenerator struct {
	responses []string
	errs      map[int]error
	prompts   []llm.Prompt
	params    []llm.Params
	chat      bool
}

func (f *fakeGenerator) Generate(_ context.Context, p llm.Prompt, params llm.Params) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, p)
	f.params = append(f.params, params)
	if err := f.errs[i]; err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return Sentinel, nil
}

func (f *fakeGenerator) Chat() bool   { return f.chat }
func (f *fakeGenerator) Name() string { return "fake" }

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func tenLines() string {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		b.WriteString("stmt();\n")
	}
	return b.String()
}

func TestAnalyzeFile_DedupAcrossChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "npd.c", tenLines())

	dup := "Line 10: Null Pointer Dereference — ptr not checked — FIX: add null check"
	gen := &fakeGenerator{responses: []string{dup, "Line 2: Double Free — p freed twice — FIX: null p\n" + dup}}
	a := New(gen, Options{Chunker: Chunker{Budget: 5}})

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)
	assert.Len(t, gen.prompts, 2)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, 2, report.Findings[0].Line)
	assert.Equal(t, 10, report.Findings[1].Line)
	assert.Equal(t, a.RunID(), report.RunID)
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
}

func TestAnalyzeFile_NoFindings(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "clean.c", tenLines())

	gen := &fakeGenerator{responses: []string{"No vulnerabilities found.", "stmt();\nstmt();"}}
	a := New(gen, Options{Chunker: Chunker{Budget: 5}})

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
	assert.Equal(t, "# analyzer "+path+"\n"+Sentinel+"\n", Format(report.Path, report.Findings))
}

func TestAnalyzeFile_GenerationFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "partial.c", tenLines())

	gen := &fakeGenerator{
		responses: []string{"", "Line 9: Format String — printf(s) — FIX: printf(\"%s\", s)"},
		errs:      map[int]error{0: &llm.GenerationError{StatusCode: 500, Body: "out of memory"}},
	}
	a := New(gen, Options{Chunker: Chunker{Budget: 5}})

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.FailedChunks)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, 9, report.Findings[0].Line)
}

func TestAnalyzeFile_UnreadableFile(t *testing.T) {
	gen := &fakeGenerator{}
	a := New(gen, Options{})

	_, err := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.c"))
	require.Error(t, err)
	assert.True(t, IsFileError(err))
	assert.Empty(t, gen.prompts, "model must not be called for an unreadable file")
}

func TestAnalyzeFile_NoSplitSendsOneChunk(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "big.c", strings.Repeat("a b c d e f g h\n", 500))

	gen := &fakeGenerator{}
	a := New(gen, Options{Chunker: Chunker{Budget: 10, NoSplit: true}})

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.Len(t, gen.prompts, 1)
}

func TestAnalyzeFile_EmptyFile(t *testing.T) {
	path := writeSource(t, t.TempDir(), "empty.c", "")
	gen := &fakeGenerator{}

	report, err := New(gen, Options{}).AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Chunks)
	assert.Empty(t, report.Findings)
	assert.Empty(t, gen.prompts)
}

func TestAnalyzeFile_PassesParamsAndPrompt(t *testing.T) {
	path := writeSource(t, t.TempDir(), "p.c", "gets(buf);\n")
	gen := &fakeGenerator{}
	params := llm.Params{MaxTokens: 512, Temperature: 0.1, Stop: []string{"###"}, RepeatPenalty: 1.1}

	_, err := New(gen, Options{Params: params, NumberLines: true}).AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, gen.params, 1)
	assert.Equal(t, params, gen.params[0])
	assert.Contains(t, gen.prompts[0].User, "1| gets(buf);")
}

func TestAnalyzeFile_VerboseEchoesRawText(t *testing.T) {
	path := writeSource(t, t.TempDir(), "v.c", "gets(buf);\n")
	raw := "Sure! Here is my analysis.\nLine 1: Buffer Overflow — gets — FIX: fgets"
	var echo bytes.Buffer

	report, err := New(&fakeGenerator{responses: []string{raw}}, Options{Raw: &echo}).
		AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, echo.String(), "Sure! Here is my analysis.")
	assert.Contains(t, echo.String(), "lines 1-1")
	require.Len(t, report.Findings, 1, "echo must not bypass parsing")
}

func TestAnalyzeFile_CacheReusesIdenticalPrompts(t *testing.T) {
	dir := t.TempDir()
	a1 := writeSource(t, dir, "same.c", "gets(buf);\n")

	gen := &fakeGenerator{responses: []string{"Line 1: Buffer Overflow — gets — FIX: fgets"}}
	c := cache.New(true)
	an := New(gen, Options{Cache: c})

	r1, err := an.AnalyzeFile(context.Background(), a1)
	require.NoError(t, err)
	r2, err := an.AnalyzeFile(context.Background(), a1)
	require.NoError(t, err)

	assert.Len(t, gen.prompts, 1, "second identical prompt should hit the cache")
	assert.Equal(t, r1.Findings, r2.Findings)
	assert.Equal(t, 1, c.GetStats().Hits)
}

func TestAnalyzeFile_FailedGenerationNotCached(t *testing.T) {
	path := writeSource(t, t.TempDir(), "f.c", "gets(buf);\n")
	gen := &fakeGenerator{errs: map[int]error{0: errors.New("boom")}}
	an := New(gen, Options{Cache: cache.New(true)})

	_, err := an.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	_, err = an.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 2)
}

func TestRun_ContinuesPastFailedFiles(t *testing.T) {
	dir := t.TempDir()
	good1 := writeSource(t, dir, "a.c", "gets(buf);\n")
	missing := filepath.Join(dir, "missing.c")
	good2 := writeSource(t, dir, "b.c", "strcpy(d, s);\n")

	gen := &fakeGenerator{responses: []string{
		"Line 1: Buffer Overflow — gets — FIX: fgets",
		"Line 1: Buffer Overflow — strcpy — FIX: strlcpy",
	}}
	results := New(gen, Options{}).Run(context.Background(), []string{good1, missing, good2})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Report)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "strcpy", results[2].Report.Findings[0].Cause)
	assert.Equal(t, results[0].Report.RunID, results[2].Report.RunID)
}

func TestRun_CanceledContextSkipsRemainingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.c", "x;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{}
	results := New(gen, Options{}).Run(ctx, []string{path, path})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Empty(t, gen.prompts)
}
