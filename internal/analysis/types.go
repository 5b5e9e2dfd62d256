package analysis

import "time"

// Sentinel is the phrase a model emits when a chunk has no findings. It is
// also the body of a report without findings.
const Sentinel = "No vulnerabilities found."

// SourceFile is a file read once per run. Lines are 1-indexed through Line.
type SourceFile struct {
	Path  string
	Lines []string
}

// Line returns the text of the n-th line (1-indexed).
func (s SourceFile) Line(n int) string {
	return s.Lines[n-1]
}

// LineRange represents an inclusive, 1-indexed range of line numbers.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines covered by the range.
func (r LineRange) Len() int {
	return r.End - r.Start + 1
}

// Chunk is a contiguous run of lines from one file sent to the model in one request.
type Chunk struct {
	Index     int
	StartLine int
	EndLine   int
	Text      string
}

// Range returns the chunk's line range.
func (c Chunk) Range() LineRange {
	return LineRange{Start: c.StartLine, End: c.EndLine}
}

// Finding is a single vulnerability reported by the model.
type Finding struct {
	Line              int    `json:"line"`
	VulnerabilityType string `json:"vulnerabilityType"`
	Cause             string `json:"cause"`
	Fix               string `json:"fix"`
}

// Timing contains performance metrics for one file.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the analysis result for one file.
type Report struct {
	Path         string    `json:"path"`
	RunID        string    `json:"runId"`
	Findings     []Finding `json:"findings"`
	Chunks       int       `json:"chunks"`
	FailedChunks int       `json:"failedChunks"`
	Timing       Timing    `json:"timing"`
}

// Result pairs a file path with either its report or the error that
// prevented one from being produced.
type Result struct {
	Path   string
	Report *Report
	Err    error
}

func elapsedMs(since time.Time) int64 {
	return time.Since(since).Milliseconds()
}
