package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/vuln-analyzer/internal/analysis"
)

// JSONWriter outputs the full run as JSON.
type JSONWriter struct{}

type jsonRun struct {
	Tool    string     `json:"tool"`
	Version string     `json:"version"`
	RunID   string     `json:"runId"`
	Backend string     `json:"backend,omitempty"`
	Model   string     `json:"model,omitempty"`
	Files   []jsonFile `json:"files"`
}

type jsonFile struct {
	Path         string             `json:"path"`
	Error        string             `json:"error,omitempty"`
	Findings     []analysis.Finding `json:"findings"`
	Chunks       int                `json:"chunks"`
	FailedChunks int                `json:"failedChunks"`
	Timing       *analysis.Timing   `json:"timing,omitempty"`
}

func (j *JSONWriter) Write(w io.Writer, run *Run) error {
	out := jsonRun{
		Tool:    run.Tool,
		Version: run.Version,
		RunID:   run.RunID,
		Backend: run.Backend,
		Model:   run.Model,
		Files:   make([]jsonFile, 0, len(run.Results)),
	}
	for _, r := range run.Results {
		f := jsonFile{Path: r.Path, Findings: []analysis.Finding{}}
		if r.Err != nil || r.Report == nil {
			f.Error = Diagnostic(r)
		} else {
			if len(r.Report.Findings) > 0 {
				f.Findings = r.Report.Findings
			}
			f.Chunks = r.Report.Chunks
			f.FailedChunks = r.Report.FailedChunks
			timing := r.Report.Timing
			f.Timing = &timing
		}
		out.Files = append(out.Files, f)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
