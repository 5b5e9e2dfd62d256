package output

import (
	"io"

	"github.com/dshills/vuln-analyzer/internal/analysis"
)

// TextWriter outputs the plain report format: a header line followed by
// one line per finding, with reports separated by a blank line.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, run *Run) error {
	for i, r := range run.Results {
		if err := t.WriteResult(w, r, i); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult writes one file's report, or its diagnostic line.
func (t *TextWriter) WriteResult(w io.Writer, r analysis.Result, index int) error {
	ew := &errWriter{w: w}
	if index > 0 {
		ew.println("")
	}
	if r.Err != nil || r.Report == nil {
		ew.println(Diagnostic(r))
		return ew.err
	}
	ew.printf("%s", analysis.Format(r.Report.Path, r.Report.Findings))
	return ew.err
}
