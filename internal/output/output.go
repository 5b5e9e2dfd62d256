package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/vuln-analyzer/internal/analysis"
)

// Run is everything a writer needs to render one invocation.
type Run struct {
	Tool    string
	Version string
	RunID   string
	Backend string
	Model   string
	Results []analysis.Result
}

// Writer writes a run's reports in a specific format.
type Writer interface {
	Write(w io.Writer, run *Run) error
}

// Streamer is a Writer that can emit each file's result as soon as it is
// ready. index is the result's position in the run.
type Streamer interface {
	Writer
	WriteResult(w io.Writer, r analysis.Result, index int) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Open returns the destination for reports: the named file, or stdout when
// outPath is empty. The returned close function is always safe to call.
func Open(outPath string) (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// Diagnostic is the one-line message printed in place of a report for a
// file that could not be analyzed.
func Diagnostic(r analysis.Result) string {
	if analysis.IsFileError(r.Err) {
		return "error: " + r.Err.Error()
	}
	return fmt.Sprintf("error: %s: %v", r.Path, r.Err)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
