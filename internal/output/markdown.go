package output

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dshills/vuln-analyzer/internal/analysis"
)

// MarkdownWriter outputs a report suitable for issue trackers and PR comments.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, run *Run) error {
	ew := &errWriter{w: w}

	total, failed := 0, 0
	for _, r := range run.Results {
		if r.Err != nil || r.Report == nil {
			failed++
			continue
		}
		total += len(r.Report.Findings)
	}

	ew.printf("## Vulnerability Analysis\n\n")
	ew.printf("| Files | Findings | Failed files |\n")
	ew.printf("|-------|----------|--------------|\n")
	ew.printf("| %d | %d | %d |\n\n", len(run.Results), total, failed)

	for _, r := range run.Results {
		ew.printf("### `%s`\n\n", r.Path)
		if r.Err != nil || r.Report == nil {
			ew.printf("> %s\n\n", mdEscape(Diagnostic(r)))
			continue
		}
		if len(r.Report.Findings) == 0 {
			ew.printf("%s :white_check_mark:\n\n", analysis.Sentinel)
			continue
		}

		lang := inferLang(r.Path)
		ew.printf("<details open>\n<summary>%d finding(s)</summary>\n\n", len(r.Report.Findings))
		ew.printf("| Line | Type | Cause | Fix |\n")
		ew.printf("|------|------|-------|-----|\n")
		for _, f := range r.Report.Findings {
			ew.printf("| %d | %s | %s | %s |\n",
				f.Line, mdEscape(f.VulnerabilityType), mdEscape(f.Cause), mdFix(f.Fix, lang))
		}
		ew.printf("\n</details>\n\n")
		if r.Report.FailedChunks > 0 {
			ew.printf("*%d of %d chunk(s) could not be analyzed.*\n\n", r.Report.FailedChunks, r.Report.Chunks)
		}
	}

	if run.RunID != "" {
		ew.printf("*Run %s*\n", run.RunID)
	}
	return ew.err
}

// mdEscape keeps cell text from breaking the table.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// mdFix renders a fix as inline code when it looks like code.
func mdFix(fix, lang string) string {
	if fix == "" {
		return ""
	}
	if lang != "" && looksLikeCode(fix) && !strings.Contains(fix, "`") {
		return "`" + mdEscape(fix) + "`"
	}
	return mdEscape(fix)
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"()", "->", "==", "!=", "&&", "||", "sizeof", "NULL", "nullptr",
		"[", "];", "{", "}", "#include",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func inferLang(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".inl", ".ipp", ".tpp":
		return "cpp"
	default:
		return ""
	}
}
