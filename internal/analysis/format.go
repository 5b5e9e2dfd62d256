package analysis

import (
	"fmt"
	"strings"
)

// ReportHeader returns the first line of a text report.
func ReportHeader(path string) string {
	return "# analyzer " + path
}

// FormatFinding renders one finding in the report line template.
func FormatFinding(f Finding) string {
	return fmt.Sprintf("Line %d: %s — %s — FIX: %s", f.Line, f.VulnerabilityType, f.Cause, f.Fix)
}

// Format renders a file's findings as report text, one line per finding in
// the given order.
func Format(path string, findings []Finding) string {
	var b strings.Builder
	b.WriteString(ReportHeader(path))
	b.WriteString("\n")
	if len(findings) == 0 {
		b.WriteString(Sentinel)
		b.WriteString("\n")
		return b.String()
	}
	for _, f := range findings {
		b.WriteString(FormatFinding(f))
		b.WriteString("\n")
	}
	return b.String()
}
