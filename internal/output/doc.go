// Package output formats analysis results for display or machine consumption.
//
// Four formats are supported:
//   - text: the plain report format, one block per file (default)
//   - json: the full run as structured JSON
//   - markdown: a findings table per file
//   - sarif: SARIF v2.1.0 for code-scanning dashboards
//
// Use [GetWriter] to obtain a [Writer] for a given format string. The text
// writer is also a [Streamer] so reports can be printed as each file
// finishes. [WriteSummary] renders the run summary table.
package output
