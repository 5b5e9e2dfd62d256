package output

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const informationURI = "https://github.com/dshills/vuln-analyzer"

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, run *Run) error {
	report, err := buildSARIF(run)
	if err != nil {
		return err
	}
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	return nil
}

func buildSARIF(r *Run) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	tool := r.Tool
	if tool == "" {
		tool = "vuln-analyzer"
	}
	run := sarif.NewRunWithInformationURI(tool, informationURI)
	if r.Version != "" {
		version := r.Version
		run.Tool.Driver.Version = &version
	}

	seen := make(map[string]bool)
	for _, res := range r.Results {
		if res.Err != nil || res.Report == nil {
			continue
		}
		for _, f := range res.Report.Findings {
			ruleID := ruleIDFor(f.VulnerabilityType)
			if !seen[ruleID] {
				seen[ruleID] = true
				run.AddRule(ruleID).
					WithDescription(f.VulnerabilityType).
					WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
			}

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(res.Path)).
					WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
			)

			message := f.VulnerabilityType
			if f.Cause != "" {
				message += ": " + f.Cause
			}
			result := sarif.NewRuleResult(ruleID).
				WithMessage(sarif.NewTextMessage(message)).
				WithLevel("warning").
				WithLocations([]*sarif.Location{location})
			props := map[string]interface{}{"runId": r.RunID}
			if f.Fix != "" {
				props["fix"] = f.Fix
			}
			result.Properties = props
			run.AddResult(result)
		}
	}

	report.AddRun(run)
	return report, nil
}

// ruleIDFor derives a stable rule ID from a vulnerability type, so that
// "Buffer Overflow" and "buffer overflow" share a rule.
func ruleIDFor(vulnType string) string {
	var b strings.Builder
	b.WriteString("vuln/")
	dash := false
	for _, r := range strings.ToLower(vulnType) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > len("vuln/") {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
