package audit

import (
	"fmt"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// RenderReport produces the human-readable markdown report for a finished
// audit. The rendering is a pure function of the state's verdict, issue list,
// and errors: identical states always produce identical reports, independent
// of any free-text narrative the model may have returned.
func RenderReport(state *types.AuditState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Compliance Audit Report\n\n")
	fmt.Fprintf(&b, "**Video ID:** %s\n\n", state.VideoID)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", state.FinalStatus)

	switch state.FinalStatus {
	case types.StatusError:
		b.WriteString("The audit could not produce a verdict.\n")
		if !state.HasContent() {
			b.WriteString("No transcript or on-screen text could be extracted from the video, so there was no content to audit.\n")
		}
		if len(state.Errors) > 0 {
			b.WriteString("\n## Errors\n\n")
			for _, e := range state.Errors {
				fmt.Fprintf(&b, "- %s\n", e)
			}
		}
		return b.String()

	case types.StatusPass:
		b.WriteString("No compliance violations were found in the extracted content.\n")
		return b.String()
	}

	critical, warning := countBySeverity(state.ComplianceResults)
	fmt.Fprintf(&b, "## Violations (%d)\n\n", len(state.ComplianceResults))
	fmt.Fprintf(&b, "CRITICAL: %d, WARNING: %d\n\n", critical, warning)

	for _, issue := range state.ComplianceResults {
		if issue.Timestamp != "" {
			fmt.Fprintf(&b, "- **[%s] %s** at %s: %s\n", issue.Severity, issue.Category, issue.Timestamp, issue.Description)
		} else {
			fmt.Fprintf(&b, "- **[%s] %s**: %s\n", issue.Severity, issue.Category, issue.Description)
		}
	}

	return b.String()
}

func countBySeverity(issues []types.ComplianceIssue) (critical, warning int) {
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityCritical:
			critical++
		case types.SeverityWarning:
			warning++
		}
	}
	return critical, warning
}
