// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExtractionSummary outputs what the extraction stage committed to the
// state: which content tracks exist, their lengths, and any metadata.
func (p *Printer) PrintExtractionSummary(state *types.AuditState) {
	if state == nil {
		return
	}

	var sb strings.Builder

	if state.Transcript != nil {
		sb.WriteString(fmt.Sprintf("Transcript: %d chars\n", len(*state.Transcript)))
		preview := strings.TrimSpace(*state.Transcript)
		if len(preview) > 50 {
			preview = preview[:47] + "..."
		}
		if preview != "" {
			sb.WriteString(fmt.Sprintf("  \"%s\"\n", preview))
		}
	} else {
		sb.WriteString("Transcript: (absent)\n")
	}

	if state.OCRText != nil {
		sb.WriteString(fmt.Sprintf("OCR text:   %d chars\n", len(*state.OCRText)))
	} else {
		sb.WriteString("OCR text:   (absent)\n")
	}

	if len(state.VideoMetadata) > 0 {
		sb.WriteString("\nMetadata:\n")
		for _, key := range []string{"duration_seconds", "resolution", "language"} {
			if v, ok := state.VideoMetadata[key]; ok {
				sb.WriteString(fmt.Sprintf("  %s: %v\n", key, v))
			}
		}
	}

	p.printBox("EXTRACTED CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuleSnippets outputs the retrieved rules with their relevance scores.
func (p *Printer) PrintRuleSnippets(snippets []types.RuleSnippet) {
	if len(snippets) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Retrieved %d rules:\n\n", len(snippets)))

	count := min(len(snippets), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := snippets[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%.2f)\n", i+1, s.RuleID, s.Score))
		text := strings.TrimSpace(s.Text)
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", text))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(snippets) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more rules", len(snippets)-maxItemsToShow))
	}

	p.printBox("RETRIEVED RULES", sb.String())
}

// PrintIssues outputs the compliance violations found by the audit.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []types.ComplianceIssue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(issues)))

	for i, issue := range issues {
		description := issue.Description
		if len(description) > 45 {
			description = description[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ [%s] %s\n", issue.Severity, issue.Category))
		sb.WriteString(fmt.Sprintf("  %s\n", description))
		if issue.Timestamp != "" {
			sb.WriteString(fmt.Sprintf("  at %s\n", issue.Timestamp))
		}
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("COMPLIANCE VIOLATIONS", sb.String())
}
