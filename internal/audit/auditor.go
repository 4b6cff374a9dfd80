// Package audit runs the violation audit stage: retrieve relevant rules,
// ask the model for violations under a strict structured-output contract,
// and normalize the response into a verdict and report.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/llm"
	"github.com/Nagakninja/Compliance-Guardian/internal/prompts"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// Retriever finds the rules most relevant to the state's extracted content.
type Retriever interface {
	Retrieve(ctx context.Context, state *types.AuditState) ([]types.RuleSnippet, error)
}

// Auditor combines retrieved rules with extracted content and produces the
// final verdict. It always terminates the run: every path out of Audit
// leaves FinalStatus set and FinalReport rendered.
type Auditor struct {
	llmClient llm.Client
	retriever Retriever
}

// NewAuditor creates an auditor backed by the given model client and rule
// retriever.
func NewAuditor(llmClient llm.Client, retriever Retriever) *Auditor {
	return &Auditor{llmClient: llmClient, retriever: retriever}
}

// Audit runs the violation audit against the state's extracted content and
// commits verdict, issues, and report to the state.
//
// Failure discipline: retrieval failures and individually malformed issues
// are recoverable (logged, audit continues); no content at all, an
// unreachable model, or an unparsable response are fatal to the verdict
// (FinalStatus = ERROR) but never abort the run.
func (a *Auditor) Audit(ctx context.Context, state *types.AuditState) {
	if !state.HasContent() {
		state.AppendError("no transcript or on-screen text available; nothing to audit")
		state.FinalStatus = types.StatusError
		state.FinalReport = RenderReport(state)
		return
	}

	snippets, err := a.retriever.Retrieve(ctx, state)
	if err != nil {
		// Absence of retrievable rules degrades the audit but does not block
		// it. The prompt tells the model to note missing rules itself.
		state.AppendError("rule retrieval failed, auditing without rule context: %v", err)
		snippets = nil
	}

	prompt := buildAuditPrompt(state, snippets)

	raw, err := a.llmClient.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		state.AppendError("%v", &APICallError{Message: "violation audit", Cause: err})
		state.FinalStatus = types.StatusError
		state.FinalReport = RenderReport(state)
		return
	}

	issues, dropped, err := parseIssues(llm.CleanJSONBlock(raw))
	for _, note := range dropped {
		state.AppendError("%s", note)
	}
	if err != nil {
		state.AppendError("%v", err)
		state.FinalStatus = types.StatusError
		state.FinalReport = RenderReport(state)
		return
	}

	state.ComplianceResults = issues
	if len(issues) > 0 {
		state.FinalStatus = types.StatusFail
	} else {
		state.FinalStatus = types.StatusPass
	}
	state.FinalReport = RenderReport(state)
}

// buildAuditPrompt fills the audit prompt template with the extracted
// content and the retrieved rule snippets.
func buildAuditPrompt(state *types.AuditState, snippets []types.RuleSnippet) string {
	template := prompts.MustGet("audit.json", "compliance-audit")

	transcript := "(not available)"
	if state.Transcript != nil {
		transcript = *state.Transcript
	}
	ocrText := "(not available)"
	if state.OCRText != nil {
		ocrText = *state.OCRText
	}

	return prompts.Format(template, map[string]string{
		"Rules":      formatRules(snippets),
		"Transcript": transcript,
		"OCRText":    ocrText,
	})
}

func formatRules(snippets []types.RuleSnippet) string {
	if len(snippets) == 0 {
		return "(no rules retrieved)"
	}
	var b strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&b, "[Rule %d", i+1)
		if s.RuleID != "" {
			fmt.Fprintf(&b, ", id=%s", s.RuleID)
		}
		if s.Source != "" {
			fmt.Fprintf(&b, ", source=%s", s.Source)
		}
		fmt.Fprintf(&b, "]\n%s\n\n", s.Text)
	}
	return strings.TrimSpace(b.String())
}
