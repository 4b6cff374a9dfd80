package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

func failedState() *types.AuditState {
	state := types.NewAuditState("url", "vid-r1")
	state.SetTranscript("content")
	state.FinalStatus = types.StatusFail
	state.ComplianceResults = []types.ComplianceIssue{
		{Category: "FTC_DISCLOSURE", Severity: types.SeverityCritical, Description: "no #ad disclosure", Timestamp: "00:00:05"},
		{Category: "HEALTH_CLAIM", Severity: types.SeverityWarning, Description: "vague wellness claim"},
	}
	return state
}

func TestRenderReport_FailVerdict(t *testing.T) {
	report := RenderReport(failedState())

	assert.Contains(t, report, "**Verdict:** FAIL")
	assert.Contains(t, report, "## Violations (2)")
	assert.Contains(t, report, "CRITICAL: 1, WARNING: 1")
	assert.Contains(t, report, "**[CRITICAL] FTC_DISCLOSURE** at 00:00:05: no #ad disclosure")
	assert.Contains(t, report, "**[WARNING] HEALTH_CLAIM**: vague wellness claim")
}

func TestRenderReport_Deterministic(t *testing.T) {
	first := RenderReport(failedState())
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, RenderReport(failedState()))
	}
}

func TestRenderReport_ErrorVerdictListsErrors(t *testing.T) {
	state := types.NewAuditState("url", "vid-r2")
	state.FinalStatus = types.StatusError
	state.AppendError("extraction job j1 did not reach a terminal state within 10m0s")

	report := RenderReport(state)

	assert.Contains(t, report, "**Verdict:** ERROR")
	assert.Contains(t, report, "no content to audit")
	assert.Contains(t, report, "## Errors")
	assert.Contains(t, report, "did not reach a terminal state")
}
