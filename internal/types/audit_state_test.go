// Package types provides type definitions for structured data used throughout the compliance audit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditState_Defaults(t *testing.T) {
	state := NewAuditState("https://cdn.example.com/v/123.mp4", "vid-123")

	assert.Equal(t, "https://cdn.example.com/v/123.mp4", state.VideoURL)
	assert.Equal(t, "vid-123", state.VideoID)
	assert.Nil(t, state.Transcript)
	assert.Nil(t, state.OCRText)
	assert.Nil(t, state.VideoMetadata)
	assert.Empty(t, state.ComplianceResults)
	assert.NotNil(t, state.ComplianceResults, "empty result list must be distinct from nil")
	assert.Empty(t, state.FinalStatus)
	assert.Empty(t, state.Errors)
}

func TestAuditState_AppendError_IsAppendOnly(t *testing.T) {
	state := NewAuditState("url", "id")

	state.AppendError("extraction timed out after %ds", 300)
	state.AppendError("retrieval unavailable")

	require.Len(t, state.Errors, 2)
	assert.Equal(t, "extraction timed out after 300s", state.Errors[0])
	assert.Equal(t, "retrieval unavailable", state.Errors[1])
}

func TestAuditState_HasContent(t *testing.T) {
	tests := []struct {
		name       string
		transcript *string
		ocr        *string
		want       bool
	}{
		{name: "both absent", want: false},
		{name: "transcript only", transcript: strPtr("hello"), want: true},
		{name: "ocr only", ocr: strPtr("SALE ENDS SOON"), want: true},
		{name: "empty transcript still counts", transcript: strPtr(""), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewAuditState("url", "id")
			state.Transcript = tt.transcript
			state.OCRText = tt.ocr
			assert.Equal(t, tt.want, state.HasContent())
		})
	}
}

func TestAuditState_Result_Serialization(t *testing.T) {
	state := NewAuditState("https://cdn.example.com/v/9.mp4", "vid-9")
	state.FinalStatus = StatusFail
	state.FinalReport = "# Compliance Audit Report"
	state.ComplianceResults = []ComplianceIssue{
		{
			Category:    "FTC_DISCLOSURE",
			Severity:    SeverityCritical,
			Description: "Missing required sponsorship disclosure",
			Timestamp:   "00:00:00",
		},
	}
	state.AppendError("ocr harvest incomplete")

	jsonBytes, err := json.Marshal(state.Result())
	require.NoError(t, err)

	assert.Contains(t, string(jsonBytes), `"video_id":"vid-9"`)
	assert.Contains(t, string(jsonBytes), `"final_status":"FAIL"`)
	assert.Contains(t, string(jsonBytes), `"category":"FTC_DISCLOSURE"`)
	assert.Contains(t, string(jsonBytes), `"severity":"CRITICAL"`)
	assert.NotContains(t, string(jsonBytes), "video_url", "result contract omits the input URL")
}

func TestAuditState_Result_NeverNilSlices(t *testing.T) {
	state := &AuditState{VideoID: "vid-1"}

	result := state.Result()

	assert.NotNil(t, result.ComplianceResults)
	assert.NotNil(t, result.Errors)

	jsonBytes, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"compliance_results":[]`)
	assert.Contains(t, string(jsonBytes), `"errors":[]`)
}

func TestValidSeverity(t *testing.T) {
	assert.True(t, ValidSeverity(SeverityCritical))
	assert.True(t, ValidSeverity(SeverityWarning))
	assert.False(t, ValidSeverity(Severity("MEDIUM")))
	assert.False(t, ValidSeverity(Severity("")))
}

func strPtr(s string) *string { return &s }
