// Package types provides type definitions for structured data used throughout the compliance audit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// FinalStatus is the terminal verdict of an audit run.
type FinalStatus string

// Terminal verdict values. A run always ends in exactly one of these.
const (
	// StatusPass means the audit completed and found no violations.
	StatusPass FinalStatus = "PASS"
	// StatusFail means the audit completed and found at least one violation.
	StatusFail FinalStatus = "FAIL"
	// StatusError means the audit could not produce a verdict. Never
	// conflated with PASS: "no violations" and "could not determine" are
	// distinct outcomes.
	StatusError FinalStatus = "ERROR"
)

// AuditState is the single mutable record threaded through the pipeline.
// One instance exists per audit run; it is created by the controller and
// mutated in place by each stage, never shared across concurrent runs.
//
// Transcript and OCRText are pointers so that "extraction never ran or
// produced nothing" (nil) stays distinct from "extraction produced empty
// text" (pointer to "").
type AuditState struct {
	VideoURL string `json:"video_url"`
	VideoID  string `json:"video_id"`

	Transcript    *string        `json:"transcript,omitempty"`
	OCRText       *string        `json:"ocr_text,omitempty"`
	VideoMetadata map[string]any `json:"video_metadata,omitempty"`

	ComplianceResults []ComplianceIssue `json:"compliance_results"`
	FinalStatus       FinalStatus       `json:"final_status,omitempty"`
	FinalReport       string            `json:"final_report,omitempty"`

	// Errors is append-only. Entries do not by themselves imply failure: a
	// stage may log a recoverable warning and still produce a usable
	// partial result.
	Errors []string `json:"errors"`
}

// NewAuditState creates the state record for a single run.
func NewAuditState(videoURL, videoID string) *AuditState {
	return &AuditState{
		VideoURL:          videoURL,
		VideoID:           videoID,
		ComplianceResults: []ComplianceIssue{},
		Errors:            []string{},
	}
}

// AppendError records a stage failure or warning. Entries are never
// overwritten or cleared during a run.
func (s *AuditState) AppendError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// HasContent reports whether extraction produced any auditable text.
// Empty strings still count as content: the extraction ran and committed a
// result, it just happened to be empty.
func (s *AuditState) HasContent() bool {
	return s.Transcript != nil || s.OCRText != nil
}

// SetTranscript commits transcript text to the state.
func (s *AuditState) SetTranscript(text string) {
	s.Transcript = &text
}

// SetOCRText commits on-screen text to the state.
func (s *AuditState) SetOCRText(text string) {
	s.OCRText = &text
}

// AuditResult is the caller-facing serialization of a finished run.
type AuditResult struct {
	VideoID           string            `json:"video_id"`
	FinalStatus       FinalStatus       `json:"final_status"`
	ComplianceResults []ComplianceIssue `json:"compliance_results"`
	FinalReport       string            `json:"final_report"`
	Errors            []string          `json:"errors"`
}

// Result projects the state into the output contract returned to callers.
func (s *AuditState) Result() AuditResult {
	results := s.ComplianceResults
	if results == nil {
		results = []ComplianceIssue{}
	}
	errs := s.Errors
	if errs == nil {
		errs = []string{}
	}
	return AuditResult{
		VideoID:           s.VideoID,
		FinalStatus:       s.FinalStatus,
		ComplianceResults: results,
		FinalReport:       s.FinalReport,
		Errors:            errs,
	}
}
