package types

// Severity classifies how serious a detected violation is.
type Severity string

// Severity levels for compliance issues.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// ValidSeverity reports whether s is a recognized severity level.
func ValidSeverity(s Severity) bool {
	return s == SeverityCritical || s == SeverityWarning
}

// ComplianceIssue represents a single detected breach of a compliance rule.
// Values are immutable once parsed out of the model response.
type ComplianceIssue struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Timestamp   string   `json:"timestamp,omitempty"` // position in the video, e.g. "00:00:30"
}
