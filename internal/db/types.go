package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents an audit run record.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	VideoID     string     `json:"video_id"`
	VideoURL    string     `json:"video_url"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Artifact step names.
const (
	StepExtraction = "extraction"
	StepVerdict    = "verdict"
	StepReport     = "report"
)

// Artifact categories.
const (
	CategoryExtraction = "extraction"
	CategoryAudit      = "audit"
)
