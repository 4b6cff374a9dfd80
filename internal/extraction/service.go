// Package extraction drives an external asynchronous video content
// processing job to completion and harvests transcript, on-screen text, and
// metadata into the audit state.
package extraction

import (
	"context"

	"github.com/Nagakninja/Compliance-Guardian/internal/fetch"
)

// JobState is the lifecycle state of an asynchronous extraction job.
type JobState string

// Extraction job states. Succeeded and Failed are terminal: once reached,
// no further progress occurs without resubmission.
const (
	JobStatePending    JobState = "pending"
	JobStateProcessing JobState = "processing"
	JobStateSucceeded  JobState = "succeeded"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
func (s JobState) Terminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed
}

// JobResult is the payload of a successfully completed extraction job.
type JobResult struct {
	Transcript      string  `json:"transcript"`
	OCRText         string  `json:"ocr_text"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Resolution      string  `json:"resolution,omitempty"`
	Language        string  `json:"language,omitempty"`
}

// Metadata returns the result's media metadata as a generic mapping, with
// absent fields omitted. Returns nil when nothing was extracted.
func (r *JobResult) Metadata() map[string]any {
	md := make(map[string]any)
	if r.DurationSeconds > 0 {
		md["duration_seconds"] = r.DurationSeconds
	}
	if r.Resolution != "" {
		md["resolution"] = r.Resolution
	}
	if r.Language != "" {
		md["language"] = r.Language
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// JobStatus is one observation of an extraction job.
type JobStatus struct {
	State   JobState
	Result  *JobResult // non-nil only when State is JobStateSucceeded
	Message string     // provider detail, set on failure
}

// Service is the external asynchronous video content extraction service.
// Implementations must be safe for reuse across concurrent audit runs; the
// pipeline issues no writes to them.
type Service interface {
	// SubmitJob submits acquired media for processing and returns a job ID.
	SubmitJob(ctx context.Context, handle *fetch.MediaHandle) (string, error)
	// GetJobStatus reports the job's current state, with the result payload
	// once the job has succeeded.
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
}

// Acquirer resolves a video URL to a local media handle. Implemented by
// fetch.VideoAcquirer.
type Acquirer interface {
	Acquire(ctx context.Context, videoURL string) (*fetch.MediaHandle, error)
}
