// Package pipeline provides the high-level orchestration for a single video
// compliance audit run.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/Nagakninja/Compliance-Guardian/internal/db"
	"github.com/Nagakninja/Compliance-Guardian/internal/observability"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// RunState names the controller's position in the run.
type RunState string

// Controller states. Transitions are strictly forward: INIT → EXTRACTING →
// AUDITING → DONE. The audit stage always runs, even when extraction came
// back empty-handed; absence of content is itself a condition the audit
// reports on.
const (
	StateInit       RunState = "INIT"
	StateExtracting RunState = "EXTRACTING"
	StateAuditing   RunState = "AUDITING"
	StateDone       RunState = "DONE"
)

// Extractor is the content extraction stage.
type Extractor interface {
	Extract(ctx context.Context, state *types.AuditState)
}

// Auditor is the violation audit stage.
type Auditor interface {
	Audit(ctx context.Context, state *types.AuditState)
}

// ProgressEvent represents a progress update during pipeline execution.
type ProgressEvent struct {
	State   RunState `json:"state"`
	Message string   `json:"message"`
	RunID   string   `json:"run_id,omitempty"`
	Content any      `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for a single audit run.
type RunOptions struct {
	VideoURL    string
	VideoID     string
	DatabaseURL string
	Verbose     bool
	OnProgress  ProgressCallback
}

// Pipeline wires the two stages together. One Pipeline may serve many
// concurrent runs: each run gets its own state instance, and the stages
// hold no per-run mutable data.
type Pipeline struct {
	extractor Extractor
	auditor   Auditor
}

// New creates a pipeline from its two stages.
func New(extractor Extractor, auditor Auditor) *Pipeline {
	return &Pipeline{extractor: extractor, auditor: auditor}
}

// emitProgress calls the progress callback if configured.
func emitProgress(opts *RunOptions, state RunState, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{State: state, Message: message, Content: content})
	}
}

// Run executes the full audit for one video and returns the final state.
//
// Run never fails out of the pipeline boundary: every path returns a
// complete state with FinalStatus set to PASS, FAIL, or ERROR, and with at
// least one entry in Errors whenever the status is ERROR.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) *types.AuditState {
	printer := observability.NewPrinter(os.Stdout)

	if opts.VideoID == "" {
		opts.VideoID = uuid.NewString()
	}
	state := types.NewAuditState(opts.VideoURL, opts.VideoID)

	if opts.VideoURL == "" {
		state.AppendError("no video URL provided")
		state.FinalStatus = types.StatusError
		state.FinalReport = "# Compliance Audit Report\n\n**Verdict:** ERROR\n\nNo video URL was provided.\n"
		return state
	}

	emitProgress(&opts, StateInit, fmt.Sprintf("Starting audit for video %s", opts.VideoID), nil)

	// Database persistence is best-effort: a missing or unreachable database
	// degrades the run to in-memory only, it never blocks the verdict.
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			runID, err = database.CreateRun(ctx, opts.VideoID, opts.VideoURL)
			if err != nil {
				fmt.Printf("Warning: Failed to create database run: %v\n", err)
				runID = uuid.Nil
			} else if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
			}
		}
	}

	fmt.Printf("Stage 1/2: Extracting content from video %s...\n", opts.VideoID)
	emitProgress(&opts, StateExtracting, "Submitting video for content extraction", nil)

	p.extractor.Extract(ctx, state)

	if opts.Verbose {
		printer.PrintExtractionSummary(state)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepExtraction, db.CategoryExtraction, extractionArtifact(state))
	}
	emitProgress(&opts, StateExtracting, extractionSummary(state), nil)

	// Extraction failures are recoverable: the audit stage runs regardless
	// and reports on whatever content exists, including none.
	fmt.Printf("Stage 2/2: Auditing content for compliance violations...\n")
	emitProgress(&opts, StateAuditing, "Auditing extracted content against compliance rules", nil)

	p.auditor.Audit(ctx, state)

	if opts.Verbose {
		printer.PrintIssues(state.ComplianceResults)
	}

	// The audit stage owns the verdict; if a stage bug ever leaves it unset,
	// the run still terminates with an explicit ERROR rather than an
	// ambiguous blank.
	if state.FinalStatus == "" {
		state.AppendError("audit completed without setting a verdict")
		state.FinalStatus = types.StatusError
	}

	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepVerdict, db.CategoryAudit, state.Result())
		_ = database.SaveTextArtifact(ctx, runID, db.StepReport, db.CategoryAudit, state.FinalReport)
		_ = database.CompleteRun(ctx, runID, string(state.FinalStatus))
	}

	fmt.Printf("Done! Audit finished with status %s.\n", state.FinalStatus)
	emitProgress(&opts, StateDone, fmt.Sprintf("Audit finished: %s", state.FinalStatus), state.Result())

	return state
}

// extractionArtifact is the persisted snapshot of the extraction stage's
// output.
func extractionArtifact(state *types.AuditState) map[string]any {
	artifact := map[string]any{
		"has_content": state.HasContent(),
	}
	if state.Transcript != nil {
		artifact["transcript"] = *state.Transcript
	}
	if state.OCRText != nil {
		artifact["ocr_text"] = *state.OCRText
	}
	if len(state.VideoMetadata) > 0 {
		artifact["video_metadata"] = state.VideoMetadata
	}
	return artifact
}

func extractionSummary(state *types.AuditState) string {
	if !state.HasContent() {
		return "Extraction produced no auditable content"
	}
	parts := ""
	if state.Transcript != nil {
		parts = "transcript"
	}
	if state.OCRText != nil {
		if parts != "" {
			parts += " and "
		}
		parts += "on-screen text"
	}
	return fmt.Sprintf("Extraction complete: %s available", parts)
}
