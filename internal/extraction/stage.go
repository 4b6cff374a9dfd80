package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// PollPolicy bounds the wait for an extraction job to reach a terminal
// state: exponential backoff from Interval up to MaxInterval, with MaxWait
// capping the total time spent waiting.
type PollPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	MaxWait     time.Duration
}

// DefaultPollPolicy returns the polling discipline used in production.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:    5 * time.Second,
		MaxInterval: 40 * time.Second,
		MaxWait:     10 * time.Minute,
	}
}

// errWaitTimeout signals that the job never reached a terminal state within
// the poll policy's wait bound.
var errWaitTimeout = errors.New("wait bound exceeded")

// Stage is the content extraction stage of the audit pipeline. Every
// failure here is recoverable: the stage appends an error entry and returns,
// leaving the state's content fields unset. The pipeline always continues to
// the audit stage, which reports on absent content itself.
type Stage struct {
	acquirer Acquirer
	service  Service
	policy   PollPolicy
}

// NewStage creates the extraction stage.
func NewStage(acquirer Acquirer, service Service, policy PollPolicy) *Stage {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPollPolicy().Interval
	}
	if policy.MaxInterval < policy.Interval {
		policy.MaxInterval = policy.Interval
	}
	return &Stage{
		acquirer: acquirer,
		service:  service,
		policy:   policy,
	}
}

// Extract resolves the state's video reference, drives the asynchronous
// extraction job to completion, and commits transcript, on-screen text, and
// metadata to the state. The state is the only thing mutated.
func (s *Stage) Extract(ctx context.Context, state *types.AuditState) {
	handle, err := s.acquirer.Acquire(ctx, state.VideoURL)
	if err != nil {
		state.AppendError("video acquisition failed for %s: %v", state.VideoURL, err)
		return
	}
	defer handle.Cleanup()

	jobID, err := s.service.SubmitJob(ctx, handle)
	if err != nil {
		state.AppendError("failed to submit extraction job for video %s: %v", state.VideoID, err)
		return
	}

	status, err := s.awaitTerminal(ctx, jobID)
	switch {
	case errors.Is(err, errWaitTimeout):
		state.AppendError("extraction job %s did not reach a terminal state within %s", jobID, s.policy.MaxWait)
		return
	case err != nil:
		state.AppendError("failed to poll extraction job %s: %v", jobID, err)
		return
	}

	if status.State == JobStateFailed {
		msg := status.Message
		if msg == "" {
			msg = "no detail provided"
		}
		state.AppendError("extraction job %s failed: %s", jobID, msg)
		return
	}

	s.harvest(state, jobID, status.Result)
}

// awaitTerminal polls the job until it reaches a terminal state, the wait
// bound is exceeded, or the context is canceled.
func (s *Stage) awaitTerminal(ctx context.Context, jobID string) (*JobStatus, error) {
	deadline := time.Now().Add(s.policy.MaxWait)
	interval := s.policy.Interval

	for {
		status, err := s.service.GetJobStatus(ctx, jobID)
		if err != nil {
			return nil, &APICallError{Message: fmt.Sprintf("status check for job %s", jobID), Cause: err}
		}
		if status.State.Terminal() {
			return status, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, errWaitTimeout
		}

		sleep := interval
		if sleep > remaining {
			sleep = remaining
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		interval *= 2
		if interval > s.policy.MaxInterval {
			interval = s.policy.MaxInterval
		}
	}
}

// harvest commits a successful job result to the state. Empty fields stay
// absent: "produced nothing" must remain distinguishable from "produced
// empty text" downstream.
func (s *Stage) harvest(state *types.AuditState, jobID string, result *JobResult) {
	if result == nil {
		state.AppendError("extraction job %s succeeded but returned no result payload", jobID)
		return
	}

	if transcript := strings.TrimSpace(result.Transcript); transcript != "" {
		state.SetTranscript(transcript)
	}
	if ocr := strings.TrimSpace(result.OCRText); ocr != "" {
		state.SetOCRText(ocr)
	}
	if md := result.Metadata(); md != nil {
		state.VideoMetadata = md
	}

	if !state.HasContent() {
		state.AppendError("extraction job %s produced neither transcript nor on-screen text", jobID)
	}
}
