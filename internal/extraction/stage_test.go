package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nagakninja/Compliance-Guardian/internal/fetch"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// fakeAcquirer resolves every URL to the same in-memory handle.
type fakeAcquirer struct {
	err      error
	cleanups int
}

func (a *fakeAcquirer) Acquire(_ context.Context, videoURL string) (*fetch.MediaHandle, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &fetch.MediaHandle{
		Path:     "/tmp/" + videoURL,
		MIMEType: "video/mp4",
		Cleanup:  func() { a.cleanups++ },
	}, nil
}

// fakeService walks through a scripted sequence of job statuses.
type fakeService struct {
	submitErr error
	statusErr error
	statuses  []JobStatus
	polls     int
}

func (s *fakeService) SubmitJob(_ context.Context, _ *fetch.MediaHandle) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "job-1", nil
}

func (s *fakeService) GetJobStatus(_ context.Context, _ string) (*JobStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	idx := s.polls
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	s.polls++
	return &s.statuses[idx], nil
}

func fastPolicy(maxWait time.Duration) PollPolicy {
	return PollPolicy{
		Interval:    time.Millisecond,
		MaxInterval: 2 * time.Millisecond,
		MaxWait:     maxWait,
	}
}

func TestExtract_Success(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{
			{State: JobStatePending},
			{State: JobStateProcessing},
			{State: JobStateSucceeded, Result: &JobResult{
				Transcript:      "thirty percent off today only",
				OCRText:         "LIMITED TIME OFFER",
				DurationSeconds: 42,
				Resolution:      "1920x1080",
				Language:        "en-US",
			}},
		},
	}

	state := types.NewAuditState("https://cdn.example.com/v/1.mp4", "vid-1")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.NotNil(t, state.Transcript)
	assert.Equal(t, "thirty percent off today only", *state.Transcript)
	require.NotNil(t, state.OCRText)
	assert.Equal(t, "LIMITED TIME OFFER", *state.OCRText)
	assert.Equal(t, float64(42), state.VideoMetadata["duration_seconds"])
	assert.Equal(t, "1920x1080", state.VideoMetadata["resolution"])
	assert.Equal(t, "en-US", state.VideoMetadata["language"])
	assert.Empty(t, state.Errors)
	assert.Equal(t, 3, service.polls)
	assert.Equal(t, 1, acquirer.cleanups, "media handle is cleaned up")
}

func TestExtract_PollTimeout_IsRecoverable(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{{State: JobStateProcessing}},
	}

	state := types.NewAuditState("url", "vid-2")
	NewStage(acquirer, service, fastPolicy(5*time.Millisecond)).Extract(context.Background(), state)

	require.NotEmpty(t, state.Errors)
	assert.Contains(t, state.Errors[0], "did not reach a terminal state")
	assert.Nil(t, state.Transcript)
	assert.Nil(t, state.OCRText)
	assert.Empty(t, state.FinalStatus, "the stage never sets a verdict")
}

func TestExtract_AcquisitionFailure(t *testing.T) {
	acquirer := &fakeAcquirer{err: errors.New("403 forbidden")}
	service := &fakeService{}

	state := types.NewAuditState("https://cdn.example.com/private.mp4", "vid-3")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "video acquisition failed")
	assert.Equal(t, 0, service.polls, "no job is submitted without media")
}

func TestExtract_SubmitFailure(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{submitErr: errors.New("connection refused")}

	state := types.NewAuditState("url", "vid-4")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "failed to submit extraction job")
	assert.Equal(t, 1, acquirer.cleanups)
}

func TestExtract_StatusCheckFailure(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{statusErr: errors.New("unauthorized")}

	state := types.NewAuditState("url", "vid-5")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "failed to poll extraction job")
}

func TestExtract_JobFailed(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{{State: JobStateFailed, Message: "unsupported codec"}},
	}

	state := types.NewAuditState("url", "vid-6")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "unsupported codec")
	assert.False(t, state.HasContent())
}

func TestExtract_SucceededWithoutPayload(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{{State: JobStateSucceeded}},
	}

	state := types.NewAuditState("url", "vid-7")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "no result payload")
	assert.False(t, state.HasContent())
}

func TestExtract_EmptyFieldsStayAbsent(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{{State: JobStateSucceeded, Result: &JobResult{
			Transcript: "  ",
			OCRText:    "",
		}}},
	}

	state := types.NewAuditState("url", "vid-8")
	NewStage(acquirer, service, fastPolicy(time.Second)).Extract(context.Background(), state)

	assert.Nil(t, state.Transcript, "whitespace-only transcript stays absent")
	assert.Nil(t, state.OCRText)
	require.NotEmpty(t, state.Errors)
	assert.Contains(t, state.Errors[0], "neither transcript nor on-screen text")
}

func TestExtract_ContextCancellationStopsPolling(t *testing.T) {
	acquirer := &fakeAcquirer{}
	service := &fakeService{
		statuses: []JobStatus{{State: JobStateProcessing}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := types.NewAuditState("url", "vid-9")
	NewStage(acquirer, service, PollPolicy{
		Interval:    time.Hour, // never elapses; cancellation must win
		MaxInterval: time.Hour,
		MaxWait:     time.Hour,
	}).Extract(ctx, state)

	require.NotEmpty(t, state.Errors)
	assert.Contains(t, state.Errors[0], "context canceled")
}

func TestJobState_Terminal(t *testing.T) {
	assert.False(t, JobStatePending.Terminal())
	assert.False(t, JobStateProcessing.Terminal())
	assert.True(t, JobStateSucceeded.Terminal())
	assert.True(t, JobStateFailed.Terminal())
}

func TestJobResult_Metadata(t *testing.T) {
	empty := &JobResult{}
	assert.Nil(t, empty.Metadata())

	full := &JobResult{DurationSeconds: 30, Resolution: "1280x720", Language: "de-DE"}
	md := full.Metadata()
	require.NotNil(t, md)
	assert.Len(t, md, 3)
}
