package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Nagakninja/Compliance-Guardian/internal/fetch"
	"github.com/Nagakninja/Compliance-Guardian/internal/llm"
)

// GeminiService implements Service on the Gemini Files API. Uploading a
// video starts server-side processing; the file's state is the job state
// (PROCESSING until the upload becomes ACTIVE or FAILED). Once the file is
// ACTIVE, the first status call runs the multimodal extraction request and
// reports the job as succeeded with its payload.
type GeminiService struct {
	client *genai.Client
	config *llm.Config
}

// NewGeminiService creates an extraction service backed by Gemini.
func NewGeminiService(ctx context.Context, config *llm.Config, apiKey string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, &APICallError{Message: "API key is required"}
	}
	if config == nil {
		config = llm.DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &APICallError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiService{client: client, config: config}, nil
}

// Close releases the underlying Gemini client.
func (s *GeminiService) Close() error {
	return s.client.Close()
}

// SubmitJob uploads the media file and returns the provider file name as the
// job ID.
func (s *GeminiService) SubmitJob(ctx context.Context, handle *fetch.MediaHandle) (string, error) {
	f, err := os.Open(handle.Path)
	if err != nil {
		return "", &APICallError{Message: "failed to open media file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	uploaded, err := s.client.UploadFile(ctx, "", f, &genai.UploadFileOptions{
		MIMEType: handle.MIMEType,
	})
	if err != nil {
		return "", &APICallError{Message: "file upload failed", Cause: err}
	}

	return uploaded.Name, nil
}

// GetJobStatus maps the uploaded file's state onto the job lifecycle. When
// the file is ready, the extraction request runs inline and its structured
// payload becomes the job result.
func (s *GeminiService) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	file, err := s.client.GetFile(ctx, jobID)
	if err != nil {
		return nil, &APICallError{Message: fmt.Sprintf("failed to look up file %s", jobID), Cause: err}
	}

	switch file.State {
	case genai.FileStateProcessing, genai.FileStateUnspecified:
		return &JobStatus{State: JobStateProcessing}, nil
	case genai.FileStateFailed:
		return &JobStatus{State: JobStateFailed, Message: "provider reported processing failure"}, nil
	case genai.FileStateActive:
		result, err := s.extractContent(ctx, file)
		if err != nil {
			return &JobStatus{State: JobStateFailed, Message: err.Error()}, nil
		}
		// Best effort: the provider garbage-collects files after 48h anyway.
		_ = s.client.DeleteFile(ctx, jobID)
		return &JobStatus{State: JobStateSucceeded, Result: result}, nil
	default:
		return nil, &APICallError{Message: fmt.Sprintf("unknown file state %v for job %s", file.State, jobID)}
	}
}

// extractContent runs the multimodal extraction request against the active
// file and parses the structured payload.
func (s *GeminiService) extractContent(ctx context.Context, file *genai.File) (*JobResult, error) {
	modelName := s.config.GetModel(llm.TierStandard)
	if modelName == "" {
		return nil, &APICallError{Message: "no model configured for content extraction"}
	}

	model := s.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	prompt := llm.BuildExtractionPrompt(llm.VideoContentSchema(), "")

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: file.MIMEType, URI: file.URI},
		genai.Text(prompt),
	)
	if err != nil {
		return nil, &APICallError{Message: "content extraction request failed", Cause: err}
	}

	text, err := joinTextParts(resp)
	if err != nil {
		return nil, err
	}

	var result JobResult
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &result); err != nil {
		return nil, &ParseError{Message: "malformed extraction payload", Cause: err}
	}

	return &result, nil
}

// joinTextParts concatenates the text parts of the first candidate.
func joinTextParts(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &ParseError{Message: "no candidates in extraction response"}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &ParseError{Message: "no content in extraction response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &ParseError{Message: "no text parts in extraction response"}
	}

	return strings.Join(parts, ""), nil
}
