package audit

import "fmt"

// APICallError indicates a failure when calling the language-model service.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError indicates the model's response could not be parsed as the
// expected structured payload.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse model response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse model response: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
