package flows

import (
	"errors"
	"fmt"
)

// Operation names used in errors and logs.
const (
	OpAnalyzeResume  = "analyze resume"
	OpParseResume    = "parse resume"
	OpEditResume     = "edit resume"
	OpGenerateAvatar = "generate avatar"
)

var (
	// ErrEmptyInstruction is returned when an edit instruction is blank.
	ErrEmptyInstruction = errors.New("edit instruction is required")
	// ErrEmptyContent is returned when there is no resume content to edit.
	ErrEmptyContent = errors.New("resume content is required")
	// ErrEmptyAvatarPrompt is returned when the avatar description is blank.
	ErrEmptyAvatarPrompt = errors.New("avatar prompt is required")
	// ErrNoUpload is returned when a flow is called without a file.
	ErrNoUpload = errors.New("upload is required")
)

// APICallError represents a failed call to the generative model
type APICallError struct {
	Operation string
	Cause     error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s: model call failed: %v", e.Operation, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ResponseShapeError represents a model response that does not match the
// expected structure
type ResponseShapeError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ResponseShapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: unexpected response: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: unexpected response: %s", e.Operation, e.Message)
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Cause
}
