package intake

import "fmt"

// Reason classifies why an upload was rejected.
type Reason string

const (
	// ReasonTooLarge means the file exceeds the size limit for its kind.
	ReasonTooLarge Reason = "too_large"
	// ReasonUnsupportedType means the detected content type is not accepted.
	ReasonUnsupportedType Reason = "unsupported_type"
	// ReasonUnreadable means the file could not be read or decoded.
	ReasonUnreadable Reason = "unreadable"
	// ReasonEmpty means no file content was provided.
	ReasonEmpty Reason = "empty"
)

// FileError represents a rejected or unreadable upload
type FileError struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("file error (%s): %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("file error (%s): %s", e.Reason, e.Message)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}
