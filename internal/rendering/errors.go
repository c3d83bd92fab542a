package rendering

import (
	"errors"
	"fmt"
)

// ErrRendererUnavailable is returned when no headless browser is configured.
var ErrRendererUnavailable = errors.New("pdf renderer unavailable")

// RenderError represents a failed PDF rendering
type RenderError struct {
	Stage string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
