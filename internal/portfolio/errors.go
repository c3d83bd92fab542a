package portfolio

import (
	"errors"

	"github.com/jonathan/resuai/internal/db"
)

var (
	// ErrVersionConflict is returned when the stored document moved on since
	// it was read.
	ErrVersionConflict = db.ErrVersionConflict
	// ErrAlreadyEditing is returned by Begin while an edit is in progress.
	ErrAlreadyEditing = errors.New("portfolio is already being edited")
	// ErrNotEditing is returned by Apply, Save and Cancel in read-only mode.
	ErrNotEditing = errors.New("portfolio is not being edited")
	// ErrIndexOutOfRange is returned when a list mutation targets a missing entry.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidMutation is returned for unknown sections, actions or undecodable values.
	ErrInvalidMutation = errors.New("invalid mutation")
	// ErrInvalidDocument is returned when a document fails validation before save.
	ErrInvalidDocument = errors.New("invalid portfolio document")
	// ErrNotFound is returned when a user has no portfolio yet.
	ErrNotFound = errors.New("portfolio not found")
)
