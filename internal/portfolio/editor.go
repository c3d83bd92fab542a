package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/types"
)

// Mode is the presentation state of a user's portfolio.
type Mode string

const (
	ModeReadOnly Mode = "read-only"
	ModeEditing  Mode = "editing"
)

// Editor is the read-only/editing state machine over one user's document.
// Persisted is the last saved document; Scratch exists only while editing
// and is the only thing mutations touch. Editors are plain data so they can
// be kept in the session store between requests.
type Editor struct {
	UserID    uuid.UUID                `json:"userId"`
	Mode      Mode                     `json:"mode"`
	Persisted *types.PortfolioDocument `json:"persisted"`
	Version   int64                    `json:"version"`
	Scratch   *types.PortfolioDocument `json:"scratch,omitempty"`
	StartedAt *time.Time               `json:"startedAt,omitempty"`
}

// NewEditor returns a read-only editor over the stored document. A nil
// stored portfolio yields an empty document at version 0.
func NewEditor(userID uuid.UUID, stored *types.StoredPortfolio) *Editor {
	e := &Editor{UserID: userID, Mode: ModeReadOnly}
	if stored != nil && stored.Document != nil {
		e.Persisted = stored.Document.Clone()
		e.Version = stored.Version
	} else {
		e.Persisted = types.NewPortfolioDocument()
	}
	return e
}

// Editing reports whether an edit is in progress.
func (e *Editor) Editing() bool {
	return e.Mode == ModeEditing
}

// Current returns the document a viewer should see: the scratch copy while
// editing, the persisted document otherwise.
func (e *Editor) Current() *types.PortfolioDocument {
	if e.Editing() && e.Scratch != nil {
		return e.Scratch
	}
	return e.Persisted
}

// Begin enters editing mode with a deep copy of the persisted document.
func (e *Editor) Begin() error {
	if e.Editing() {
		return ErrAlreadyEditing
	}
	e.Scratch = e.Persisted.Clone()
	if e.Scratch == nil {
		e.Scratch = types.NewPortfolioDocument()
	}
	now := time.Now().UTC()
	e.StartedAt = &now
	e.Mode = ModeEditing
	return nil
}

// Apply mutates the scratch document. The persisted document is never touched.
// A failed mutation leaves the scratch unchanged.
func (e *Editor) Apply(m Mutation) error {
	if !e.Editing() {
		return ErrNotEditing
	}
	next := e.Scratch.Clone()
	if err := applyMutation(next, m); err != nil {
		return err
	}
	e.Scratch = next
	return nil
}

// Save writes the scratch document using the version read at Begin. On
// success the editor returns to read-only with the saved document as
// persisted. On failure, including ErrVersionConflict, it stays in editing
// mode so the user can retry or cancel.
func (e *Editor) Save(ctx context.Context, store Store) error {
	if !e.Editing() {
		return ErrNotEditing
	}
	saved, version, err := SaveDocument(ctx, store, e.UserID, e.Scratch, e.Version)
	if err != nil {
		return err
	}
	e.Persisted = saved
	e.Version = version
	e.Scratch = nil
	e.StartedAt = nil
	e.Mode = ModeReadOnly
	return nil
}

// Cancel discards the scratch document and returns to read-only.
func (e *Editor) Cancel() error {
	if !e.Editing() {
		return ErrNotEditing
	}
	e.Scratch = nil
	e.StartedAt = nil
	e.Mode = ModeReadOnly
	return nil
}
