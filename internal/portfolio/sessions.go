package portfolio

import (
	"context"

	"github.com/google/uuid"
)

// EditorStore keeps in-progress editors between requests.
type EditorStore interface {
	// GetEditor returns nil, nil when the user has no editor in progress.
	GetEditor(ctx context.Context, userID uuid.UUID) (*Editor, error)
	PutEditor(ctx context.Context, e *Editor) error
	DeleteEditor(ctx context.Context, userID uuid.UUID) error
}

// Sessions drives a user's Editor across requests, loading it from and
// saving it to an EditorStore.
type Sessions struct {
	Store   Store
	Editors EditorStore
}

// State returns the user's editor: the in-progress one, or a fresh
// read-only editor over the stored document.
func (s *Sessions) State(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	e, err := s.Editors.GetEditor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e != nil && e.Editing() {
		return e, nil
	}
	return s.fresh(ctx, userID)
}

// Begin starts editing from the latest stored document.
func (s *Sessions) Begin(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	existing, err := s.Editors.GetEditor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Editing() {
		return nil, ErrAlreadyEditing
	}

	e, err := s.fresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.Begin(); err != nil {
		return nil, err
	}
	if err := s.Editors.PutEditor(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Apply applies one mutation to the in-progress edit.
func (s *Sessions) Apply(ctx context.Context, userID uuid.UUID, m Mutation) (*Editor, error) {
	e, err := s.editing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.Apply(m); err != nil {
		return nil, err
	}
	if err := s.Editors.PutEditor(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Save persists the in-progress edit. A failed save keeps the edit.
func (s *Sessions) Save(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	e, err := s.editing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.Save(ctx, s.Store); err != nil {
		return nil, err
	}
	if err := s.Editors.DeleteEditor(ctx, userID); err != nil {
		return nil, err
	}
	return e, nil
}

// Cancel discards the in-progress edit.
func (s *Sessions) Cancel(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	e, err := s.editing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.Cancel(); err != nil {
		return nil, err
	}
	if err := s.Editors.DeleteEditor(ctx, userID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Sessions) editing(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	e, err := s.Editors.GetEditor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e == nil || !e.Editing() {
		return nil, ErrNotEditing
	}
	return e, nil
}

func (s *Sessions) fresh(ctx context.Context, userID uuid.UUID) (*Editor, error) {
	stored, err := s.Store.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewEditor(userID, stored), nil
}
