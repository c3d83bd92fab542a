package portfolio

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/types"
)

// memStore is an in-memory Store with the same version semantics as the database.
type memStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]*types.StoredPortfolio
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[uuid.UUID]*types.StoredPortfolio)}
}

func (s *memStore) GetPortfolio(_ context.Context, userID uuid.UUID) (*types.StoredPortfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.docs[userID]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.Document = stored.Document.Clone()
	return &out, nil
}

func (s *memStore) SavePortfolio(_ context.Context, userID uuid.UUID, doc *types.PortfolioDocument, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	current, ok := s.docs[userID]
	switch {
	case expectedVersion == 0 && ok:
		return 0, ErrVersionConflict
	case expectedVersion != 0 && (!ok || current.Version != expectedVersion):
		return 0, ErrVersionConflict
	}
	s.saves++
	s.docs[userID] = &types.StoredPortfolio{UserID: userID, Document: doc.Clone(), Version: expectedVersion + 1}
	return expectedVersion + 1, nil
}

// memEditors is an in-memory EditorStore that round-trips through copies.
type memEditors struct {
	mu      sync.Mutex
	editors map[uuid.UUID]Editor
}

func newMemEditors() *memEditors {
	return &memEditors{editors: make(map[uuid.UUID]Editor)}
}

func (m *memEditors) GetEditor(_ context.Context, userID uuid.UUID) (*Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editors[userID]
	if !ok {
		return nil, nil
	}
	e.Persisted = e.Persisted.Clone()
	e.Scratch = e.Scratch.Clone()
	return &e, nil
}

func (m *memEditors) PutEditor(_ context.Context, e *Editor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	cp.Persisted = e.Persisted.Clone()
	cp.Scratch = e.Scratch.Clone()
	m.editors[e.UserID] = cp
	return nil
}

func (m *memEditors) DeleteEditor(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editors, userID)
	return nil
}

// memPictures records stored and removed references.
type memPictures struct {
	stored  []string
	removed []string
	err     error
}

func (p *memPictures) StorePicture(_ context.Context, userID uuid.UUID, upload *intake.Upload) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	ref := "https://cdn.example.com/resuai/users/" + userID.String() + "/avatar-" + uuid.NewString() + upload.Extension()
	p.stored = append(p.stored, ref)
	return ref, nil
}

func (p *memPictures) RemovePicture(_ context.Context, ref string) error {
	p.removed = append(p.removed, ref)
	return nil
}

// fakeClient scripts the model responses used by the builder.
type fakeClient struct {
	analysis   string
	analysisEr error
	image      *llm.Media
	imageErr   error
	imageCalls int
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.analysis, f.analysisEr
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.analysis, f.analysisEr
}

func (f *fakeClient) GenerateJSONWithMedia(ctx context.Context, prompt string, media []llm.Media, tier llm.ModelTier) (string, error) {
	return f.analysis, f.analysisEr
}

func (f *fakeClient) GenerateImage(ctx context.Context, prompt string) (*llm.Media, error) {
	f.imageCalls++
	return f.image, f.imageErr
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return "fake" }

func (f *fakeClient) Close() error { return nil }

var errStoreDown = errors.New("store down")

var pngImage = &llm.Media{MIMEType: "image/png", Data: append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)}

var resumeUpload = &intake.Upload{FileName: "resume.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.4")}
