package server

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resuai/internal/config"
	"github.com/jonathan/resuai/internal/db"
	"github.com/jonathan/resuai/internal/drafts"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/server/ratelimit"
	"github.com/jonathan/resuai/internal/types"
)

// mockDB implements DBClient in memory.
type mockDB struct {
	mu    sync.Mutex
	users map[uuid.UUID]*db.User
}

func newMockDB() *mockDB {
	return &mockDB{users: make(map[uuid.UUID]*db.User)}
}

func (m *mockDB) CreateUser(_ context.Context, name, email, phone, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, db.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, Phone: phone, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *mockDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *mockDB) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

// memPortfolios is an in-memory portfolio.Store with database version semantics.
type memPortfolios struct {
	mu    sync.Mutex
	docs  map[uuid.UUID]*types.StoredPortfolio
	reads int
}

func newMemPortfolios() *memPortfolios {
	return &memPortfolios{docs: make(map[uuid.UUID]*types.StoredPortfolio)}
}

func (s *memPortfolios) GetPortfolio(_ context.Context, userID uuid.UUID) (*types.StoredPortfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	stored, ok := s.docs[userID]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.Document = stored.Document.Clone()
	return &out, nil
}

func (s *memPortfolios) SavePortfolio(_ context.Context, userID uuid.UUID, doc *types.PortfolioDocument, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[userID]
	switch {
	case expectedVersion == 0 && ok:
		return 0, portfolio.ErrVersionConflict
	case expectedVersion != 0 && (!ok || current.Version != expectedVersion):
		return 0, portfolio.ErrVersionConflict
	}
	s.docs[userID] = &types.StoredPortfolio{
		UserID:    userID,
		Document:  doc.Clone(),
		Version:   expectedVersion + 1,
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	return expectedVersion + 1, nil
}

// memEditors is an in-memory portfolio.EditorStore.
type memEditors struct {
	mu      sync.Mutex
	editors map[uuid.UUID]portfolio.Editor
}

func (m *memEditors) GetEditor(_ context.Context, userID uuid.UUID) (*portfolio.Editor, error) {
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

func (m *memEditors) PutEditor(_ context.Context, e *portfolio.Editor) error {
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

// memDrafts is an in-memory drafts.Store.
type memDrafts struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]types.ResumeDraft
}

func (m *memDrafts) GetDraft(_ context.Context, userID uuid.UUID) (*types.ResumeDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[userID]
	if !ok {
		return nil, nil
	}
	d.Messages = append([]types.ChatMessage(nil), d.Messages...)
	return &d, nil
}

func (m *memDrafts) PutDraft(_ context.Context, userID uuid.UUID, draft *types.ResumeDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := *draft
	d.Messages = append([]types.ChatMessage(nil), draft.Messages...)
	m.drafts[userID] = d
	return nil
}

func (m *memDrafts) DeleteDraft(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, userID)
	return nil
}

// scriptedClient answers model calls from a queue of JSON responses.
type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	err       error
}

func (c *scriptedClient) push(responses ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responses...)
}

func (c *scriptedClient) next() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	out := c.responses[0]
	c.responses = c.responses[1:]
	return out, nil
}

func (c *scriptedClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return c.next()
}

func (c *scriptedClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return c.next()
}

func (c *scriptedClient) GenerateJSONWithMedia(context.Context, string, []llm.Media, llm.ModelTier) (string, error) {
	return c.next()
}

func (c *scriptedClient) GenerateImage(context.Context, string) (*llm.Media, error) {
	return nil, errors.New("images disabled in tests")
}

func (c *scriptedClient) GetModel(tier llm.ModelTier) string { return "fake-" + string(tier) }

func (c *scriptedClient) Close() error { return nil }

// fakePDF renders every document to the same bytes.
type fakePDF struct{}

func (fakePDF) RenderPDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.7 preview"), nil
}

// testEnv is a server wired to in-memory collaborators.
type testEnv struct {
	t          *testing.T
	server     *Server
	handler    http.Handler
	jwt        *JWTService
	users      *mockDB
	portfolios *memPortfolios
	drafts     *memDrafts
	client     *scriptedClient
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
		Issuer:          config.DefaultJWTIssuer,
	}
}

// testPasswords uses the minimum bcrypt cost to keep tests fast.
func testPasswords() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: 4}
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	env := &testEnv{
		t:          t,
		jwt:        NewJWTService(testJWTConfig()),
		users:      newMockDB(),
		portfolios: newMemPortfolios(),
		drafts:     &memDrafts{drafts: make(map[uuid.UUID]types.ResumeDraft)},
		client:     &scriptedClient{},
	}
	builder := &portfolio.Builder{Client: env.client, Store: env.portfolios}
	deps := Deps{
		Users:      env.users,
		Portfolios: env.portfolios,
		Sessions: &portfolio.Sessions{
			Store:   env.portfolios,
			Editors: &memEditors{editors: make(map[uuid.UUID]portfolio.Editor)},
		},
		Builder: builder,
		Drafts: &drafts.Service{
			Client:   env.client,
			Store:    env.drafts,
			Renderer: fakePDF{},
			Builder:  builder,
		},
		JWT:       env.jwt,
		Passwords: testPasswords(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(0, deps)
	require.NoError(t, err)
	t.Cleanup(srv.deps.Limiter.Stop)
	env.server = srv
	env.handler = srv.Handler()
	return env
}

func withLimiter(cfg *ratelimit.Config) func(*Deps) {
	return func(d *Deps) { d.Limiter = ratelimit.NewLimiter(cfg) }
}

// token issues a session token for userID.
func (e *testEnv) token(userID uuid.UUID) string {
	e.t.Helper()
	token, err := e.jwt.GenerateToken(userID)
	require.NoError(e.t, err)
	return token
}

// do serves req, authenticated as userID unless it is uuid.Nil.
func (e *testEnv) do(req *http.Request, userID uuid.UUID) *httptest.ResponseRecorder {
	e.t.Helper()
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}
	if req.RemoteAddr == "" {
		req.RemoteAddr = "192.0.2.1:1234"
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var resumePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

// multipartRequest builds a request with a single "file" field.
func multipartRequest(t *testing.T, method, target, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
