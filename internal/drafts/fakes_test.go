package drafts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/types"
)

// queueClient answers JSON requests from a queue of scripted responses.
type queueClient struct {
	responses []string
	err       error
	prompts   []string
}

func (q *queueClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return q.next(ctx, prompt)
}

func (q *queueClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return q.next(ctx, prompt)
}

func (q *queueClient) GenerateJSONWithMedia(ctx context.Context, prompt string, media []llm.Media, tier llm.ModelTier) (string, error) {
	return q.next(ctx, prompt)
}

func (q *queueClient) GenerateImage(ctx context.Context, prompt string) (*llm.Media, error) {
	return nil, errors.New("images disabled in tests")
}

func (q *queueClient) GetModel(tier llm.ModelTier) string { return "fake" }

func (q *queueClient) Close() error { return nil }

func (q *queueClient) next(ctx context.Context, prompt string) (string, error) {
	q.prompts = append(q.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if q.err != nil {
		return "", q.err
	}
	if len(q.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	out := q.responses[0]
	q.responses = q.responses[1:]
	return out, nil
}

// memDrafts is an in-memory Store.
type memDrafts struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]types.ResumeDraft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: make(map[uuid.UUID]types.ResumeDraft)}
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

// fakeKV stands in for a Redis client.
type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			n++
		}
		delete(f.values, key)
		delete(f.ttls, key)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeKV) Ping(context.Context) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	return redis.NewStatusResult("PONG", nil)
}

// recordingRenderer returns a fixed PDF and keeps the last document.
type recordingRenderer struct {
	html string
}

func (r *recordingRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.html = html
	return []byte("%PDF-1.7 fake"), nil
}
