package flows

import (
	"context"

	"github.com/jonathan/resuai/internal/llm"
)

// fakeClient is a scripted llm.Client that records the last request.
type fakeClient struct {
	jsonResponse string
	jsonErr      error
	image        *llm.Media
	imageErr     error

	lastPrompt string
	lastMedia  []llm.Media
	lastTier   llm.ModelTier
	calls      int
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSONWithMedia(ctx, prompt, nil, tier)
}

func (f *fakeClient) GenerateJSONWithMedia(ctx context.Context, prompt string, media []llm.Media, tier llm.ModelTier) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastMedia = media
	f.lastTier = tier
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.jsonResponse, f.jsonErr
}

func (f *fakeClient) GenerateImage(ctx context.Context, prompt string) (*llm.Media, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastTier = llm.TierImage
	return f.image, f.imageErr
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return "fake-" + string(tier) }

func (f *fakeClient) Close() error { return nil }
