package llm

import (
	"context"
	"fmt"
	"strings"

	imagegen "google.golang.org/genai"
)

// imageResponseModalities must include IMAGE or the image model rejects the
// call. The model also requires TEXT alongside it.
var imageResponseModalities = []string{"TEXT", "IMAGE"}

// imageModels is the part of the google.golang.org/genai client the image
// tier uses. The generative-ai-go SDK cannot set response modalities.
type imageModels interface {
	GenerateContent(ctx context.Context, model string, contents []*imagegen.Content, config *imagegen.GenerateContentConfig) (*imagegen.GenerateContentResponse, error)
}

func newImageModels(ctx context.Context, apiKey string) (imageModels, error) {
	client, err := imagegen.NewClient(ctx, &imagegen.ClientConfig{
		APIKey:  apiKey,
		Backend: imagegen.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini image client: %w", err)
	}
	return client.Models, nil
}

// GenerateImage asks the image tier for a picture and returns the first
// image blob of the first candidate.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (*Media, error) {
	modelName := c.config.GetModel(TierImage)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", TierImage)
	}
	if c.images == nil {
		return nil, fmt.Errorf("image client not initialized")
	}

	temperature := c.config.Temperature
	resp, err := c.images.GenerateContent(ctx, modelName, imagegen.Text(prompt), &imagegen.GenerateContentConfig{
		ResponseModalities: imageResponseModalities,
		Temperature:        &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	return extractImageFromResponse(resp)
}

func extractImageFromResponse(resp *imagegen.GenerateContentResponse) (*Media, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("no content in response")
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		blob := part.InlineData
		if strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
			return &Media{MIMEType: blob.MIMEType, Data: blob.Data}, nil
		}
	}
	return nil, fmt.Errorf("no image parts in response")
}
