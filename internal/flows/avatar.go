package flows

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/prompts"
)

// GenerateAvatar produces a single avatar image for a short generic
// description such as "female software engineer".
func GenerateAvatar(ctx context.Context, client llm.Client, description string) (*intake.Upload, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyAvatarPrompt
	}

	prompt, err := prompts.Render(prompts.KeyAvatarImage, map[string]string{"Description": description})
	if err != nil {
		return nil, err
	}

	media, err := client.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, &APICallError{Operation: OpGenerateAvatar, Cause: err}
	}
	if media == nil || len(media.Data) == 0 {
		return nil, &ResponseShapeError{Operation: OpGenerateAvatar, Message: "no image returned"}
	}

	// Trust the bytes over the declared type.
	detected := mimetype.Detect(media.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, &ResponseShapeError{Operation: OpGenerateAvatar, Message: "returned data is " + detected.String()}
	}

	return &intake.Upload{
		FileName: "avatar" + detected.Extension(),
		MIMEType: detected.String(),
		Data:     media.Data,
	}, nil
}
