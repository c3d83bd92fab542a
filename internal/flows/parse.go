package flows

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/prompts"
	"github.com/jonathan/resuai/internal/schemas"
	"github.com/jonathan/resuai/internal/types"
)

// ParseResume converts the uploaded resume into a single HTML fragment that
// mirrors the original layout. The fragment is not sanitized here.
func ParseResume(ctx context.Context, client llm.Client, upload *intake.Upload) (*types.ParsedResume, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrNoUpload
	}

	prompt, err := prompts.Get(prompts.PortfolioFile, prompts.KeyParseResume)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateJSONWithMedia(ctx, prompt, []llm.Media{{MIMEType: upload.MIMEType, Data: upload.Data}}, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Operation: OpParseResume, Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ParsedResume, cleaned); err != nil {
		return nil, &ResponseShapeError{Operation: OpParseResume, Message: "parsed resume", Cause: err}
	}

	var parsed types.ParsedResume
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &ResponseShapeError{Operation: OpParseResume, Message: "decode parsed resume", Cause: err}
	}

	parsed.HTMLContent = llm.CleanHTMLBlock(parsed.HTMLContent)
	if strings.TrimSpace(parsed.HTMLContent) == "" {
		return nil, &ResponseShapeError{Operation: OpParseResume, Message: "empty htmlContent"}
	}
	return &parsed, nil
}
