package flows

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/prompts"
	"github.com/jonathan/resuai/internal/schemas"
	"github.com/jonathan/resuai/internal/types"
)

// EditResume applies a natural-language instruction to the resume HTML.
// The result carries the complete replacement content and a short reply.
func EditResume(ctx context.Context, client llm.Client, content, instruction string) (*types.EditedResume, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	prompt, err := prompts.Render(prompts.KeyEditResume, map[string]string{
		"HTMLContent": content,
		"Instruction": instruction,
	})
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Operation: OpEditResume, Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.EditedResume, cleaned); err != nil {
		return nil, &ResponseShapeError{Operation: OpEditResume, Message: "edited resume", Cause: err}
	}

	var edited types.EditedResume
	if err := json.Unmarshal([]byte(cleaned), &edited); err != nil {
		return nil, &ResponseShapeError{Operation: OpEditResume, Message: "decode edited resume", Cause: err}
	}

	edited.NewHTMLContent = llm.CleanHTMLBlock(edited.NewHTMLContent)
	if strings.TrimSpace(edited.NewHTMLContent) == "" {
		return nil, &ResponseShapeError{Operation: OpEditResume, Message: "empty newHtmlContent"}
	}
	edited.Response = strings.TrimSpace(edited.Response)
	return &edited, nil
}
