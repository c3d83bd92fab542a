// Package flows implements the generative model steps: resume analysis,
// avatar generation, resume-to-HTML parsing and conversational editing.
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

// Response shape versions accepted from the analysis model.
const (
	// ShapeDraftString is the legacy shape where the portfolio is a JSON-encoded string.
	ShapeDraftString = 1
	// ShapeStructured is the shape where the portfolio is a nested object.
	ShapeStructured = 2
)

// AnalysisResult is the normalized output of AnalyzeResume.
type AnalysisResult struct {
	Document     *types.PortfolioDocument `json:"portfolio"`
	AvatarPrompt string                   `json:"avatarPrompt"`
	ShapeVersion int                      `json:"shapeVersion"`
}

type analysisEnvelope struct {
	Portfolio      json.RawMessage     `json:"portfolio"`
	PortfolioDraft string              `json:"portfolioDraft"`
	AvatarPrompt   string              `json:"avatarPrompt"`
	ColorPalette   *types.ColorPalette `json:"colorPalette"`
}

// AnalyzeResume sends the resume to the model and extracts a normalized
// PortfolioDocument plus an optional avatar prompt and color palette.
// No retries are attempted: model failures are *APICallError and malformed
// output is *ResponseShapeError.
func AnalyzeResume(ctx context.Context, client llm.Client, upload *intake.Upload) (*AnalysisResult, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrNoUpload
	}

	prompt, err := prompts.Get(prompts.PortfolioFile, prompts.KeyAnalyzeResume)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateJSONWithMedia(ctx, prompt, []llm.Media{{MIMEType: upload.MIMEType, Data: upload.Data}}, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Operation: OpAnalyzeResume, Cause: err}
	}

	return ParseAnalysis(raw)
}

// ParseAnalysis validates and decodes a raw analysis response in either the
// structured or the legacy draft-string shape.
func ParseAnalysis(raw string) (*AnalysisResult, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Analysis, cleaned); err != nil {
		return nil, &ResponseShapeError{Operation: OpAnalyzeResume, Message: "analysis envelope", Cause: err}
	}

	var env analysisEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, &ResponseShapeError{Operation: OpAnalyzeResume, Message: "decode envelope", Cause: err}
	}

	docJSON := string(env.Portfolio)
	version := ShapeStructured
	if len(env.Portfolio) == 0 || string(env.Portfolio) == "null" {
		docJSON = llm.CleanJSONBlock(env.PortfolioDraft)
		version = ShapeDraftString
	}

	if err := schemas.Validate(schemas.Portfolio, docJSON); err != nil {
		return nil, &ResponseShapeError{Operation: OpAnalyzeResume, Message: "portfolio document", Cause: err}
	}

	var doc types.PortfolioDocument
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, &ResponseShapeError{Operation: OpAnalyzeResume, Message: "decode portfolio", Cause: err}
	}
	if doc.ColorPalette == nil && env.ColorPalette != nil {
		doc.ColorPalette = env.ColorPalette
	}
	doc.Normalize()
	doc.DropInvalidFields()

	return &AnalysisResult{
		Document:     &doc,
		AvatarPrompt: strings.TrimSpace(env.AvatarPrompt),
		ShapeVersion: version,
	}, nil
}
