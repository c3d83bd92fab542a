package drafts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/flows"
	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/logger"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/rendering"
	"github.com/jonathan/resuai/internal/types"
)

// Greeting opens the chat history of every new draft.
const Greeting = "Hello! I'm here to help you improve your resume. What changes would you like to make?"

// Service runs the draft workflow: parse an uploaded resume into HTML,
// revise it by chat, preview it as PDF and convert it into a portfolio.
//
// Drafts are written whole. When two requests for the same user overlap,
// the one that finishes last wins.
type Service struct {
	Client   llm.Client
	Store    Store
	Renderer rendering.Renderer
	Builder  *portfolio.Builder
	Log      *logger.Logger

	now func() time.Time
}

// Upload parses the resume into sanitized HTML and starts a new draft,
// replacing any existing one.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, upload *intake.Upload) (*types.ResumeDraft, error) {
	parsed, err := flows.ParseResume(ctx, s.Client, upload)
	if err != nil {
		return nil, err
	}
	content, err := sanitize(flows.OpParseResume, parsed.HTMLContent)
	if err != nil {
		return nil, err
	}

	draft := &types.ResumeDraft{
		HTMLContent:   content,
		FileName:      upload.FileName,
		SourceDataURI: upload.DataURI(),
		Messages:      []types.ChatMessage{{Role: types.RoleAssistant, Content: Greeting}},
		UpdatedAt:     s.clock(),
	}
	if err := s.Store.PutDraft(ctx, userID, draft); err != nil {
		return nil, err
	}
	s.logger().Info("draft created", "user_id", userID, "file", upload.FileName, "html_bytes", len(content))
	return draft, nil
}

// Get returns the user's draft or ErrNoDraft.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*types.ResumeDraft, error) {
	draft, err := s.Store.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrNoDraft
	}
	return draft, nil
}

// Delete discards the user's draft. Deleting a missing draft is not an error.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.Store.DeleteDraft(ctx, userID)
}

// Chat applies a natural-language instruction to the draft. The model
// output replaces the content entirely; the instruction and reply are
// appended to the history only when the edit succeeds.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, instruction string) (*types.ResumeDraft, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, flows.ErrEmptyInstruction
	}
	draft, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	edited, err := flows.EditResume(ctx, s.Client, draft.HTMLContent, instruction)
	if err != nil {
		return nil, err
	}
	content, err := sanitize(flows.OpEditResume, edited.NewHTMLContent)
	if err != nil {
		return nil, err
	}

	draft.HTMLContent = content
	draft.Messages = append(draft.Messages,
		types.ChatMessage{Role: types.RoleUser, Content: instruction},
		types.ChatMessage{Role: types.RoleAssistant, Content: edited.Response},
	)
	draft.UpdatedAt = s.clock()
	if err := s.Store.PutDraft(ctx, userID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Preview renders the current draft content to PDF.
func (s *Service) Preview(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	draft, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rendering.RenderFragment(ctx, s.renderer(), draft.HTMLContent, titleFor(draft.FileName))
}

// Convert builds the user's portfolio from the draft's original file. The
// draft is kept so the user can continue revising it.
func (s *Service) Convert(ctx context.Context, userID uuid.UUID) (*portfolio.BuildResult, error) {
	draft, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft.SourceDataURI == "" {
		return nil, ErrNoSource
	}
	upload, err := intake.ParseDataURI(draft.SourceDataURI)
	if err != nil {
		return nil, err
	}
	upload.FileName = draft.FileName
	return s.Builder.Build(ctx, userID, upload)
}

func sanitize(op, html string) (string, error) {
	content, err := rendering.Sanitize(html)
	if err != nil {
		return "", &flows.ResponseShapeError{Operation: op, Message: "unparseable html", Cause: err}
	}
	if strings.TrimSpace(content) == "" {
		return "", &flows.ResponseShapeError{Operation: op, Message: "html is empty after sanitizing"}
	}
	return content, nil
}

func titleFor(fileName string) string {
	name := strings.TrimSpace(fileName)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

func (s *Service) renderer() rendering.Renderer {
	if s.Renderer == nil {
		return rendering.Unavailable{}
	}
	return s.Renderer
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}
