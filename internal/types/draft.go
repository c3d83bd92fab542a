package types

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	// RoleUser marks an instruction typed by the user.
	RoleUser ChatRole = "user"
	// RoleAssistant marks a reply produced by the edit model.
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the conversational revision history.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ResumeDraft is the ephemeral, session-scoped working copy of a resume.
// It is never written to the document store as such.
type ResumeDraft struct {
	HTMLContent   string        `json:"htmlContent"`
	FileName      string        `json:"fileName,omitempty"`
	SourceDataURI string        `json:"sourceDataUri,omitempty"`
	Messages      []ChatMessage `json:"messages"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ParsedResume is the output of the parse-to-HTML model flow.
type ParsedResume struct {
	HTMLContent string `json:"htmlContent"`
}

// EditedResume is the output of the conversational edit model flow.
// NewHTMLContent is a complete replacement, never a diff.
type EditedResume struct {
	NewHTMLContent string `json:"newHtmlContent"`
	Response       string `json:"response"`
}

// ChatRequest represents a conversational edit instruction.
type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// DraftView is the API representation of a draft. The encoded source
// file is omitted to keep responses small.
type DraftView struct {
	HTMLContent string        `json:"htmlContent"`
	FileName    string        `json:"fileName,omitempty"`
	HasSource   bool          `json:"hasSource"`
	Messages    []ChatMessage `json:"messages"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// View converts a draft into its API representation.
func (d *ResumeDraft) View() DraftView {
	messages := d.Messages
	if messages == nil {
		messages = []ChatMessage{}
	}
	return DraftView{
		HTMLContent: d.HTMLContent,
		FileName:    d.FileName,
		HasSource:   d.SourceDataURI != "",
		Messages:    messages,
		UpdatedAt:   d.UpdatedAt,
	}
}
