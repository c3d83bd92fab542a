package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/types"
)

// handleUploadDraft starts a new resume draft from an uploaded file.
func (s *Server) handleUploadDraft(w http.ResponseWriter, r *http.Request, session Session) {
	upload, err := readUpload(w, r, "file", intake.KindResume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	draft, err := s.deps.Drafts.Upload(r.Context(), session.UserID, upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, draft.View())
}

// handleGetDraft returns the current draft.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request, session Session) {
	draft, err := s.deps.Drafts.Get(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft.View())
}

// handleDeleteDraft discards the current draft.
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request, session Session) {
	if err := s.deps.Drafts.Delete(r.Context(), session.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDraftChat applies a chat instruction to the draft.
func (s *Server) handleDraftChat(w http.ResponseWriter, r *http.Request, session Session) {
	var req types.ChatRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	draft, err := s.deps.Drafts.Chat(r.Context(), session.UserID, req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft.View())
}

// handleDraftPreview renders the draft to PDF.
func (s *Server) handleDraftPreview(w http.ResponseWriter, r *http.Request, session Session) {
	pdf, err := s.deps.Drafts.Preview(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="resume-preview.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.log.Warn("failed to write preview", "error", err)
	}
}

// handleConvertDraft builds the portfolio from the draft's source file.
func (s *Server) handleConvertDraft(w http.ResponseWriter, r *http.Request, session Session) {
	result, err := s.deps.Drafts.Convert(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, result.Version)
	s.jsonResponse(w, http.StatusOK, result)
}
