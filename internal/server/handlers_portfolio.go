package server

import (
	"net/http"
	"time"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/types"
)

// portfolioView is the read-only representation of a stored portfolio.
type portfolioView struct {
	Portfolio *types.PortfolioDocument `json:"portfolio"`
	Version   int64                    `json:"version"`
	UpdatedAt time.Time                `json:"updatedAt,omitempty"`
}

// editorView is the representation of the edit state machine.
type editorView struct {
	Mode      portfolio.Mode           `json:"mode"`
	Version   int64                    `json:"version"`
	Portfolio *types.PortfolioDocument `json:"portfolio"`
	// SkillsText is the skills list in the comma-separated form the skills
	// set action accepts.
	SkillsText string     `json:"skillsText"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
}

func newEditorView(e *portfolio.Editor) editorView {
	view := editorView{
		Mode:      e.Mode,
		Version:   e.Version,
		Portfolio: e.Current(),
		StartedAt: e.StartedAt,
	}
	if view.Portfolio != nil {
		view.SkillsText = types.JoinSkills(view.Portfolio.Skills)
	}
	return view
}

// handleBuildPortfolio builds the portfolio from an uploaded resume.
func (s *Server) handleBuildPortfolio(w http.ResponseWriter, r *http.Request, session Session) {
	upload, err := readUpload(w, r, "file", intake.KindResume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.Builder.Build(r.Context(), session.UserID, upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, result.Version)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGetPortfolio returns the stored portfolio.
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request, session Session) {
	stored, err := portfolio.Load(r.Context(), s.deps.Portfolios, session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, stored.Version)
	s.jsonResponse(w, http.StatusOK, portfolioView{
		Portfolio: stored.Document,
		Version:   stored.Version,
		UpdatedAt: stored.UpdatedAt,
	})
}

// handlePutPortfolio replaces the whole document. If-Match carries the
// version the client read; 0 creates the first version.
func (s *Server) handlePutPortfolio(w http.ResponseWriter, r *http.Request, session Session) {
	expected, err := parseVersion(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Validated after normalization by SaveDocument
	var doc types.PortfolioDocument
	if err := decodeBody(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, version, err := portfolio.SaveDocument(r.Context(), s.deps.Portfolios, session.UserID, &doc, expected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, version)
	s.jsonResponse(w, http.StatusOK, portfolioView{Portfolio: saved, Version: version})
}

// handleUploadPicture sets an uploaded image as the profile picture. Without
// If-Match the picture is written over the current version.
func (s *Server) handleUploadPicture(w http.ResponseWriter, r *http.Request, session Session) {
	var expected int64
	if r.Header.Get("If-Match") != "" {
		v, err := parseVersion(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		expected = v
	} else {
		stored, err := s.deps.Portfolios.GetPortfolio(r.Context(), session.UserID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if stored != nil {
			expected = stored.Version
		}
	}

	upload, err := readUpload(w, r, "file", intake.KindImage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.Builder.SetPicture(r.Context(), session.UserID, upload, expected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, result.Version)
	s.jsonResponse(w, http.StatusOK, portfolioView{Portfolio: result.Document, Version: result.Version})
}

// handleBeginEdit enters editing mode.
func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request, session Session) {
	e, err := s.deps.Sessions.Begin(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newEditorView(e))
}

// handleGetEdit returns the current edit state.
func (s *Server) handleGetEdit(w http.ResponseWriter, r *http.Request, session Session) {
	e, err := s.deps.Sessions.State(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newEditorView(e))
}

// handleApplyEdit applies one field-level mutation to the scratch document.
func (s *Server) handleApplyEdit(w http.ResponseWriter, r *http.Request, session Session) {
	var m portfolio.Mutation
	if err := s.decodeJSON(w, r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.deps.Sessions.Apply(r.Context(), session.UserID, m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newEditorView(e))
}

// handleSaveEdit persists the scratch document.
func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request, session Session) {
	e, err := s.deps.Sessions.Save(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setVersion(w, e.Version)
	s.jsonResponse(w, http.StatusOK, newEditorView(e))
}

// handleCancelEdit discards the scratch document.
func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request, session Session) {
	e, err := s.deps.Sessions.Cancel(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newEditorView(e))
}
