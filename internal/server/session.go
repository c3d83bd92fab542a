package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/server/middleware"
)

// Session identifies the authenticated caller of a request.
type Session struct {
	UserID uuid.UUID
}

// sessionHandler is a handler that runs only for authenticated requests.
type sessionHandler func(w http.ResponseWriter, r *http.Request, session Session)

// requireSession guards next: requests without a valid bearer token get 401
// and next never runs. User-scoped handlers take the user from the session,
// never from the URL.
func (s *Server) requireSession(next sessionHandler) http.HandlerFunc {
	validator := s.deps.JWT.AsTokenValidator()
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.Authenticate(validator, r)
		if err != nil {
			s.log.Debug("rejected unauthenticated request", "path", r.URL.Path, "reason", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="resuai"`)
			s.writeError(w, r, &ErrUnauthenticated{})
			return
		}
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
		next(w, r, Session{UserID: userID})
	}
}
