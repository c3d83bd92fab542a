package server

import (
	"net/http"

	"github.com/jonathan/resuai/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	srv         *Server
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, srv *Server) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		srv:         srv,
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := h.srv.decodeJSON(w, r, &req); err != nil {
		h.srv.writeError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.srv.writeError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := h.srv.decodeJSON(w, r, &req); err != nil {
		h.srv.writeError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.srv.writeError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// UpdatePassword changes the session user's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request, session Session) {
	var req types.UpdatePasswordRequest
	if err := h.srv.decodeJSON(w, r, &req); err != nil {
		h.srv.writeError(w, r, err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), session.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.srv.writeError(w, r, err)
		return
	}

	h.srv.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

// Me returns the session user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, session Session) {
	user, err := h.userService.GetUser(r.Context(), session.UserID)
	if err != nil {
		h.srv.writeError(w, r, err)
		return
	}
	h.srv.jsonResponse(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.srv.writeError(w, r, err)
		return
	}
	h.srv.jsonResponse(w, status, types.LoginResponse{User: user, Token: token})
}
