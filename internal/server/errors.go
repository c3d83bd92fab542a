package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/db"
	"github.com/jonathan/resuai/internal/drafts"
	"github.com/jonathan/resuai/internal/flows"
	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/rendering"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return "email already registered"
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnauthenticated indicates a missing or invalid session token
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "authentication required"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailErr   *ErrEmailAlreadyExists
		credErr    *ErrInvalidCredentials
		mismatch   *ErrPasswordMismatch
		unauthErr  *ErrUnauthenticated
		notFound   *ErrUserNotFound
		validation *ErrValidation
		fileErr    *intake.FileError
		shapeErr   *flows.ResponseShapeError
		apiErr     *flows.APICallError
		renderErr  *rendering.RenderError
	)

	switch {
	case errors.As(err, &emailErr), errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &credErr), errors.As(err, &mismatch), errors.As(err, &unauthErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, portfolio.ErrNotFound), errors.Is(err, drafts.ErrNoDraft):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.Is(err, portfolio.ErrInvalidDocument),
		errors.Is(err, portfolio.ErrInvalidMutation),
		errors.Is(err, portfolio.ErrIndexOutOfRange),
		errors.Is(err, flows.ErrEmptyInstruction),
		errors.Is(err, flows.ErrEmptyContent),
		errors.Is(err, flows.ErrNoUpload),
		errors.Is(err, drafts.ErrNoSource):
		return http.StatusBadRequest
	case errors.Is(err, portfolio.ErrVersionConflict),
		errors.Is(err, portfolio.ErrAlreadyEditing),
		errors.Is(err, portfolio.ErrNotEditing):
		return http.StatusConflict
	case errors.As(err, &fileErr):
		switch fileErr.Reason {
		case intake.ReasonTooLarge:
			return http.StatusRequestEntityTooLarge
		case intake.ReasonUnsupportedType:
			return http.StatusUnsupportedMediaType
		default:
			return http.StatusBadRequest
		}
	case errors.As(err, &shapeErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, rendering.ErrRendererUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &renderErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text sent to clients. Collaborator failures get
// a generic message; their details are only logged.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusBadGateway:
		return "upstream service failed, please try again"
	case http.StatusServiceUnavailable:
		return "pdf preview is not available on this server"
	case http.StatusUnprocessableEntity:
		return "the model returned an unexpected response, please try again"
	}
	return err.Error()
}
