package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resuai/internal/intake"
)

// maxJSONBody bounds JSON request bodies. Documents with inline pictures
// are the largest payloads.
const maxJSONBody = 4 << 20

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 64 << 10

// decodeJSON decodes and validates a JSON request body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeBody(w, r, dst); err != nil {
		return err
	}
	return s.validate(dst)
}

// decodeBody decodes a single JSON object without validating it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &intake.FileError{Reason: intake.ReasonTooLarge, Message: "request body too large"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &ErrValidation{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

// validate runs struct validation and reports the first failing field.
func (s *Server) validate(v any) error {
	if err := s.validator.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts validator errors into ErrValidation.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// readUpload reads the multipart file field and validates it for kind.
func readUpload(w http.ResponseWriter, r *http.Request, field string, kind intake.Kind) (*intake.Upload, error) {
	limit := intake.MaxBytes(kind)
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, &intake.FileError{
				Reason:  intake.ReasonTooLarge,
				Message: fmt.Sprintf("file exceeds %d MiB limit", limit>>20),
			}
		case errors.Is(err, http.ErrMissingFile):
			return nil, &intake.FileError{Reason: intake.ReasonEmpty, Message: fmt.Sprintf("multipart field %q is required", field)}
		default:
			return nil, &intake.FileError{Reason: intake.ReasonUnreadable, Message: "invalid multipart form", Cause: err}
		}
	}
	defer file.Close()

	return intake.Read(file, header.Filename, kind)
}

// parseVersion reads an optimistic concurrency version from the If-Match
// header. Both 3 and "3" (quoted ETag form) are accepted.
func parseVersion(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		return 0, &ErrValidation{Field: "If-Match", Message: "required"}
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 0 {
		return 0, &ErrValidation{Field: "If-Match", Message: "must be a non-negative version number"}
	}
	return version, nil
}

// setVersion exposes the document version as an ETag.
func setVersion(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}
