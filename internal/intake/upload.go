// Package intake accepts uploaded files, enforces type and size limits and
// converts them to and from the embeddable data URI representation sent to
// the model.
package intake

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind selects the acceptance rules applied to an upload.
type Kind string

const (
	// KindResume accepts PDF, DOC and DOCX documents.
	KindResume Kind = "resume"
	// KindImage accepts PNG, JPEG and WEBP images.
	KindImage Kind = "image"
)

const (
	// MaxResumeBytes is the size limit for resume documents (5 MiB).
	MaxResumeBytes = 5 << 20
	// MaxImageBytes is the size limit for images (1 MiB).
	MaxImageBytes = 1 << 20
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"
	mimeWEBP = "image/webp"
)

var allowedTypes = map[Kind][]string{
	KindResume: {mimePDF, mimeDOC, mimeDOCX},
	KindImage:  {mimePNG, mimeJPEG, mimeWEBP},
}

// containerFallbacks lists generic container types that content sniffing may
// report for Office documents, keyed by file extension.
var containerFallbacks = map[string]struct {
	container string
	mime      string
}{
	".docx": {container: "application/zip", mime: mimeDOCX},
	".doc":  {container: "application/x-ole-storage", mime: mimeDOC},
}

// Upload is an accepted file: its name, detected MIME type and raw bytes.
type Upload struct {
	FileName string
	MIMEType string
	Data     []byte
}

// MaxBytes returns the size limit for the given kind.
func MaxBytes(kind Kind) int64 {
	if kind == KindImage {
		return MaxImageBytes
	}
	return MaxResumeBytes
}

// Read reads at most the size limit for kind from r, detects its type and
// validates it. fileName is used for the Office container fallback and is
// kept on the returned upload.
func Read(r io.Reader, fileName string, kind Kind) (*Upload, error) {
	limit := MaxBytes(kind)
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &FileError{Reason: ReasonUnreadable, Message: "failed to read upload", Cause: err}
	}
	return New(fileName, data, kind)
}

// New validates raw bytes as an upload of the given kind.
func New(fileName string, data []byte, kind Kind) (*Upload, error) {
	if len(data) == 0 {
		return nil, &FileError{Reason: ReasonEmpty, Message: "file is empty"}
	}
	if int64(len(data)) > MaxBytes(kind) {
		return nil, &FileError{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("file exceeds %d MiB limit", MaxBytes(kind)>>20),
		}
	}

	mimeType, err := detectType(fileName, data, kind)
	if err != nil {
		return nil, err
	}

	return &Upload{
		FileName: filepath.Base(fileName),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// detectType sniffs the content type and checks it against the allowed list.
func detectType(fileName string, data []byte, kind Kind) (string, error) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedTypes[kind] {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}

	if kind == KindResume {
		ext := strings.ToLower(filepath.Ext(fileName))
		if fallback, ok := containerFallbacks[ext]; ok && detected.Is(fallback.container) {
			return fallback.mime, nil
		}
	}

	return "", &FileError{
		Reason:  ReasonUnsupportedType,
		Message: fmt.Sprintf("unsupported %s type %s", kind, detected.String()),
	}
}

// DataURI encodes the upload as "data:<mime>;base64,<payload>".
func (u *Upload) DataURI() string {
	return "data:" + u.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}

// Extension returns the canonical file extension for the upload's type.
func (u *Upload) Extension() string {
	if m := mimetype.Lookup(u.MIMEType); m != nil {
		return m.Extension()
	}
	return filepath.Ext(u.FileName)
}

// ParseDataURI decodes a base64 data URI produced by DataURI.
// The declared MIME type is kept as is; callers that need validation should
// pass the bytes through New.
func ParseDataURI(uri string) (*Upload, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, &FileError{Reason: ReasonUnreadable, Message: "not a data URI"}
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, &FileError{Reason: ReasonUnreadable, Message: "data URI has no payload"}
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, &FileError{Reason: ReasonUnreadable, Message: "data URI is not base64 encoded"}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &FileError{Reason: ReasonUnreadable, Message: "invalid base64 payload", Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &FileError{Reason: ReasonEmpty, Message: "data URI payload is empty"}
	}

	return &Upload{MIMEType: mimeType, Data: data}, nil
}
