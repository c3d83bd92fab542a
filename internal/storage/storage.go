// Package storage stores profile pictures either inline as data URIs or in
// an S3-compatible object store.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/intake"
)

// PictureStore persists a picture and returns the reference written to
// personalInfo.profilePictureDataUri.
type PictureStore interface {
	StorePicture(ctx context.Context, userID uuid.UUID, upload *intake.Upload) (string, error)
	// RemovePicture deletes a picture previously returned by StorePicture.
	// References the store does not own are ignored.
	RemovePicture(ctx context.Context, ref string) error
}

// InlineStore embeds pictures as base64 data URIs in the document itself.
type InlineStore struct{}

// StorePicture returns the upload's data URI.
func (InlineStore) StorePicture(_ context.Context, _ uuid.UUID, upload *intake.Upload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("picture is empty")
	}
	return upload.DataURI(), nil
}

// RemovePicture is a no-op; inline pictures disappear with the document.
func (InlineStore) RemovePicture(context.Context, string) error {
	return nil
}

// ObjectKey returns the object name for a new picture of the given user.
func ObjectKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("users/%s/avatar-%s%s", userID, uuid.New(), ext)
}
