package portfolio

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/flows"
	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/logger"
	"github.com/jonathan/resuai/internal/storage"
	"github.com/jonathan/resuai/internal/types"
)

// avatarFailedMessage is reported to clients when avatar generation fails;
// details are logged.
const avatarFailedMessage = "avatar generation failed; portfolio saved without a picture"

// Builder turns an uploaded resume into a persisted portfolio.
type Builder struct {
	Client   llm.Client
	Store    Store
	Pictures storage.PictureStore
	Avatars  bool
	Log      *logger.Logger
}

// BuildResult is the outcome of a build.
type BuildResult struct {
	Document     *types.PortfolioDocument `json:"portfolio"`
	Version      int64                    `json:"version"`
	AvatarPrompt string                   `json:"avatarPrompt,omitempty"`
	AvatarError  string                   `json:"avatarError,omitempty"`
}

// Build analyzes the resume, optionally generates and stores an avatar, and
// writes the document over the user's current portfolio. Avatar failures do
// not abort the build: the document is saved without a picture and the
// failure is reported in AvatarError.
func (b *Builder) Build(ctx context.Context, userID uuid.UUID, upload *intake.Upload) (*BuildResult, error) {
	if upload == nil {
		return nil, flows.ErrNoUpload
	}
	log := b.logger().With("user_id", userID, "file", upload.FileName)

	analysis, err := flows.AnalyzeResume(ctx, b.Client, upload)
	if err != nil {
		return nil, err
	}
	log.Info("resume analyzed", "shape_version", analysis.ShapeVersion, "experience", len(analysis.Document.Experience))

	result := &BuildResult{AvatarPrompt: analysis.AvatarPrompt}
	doc := analysis.Document

	var pictureRef string
	if b.Avatars && analysis.AvatarPrompt != "" {
		pictureRef, err = b.avatar(ctx, userID, analysis.AvatarPrompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn("avatar generation failed", "error", err)
			result.AvatarError = avatarFailedMessage
		} else {
			doc.PersonalInfo.ProfilePictureDataURI = pictureRef
		}
	}

	saved, version, previous, err := b.replace(ctx, userID, doc)
	if err != nil {
		b.discard(ctx, pictureRef)
		return nil, err
	}
	if previous != saved.PersonalInfo.ProfilePictureDataURI {
		b.discard(ctx, previous)
	}

	result.Document = saved
	result.Version = version
	return result, nil
}

// SetPicture stores an uploaded image and makes it the profile picture.
// expectedVersion follows SavePortfolio semantics.
func (b *Builder) SetPicture(ctx context.Context, userID uuid.UUID, upload *intake.Upload, expectedVersion int64) (*BuildResult, error) {
	stored, err := b.Store.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc := types.NewPortfolioDocument()
	var current int64
	if stored != nil {
		doc = stored.Document.Clone()
		current = stored.Version
	}
	if expectedVersion != current {
		return nil, ErrVersionConflict
	}
	previous := doc.PersonalInfo.ProfilePictureDataURI

	ref, err := b.pictures().StorePicture(ctx, userID, upload)
	if err != nil {
		return nil, err
	}
	doc.PersonalInfo.ProfilePictureDataURI = ref

	saved, version, err := SaveDocument(ctx, b.Store, userID, doc, current)
	if err != nil {
		b.discard(ctx, ref)
		return nil, err
	}
	b.discard(ctx, previous)

	return &BuildResult{Document: saved, Version: version}, nil
}

func (b *Builder) avatar(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	image, err := flows.GenerateAvatar(ctx, b.Client, prompt)
	if err != nil {
		return "", err
	}
	return b.pictures().StorePicture(ctx, userID, image)
}

// replace writes doc over whatever the user has stored and returns the
// previous picture reference.
func (b *Builder) replace(ctx context.Context, userID uuid.UUID, doc *types.PortfolioDocument) (*types.PortfolioDocument, int64, string, error) {
	stored, err := b.Store.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, 0, "", err
	}
	var (
		expected int64
		previous string
	)
	if stored != nil {
		expected = stored.Version
		previous = stored.Document.PersonalInfo.ProfilePictureDataURI
	}

	saved, version, err := SaveDocument(ctx, b.Store, userID, doc, expected)
	if err != nil {
		return nil, 0, "", err
	}
	return saved, version, previous, nil
}

// discard removes a picture that is no longer referenced. Failures are logged only.
func (b *Builder) discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := b.pictures().RemovePicture(context.WithoutCancel(ctx), ref); err != nil && !errors.Is(err, context.Canceled) {
		b.logger().Warn("failed to remove picture", "error", err)
	}
}

func (b *Builder) pictures() storage.PictureStore {
	if b.Pictures == nil {
		return storage.InlineStore{}
	}
	return b.Pictures
}

func (b *Builder) logger() *logger.Logger {
	if b.Log == nil {
		return logger.Nop()
	}
	return b.Log
}
