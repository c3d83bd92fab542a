// Package portfolio owns the lifecycle of a user's PortfolioDocument: building
// it from a resume, the read-only/editing state machine and versioned saves.
package portfolio

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resuai/internal/types"
)

// Store is the document store contract. *db.DB implements it.
type Store interface {
	GetPortfolio(ctx context.Context, userID uuid.UUID) (*types.StoredPortfolio, error)
	SavePortfolio(ctx context.Context, userID uuid.UUID, doc *types.PortfolioDocument, expectedVersion int64) (int64, error)
}

// SaveDocument normalizes and validates doc, then writes it with the given
// expected version. It returns the new version.
func SaveDocument(ctx context.Context, store Store, userID uuid.UUID, doc *types.PortfolioDocument, expectedVersion int64) (*types.PortfolioDocument, int64, error) {
	if doc == nil {
		return nil, 0, fmt.Errorf("%w: document is required", ErrInvalidDocument)
	}
	clean := doc.Clone()
	clean.Normalize()
	if err := clean.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	version, err := store.SavePortfolio(ctx, userID, clean, expectedVersion)
	if err != nil {
		return nil, 0, err
	}
	return clean, version, nil
}

// Load returns the stored portfolio or ErrNotFound.
func Load(ctx context.Context, store Store, userID uuid.UUID) (*types.StoredPortfolio, error) {
	stored, err := store.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	return stored, nil
}
