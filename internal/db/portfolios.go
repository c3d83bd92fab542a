package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resuai/internal/types"
)

// GetPortfolio loads a user's portfolio. Returns nil, nil when the user has
// none yet. The document is normalized on the way out.
func (db *DB) GetPortfolio(ctx context.Context, userID uuid.UUID) (*types.StoredPortfolio, error) {
	var (
		raw    []byte
		stored = types.StoredPortfolio{UserID: userID}
	)
	err := db.pool.QueryRow(ctx,
		`SELECT document, version, updated_at FROM portfolios WHERE user_id = $1`,
		userID,
	).Scan(&raw, &stored.Version, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	var doc types.PortfolioDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	doc.Normalize()
	stored.Document = &doc

	return &stored, nil
}

// SavePortfolio writes the whole document.
// expectedVersion 0 creates the row and fails with ErrVersionConflict if
// one exists. Any other value updates only when the stored version matches.
// Returns the new version.
func (db *DB) SavePortfolio(ctx context.Context, userID uuid.UUID, doc *types.PortfolioDocument, expectedVersion int64) (int64, error) {
	if doc == nil {
		return 0, fmt.Errorf("portfolio document is nil")
	}
	normalized := doc.Clone()
	normalized.Normalize()

	content, err := json.Marshal(normalized)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal portfolio: %w", err)
	}

	var version int64
	if expectedVersion == 0 {
		err = db.pool.QueryRow(ctx,
			`INSERT INTO portfolios (user_id, document, version)
			 VALUES ($1, $2, 1)
			 ON CONFLICT (user_id) DO NOTHING
			 RETURNING version`,
			userID, content,
		).Scan(&version)
	} else {
		err = db.pool.QueryRow(ctx,
			`UPDATE portfolios
			 SET document = $2, version = version + 1, updated_at = NOW()
			 WHERE user_id = $1 AND version = $3
			 RETURNING version`,
			userID, content, expectedVersion,
		).Scan(&version)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrVersionConflict
		}
		return 0, fmt.Errorf("failed to save portfolio: %w", err)
	}
	return version, nil
}
