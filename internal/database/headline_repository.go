package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smartwealth/advisor/internal/models"
)

// HeadlineRepository caches fetched news headlines per asset class so the
// sentiment stage can run without hitting the news API on every request.
type HeadlineRepository struct {
	db *sql.DB
}

func NewHeadlineRepository(db *sql.DB) *HeadlineRepository {
	return &HeadlineRepository{db: db}
}

// InsertBatch stores a batch of headlines in one transaction. Duplicate
// text for the same asset is ignored.
func (r *HeadlineRepository) InsertBatch(ctx context.Context, headlines []models.Headline) error {
	if len(headlines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO headlines (asset, headline, published_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset, headline) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare headline insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range headlines {
		if _, err := stmt.ExecContext(ctx, h.Asset, h.Text, h.PublishedAt); err != nil {
			return fmt.Errorf("failed to insert headline for %s: %w", h.Asset, err)
		}
	}
	return tx.Commit()
}

// RecentByAsset returns up to limit headlines for an asset published
// within maxAge, newest first.
func (r *HeadlineRepository) RecentByAsset(ctx context.Context, asset models.AssetClass, limit int, maxAge time.Duration) ([]models.Headline, error) {
	query := `
		SELECT id, asset, headline, published_at
		FROM headlines
		WHERE asset = $1 AND published_at > $2
		ORDER BY published_at DESC
		LIMIT $3
	`
	cutoff := time.Now().Add(-maxAge)

	rows, err := r.db.QueryContext(ctx, query, asset, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query headlines: %w", err)
	}
	defer rows.Close()

	var headlines []models.Headline
	for rows.Next() {
		var h models.Headline
		if err := rows.Scan(&h.ID, &h.Asset, &h.Text, &h.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan headline: %w", err)
		}
		headlines = append(headlines, h)
	}
	return headlines, rows.Err()
}

// DeleteOlderThan removes stale headlines and returns the count deleted.
func (r *HeadlineRepository) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result, err := r.db.ExecContext(ctx, "DELETE FROM headlines WHERE published_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale headlines: %w", err)
	}
	return result.RowsAffected()
}
