package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smartwealth/advisor/internal/models"
)

// PriceRepository caches daily closing prices per ticker for the
// Monte-Carlo projection stage.
type PriceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertCloses stores a batch of daily closes, overwriting any existing
// close for the same ticker and date.
func (r *PriceRepository) UpsertCloses(ctx context.Context, closes []models.ClosingPrice) error {
	if len(closes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_closes (ticker, close_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, close_date) DO UPDATE SET close_price = EXCLUDED.close_price
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare close upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range closes {
		if _, err := stmt.ExecContext(ctx, c.Ticker, c.Date, c.Close); err != nil {
			return fmt.Errorf("failed to upsert close for %s on %s: %w",
				c.Ticker, c.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// Series returns up to limit daily closes for a ticker in chronological
// order, oldest first, ready for return estimation.
func (r *PriceRepository) Series(ctx context.Context, ticker string, limit int) (models.HistoricalSeries, error) {
	query := `
		SELECT close_price FROM (
			SELECT close_price, close_date
			FROM daily_closes
			WHERE ticker = $1
			ORDER BY close_date DESC
			LIMIT $2
		) recent
		ORDER BY close_date ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes for %s: %w", ticker, err)
	}
	defer rows.Close()

	var series models.HistoricalSeries
	for rows.Next() {
		var close float64
		if err := rows.Scan(&close); err != nil {
			return nil, fmt.Errorf("failed to scan close: %w", err)
		}
		series = append(series, close)
	}
	return series, rows.Err()
}

// LatestDate returns the most recent stored close date for a ticker, or
// the zero time when no closes are cached.
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(close_date) FROM daily_closes WHERE ticker = $1", ticker,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest close date for %s: %w", ticker, err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}
