package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Watermark returns the last durably processed instant for sourceKey, or
// zero when the source has never completed a cycle.
func (s *Store) Watermark(ctx context.Context, sourceKey string) (int64, error) {
	var mark int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_processed FROM watermarks WHERE source_key = ?`, sourceKey,
	).Scan(&mark)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read watermark %s: %w", sourceKey, err)
	}
	return mark, nil
}

func setWatermark(ctx context.Context, tx *sql.Tx, sourceKey string, mark int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO watermarks (source_key, last_processed) VALUES (?, ?)
		ON CONFLICT(source_key) DO UPDATE SET last_processed = excluded.last_processed`,
		sourceKey, mark)
	if err != nil {
		return fmt.Errorf("set watermark %s: %w", sourceKey, err)
	}
	return nil
}
