package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Zetaphor/browser-recall/dbopen"
)

// PendingContent returns up to limit history rows that have never been
// enriched (content IS NULL), oldest visit first. The selection runs under
// the write guard so a concurrently committing batch cannot interleave with
// it, but callers fetch page content after this returns, outside the lock.
func (s *Store) PendingContent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, visit_time, domain
		FROM history WHERE content IS NULL
		ORDER BY visit_time ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending content: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.VisitTime, &e.Domain); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetContent records the enrichment result for a history row. Pass the empty
// string when the page yielded no usable text; that row will no longer be
// selected by PendingContent. The history_au trigger refreshes the full-text
// index in the same transaction.
func (s *Store) SetContent(ctx context.Context, id int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE history SET content = ?, content_updated_at = ? WHERE id = ?`,
			content, time.Now().UTC().Unix(), id)
		if err != nil {
			return fmt.Errorf("set content for %d: %w", id, err)
		}
		return nil
	})
}
