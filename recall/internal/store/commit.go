package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Zetaphor/browser-recall/dbopen"
)

// CommitHistory inserts a batch of new visits and advances the source's
// watermark in a single transaction. If the transaction fails the watermark
// is untouched, so the next cycle re-examines the same entries. An empty
// batch still advances the watermark: the cycle observed nothing new up to
// mark, and recording that avoids refiltering the same window forever.
func (s *Store) CommitHistory(ctx context.Context, entries []HistoryEntry, sourceKey string, mark int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO history (url, title, visit_time, domain) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare history insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.URL, e.Title, e.VisitTime, e.Domain); err != nil {
				return fmt.Errorf("insert history %s: %w", e.URL, err)
			}
		}
		return setWatermark(ctx, tx, sourceKey, mark)
	})
}

// CommitBookmarks is the bookmark counterpart of CommitHistory.
func (s *Store) CommitBookmarks(ctx context.Context, bms []Bookmark, sourceKey string, mark int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO bookmarks (url, title, added_time, folder, domain) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare bookmark insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range bms {
			if _, err := stmt.ExecContext(ctx, b.URL, b.Title, b.AddedTime, b.Folder, b.Domain); err != nil {
				return fmt.Errorf("insert bookmark %s: %w", b.URL, err)
			}
		}
		return setWatermark(ctx, tx, sourceKey, mark)
	})
}
