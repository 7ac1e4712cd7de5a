package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Zetaphor/browser-recall/dbopen"
)

// Reindex drops and rebuilds the full-text index from the history table.
// Useful after a tokenizer change or suspected index corruption. Runs as one
// transaction under the write guard, so searches either see the old index or
// the fully rebuilt one.
func (s *Store) Reindex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, dropFTSSchema); err != nil {
			return fmt.Errorf("drop fts index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ftsSchema); err != nil {
			return fmt.Errorf("recreate fts index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, repopulateFTS); err != nil {
			return fmt.Errorf("repopulate fts index: %w", err)
		}
		return nil
	})
}
