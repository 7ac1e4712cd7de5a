package store

import (
	"context"
	"fmt"
)

// Stats reports row counts and the current watermark of every source.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		q    string
		dest *int64
	}{
		{`SELECT COUNT(*) FROM history`, &st.HistoryCount},
		{`SELECT COUNT(*) FROM bookmarks`, &st.BookmarkCount},
		{`SELECT COUNT(*) FROM history WHERE content IS NULL`, &st.PendingContent},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.q).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("stats count: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source_key, last_processed FROM watermarks`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats watermarks: %w", err)
	}
	defer rows.Close()
	st.Watermarks = make(map[string]int64)
	for rows.Next() {
		var key string
		var mark int64
		if err := rows.Scan(&key, &mark); err != nil {
			return Stats{}, fmt.Errorf("scan watermark row: %w", err)
		}
		st.Watermarks[key] = mark
	}
	return st, rows.Err()
}

// RecentHistory lists the most recent visits, newest first.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > maxBasicResults {
		limit = maxBasicResults
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, visit_time, domain
		FROM history ORDER BY visit_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.VisitTime, &e.Domain); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListBookmarks lists bookmarks, most recently added first. An empty folder
// means all folders.
func (s *Store) ListBookmarks(ctx context.Context, folder string, limit int) ([]Bookmark, error) {
	if limit <= 0 || limit > maxAdvancedResults {
		limit = maxAdvancedResults
	}
	q := `SELECT id, url, title, added_time, folder, domain FROM bookmarks`
	args := []any{}
	if folder != "" {
		q += ` WHERE folder = ?`
		args = append(args, folder)
	}
	q += ` ORDER BY added_time DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.AddedTime, &b.Folder, &b.Domain); err != nil {
			return nil, fmt.Errorf("scan bookmark row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
