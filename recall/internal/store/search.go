package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	maxBasicResults    = 100
	maxAdvancedResults = 1000
)

// SearchOptions narrows a basic search. Zero values mean "no constraint";
// a zero Limit falls back to the cap.
type SearchOptions struct {
	Term           string
	Domain         string
	Start, End     int64 // epoch seconds, inclusive
	IncludeContent bool
	Limit          int
}

// Search runs the recency-weighted substring search. Matching rows receive a
// base score from how the term relates to the title or content (exact title
// 4.0, title prefix 3.0, title substring 2.0, content substring 1.0,
// otherwise 0.5), multiplied by a recency factor that favors recent visits.
// Results sort by score descending, visit time breaking ties. An empty term
// degenerates to a recency-ordered listing.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > maxBasicResults {
		limit = maxBasicResults
	}

	where := []string{"1=1"}
	args := []any{}
	if opts.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, strings.ToLower(opts.Domain))
	}
	if opts.Start > 0 {
		where = append(where, "visit_time >= ?")
		args = append(args, opts.Start)
	}
	if opts.End > 0 {
		where = append(where, "visit_time <= ?")
		args = append(args, opts.End)
	}

	term := strings.ToLower(strings.TrimSpace(opts.Term))
	if term == "" {
		return s.recentMatching(ctx, where, args, limit, opts.IncludeContent)
	}
	// Every row in the window is scored: rows not containing the term keep
	// the 0.5 baseline so a narrow domain/time query still returns context.
	q := `SELECT id, url, title, visit_time, domain, COALESCE(content, '')
		FROM history WHERE ` + strings.Join(where, " AND ")
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("basic search: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC().Unix()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var content string
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.VisitTime, &r.Domain, &content); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		r.Score = scoreEntry(term, r.Title, content, r.VisitTime, now)
		if r.Score <= 0 {
			continue
		}
		if opts.IncludeContent {
			r.Content.String, r.Content.Valid = content, true
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].VisitTime > out[j].VisitTime
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func scoreEntry(term, title, content string, visit, now int64) float64 {
	titleL := strings.ToLower(title)
	var base float64
	switch {
	case titleL == term:
		base = 4.0
	case strings.HasPrefix(titleL, term):
		base = 3.0
	case strings.Contains(titleL, term):
		base = 2.0
	case strings.Contains(strings.ToLower(content), term):
		base = 1.0
	default:
		base = 0.5
	}
	if now <= 0 {
		return base
	}
	recency := float64(visit)/float64(now)*0.5 + 1
	return base * recency
}

func (s *Store) recentMatching(ctx context.Context, where []string, args []any, limit int, includeContent bool) ([]SearchResult, error) {
	q := `SELECT id, url, title, visit_time, domain, COALESCE(content, '')
		FROM history WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY visit_time DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("recent listing: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var content string
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.VisitTime, &r.Domain, &content); err != nil {
			return nil, fmt.Errorf("scan recent row: %w", err)
		}
		if includeContent {
			r.Content.String, r.Content.Valid = content, true
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AdvancedSearch runs query through the FTS5 index using its MATCH syntax
// (phrases, AND/OR/NOT, column filters). Results order by bm25 relevance,
// best first, and carry <mark>-highlighted excerpts of the matched columns.
func (s *Store) AdvancedSearch(ctx context.Context, query string, includeContent bool, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > maxAdvancedResults {
		limit = maxAdvancedResults
	}
	// highlight() reads column values back from the external-content table,
	// where content is NULL until enrichment runs, so it must be coalesced.
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.url, h.title, h.visit_time, h.domain, COALESCE(h.content, ''),
			bm25(history_fts),
			COALESCE(highlight(history_fts, 0, '<mark>', '</mark>'), ''),
			COALESCE(highlight(history_fts, 1, '<mark>', '</mark>'), '')
		FROM history_fts
		JOIN history h ON h.id = history_fts.rowid
		WHERE history_fts MATCH ?
		ORDER BY bm25(history_fts) ASC, h.visit_time DESC
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var content string
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.VisitTime, &r.Domain, &content,
			&r.Rank, &r.TitleHighlight, &r.ContentHighlight); err != nil {
			return nil, fmt.Errorf("scan fts row: %w", err)
		}
		if includeContent {
			r.Content.String, r.Content.Valid = content, true
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
