package store

import "database/sql"

// HistoryEntry is one page visit as persisted. Content.Valid reports whether
// enrichment has run for this row: an invalid Content means never enriched,
// a valid empty string means enriched with no usable text.
type HistoryEntry struct {
	ID               int64          `json:"id"`
	URL              string         `json:"url"`
	Title            string         `json:"title"`
	VisitTime        int64          `json:"visit_time"`
	Domain           string         `json:"domain"`
	Content          sql.NullString `json:"-"`
	ContentUpdatedAt sql.NullInt64  `json:"-"`
}

// Bookmark is one saved bookmark as persisted.
type Bookmark struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	AddedTime int64  `json:"added_time"`
	Folder    string `json:"folder"`
	Domain    string `json:"domain"`
}

// SearchResult is a history row with its search annotations. Score is set by
// the recency-weighted basic search; Rank and the highlight fields are set by
// the full-text search.
type SearchResult struct {
	HistoryEntry
	Score            float64 `json:"score,omitempty"`
	Rank             float64 `json:"rank,omitempty"`
	TitleHighlight   string  `json:"title_highlight,omitempty"`
	ContentHighlight string  `json:"content_highlight,omitempty"`
}

// Stats summarizes the state of the index.
type Stats struct {
	HistoryCount   int64            `json:"history_count"`
	BookmarkCount  int64            `json:"bookmark_count"`
	PendingContent int64            `json:"pending_content"`
	Watermarks     map[string]int64 `json:"watermarks"`
}
