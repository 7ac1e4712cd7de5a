package recall

import "github.com/Zetaphor/browser-recall/recall/internal/store"

// Aliases so callers outside this package can name store types.
type (
	SearchOptions = store.SearchOptions
	SearchResult  = store.SearchResult
	HistoryEntry  = store.HistoryEntry
	Bookmark      = store.Bookmark
	Stats         = store.Stats
)
