// Package recall is a personal browsing-history indexing service.
//
// It periodically pulls history and bookmark snapshots from a browser
// source, keeps only what is new since the last durable watermark, filters
// out excluded domains, and stores the rest in SQLite. A background worker
// then fetches each page and stores a markdown rendition of its content,
// indexed with FTS5 for full-text search.
//
// Usage:
//
//	svc, err := recall.New(cfg, provider, logger)
//	defer svc.Close()
//	svc.Start(ctx)
//	results, err := svc.Search(ctx, store.SearchOptions{Term: "golang"})
package recall

import (
	"context"
	"log/slog"

	"github.com/Zetaphor/browser-recall/exclude"
	"github.com/Zetaphor/browser-recall/fetch"
	"github.com/Zetaphor/browser-recall/recall/internal/enrich"
	"github.com/Zetaphor/browser-recall/recall/internal/store"
	"github.com/Zetaphor/browser-recall/recall/internal/syncer"
	"github.com/Zetaphor/browser-recall/source"
)

// Source keys name the watermark rows.
const (
	sourceHistory   = "history"
	sourceBookmarks = "bookmarks"
)

// Service is the recall orchestrator.
type Service struct {
	store     *store.Store
	history   *syncer.Engine
	bookmarks *syncer.Engine
	worker    *enrich.Worker
	browser   *fetch.BrowserFetcher // nil unless configured
	logger    *slog.Logger
	config    *Config
	ownsStore bool
}

// New creates a Service: opens the database, builds the exclusion filter and
// wires the sync engines and enrichment worker. Call Start to launch the
// background loops.
func New(cfg *Config, provider source.Provider, logger *slog.Logger) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	svc, err := build(cfg, s, provider, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	svc.ownsStore = true
	return svc, nil
}

// NewWithStore is New over an already-open store. The caller keeps ownership
// of the store; Close will not close it.
func NewWithStore(cfg *Config, s *store.Store, provider source.Provider, logger *slog.Logger) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return build(cfg, s, provider, logger)
}

func build(cfg *Config, s *store.Store, provider source.Provider, logger *slog.Logger) (*Service, error) {
	filter := exclude.New(cfg.ExcludedDomains)

	commitHistory := func(ctx context.Context, entries []syncer.Entry, key string, mark int64) error {
		rows := make([]store.HistoryEntry, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, store.HistoryEntry{
				URL: e.URL, Title: e.Title, VisitTime: e.Epoch, Domain: e.Domain,
			})
		}
		return s.CommitHistory(ctx, rows, key, mark)
	}
	history, err := syncer.New(syncer.Config{
		SourceKey:  sourceHistory,
		Interval:   cfg.Sync.Interval,
		RunAtStart: cfg.Sync.RunAtStart,
	}, provider.Visits, s.Watermark, commitHistory, filter, logger)
	if err != nil {
		return nil, err
	}

	commitBookmarks := func(ctx context.Context, entries []syncer.Entry, key string, mark int64) error {
		rows := make([]store.Bookmark, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, store.Bookmark{
				URL: e.URL, Title: e.Title, AddedTime: e.Epoch, Folder: e.Folder, Domain: e.Domain,
			})
		}
		return s.CommitBookmarks(ctx, rows, key, mark)
	}
	// Bookmarks always sync once at startup so the first render has data
	// instead of waiting out a full interval.
	bookmarks, err := syncer.New(syncer.Config{
		SourceKey:  sourceBookmarks,
		Interval:   cfg.Sync.Interval,
		RunAtStart: true,
	}, provider.Bookmarks, s.Watermark, commitBookmarks, filter, logger)
	if err != nil {
		return nil, err
	}

	fetchCfg := fetch.Config{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
	}
	var browser *fetch.BrowserFetcher
	var fetchFn enrich.FetchFunc
	if cfg.Fetch.UseBrowser {
		browser = fetch.NewBrowser(fetchCfg)
		fetchFn = browser.Fetch
	} else {
		fetchFn = fetch.NewHTTP(fetchCfg).Fetch
	}
	worker, err := enrich.New(enrich.Config{
		BatchSize:  cfg.Enrich.BatchSize,
		Interval:   cfg.Enrich.Interval,
		StartDelay: cfg.Enrich.StartDelay,
	}, s, fetchFn, filter, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     s,
		history:   history,
		bookmarks: bookmarks,
		worker:    worker,
		browser:   browser,
		logger:    logger,
		config:    cfg,
	}, nil
}

// Start launches the background loops: both sync engines and the
// enrichment worker. They stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.history.Run(ctx)
	go s.bookmarks.Run(ctx)
	go s.worker.Run(ctx)
	s.logger.Info("recall started",
		"db", s.config.DBPath, "excluded_domains", len(s.config.ExcludedDomains))
}

// SyncNow runs one history and one bookmark cycle synchronously. Used by the
// CLI one-shot modes and tests.
func (s *Service) SyncNow(ctx context.Context) error {
	if _, err := s.history.RunOnce(ctx); err != nil {
		return err
	}
	_, err := s.bookmarks.RunOnce(ctx)
	return err
}

// EnrichNow processes one enrichment batch synchronously.
func (s *Service) EnrichNow(ctx context.Context) (int, error) {
	return s.worker.ProcessBatch(ctx)
}

// Close shuts down the browser (if any) and the database.
func (s *Service) Close() error {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.ownsStore {
		return s.store.Close()
	}
	return nil
}

// Store returns the underlying store for direct access (testing, admin).
func (s *Service) Store() *store.Store {
	return s.store
}

// Search runs the recency-weighted basic search.
func (s *Service) Search(ctx context.Context, opts store.SearchOptions) ([]store.SearchResult, error) {
	return s.store.Search(ctx, opts)
}

// AdvancedSearch runs an FTS5 MATCH query ranked by bm25.
func (s *Service) AdvancedSearch(ctx context.Context, query string, includeContent bool, limit int) ([]store.SearchResult, error) {
	return s.store.AdvancedSearch(ctx, query, includeContent, limit)
}

// RecentHistory lists the most recent visits.
func (s *Service) RecentHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	return s.store.RecentHistory(ctx, limit)
}

// ListBookmarks lists bookmarks, optionally restricted to a folder.
func (s *Service) ListBookmarks(ctx context.Context, folder string, limit int) ([]store.Bookmark, error) {
	return s.store.ListBookmarks(ctx, folder, limit)
}

// Reindex rebuilds the full-text index from scratch.
func (s *Service) Reindex(ctx context.Context) error {
	return s.store.Reindex(ctx)
}

// Stats returns current index statistics.
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Stats(ctx)
}
