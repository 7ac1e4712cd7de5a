// Package enrich backfills page content for history rows. A worker
// periodically selects never-enriched rows, fetches each page, converts it to
// markdown and stores the result. Fetch failures leave the row untouched so
// a later batch retries it; pages that convert to nothing are marked with an
// empty string and never retried.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Zetaphor/browser-recall/exclude"
	"github.com/Zetaphor/browser-recall/pagetext"
	"github.com/Zetaphor/browser-recall/recall/internal/store"
)

// Storage is the slice of the store the worker needs.
type Storage interface {
	PendingContent(ctx context.Context, limit int) ([]store.HistoryEntry, error)
	SetContent(ctx context.Context, id int64, content string) error
}

// FetchFunc retrieves the raw HTML of a page.
type FetchFunc func(ctx context.Context, rawURL string) (string, error)

// Config controls the worker's pacing.
type Config struct {
	// BatchSize is the number of rows examined per cycle. Default 10.
	BatchSize int
	// Interval between cycles. Default 5m.
	Interval time.Duration
	// StartDelay before the first cycle, so startup sync gets a head start.
	StartDelay time.Duration
}

func (c *Config) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
}

// Worker runs the enrichment loop.
type Worker struct {
	cfg    Config
	store  Storage
	fetch  FetchFunc
	filter *exclude.Filter
	log    *slog.Logger
}

func New(cfg Config, st Storage, fetch FetchFunc, filter *exclude.Filter, log *slog.Logger) (*Worker, error) {
	if st == nil || fetch == nil {
		return nil, errors.New("enrich: nil dependency")
	}
	if filter == nil {
		filter = exclude.New(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	cfg.defaults()
	return &Worker{cfg: cfg, store: st, fetch: fetch, filter: filter, log: log}, nil
}

// Run processes batches until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("enrichment worker started",
		"batch_size", w.cfg.BatchSize, "interval", w.cfg.Interval)
	if w.cfg.StartDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.StartDelay):
		}
	}
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		if n, err := w.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error("enrichment batch failed", "error", err)
		} else if n > 0 {
			w.log.Info("enrichment batch complete", "updated", n)
		}
		select {
		case <-ctx.Done():
			w.log.Info("enrichment worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch enriches one batch and reports how many rows it updated.
// Rows on excluded domains are skipped without being marked; the exclusion
// list is re-read each batch, so un-excluding a domain lets its backlog
// drain naturally.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := w.store.PendingContent(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		if w.filter.IsExcluded(domainOf(row)) {
			continue
		}
		html, err := w.fetch(ctx, row.URL)
		if err != nil {
			// Left NULL: a later batch retries.
			w.log.Warn("page fetch failed", "url", row.URL, "error", err)
			continue
		}
		content, ok := pagetext.Convert(html)
		if !ok {
			content = "" // terminal no-content marker
		}
		if err := w.store.SetContent(ctx, row.ID, content); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// domainOf recomputes the host from the row's url rather than trusting the
// stored domain column, so exclusion decisions always reflect the url itself.
// Rows with an unparseable url fall back to the stored domain.
func domainOf(row store.HistoryEntry) string {
	u, err := url.Parse(row.URL)
	if err != nil || u.Hostname() == "" {
		return row.Domain
	}
	return strings.ToLower(u.Hostname())
}
