// Package syncer implements watermark-based incremental ingestion: each
// cycle snapshots a source, keeps only entries newer than the source's
// watermark, deduplicates and filters them, and commits the survivors
// together with the new watermark in one transaction.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Zetaphor/browser-recall/exclude"
	"github.com/Zetaphor/browser-recall/source"
)

// Entry is a normalized record ready to persist: UTC epoch seconds and a
// lowercased hostname.
type Entry struct {
	URL    string
	Title  string
	Folder string
	Domain string
	Epoch  int64
}

// SnapshotFunc returns the source's full current state. The engine does the
// incremental filtering; providers stay dumb.
type SnapshotFunc func(ctx context.Context) ([]source.RawEntry, error)

// WatermarkFunc reads the last durably processed instant for a source key.
type WatermarkFunc func(ctx context.Context, sourceKey string) (int64, error)

// CommitFunc persists a batch and the new watermark atomically. It is called
// even for an empty batch so the watermark still advances.
type CommitFunc func(ctx context.Context, entries []Entry, sourceKey string, mark int64) error

// Config controls one engine instance.
type Config struct {
	// SourceKey names the watermark row, e.g. "history" or "bookmarks".
	SourceKey string
	// Interval between cycles. Default 5m.
	Interval time.Duration
	// RunAtStart runs a cycle immediately when Run is called instead of
	// waiting for the first tick.
	RunAtStart bool
}

func (c *Config) defaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
}

// Engine drives the sync cycle for a single source.
type Engine struct {
	cfg       Config
	snapshot  SnapshotFunc
	watermark WatermarkFunc
	commit    CommitFunc
	filter    *exclude.Filter
	log       *slog.Logger
}

func New(cfg Config, snapshot SnapshotFunc, watermark WatermarkFunc, commit CommitFunc, filter *exclude.Filter, log *slog.Logger) (*Engine, error) {
	if cfg.SourceKey == "" {
		return nil, errors.New("syncer: empty source key")
	}
	if snapshot == nil || watermark == nil || commit == nil {
		return nil, errors.New("syncer: nil dependency")
	}
	if filter == nil {
		filter = exclude.New(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	cfg.defaults()
	return &Engine{cfg: cfg, snapshot: snapshot, watermark: watermark, commit: commit, filter: filter, log: log}, nil
}

// Run executes cycles until ctx is cancelled. A failed cycle is logged and
// retried at the next tick; the unchanged watermark makes retries safe.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("syncer started", "source", e.cfg.SourceKey, "interval", e.cfg.Interval)
	if e.cfg.RunAtStart {
		if _, err := e.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Error("sync cycle failed", "source", e.cfg.SourceKey, "error", err)
		}
	}
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.log.Info("syncer stopped", "source", e.cfg.SourceKey)
			return
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error("sync cycle failed", "source", e.cfg.SourceKey, "error", err)
			}
		}
	}
}

// RunOnce executes a single cycle and reports how many entries it committed.
// The candidate watermark is captured before the snapshot, so entries
// arriving during the fetch land above it and are picked up next cycle
// rather than silently skipped.
func (e *Engine) RunOnce(ctx context.Context) (int, error) {
	since, err := e.watermark(ctx, e.cfg.SourceKey)
	if err != nil {
		return 0, fmt.Errorf("read watermark: %w", err)
	}
	mark := time.Now().UTC().Unix()

	raw, err := e.snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot source: %w", err)
	}

	entries := e.normalize(raw, since)
	entries = dedupe(entries)
	entries, dropped := e.applyFilter(entries)
	if dropped > 0 {
		e.log.Info("dropped excluded entries", "source", e.cfg.SourceKey, "count", dropped)
	}

	if err := e.commit(ctx, entries, e.cfg.SourceKey, mark); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	e.log.Info("sync cycle complete",
		"source", e.cfg.SourceKey, "committed", len(entries), "watermark", mark)
	return len(entries), nil
}

// normalize converts raw entries to UTC epoch form, skipping malformed ones
// and anything at or below the watermark.
func (e *Engine) normalize(raw []source.RawEntry, since int64) []Entry {
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || r.Time.IsZero() {
			e.log.Warn("skipping malformed entry", "source", e.cfg.SourceKey, "url", r.URL)
			continue
		}
		u, err := url.Parse(r.URL)
		if err != nil {
			e.log.Warn("skipping unparseable url", "source", e.cfg.SourceKey, "url", r.URL)
			continue
		}
		epoch := r.Time.UTC().Unix()
		if epoch <= since {
			continue
		}
		out = append(out, Entry{
			URL:    r.URL,
			Title:  r.Title,
			Folder: r.Folder,
			Domain: strings.ToLower(u.Hostname()),
			Epoch:  epoch,
		})
	}
	return out
}

// dedupe drops in-batch duplicates sharing (url, epoch), keeping the first.
// Browsers report sub-second revisits as distinct rows; at second resolution
// they are the same visit.
func dedupe(entries []Entry) []Entry {
	type key struct {
		url   string
		epoch int64
	}
	seen := make(map[key]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		k := key{e.URL, e.Epoch}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (e *Engine) applyFilter(entries []Entry) ([]Entry, int) {
	out := entries[:0]
	dropped := 0
	for _, en := range entries {
		if e.filter.IsExcluded(en.Domain) {
			dropped++
			continue
		}
		out = append(out, en)
	}
	return out, dropped
}
