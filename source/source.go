// Package source provides browsing-data snapshots to the sync engine. A
// Provider reads the browser's full current state; the engine handles
// incrementality, so providers just dump everything they see.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RawEntry is one record as produced by a provider, before the sync engine
// normalizes it. Folder is only meaningful for bookmarks.
type RawEntry struct {
	URL    string
	Title  string
	Folder string
	Time   time.Time
}

// Provider reads full snapshots of a browser's history and bookmarks.
type Provider interface {
	Visits(ctx context.Context) ([]RawEntry, error)
	Bookmarks(ctx context.Context) ([]RawEntry, error)
}

// snapshotFile is the on-disk JSON produced by the browser extension's
// export: naive local timestamps, flat lists.
type snapshotFile struct {
	History []struct {
		URL       string `json:"url"`
		Title     string `json:"title"`
		VisitTime string `json:"visit_time"`
	} `json:"history"`
	Bookmarks []struct {
		URL       string `json:"url"`
		Title     string `json:"title"`
		AddedTime string `json:"added_time"`
		Folder    string `json:"folder"`
	} `json:"bookmarks"`
}

// FileProvider reads snapshots from a JSON file that the browser extension
// rewrites periodically. The file is re-read on every call, so each sync
// cycle sees the latest export.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Visits(ctx context.Context) ([]RawEntry, error) {
	snap, err := p.read()
	if err != nil {
		return nil, err
	}
	out := make([]RawEntry, 0, len(snap.History))
	for _, h := range snap.History {
		out = append(out, RawEntry{
			URL:   h.URL,
			Title: h.Title,
			Time:  parseTimestamp(h.VisitTime),
		})
	}
	return out, ctx.Err()
}

func (p *FileProvider) Bookmarks(ctx context.Context) ([]RawEntry, error) {
	snap, err := p.read()
	if err != nil {
		return nil, err
	}
	out := make([]RawEntry, 0, len(snap.Bookmarks))
	for _, b := range snap.Bookmarks {
		out = append(out, RawEntry{
			URL:    b.URL,
			Title:  b.Title,
			Folder: b.Folder,
			Time:   parseTimestamp(b.AddedTime),
		})
	}
	return out, ctx.Err()
}

func (p *FileProvider) read() (*snapshotFile, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", p.path, err)
	}
	return &snap, nil
}

// parseTimestamp accepts the export's naive "2006-01-02 15:04:05" form,
// interpreted in local time the way the browser wrote it, and falls back to
// RFC 3339. Unparseable values return the zero time and are skipped
// downstream as malformed.
func parseTimestamp(s string) time.Time {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
