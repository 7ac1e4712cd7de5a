package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestFileProviderVisits(t *testing.T) {
	path := writeSnapshot(t, `{
		"history": [
			{"url": "https://go.dev/doc", "title": "Docs", "visit_time": "2026-08-20 10:30:00"},
			{"url": "https://go.dev/blog", "title": "Blog", "visit_time": "2026-08-21T09:00:00Z"}
		],
		"bookmarks": [
			{"url": "https://go.dev", "title": "Go", "added_time": "2026-08-01 08:00:00", "folder": "dev"}
		]
	}`)
	p := NewFileProvider(path)

	visits, err := p.Visits(context.Background())
	if err != nil {
		t.Fatalf("visits: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("visits = %d, want 2", len(visits))
	}
	want := time.Date(2026, 8, 20, 10, 30, 0, 0, time.Local)
	if !visits[0].Time.Equal(want) {
		t.Errorf("naive timestamp = %v, want %v", visits[0].Time, want)
	}
	if !visits[1].Time.Equal(time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("rfc3339 timestamp = %v", visits[1].Time)
	}

	bms, err := p.Bookmarks(context.Background())
	if err != nil {
		t.Fatalf("bookmarks: %v", err)
	}
	if len(bms) != 1 || bms[0].Folder != "dev" {
		t.Fatalf("bookmarks = %+v", bms)
	}
}

func TestFileProviderBadTimestampIsZero(t *testing.T) {
	path := writeSnapshot(t, `{
		"history": [{"url": "https://a.test", "title": "x", "visit_time": "not a time"}]
	}`)
	p := NewFileProvider(path)

	visits, err := p.Visits(context.Background())
	if err != nil {
		t.Fatalf("visits: %v", err)
	}
	if len(visits) != 1 || !visits[0].Time.IsZero() {
		t.Fatalf("unparseable timestamp = %v, want zero", visits[0].Time)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := p.Visits(context.Background()); err == nil {
		t.Fatal("missing snapshot did not error")
	}
}

func TestFileProviderRereadsFile(t *testing.T) {
	path := writeSnapshot(t, `{"history": []}`)
	p := NewFileProvider(path)

	visits, err := p.Visits(context.Background())
	if err != nil || len(visits) != 0 {
		t.Fatalf("first read: %d visits, err=%v", len(visits), err)
	}

	newer := `{"history": [{"url": "https://a.test", "title": "x", "visit_time": "2026-08-22 12:00:00"}]}`
	if err := os.WriteFile(path, []byte(newer), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	visits, err = p.Visits(context.Background())
	if err != nil || len(visits) != 1 {
		t.Fatalf("second read: %d visits, err=%v", len(visits), err)
	}
}
