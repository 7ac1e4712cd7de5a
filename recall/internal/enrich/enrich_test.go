package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Zetaphor/browser-recall/exclude"
	"github.com/Zetaphor/browser-recall/recall/internal/store"
)

type fakeStorage struct {
	pending []store.HistoryEntry
	content map[int64]string
}

func (f *fakeStorage) PendingContent(_ context.Context, limit int) ([]store.HistoryEntry, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStorage) SetContent(_ context.Context, id int64, content string) error {
	if f.content == nil {
		f.content = make(map[int64]string)
	}
	f.content[id] = content
	return nil
}

func pendingRow(id int64, url, domain string) store.HistoryEntry {
	return store.HistoryEntry{ID: id, URL: url, Domain: domain}
}

func testWorker(t *testing.T, st Storage, fetch FetchFunc, patterns []string) *Worker {
	t.Helper()
	w, err := New(Config{}, st, fetch, exclude.New(patterns), nil)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	return w
}

func TestProcessBatchStoresMarkdown(t *testing.T) {
	st := &fakeStorage{pending: []store.HistoryEntry{
		pendingRow(1, "https://a.test/page", "a.test"),
	}}
	fetch := func(context.Context, string) (string, error) {
		return "<html><body><h1>Title</h1><p>Body text.</p></body></html>", nil
	}
	w := testWorker(t, st, fetch, nil)

	n, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("updated = %d, want 1", n)
	}
	got, ok := st.content[1]
	if !ok || !strings.HasPrefix(got, "# Title") {
		t.Fatalf("stored content = %q", got)
	}
}

func TestProcessBatchMarksEmptyPages(t *testing.T) {
	st := &fakeStorage{pending: []store.HistoryEntry{
		pendingRow(1, "https://a.test/blank", "a.test"),
	}}
	fetch := func(context.Context, string) (string, error) {
		return "<html><head><script>spa()</script></head><body></body></html>", nil
	}
	w := testWorker(t, st, fetch, nil)

	if _, err := w.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("batch: %v", err)
	}
	got, ok := st.content[1]
	if !ok {
		t.Fatal("empty page was not marked")
	}
	if got != "" {
		t.Fatalf("marker = %q, want empty string", got)
	}
}

func TestProcessBatchLeavesFailedFetchesPending(t *testing.T) {
	st := &fakeStorage{pending: []store.HistoryEntry{
		pendingRow(1, "https://down.test/page", "down.test"),
		pendingRow(2, "https://up.test/page", "up.test"),
	}}
	fetch := func(_ context.Context, rawURL string) (string, error) {
		if strings.Contains(rawURL, "down.test") {
			return "", errors.New("connection refused")
		}
		return "<p>fine</p>", nil
	}
	w := testWorker(t, st, fetch, nil)

	n, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("updated = %d, want 1", n)
	}
	if _, marked := st.content[1]; marked {
		t.Fatal("failed fetch was marked instead of left pending")
	}
	if st.content[2] != "fine" {
		t.Fatalf("content[2] = %q", st.content[2])
	}
}

func TestProcessBatchSkipsExcludedDomains(t *testing.T) {
	st := &fakeStorage{pending: []store.HistoryEntry{
		pendingRow(1, "https://mail.private.test/inbox", "mail.private.test"),
		pendingRow(2, "https://blog.test/post", "blog.test"),
	}}
	fetched := []string{}
	fetch := func(_ context.Context, rawURL string) (string, error) {
		fetched = append(fetched, rawURL)
		return "<p>ok</p>", nil
	}
	w := testWorker(t, st, fetch, []string{"private.test"})

	n, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("updated = %d, want 1", n)
	}
	if len(fetched) != 1 || fetched[0] != "https://blog.test/post" {
		t.Fatalf("fetched = %v, excluded domain was contacted", fetched)
	}
	if _, touched := st.content[1]; touched {
		t.Fatal("excluded row was written")
	}
}

func TestProcessBatchExcludesByURLHost(t *testing.T) {
	// The exclusion decision comes from the row's url, not the stored domain
	// column, so a stale or corrupted domain cannot leak an excluded page.
	st := &fakeStorage{pending: []store.HistoryEntry{
		pendingRow(1, "https://private.test/inbox", "harmless.test"),
	}}
	fetched := 0
	fetch := func(context.Context, string) (string, error) {
		fetched++
		return "<p>ok</p>", nil
	}
	w := testWorker(t, st, fetch, []string{"private.test"})

	n, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 0 || fetched != 0 {
		t.Fatalf("updated = %d, fetched = %d; excluded url was processed", n, fetched)
	}
}

func TestProcessBatchHonorsBatchSize(t *testing.T) {
	var pending []store.HistoryEntry
	for i := int64(1); i <= 25; i++ {
		pending = append(pending, pendingRow(i, "https://a.test/p", "a.test"))
	}
	st := &fakeStorage{pending: pending}
	fetch := func(context.Context, string) (string, error) { return "<p>x</p>", nil }

	w, err := New(Config{BatchSize: 10}, st, fetch, nil, nil)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	n, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 10 {
		t.Fatalf("updated = %d, want 10", n)
	}
}
