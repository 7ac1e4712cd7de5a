package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchReturnsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>hello</h1></body></html>"))
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(got, "<h1>hello</h1>") {
		t.Fatalf("body = %q", got)
	}
}

func TestFetchSkipsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "" {
		t.Fatalf("non-HTML body was returned: %q", got)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("4xx response did not error")
	}
}

func TestFetchFollowsRedirectsUpToCap(t *testing.T) {
	hops := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hops < 10 {
			hops++
			http.Redirect(w, r, srv.URL, http.StatusFound)
			return
		}
		w.Write([]byte("<p>final</p>"))
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("redirect loop did not error")
	}
}

func TestFetchHonorsMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	f := NewHTTP(Config{MaxBytes: 1024})
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1024 {
		t.Fatalf("body length = %d, want 1024", len(got))
	}
}

func TestFetchRejectsBadScheme(t *testing.T) {
	f := NewHTTP(Config{})
	for _, u := range []string{"file:///etc/passwd", "chrome://settings", "about:blank"} {
		if _, err := f.Fetch(context.Background(), u); err == nil {
			t.Errorf("scheme accepted: %s", u)
		}
	}
}
