package recall

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Zetaphor/browser-recall/recall/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
)

// highlightPolicy strips everything from FTS5 highlight snippets except the
// <mark> tags we inserted. Page content is attacker-controlled HTML, so the
// snippets cannot be returned raw.
var highlightPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("mark")
	return p
}()

// RegisterHTTP mounts the recall API on a chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/history/search", s.handleSearch)
	r.Get("/history/search/advanced", s.handleAdvancedSearch)
	r.Get("/history/recent", s.handleRecent)
	r.Get("/bookmarks", s.handleBookmarks)
	r.Get("/stats", s.handleStats)
	r.Post("/reindex", s.handleReindex)
}

// historyResult is the wire shape of a search hit. Content is only present
// when include_content was requested and the row has been enriched.
type historyResult struct {
	ID               int64   `json:"id"`
	URL              string  `json:"url"`
	Title            string  `json:"title"`
	VisitTime        int64   `json:"visit_time"`
	Domain           string  `json:"domain"`
	Content          *string `json:"content,omitempty"`
	Score            float64 `json:"score,omitempty"`
	Rank             float64 `json:"rank,omitempty"`
	TitleHighlight   string  `json:"title_highlight,omitempty"`
	ContentHighlight string  `json:"content_highlight,omitempty"`
}

func toResults(in []store.SearchResult) []historyResult {
	out := make([]historyResult, 0, len(in))
	for _, r := range in {
		hr := historyResult{
			ID:        r.ID,
			URL:       r.URL,
			Title:     r.Title,
			VisitTime: r.VisitTime,
			Domain:    r.Domain,
			Score:     r.Score,
			Rank:      r.Rank,
		}
		if r.Content.Valid {
			hr.Content = &r.Content.String
		}
		if r.TitleHighlight != "" {
			hr.TitleHighlight = highlightPolicy.Sanitize(r.TitleHighlight)
		}
		if r.ContentHighlight != "" {
			hr.ContentHighlight = highlightPolicy.Sanitize(r.ContentHighlight)
		}
		out = append(out, hr)
	}
	return out
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.SearchOptions{
		Term:           q.Get("q"),
		Domain:         q.Get("domain"),
		Start:          parseInstant(q.Get("start")),
		End:            parseInstant(q.Get("end")),
		IncludeContent: q.Get("include_content") == "true",
		Limit:          parseInt(q.Get("limit")),
	}
	results, err := s.Search(r.Context(), opts)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{"results": toResults(results)})
}

func (s *Service) handleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeJSON(w, 400, map[string]string{"error": "missing query parameter q"})
		return
	}
	results, err := s.AdvancedSearch(r.Context(), query,
		q.Get("include_content") == "true", parseInt(q.Get("limit")))
	if err != nil {
		// FTS5 rejects malformed MATCH syntax; that is the caller's error.
		writeError(w, 400, err)
		return
	}
	writeJSON(w, 200, map[string]any{"results": toResults(results)})
}

func (s *Service) handleRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := s.RecentHistory(r.Context(), parseInt(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{"entries": entries})
}

func (s *Service) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bms, err := s.ListBookmarks(r.Context(), q.Get("folder"), parseInt(q.Get("limit")))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{"bookmarks": bms})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Stats(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, st)
}

func (s *Service) handleReindex(w http.ResponseWriter, r *http.Request) {
	if err := s.Reindex(r.Context()); err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "reindexed"})
}

// parseInstant accepts epoch seconds or RFC 3339; anything else means
// "no bound".
func parseInstant(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Unix()
	}
	return 0
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
