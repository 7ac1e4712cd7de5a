package recall

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zetaphor/browser-recall/recall/internal/store"
)

// SearchInput is the input schema for the recall_search tool.
type SearchInput struct {
	Query          string `json:"query" jsonschema:"term to match against page titles and content"`
	Domain         string `json:"domain,omitempty" jsonschema:"restrict results to this domain"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"include the stored page content in results"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20)"`
}

// AdvancedSearchInput is the input schema for the recall_advanced_search tool.
type AdvancedSearchInput struct {
	Query          string `json:"query" jsonschema:"FTS5 MATCH query: phrases, AND/OR/NOT, column filters"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"include the stored page content in results"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20)"`
}

// SearchOutput is the output schema for both search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is a single history hit.
type SearchResultOutput struct {
	URL              string  `json:"url"`
	Title            string  `json:"title"`
	Domain           string  `json:"domain"`
	VisitTime        int64   `json:"visit_time"`
	Score            float64 `json:"score,omitempty"`
	TitleHighlight   string  `json:"title_highlight,omitempty"`
	ContentHighlight string  `json:"content_highlight,omitempty"`
	Content          string  `json:"content,omitempty"`
}

// StatsOutput is the output schema for the recall_stats tool.
type StatsOutput struct {
	HistoryCount   int64 `json:"history_count"`
	BookmarkCount  int64 `json:"bookmark_count"`
	PendingContent int64 `json:"pending_content"`
}

// RegisterMCP registers the recall tools on an MCP server, so an agent can
// query browsing history conversationally.
func (s *Service) RegisterMCP(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_search",
		Description: "Search browsing history by title and page content, most relevant first",
	}, s.mcpSearch)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_advanced_search",
		Description: "Full-text search over browsing history using FTS5 MATCH syntax",
	}, s.mcpAdvancedSearch)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_stats",
		Description: "Report how many pages and bookmarks are indexed",
	}, s.mcpStats)
}

func (s *Service) mcpSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	results, err := s.Search(ctx, store.SearchOptions{
		Term:           input.Query,
		Domain:         input.Domain,
		IncludeContent: input.IncludeContent,
		Limit:          limit,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

func (s *Service) mcpAdvancedSearch(ctx context.Context, _ *mcp.CallToolRequest, input AdvancedSearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	results, err := s.AdvancedSearch(ctx, input.Query, input.IncludeContent, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

func (s *Service) mcpStats(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, StatsOutput, error) {
	st, err := s.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		HistoryCount:   st.HistoryCount,
		BookmarkCount:  st.BookmarkCount,
		PendingContent: st.PendingContent,
	}, nil
}

func toSearchOutput(results []store.SearchResult) SearchOutput {
	out := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		r := &results[i]
		out.Results[i] = SearchResultOutput{
			URL:              r.URL,
			Title:            r.Title,
			Domain:           r.Domain,
			VisitTime:        r.VisitTime,
			Score:            r.Score,
			TitleHighlight:   highlightPolicy.Sanitize(r.TitleHighlight),
			ContentHighlight: highlightPolicy.Sanitize(r.ContentHighlight),
			Content:          r.Content.String,
		}
	}
	return out
}
