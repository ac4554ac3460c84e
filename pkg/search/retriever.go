package search

import "context"

// Result is a single search hit. Href is the field the research pipeline
// feeds into the visited-url gate before scraping.
type Result struct {
	Title   string `json:"title"`
	Href    string `json:"href"`
	Snippet string `json:"body"`
}

// Retriever executes a web search bounded to maxResults hits.
type Retriever interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
