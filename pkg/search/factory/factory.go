package factory

import (
	"fmt"

	"ai-researcher-be/pkg/search"
	"ai-researcher-be/pkg/search/duckduckgo"
	"ai-researcher-be/pkg/search/tavily"
)

// NewRetriever resolves a retriever by name. Tavily needs its API key;
// DuckDuckGo only needs a browser-looking user agent.
func NewRetriever(name, tavilyAPIKey, userAgent string) (search.Retriever, error) {
	switch name {
	case "tavily":
		if tavilyAPIKey == "" {
			return nil, fmt.Errorf("tavily retriever requires TAVILY_API_KEY")
		}
		return tavily.NewClient(tavilyAPIKey, ""), nil
	case "duckduckgo":
		return duckduckgo.NewClient(userAgent), nil
	default:
		return nil, fmt.Errorf("unsupported retriever: %s", name)
	}
}
