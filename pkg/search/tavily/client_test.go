package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMapsResults(t *testing.T) {
	var gotBody searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Rates overview", "url": "https://example.com/rates", "content": "central bank rates"},
				{"title": "No url entry", "url": "", "content": "dropped"},
				{"title": "Housing study", "url": "https://example.org/housing", "content": "supply and demand"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	results, err := client.Search(context.Background(), "interest rates housing", 5)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotBody.ApiKey)
	assert.Equal(t, "interest rates housing", gotBody.Query)
	assert.Equal(t, 5, gotBody.MaxResults)

	require.Len(t, results, 2)
	assert.Equal(t, "https://example.com/rates", results[0].Href)
	assert.Equal(t, "Rates overview", results[0].Title)
	assert.Equal(t, "supply and demand", results[1].Snippet)
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL)
	_, err := client.Search(context.Background(), "anything", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
