package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "go generics", req.Query)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Go Blog", "url": "https://go.dev/blog", "content": "about generics", "score": 0.9},
			},
		})
	}))
	defer srv.Close()

	c := NewTavilyClient("test-key")
	c.baseURL = srv.URL

	results, err := c.Search(context.Background(), "go generics")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Go Blog", results[0].Title)
	assert.Equal(t, "about generics", results[0].Snippet)
}

func TestTavilySearchRequiresKey(t *testing.T) {
	c := NewTavilyClient("")
	_, err := c.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestTavilySearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewTavilyClient("k")
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), "q")
	assert.ErrorContains(t, err, "502")
}

func TestWikipediaSearchParsesOpensearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		assert.Equal(t, "go language", r.URL.Query().Get("search"))

		json.NewEncoder(w).Encode([]any{
			"go language",
			[]string{"Go (programming language)"},
			[]string{"Compiled language designed at Google"},
			[]string{"https://en.wikipedia.org/wiki/Go_(programming_language)"},
		})
	}))
	defer srv.Close()

	c := NewWikipediaClient()
	c.baseURL = srv.URL

	results, err := c.Search(context.Background(), "go language")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Go (programming language)", results[0].Title)
	assert.Equal(t, "Compiled language designed at Google", results[0].Snippet)
	assert.Contains(t, results[0].URL, "wikipedia.org")
}

func TestWikipediaSearchRejectsBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]any{"only", "three", "fields"})
	}))
	defer srv.Close()

	c := NewWikipediaClient()
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), "q")
	assert.ErrorContains(t, err, "unexpected response shape")
}
