package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// WikipediaClient looks up article summaries via the opensearch endpoint.
type WikipediaClient struct {
	baseURL string
	client  *http.Client
}

func NewWikipediaClient() *WikipediaClient {
	return &WikipediaClient{
		baseURL: "https://en.wikipedia.org",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *WikipediaClient) Search(ctx context.Context, query string) ([]Result, error) {
	u := w.baseURL + "/w/api.php?action=opensearch&format=json&limit=5&search=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia http %d", resp.StatusCode)
	}

	// Opensearch replies with [query, [titles], [descriptions], [urls]].
	var parsed []json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed) < 4 {
		return nil, fmt.Errorf("wikipedia unexpected response shape")
	}

	var titles, descriptions, urls []string
	if err := json.Unmarshal(parsed[1], &titles); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(parsed[2], &descriptions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(parsed[3], &urls); err != nil {
		return nil, err
	}

	var results []Result
	for i := range titles {
		r := Result{Title: titles[i]}
		if i < len(descriptions) {
			r.Snippet = descriptions[i]
		}
		if i < len(urls) {
			r.URL = urls[i]
		}
		results = append(results, r)
	}
	return results, nil
}
