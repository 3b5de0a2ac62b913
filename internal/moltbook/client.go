// Package moltbook is a thin client for the Moltbook posting API.
package moltbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const Surface = "moltbook"

type Client struct {
	host   string
	apiKey string
	client *http.Client
}

func New(host, apiKey string) *Client {
	return &Client{
		host:   host,
		apiKey: apiKey,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.host != "" && c.apiKey != ""
}

// Post publishes a text post, optionally with an embedded image URL, and
// returns the post id.
func (c *Client) Post(ctx context.Context, text, embedURL string) (string, error) {
	payload := map[string]string{"content": text}
	if embedURL != "" {
		payload["embed_url"] = embedURL
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/v1/posts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("moltbook http %d: %s", resp.StatusCode, string(data))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	return parsed.ID, nil
}
