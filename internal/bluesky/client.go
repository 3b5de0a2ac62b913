// Package bluesky is a thin client for the subset of the AT protocol the
// agent uses: posting, following, and muting.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const Surface = "bluesky"

type Client struct {
	host       string
	identifier string
	password   string
	client     *http.Client

	mu        sync.Mutex
	accessJwt string
	did       string
	expiresAt time.Time
}

func New(host, identifier, password string) *Client {
	return &Client{
		host:       host,
		identifier: identifier,
		password:   password,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.host != "" && c.identifier != "" && c.password != ""
}

func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessJwt != "" && time.Now().Before(c.expiresAt) {
		return nil
	}

	body, _ := json.Marshal(map[string]string{
		"identifier": c.identifier,
		"password":   c.password,
	})
	var parsed struct {
		AccessJwt string `json:"accessJwt"`
		Did       string `json:"did"`
	}
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", "", body, &parsed); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if parsed.AccessJwt == "" {
		return fmt.Errorf("create session: empty token")
	}

	c.accessJwt = parsed.AccessJwt
	c.did = parsed.Did
	// Tokens last longer, but re-login hourly to stay clear of expiry.
	c.expiresAt = time.Now().Add(1 * time.Hour)
	return nil
}

// Post publishes a text post and returns its uri.
func (c *Client) Post(ctx context.Context, text string) (string, error) {
	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}

	if len(text) > 300 {
		text = text[:297] + "..."
	}
	body, _ := json.Marshal(map[string]any{
		"repo":       c.did,
		"collection": "app.bsky.feed.post",
		"record": map[string]any{
			"$type":     "app.bsky.feed.post",
			"text":      text,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
	var parsed struct {
		URI string `json:"uri"`
	}
	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", c.accessJwt, body, &parsed); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return parsed.URI, nil
}

// Follow creates a follow record for the given did.
func (c *Client) Follow(ctx context.Context, did string) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]any{
		"repo":       c.did,
		"collection": "app.bsky.graph.follow",
		"record": map[string]any{
			"$type":     "app.bsky.graph.follow",
			"subject":   did,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", c.accessJwt, body, nil); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Mute mutes the given actor.
func (c *Client) Mute(ctx context.Context, actor string) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]string{"actor": actor})
	if err := c.post(ctx, "/xrpc/app.bsky.graph.muteActor", c.accessJwt, body, nil); err != nil {
		return fmt.Errorf("mute: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, token string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
