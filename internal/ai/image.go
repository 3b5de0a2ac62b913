package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PollinationsImage renders images through the pollinations image endpoint.
type PollinationsImage struct {
	client *http.Client
}

func NewPollinationsImage() *PollinationsImage {
	return &PollinationsImage{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// GenerateImage returns raw image bytes, or an error on failure/timeout.
func (p *PollinationsImage) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	u := "https://image.pollinations.ai/prompt/" + url.PathEscape(prompt) + "?nologo=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image generation http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image generation returned empty body")
	}
	return data, nil
}
