package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"moltbot/pkg/retrylimit"
)

type PollinationsProvider struct {
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

func NewPollinationsProvider() *PollinationsProvider {
	return &PollinationsProvider{
		client: &http.Client{
			Timeout: 25 * time.Second,
		},
		limiter: retrylimit.NewAdaptiveLimiter(2, rate.Limit(0.5), 5, 0.5, 0.5),
	}
}

type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string   { return fmt.Sprintf("http %d: %s", e.code, e.body) }
func (e *httpStatusError) StatusCode() int { return e.code }

func (p *PollinationsProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	temp := opts.Temperature
	if temp <= 0 {
		temp = 1
	}

	payload := map[string]interface{}{
		"model":       "openai",
		"messages":    applyAvoid(messages, opts.Avoid),
		"temperature": temp,
		"private":     true,
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var reply string
	err = retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			"https://text.pollinations.ai/openai",
			bytes.NewReader(data),
		)
		if err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpStatusError{code: resp.StatusCode, body: truncate(body)}
		}
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return fmt.Errorf("pollinations returned html")
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return err
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("pollinations empty choices")
		}

		reply = cleanReply(parsed.Choices[0].Message.Content)
		if isGarbageResponse(reply) {
			return fmt.Errorf("pollinations returned garbage")
		}
		return nil
	}, p.limiter, 3)
	if err != nil {
		return "", err
	}
	return reply, nil
}
