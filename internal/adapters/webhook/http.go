package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPPoster is the real Poster implementation backed by an HTTP client
type HTTPPoster struct {
	client Doer
	config *Config
}

// NewHTTPPoster creates a webhook poster using the given configuration.
// A nil config falls back to defaults.
func NewHTTPPoster(config *Config) *HTTPPoster {
	if config == nil {
		config = DefaultConfig()
	}
	return &HTTPPoster{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// NewHTTPPosterWithDoer creates a webhook poster with a custom transport
func NewHTTPPosterWithDoer(doer Doer, config *Config) *HTTPPoster {
	if config == nil {
		config = DefaultConfig()
	}
	return &HTTPPoster{
		client: doer,
		config: config,
	}
}

// Post implements Poster.Post
func (p *HTTPPoster) Post(ctx context.Context, url string, payload interface{}) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute webhook request: %w", err)
	}
	defer resp.Body.Close()

	// Bounded read: oversized provider responses are truncated, not fatal
	data, err := io.ReadAll(io.LimitReader(resp.Body, p.config.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}
