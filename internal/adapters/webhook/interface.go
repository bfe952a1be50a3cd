// Package webhook provides the outbound HTTP client used to deliver relayed
// messages to a provider webhook.
package webhook

import (
	"context"
	"net/http"
	"time"
)

// Result represents the provider's verdict for one posted payload
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body,omitempty"`
}

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute scripted transports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Poster provides an abstraction for posting JSON payloads to a webhook URL
// This interface supports both the real HTTP implementation and test mocks
type Poster interface {
	// Post sends payload as a JSON body to url and returns the provider's
	// status code and bounded response body. The call is synchronous and is
	// never retried here.
	Post(ctx context.Context, url string, payload interface{}) (*Result, error)
}

// Config represents configuration for the webhook client
type Config struct {
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`
	MaxResponseBytes int64         `json:"max_response_bytes" yaml:"max_response_bytes"`
}

// DefaultConfig returns the default webhook client configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:          10 * time.Second,
		MaxResponseBytes: 64 * 1024,
	}
}
