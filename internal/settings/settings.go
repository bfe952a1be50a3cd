// Package settings extracts operator configuration from the reserved
// component settings header.
package settings

import (
	"encoding/json"
	"fmt"
	"net/http"

	"slack-relay-api/pkg/httpfn"
)

// Header is the reserved request header carrying operator settings as a
// JSON object string.
const Header = "x-edgee-component-settings"

// Settings holds the operator-supplied relay configuration.
type Settings struct {
	WebhookURL string `json:"webhook_url"`
}

// FromHeaders extracts Settings from the inbound header multimap. Lookup is
// case-insensitive and exactly one settings header is required. A missing
// webhook_url key yields an empty string; callers enforce non-emptiness at
// the point of use.
func FromHeaders(headers http.Header) (*Settings, error) {
	values := headers.Values(Header)
	if len(values) == 0 {
		return nil, httpfn.NewConfigError(fmt.Sprintf("Missing '%s' header", Header), nil)
	}
	if len(values) > 1 {
		return nil, httpfn.NewConfigError(fmt.Sprintf("Expected exactly one '%s' header, found %d", Header, len(values)), nil)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(values[0]), &fields); err != nil {
		return nil, httpfn.NewConfigError(fmt.Sprintf("Invalid '%s' header", Header), err)
	}

	return &Settings{WebhookURL: fields["webhook_url"]}, nil
}
