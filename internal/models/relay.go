package models

// SlackPayload is the provider payload posted to the webhook.
type SlackPayload struct {
	Text string `json:"text"`
}

// RelayResult is the normalized relay response body returned to the caller.
type RelayResult struct {
	OK bool `json:"ok"`
}
