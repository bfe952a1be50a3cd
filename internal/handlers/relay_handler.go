package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"slack-relay-api/internal/models"
	"slack-relay-api/internal/services"
	"slack-relay-api/internal/settings"
	"slack-relay-api/pkg/httpfn"
)

// RelayHandler handles message relay HTTP requests
type RelayHandler struct {
	relayService services.RelayService
}

// NewRelayHandler creates a new relay handler
func NewRelayHandler(relayService services.RelayService) *RelayHandler {
	return &RelayHandler{
		relayService: relayService,
	}
}

// relay is the typed core shared by every host surface. The input stays a
// raw JSON object so field checks surface as domain errors with stable
// messages.
func (h *RelayHandler) relay(ctx context.Context, req *httpfn.TypedRequest[map[string]interface{}]) (*httpfn.TypedResponse[models.RelayResult], error) {
	componentSettings, err := settings.FromHeaders(req.Headers)
	if err != nil {
		return nil, err
	}
	if componentSettings.WebhookURL == "" {
		return nil, httpfn.NewConfigError("Failed to parse component settings, missing Slack webhook URL", nil)
	}

	message, ok := req.Body["message"].(string)
	if !ok {
		return nil, httpfn.NewDomainError("Missing 'message' field in request body")
	}

	outcome, err := h.relayService.Relay(ctx, &services.RelayRequest{
		WebhookURL: componentSettings.WebhookURL,
		Message:    message,
	})
	if err != nil {
		return nil, err
	}

	return &httpfn.TypedResponse[models.RelayResult]{Body: outcome.Result}, nil
}

// HandleRelay drives one host request through the typed relay pipeline
func (h *RelayHandler) HandleRelay(ctx context.Context, req *httpfn.Request) (*httpfn.Response, error) {
	sink := httpfn.NewSink()
	if err := httpfn.RunJSON(ctx, req, sink, h.relay); err != nil {
		return nil, err
	}
	return sink.Response()
}

// @Summary Relay a message to Slack
// @Description Forward the message field of the JSON body to the webhook URL carried in the settings header
// @Tags relay
// @Accept json
// @Produce json
// @Param x-edgee-component-settings header string true "Component settings JSON carrying webhook_url"
// @Param request body map[string]interface{} true "Relay payload with a message field"
// @Success 200 {object} models.RelayResult
// @Failure 400 {object} httpfn.ErrorEnvelope
// @Failure 500 {object} httpfn.ErrorEnvelope
// @Router /relay [post]
func (h *RelayHandler) Relay(c *gin.Context) {
	request := httpfn.NewRequest(
		c.Request.Method,
		requestScheme(c.Request),
		c.Request.Host,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
		c.Request.Header,
		c.Request.Body,
	)

	response, err := h.HandleRelay(c.Request.Context(), request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	writeHostResponse(c, response)
}

// requestScheme reports the scheme the client used
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// writeHostResponse copies an adapter response onto the gin writer
func writeHostResponse(c *gin.Context, response *httpfn.Response) {
	header := c.Writer.Header()
	for name, values := range response.Headers {
		for _, value := range values {
			header.Add(name, value)
		}
	}
	c.Data(response.StatusCode, response.Headers.Get("Content-Type"), response.Body)
}
