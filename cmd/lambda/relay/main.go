package main

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"slack-relay-api/internal/handlers"
	"slack-relay-api/pkg/httpfn"
	"slack-relay-api/pkg/lambda"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
)

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	container, err := lambda.GetConnectionManager().GetContainer(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "Internal server error"}`,
		}, nil
	}

	// Convert API Gateway event to a generic request
	req := httpfn.NewRequest(
		event.HTTPMethod,
		"https",
		event.RequestContext.DomainName,
		event.Path,
		eventRawQuery(event),
		eventHeaders(event),
		bytes.NewReader([]byte(event.Body)),
	)

	relayHandler := handlers.NewRelayHandler(container.RelayService)

	// Route the request
	var resp *httpfn.Response

	switch {
	case event.HTTPMethod == "POST" && (event.Path == "/" || event.Path == "/relay" || event.Path == "/api/v1/relay"):
		resp, err = relayHandler.HandleRelay(ctx, req)
	case event.HTTPMethod == "GET" && (event.Path == "/deliveries" || event.Path == "/api/v1/deliveries") && container.DeliveryService != nil:
		resp, err = handlers.NewDeliveryHandler(container.DeliveryService).HandleList(ctx, req)
	case event.HTTPMethod == "GET" && (event.PathParameters["id"] != "" || strings.Contains(event.Path, "/deliveries/")) && container.DeliveryService != nil:
		resp, err = handlers.NewDeliveryHandler(container.DeliveryService).HandleGet(ctx, req)
	default:
		return events.APIGatewayProxyResponse{
			StatusCode: 404,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "Not found"}`,
		}, nil
	}

	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "Internal server error"}`,
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		MultiValueHeaders: resp.Headers,
		Body:              string(resp.Body),
	}, nil
}

// eventHeaders builds a header multimap from the event, preferring the
// multi-value form so duplicate headers are preserved
func eventHeaders(event events.APIGatewayProxyRequest) http.Header {
	headers := http.Header{}
	if len(event.MultiValueHeaders) > 0 {
		for name, values := range event.MultiValueHeaders {
			for _, value := range values {
				headers.Add(name, value)
			}
		}
		return headers
	}
	for name, value := range event.Headers {
		headers.Add(name, value)
	}
	return headers
}

// eventRawQuery rebuilds the raw query string from the event parameters
func eventRawQuery(event events.APIGatewayProxyRequest) string {
	values := url.Values{}
	if len(event.MultiValueQueryStringParameters) > 0 {
		for name, vals := range event.MultiValueQueryStringParameters {
			for _, val := range vals {
				values.Add(name, val)
			}
		}
		return values.Encode()
	}
	for name, val := range event.QueryStringParameters {
		values.Add(name, val)
	}
	return values.Encode()
}

func main() {
	awslambda.Start(handler)
}
