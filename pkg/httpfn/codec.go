package httpfn

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

// Codec pairs the decode and encode logic for one body representation.
// Decode turns raw inbound bytes into a typed value. Encode turns a typed
// value into outbound bytes plus default response headers; the defaults are
// applied insert-if-absent, so a header the handler set explicitly is never
// overwritten.
type Codec[T any] interface {
	Decode(data []byte) (T, error)
	Encode(value T) ([]byte, http.Header, error)
}

// ErrorRenderer is implemented by codecs that render failures in their own
// representation instead of the JSON error envelope.
type ErrorRenderer interface {
	RenderError(err error) *Response
}

// Unit is the empty body representation.
type Unit struct{}

// UnitCodec ignores the request body and produces an empty response body.
type UnitCodec struct{}

// Decode always succeeds and ignores its input
func (UnitCodec) Decode([]byte) (Unit, error) {
	return Unit{}, nil
}

// Encode produces an empty body with no default headers
func (UnitCodec) Encode(Unit) ([]byte, http.Header, error) {
	return nil, nil, nil
}

// BytesCodec passes the body through untouched.
type BytesCodec struct{}

// Decode returns the raw bytes unchanged
func (BytesCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// Encode returns the raw bytes with an octet-stream content type default
func (BytesCodec) Encode(value []byte) ([]byte, http.Header, error) {
	return value, defaultHeaders("application/octet-stream"), nil
}

// TextCodec treats the body as UTF-8 text.
type TextCodec struct{}

// Decode fails unless the body is valid UTF-8
func (TextCodec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", NewDecodeError("Request body is not valid UTF-8", nil)
	}
	return string(data), nil
}

// Encode returns the text bytes with a plain-text content type default
func (TextCodec) Encode(value string) ([]byte, http.Header, error) {
	return []byte(value), defaultHeaders("text/plain; charset=utf-8"), nil
}

// JSONCodec converts the body to and from a JSON value of type T.
type JSONCodec[T any] struct{}

// Decode parses the body as JSON into T
func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, NewDecodeError("Invalid JSON request", err)
	}
	return value, nil
}

// Encode serializes the value as JSON
func (JSONCodec[T]) Encode(value T) ([]byte, http.Header, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, nil, NewDecodeError("Invalid JSON response", err)
	}
	return data, defaultHeaders("application/json"), nil
}

// RawJSONCodec carries pre-serialized JSON bytes. Decode verifies the bytes
// are valid JSON without binding them to a shape; Encode passes them through
// with the JSON content type applied.
type RawJSONCodec struct{}

// Decode verifies the body is well-formed JSON
func (RawJSONCodec) Decode(data []byte) ([]byte, error) {
	if !json.Valid(data) {
		return nil, NewDecodeError("Invalid JSON request", nil)
	}
	return data, nil
}

// Encode passes the pre-serialized bytes through
func (RawJSONCodec) Encode(value []byte) ([]byte, http.Header, error) {
	return value, defaultHeaders("application/json"), nil
}

// HTMLCodec carries HTML document bytes. Failures for HTML-typed handlers
// render as the compiled-in error page rather than the JSON envelope.
type HTMLCodec struct{}

// Decode returns the raw bytes unchanged
func (HTMLCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// Encode returns the document bytes with an HTML content type default
func (HTMLCodec) Encode(value []byte) ([]byte, http.Header, error) {
	return value, defaultHeaders("text/html; charset=utf-8"), nil
}

// RenderError serves the static error page with status 500
func (HTMLCodec) RenderError(error) *Response {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    defaultHeaders("text/html; charset=utf-8"),
		Body:       errorPage,
	}
}

// OptionalCodec wraps another codec so an empty body decodes to nil instead
// of an error, and a nil value encodes to an empty body.
type OptionalCodec[T any] struct {
	Inner Codec[T]
}

// Decode returns nil for an empty body and delegates otherwise
func (c OptionalCodec[T]) Decode(data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	value, err := c.Inner.Decode(data)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Encode produces an empty body for nil and delegates otherwise
func (c OptionalCodec[T]) Encode(value *T) ([]byte, http.Header, error) {
	if value == nil {
		return nil, nil, nil
	}
	return c.Inner.Encode(*value)
}

// defaultHeaders builds the default header set for a single content type.
func defaultHeaders(contentType string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return h
}

// mergeDefaultHeaders copies defaults into h for every header name h does
// not already carry. Existing values are never overwritten.
func mergeDefaultHeaders(h http.Header, defaults http.Header) {
	for name, values := range defaults {
		if len(h.Values(name)) > 0 {
			continue
		}
		for _, value := range values {
			h.Add(name, value)
		}
	}
}
