package httpfn

import (
	"context"
	"errors"
	"net/http"
)

// TypedRequest carries the decoded input value together with the request
// metadata handlers may still need, such as the header multimap.
type TypedRequest[I any] struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	RawQuery  string
	Headers   http.Header
	Body      I
}

// TypedResponse is the handler's typed output. A zero StatusCode is sent as
// 200, and headers listed here take precedence over the output codec's
// defaults.
type TypedResponse[O any] struct {
	StatusCode int
	Headers    http.Header
	Body       O
}

// Handler is the business callback invoked between decode and encode. It
// runs to completion synchronously within one invocation.
type Handler[I, O any] func(ctx context.Context, req *TypedRequest[I]) (*TypedResponse[O], error)

// Run drives one request through decode, handle, and encode, and assigns the
// sink exactly once. Every failure short-circuits to the error envelope; no
// path returns without sending and no path sends twice. The returned error
// is non-nil only when the sink rejected the assignment.
func Run[I, O any](ctx context.Context, req *Request, sink *Sink, input Codec[I], output Codec[O], handler Handler[I, O]) error {
	renderer, _ := output.(ErrorRenderer)

	body, err := req.ReadBody()
	if err != nil {
		return sink.Send(RenderError(NewDecodeError("Failed to read request body", err), renderer))
	}

	decoded, err := input.Decode(body)
	if err != nil {
		return sink.Send(RenderError(asCodecError(err), renderer))
	}

	typed := &TypedRequest[I]{
		Method:    req.Method,
		Scheme:    req.Scheme,
		Authority: req.Authority,
		Path:      req.Path,
		RawQuery:  req.RawQuery,
		Headers:   req.Headers,
		Body:      decoded,
	}

	result, err := handler(ctx, typed)
	if err != nil {
		return sink.Send(RenderError(asHandlerError(err), renderer))
	}
	if result == nil {
		result = &TypedResponse[O]{}
	}

	data, defaults, err := output.Encode(result.Body)
	if err != nil {
		return sink.Send(RenderError(asCodecError(err), renderer))
	}

	headers := http.Header{}
	for name, values := range result.Headers {
		for _, value := range values {
			headers.Add(name, value)
		}
	}
	mergeDefaultHeaders(headers, defaults)

	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return sink.Send(&Response{
		StatusCode: status,
		Headers:    headers,
		Body:       data,
	})
}

// RunJSON runs handler with JSON codecs on both sides.
func RunJSON[I, O any](ctx context.Context, req *Request, sink *Sink, handler Handler[I, O]) error {
	return Run(ctx, req, sink, JSONCodec[I]{}, JSONCodec[O]{}, handler)
}

// asCodecError keeps classified failures as they are and folds everything
// else into the decode category.
func asCodecError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewDecodeError(err.Error(), err)
}

// asHandlerError keeps classified failures as they are; an unclassified
// handler failure is reported as a 500 with a fixed message.
func asHandlerError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Kind:    ErrDomain,
		Status:  http.StatusInternalServerError,
		Message: "Error during request handling",
		Err:     err,
	}
}
