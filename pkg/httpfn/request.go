// Package httpfn adapts opaque host HTTP requests into strongly-typed
// handler invocations and typed handler results back into host responses.
package httpfn

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
)

// readChunkSize is the fixed chunk size used to drain the inbound body stream.
const readChunkSize = 4096

// Request represents a generic inbound HTTP request as delivered by a host.
// It is immutable for the duration of one invocation and owned by the runner
// processing it.
type Request struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	RawQuery  string
	Headers   http.Header
	Body      io.Reader

	bodyBytes []byte
	bodyRead  bool
}

// NewRequest creates a request from its parts. A nil header map is replaced
// with an empty one and a nil body reads as empty.
func NewRequest(method, scheme, authority, path, rawQuery string, headers http.Header, body io.Reader) *Request {
	if headers == nil {
		headers = http.Header{}
	}
	return &Request{
		Method:    method,
		Scheme:    scheme,
		Authority: authority,
		Path:      path,
		RawQuery:  rawQuery,
		Headers:   headers,
		Body:      body,
	}
}

// ReadBody drains the body stream in fixed-size chunks until it signals
// end-of-data. A stream that closes before yielding any bytes produces an
// empty buffer, not an error. The result is cached, so repeated calls return
// the same bytes without touching the stream again.
func (r *Request) ReadBody() ([]byte, error) {
	if r.bodyRead {
		return r.bodyBytes, nil
	}

	if r.Body == nil {
		r.bodyRead = true
		return nil, nil
	}

	var buf []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			// A closed stream counts as end-of-data, never as a failure.
			if err == io.EOF || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, fs.ErrClosed) {
				break
			}
			return nil, err
		}
	}

	r.bodyBytes = buf
	r.bodyRead = true
	return buf, nil
}

// Response represents a generic outbound HTTP response. It is built once and
// handed to the sink exactly once; it must not be mutated after handoff.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}
