package httpfn

import (
	"errors"
	"sync"
)

// ErrResponseSent reports an attempt to assign the response sink more than
// once for a single request.
var ErrResponseSent = errors.New("response already sent")

// Sink is the single-assignment slot through which exactly one response or
// one transport-level failure is delivered back to the host per request.
// The first Send or Fail wins; every later assignment returns ErrResponseSent.
type Sink struct {
	mu       sync.Mutex
	assigned bool
	response *Response
	failure  error
}

// NewSink creates an unassigned response sink.
func NewSink() *Sink {
	return &Sink{}
}

// Send delivers a successful response through the sink.
func (s *Sink) Send(resp *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assigned {
		return ErrResponseSent
	}
	s.assigned = true
	s.response = resp
	return nil
}

// Fail delivers a transport-level failure through the sink instead of a
// response.
func (s *Sink) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assigned {
		return ErrResponseSent
	}
	s.assigned = true
	s.failure = err
	return nil
}

// Assigned reports whether the sink has received its one assignment.
func (s *Sink) Assigned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assigned
}

// Response returns whichever of the response or failure was assigned. Both
// are nil while the sink is unassigned.
func (s *Sink) Response() (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response, s.failure
}
