package webhook

import (
	"context"
	"net/http"
	"sync"
)

// PostCall records one invocation of MockPoster.Post
type PostCall struct {
	URL     string
	Payload interface{}
}

// MockPoster is an in-memory implementation of Poster for testing. Answers
// are scripted in order; the last script entry repeats once the list is
// exhausted, and an unscripted mock answers 200 with an empty body.
type MockPoster struct {
	mu      sync.RWMutex
	scripts []mockScript
	next    int
	calls   []PostCall
}

type mockScript struct {
	result *Result
	err    error
}

// NewMockPoster creates a new MockPoster instance
func NewMockPoster() *MockPoster {
	return &MockPoster{}
}

// ScriptResult queues a successful answer
func (m *MockPoster) ScriptResult(result *Result) *MockPoster {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, mockScript{result: result})
	return m
}

// ScriptError queues a failing answer
func (m *MockPoster) ScriptError(err error) *MockPoster {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, mockScript{err: err})
	return m
}

// Post implements Poster.Post
func (m *MockPoster) Post(ctx context.Context, url string, payload interface{}) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, PostCall{URL: url, Payload: payload})

	if len(m.scripts) == 0 {
		return &Result{StatusCode: http.StatusOK}, nil
	}

	script := m.scripts[m.next]
	if m.next < len(m.scripts)-1 {
		m.next++
	}

	if script.err != nil {
		return nil, script.err
	}
	return script.result, nil
}

// Additional methods for testing

// Calls returns a copy of the recorded invocations
func (m *MockPoster) Calls() []PostCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]PostCall(nil), m.calls...)
}

// CallCount returns the number of recorded invocations
func (m *MockPoster) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// LastCall returns the most recent invocation, or nil if none happened
func (m *MockPoster) LastCall() *PostCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears all scripted answers and recorded calls
func (m *MockPoster) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = nil
	m.next = 0
	m.calls = nil
}
