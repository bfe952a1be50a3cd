package httpfn

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// closingReader yields its data once, then reports a closed stream.
type closingReader struct {
	data []byte
	read bool
}

func (r *closingReader) Read(p []byte) (int, error) {
	if r.read || len(r.data) == 0 {
		return 0, io.ErrClosedPipe
	}
	r.read = true
	return copy(p, r.data), nil
}

func TestReadBodyChunked(t *testing.T) {
	// Large enough to span several read chunks
	want := bytes.Repeat([]byte("abcdefgh"), 1500)
	req := NewRequest("POST", "https", "example.com", "/", "", nil, bytes.NewReader(want))

	got, err := req.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody() failed: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("ReadBody() returned %d bytes, want %d", len(got), len(want))
	}
}

func TestReadBodyEmptyStream(t *testing.T) {
	req := NewRequest("POST", "https", "example.com", "/", "", nil, bytes.NewReader(nil))

	got, err := req.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody() failed: %v", err)
	}

	if len(got) != 0 {
		t.Errorf("Expected empty body, got %d bytes", len(got))
	}
}

func TestReadBodyNilStream(t *testing.T) {
	req := NewRequest("GET", "https", "example.com", "/", "", nil, nil)

	got, err := req.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody() failed: %v", err)
	}

	if len(got) != 0 {
		t.Errorf("Expected empty body for nil stream, got %d bytes", len(got))
	}
}

func TestReadBodyClosedBeforeData(t *testing.T) {
	req := NewRequest("POST", "https", "example.com", "/", "", nil, &closingReader{})

	got, err := req.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody() should treat a closed stream as end-of-data, got %v", err)
	}

	if len(got) != 0 {
		t.Errorf("Expected empty body, got %d bytes", len(got))
	}
}

func TestReadBodyClosedAfterData(t *testing.T) {
	req := NewRequest("POST", "https", "example.com", "/", "", nil, &closingReader{data: []byte("partial")})

	got, err := req.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody() failed: %v", err)
	}

	if string(got) != "partial" {
		t.Errorf("Expected %q, got %q", "partial", string(got))
	}
}

func TestReadBodyCached(t *testing.T) {
	req := NewRequest("POST", "https", "example.com", "/", "", nil, strings.NewReader("once"))

	first, err := req.ReadBody()
	if err != nil {
		t.Fatalf("First ReadBody() failed: %v", err)
	}

	second, err := req.ReadBody()
	if err != nil {
		t.Fatalf("Second ReadBody() failed: %v", err)
	}

	if string(first) != "once" || string(second) != "once" {
		t.Errorf("Expected cached body %q, got %q then %q", "once", string(first), string(second))
	}
}

func TestNewRequestNilHeaders(t *testing.T) {
	req := NewRequest("GET", "https", "example.com", "/", "", nil, nil)

	if req.Headers == nil {
		t.Error("Expected non-nil header map")
	}
}
