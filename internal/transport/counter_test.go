package transport

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
)

func TestByteCounter_Totals(t *testing.T) {
	var buf bytes.Buffer
	c := newByteCounter(&buf)

	for _, chunk := range []string{"scale", "_up", ""} {
		if _, err := io.WriteString(c, chunk); err != nil {
			t.Fatalf("unexpected write error: %v", err)
		}
	}
	if c.N() != 8 {
		t.Fatalf("expected 8 bytes counted, got %d", c.N())
	}
	if buf.String() != "scale_up" {
		t.Fatalf("expected passthrough %q, got %q", "scale_up", buf.String())
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, errors.New("disk full")
}

func TestByteCounter_CountsPartialWrites(t *testing.T) {
	c := newByteCounter(shortWriter{})
	if _, err := c.Write(make([]byte, 10)); err == nil {
		t.Fatal("expected the underlying error")
	}
	if c.N() != 5 {
		t.Fatalf("expected 5 bytes counted, got %d", c.N())
	}
}

func TestByteCounter_ConcurrentWrites(t *testing.T) {
	c := newByteCounter(io.Discard)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Write([]byte("abcd"))
			}
		}()
	}
	wg.Wait()
	if c.N() != 8*100*4 {
		t.Fatalf("expected %d bytes, got %d", 8*100*4, c.N())
	}
}
