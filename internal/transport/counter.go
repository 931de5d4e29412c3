package transport

import (
	"io"
	"sync/atomic"
)

// byteCounter passes writes through to w and totals the bytes accepted.
// N may be read while another goroutine writes.
type byteCounter struct {
	w io.Writer
	n atomic.Int64
}

func newByteCounter(w io.Writer) *byteCounter {
	return &byteCounter{w: w}
}

func (c *byteCounter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}

// N returns the bytes written so far.
func (c *byteCounter) N() int64 {
	return c.n.Load()
}
