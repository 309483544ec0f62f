// Package stream turns the dialog backend's response body into parsed frames.
// The body is line oriented: every logical line is LF terminated and carries
// one of a fixed set of channel prefixes.
package stream

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readSize is the chunk size used when pulling from the response body.
const readSize = 4096

// Framer splits decoded text into complete lines. The trailing segment after
// the last LF is held back until more text arrives.
type Framer struct {
	residual string
}

// Feed appends chunk to the residual buffer and returns every complete line
// in arrival order. Empty and whitespace-only lines are returned as-is.
func (f *Framer) Feed(chunk string) []string {
	buf := f.residual + chunk
	parts := strings.Split(buf, "\n")
	f.residual = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Residual returns the buffered partial line.
func (f *Framer) Residual() string {
	return f.residual
}

// Reset discards the partial line. An unterminated final line is never
// delivered.
func (f *Framer) Reset() {
	f.residual = ""
}

// LineReader yields logical lines from a byte stream. Bytes are decoded as
// UTF-8 in streaming mode, so a code point split across reads is held until
// it is complete. Invalid sequences decode to U+FFFD.
type LineReader struct {
	src     io.Reader
	framer  Framer
	buf     []byte
	pending []string
	err     error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		src: transform.NewReader(r, unicode.UTF8.NewDecoder()),
		buf: make([]byte, readSize),
	}
}

// Next returns the next complete line. It returns io.EOF once the underlying
// reader is exhausted and all complete lines have been consumed; any other
// read error is returned unchanged after the buffered lines drain.
func (lr *LineReader) Next() (string, error) {
	for len(lr.pending) == 0 {
		if lr.err != nil {
			return "", lr.err
		}
		n, err := lr.src.Read(lr.buf)
		if n > 0 {
			lr.pending = append(lr.pending, lr.framer.Feed(string(lr.buf[:n]))...)
		}
		if err != nil {
			lr.framer.Reset()
			lr.err = err
		}
	}
	line := lr.pending[0]
	lr.pending = lr.pending[1:]
	return line, nil
}
