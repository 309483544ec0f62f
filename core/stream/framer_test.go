package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader hands out the input in fixed-size pieces.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func readAll(t *testing.T, r io.Reader) []string {
	t.Helper()
	lr := NewLineReader(r)
	var lines []string
	for {
		line, err := lr.Next()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestFramerHoldsPartialLine(t *testing.T) {
	var f Framer

	assert.Empty(t, f.Feed("data: {\"a\""))
	assert.Equal(t, "data: {\"a\"", f.Residual())

	lines := f.Feed(":1}\nadded: x\n\nlink: ")
	assert.Equal(t, []string{"data: {\"a\":1}", "added: x", ""}, lines)
	assert.Equal(t, "link: ", f.Residual())

	f.Reset()
	assert.Empty(t, f.Residual())
}

func TestLineReaderDropsUnterminatedTail(t *testing.T) {
	lines := readAll(t, strings.NewReader("data: one\ndata: two\ndata: tail"))
	assert.Equal(t, []string{"data: one", "data: two"}, lines)
}

func TestLineReaderChunkInvariance(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"你好 \"}}]}\n" +
		"added: 来自文档 #42 — note\n" +
		"link: {\"type\":\"code\",\"language\":\"py\",\"content\":\"print('é')\"}\n" +
		"\n" +
		"data: [DONE]\n"

	want := readAll(t, strings.NewReader(body))
	require.Len(t, want, 5)

	for size := 1; size <= 16; size++ {
		got := readAll(t, &chunkReader{data: []byte(body), size: size})
		assert.Equal(t, want, got, "chunk size %d", size)
	}
	assert.Equal(t, want, readAll(t, iotest.OneByteReader(strings.NewReader(body))))
	assert.Equal(t, want, readAll(t, iotest.HalfReader(strings.NewReader(body))))
}

func TestLineReaderSplitCodePoint(t *testing.T) {
	// "é" is 0xC3 0xA9; the split lands between the two bytes.
	body := []byte("added: caf\xc3\xa9\n")
	got := readAll(t, &chunkReader{data: body, size: 11})
	assert.Equal(t, []string{"added: café"}, got)
}

func TestLineReaderInvalidUTF8(t *testing.T) {
	got := readAll(t, bytes.NewReader([]byte("added: a\xffb\n")))
	assert.Equal(t, []string{"added: a\uFFFDb"}, got)
}

func TestLineReaderSurfacesReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("data: one\npartial"), iotest.ErrReader(boom))
	lr := NewLineReader(r)

	line, err := lr.Next()
	require.NoError(t, err)
	assert.Equal(t, "data: one", line)

	_, err = lr.Next()
	assert.ErrorIs(t, err, boom)
}

func TestParseChunkedStreamYieldsSameFrames(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n" +
		"added: 参考\n" +
		"link: {\"type\":\"link\",\"content\":\"https://x\",\"webText\":\"X\"}\n"

	parseAll := func(r io.Reader) []Frame {
		var frames []Frame
		for _, line := range readAll(t, r) {
			f, err := Parse(line)
			require.NoError(t, err)
			if !f.Ignored() {
				frames = append(frames, f)
			}
		}
		return frames
	}

	want := parseAll(strings.NewReader(body))
	require.Len(t, want, 4)
	for size := 1; size < len(body); size += 7 {
		assert.Equal(t, want, parseAll(&chunkReader{data: []byte(body), size: size}))
	}
}
