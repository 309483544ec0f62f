package ling

import (
	"fmt"
	"io"

	"lingchat/core/stream"
)

type lingIterator struct {
	body  io.ReadCloser
	lines *stream.LineReader
	done  bool
}

// Next returns the next frame that carries a channel. Blank lines and
// unknown prefixes are skipped here. A *stream.DecodeError is returned for a
// malformed payload and the iterator stays usable.
func (it *lingIterator) Next() (stream.Frame, error) {
	for {
		if it.done {
			return stream.Frame{}, io.EOF
		}

		line, err := it.lines.Next()
		if err == io.EOF {
			it.done = true
			return stream.Frame{}, io.EOF
		}
		if err != nil {
			it.done = true
			return stream.Frame{}, fmt.Errorf("ling stream: %w", err)
		}

		frame, err := stream.Parse(line)
		if err != nil {
			return stream.Frame{}, err
		}
		if frame.Channel != stream.ChannelNone {
			return frame, nil
		}
	}
}

func (it *lingIterator) Close() error {
	it.done = true
	return it.body.Close()
}
