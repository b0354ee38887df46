// Package broadcast publishes per-tick position frames to out-of-process
// renderers over a mangos PUB socket.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/discograph-layout/pkg/pubsub"
)

// Frame encodings, carried in the first byte of every message
const (
	EncodingJSON   byte = 'j'
	EncodingSnappy byte = 's'
)

// ErrBadFrame is returned for messages that cannot be decoded
var ErrBadFrame = errors.New("broadcast: bad frame")

// Frame is the positions of every body after one tick
type Frame struct {
	Session   string            `json:"session"`
	Tick      uint64            `json:"tick"`
	Alpha     float64           `json:"alpha"`
	Positions []pubsub.Position `json:"positions"`
}

// FrameFromEvent converts a tick event into a frame
func FrameFromEvent(ev pubsub.Event) Frame {
	return Frame{
		Session:   ev.Session,
		Tick:      ev.Tick,
		Alpha:     ev.Alpha,
		Positions: ev.Positions,
	}
}

// Encode serializes f, snappy block-compressed when compress is set. It
// returns the message and the size of the uncompressed JSON.
func Encode(f Frame, compress bool) ([]byte, int, error) {
	return AppendFrame(nil, f, compress)
}

// AppendFrame is Encode writing into dst's storage, reallocating when dst
// is too small
func AppendFrame(dst []byte, f Frame, compress bool) ([]byte, int, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal frame: %w", err)
	}

	if !compress {
		dst = append(dst[:0], EncodingJSON)
		return append(dst, data...), len(data), nil
	}

	n := snappy.MaxEncodedLen(len(data))
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: frame too large", ErrBadFrame)
	}
	if cap(dst) < n+1 {
		dst = make([]byte, 0, n+1)
	}
	dst = dst[:n+1]
	dst[0] = EncodingSnappy
	enc := snappy.Encode(dst[1:], data)
	return dst[:1+len(enc)], len(data), nil
}

// Decode parses a message produced by Encode
func Decode(msg []byte) (Frame, error) {
	var f Frame
	if len(msg) == 0 {
		return f, fmt.Errorf("%w: empty message", ErrBadFrame)
	}

	data := msg[1:]
	switch msg[0] {
	case EncodingJSON:
	case EncodingSnappy:
		var err error
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
	default:
		return f, fmt.Errorf("%w: unknown encoding %q", ErrBadFrame, msg[0])
	}

	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	return f, nil
}
