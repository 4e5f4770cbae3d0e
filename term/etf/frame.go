package etf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/caffeineduck/termite/term"
)

// DefaultMaxFrame is the largest frame a Decoder accepts unless told
// otherwise.
const DefaultMaxFrame = 64 << 20

// Decoder reads length-prefixed terms from a stream.
type Decoder struct {
	r        *bufio.Reader
	maxFrame int
}

// NewDecoder returns a Decoder reading {packet, 4} frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), maxFrame: DefaultMaxFrame}
}

// SetMaxFrame changes the largest accepted frame size.
func (d *Decoder) SetMaxFrame(n int) { d.maxFrame = n }

// Decode reads the next frame. It returns io.EOF when the stream ends
// cleanly between frames.
func (d *Decoder) Decode() (term.Term, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if int64(n) > int64(d.maxFrame) {
		return nil, fmt.Errorf("etf: frame of %d bytes exceeds limit %d", n, d.maxFrame)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, ErrTruncated
	}
	return Unmarshal(payload)
}

// Encoder writes length-prefixed terms to a stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing {packet, 4} frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals v and writes it as one frame.
func (e *Encoder) Encode(v any) error {
	payload, err := Marshal(v)
	if err != nil {
		return err
	}
	frame := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	_, err = e.w.Write(frame)
	return err
}
