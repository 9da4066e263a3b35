package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/kyrielock/lockcore/internal/kerr"
)

// FrameLenSize is the width, in bytes, of a frame's big-endian length
// prefix.
const FrameLenSize = 4

// Frame is one multi-chunk body entry: a fresh nonce, a big-endian
// length, and that many bytes of sealed chunk data (ciphertext ‖ tag).
type Frame struct {
	Nonce      []byte
	Ciphertext []byte
}

// WriteFrame writes nonce ‖ length_be_u32 ‖ ciphertext to w.
func WriteFrame(w io.Writer, nonce, ciphertext []byte) error {
	if len(nonce) != 12 {
		return fmt.Errorf("%w: frame nonce must be 12 bytes, got %d", kerr.ErrInvalidArgument, len(nonce))
	}

	if _, err := w.Write(nonce); err != nil {
		return fmt.Errorf("%w: writing frame nonce: %v", kerr.ErrIO, err)
	}

	var lenBytes [FrameLenSize]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(ciphertext)))
	if _, err := w.Write(lenBytes[:]); err != nil {
		return fmt.Errorf("%w: writing frame length: %v", kerr.ErrIO, err)
	}

	if _, err := w.Write(ciphertext); err != nil {
		return fmt.Errorf("%w: writing frame ciphertext: %v", kerr.ErrIO, err)
	}

	return nil
}

// ReadFrame reads one frame from r. A clean end-of-stream on the nonce
// read (zero bytes consumed) is reported as io.EOF, not an error, the
// caller should treat that as "no more frames." Any other short read,
// including a partial nonce or a length prefix promising more
// ciphertext than is actually present, is reported as
// kerr.ErrTruncatedFrame.
func ReadFrame(r io.Reader) (Frame, error) {
	nonce := make([]byte, 12)
	if _, err := io.ReadFull(r, nonce); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("%w: reading frame nonce: %v", kerr.ErrTruncatedFrame, err)
	}

	var lenBytes [FrameLenSize]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return Frame{}, fmt.Errorf("%w: reading frame length: %v", kerr.ErrTruncatedFrame, err)
	}
	length := binary.BigEndian.Uint32(lenBytes[:])

	ciphertext := make([]byte, length)
	if _, err := io.ReadFull(r, ciphertext); err != nil {
		return Frame{}, fmt.Errorf("%w: reading frame ciphertext (want %d bytes): %v", kerr.ErrTruncatedFrame, length, err)
	}

	return Frame{Nonce: nonce, Ciphertext: ciphertext}, nil
}
