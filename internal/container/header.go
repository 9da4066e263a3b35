// Package container implements the on-disk KyrieLock file format: the
// fixed header (magic, version, hint) and the per-chunk frame encoding
// used by multi-chunk bodies. Single-shot bodies have no frame, they
// are just a nonce followed by one sealed blob running to EOF.
//
// Decrypt mode (single-shot vs. multi-chunk) is not recorded in the
// header; it is inferred from the remaining body size by the pipeline
// package. This is an inherited v1 constraint: a future version should
// carry an explicit mode byte instead.
package container

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kyrielock/lockcore/internal/kerr"
)

// Magic is the fixed 10-byte identifier that begins every container.
const Magic = "KYRIE_LOCK"

// Version is the only container format version this codec understands.
const Version uint32 = 1

// MaxHintLen is the maximum number of bytes a hint may occupy.
const MaxHintLen = 32

// HeaderFixedSize is the byte length of the header excluding the hint:
// magic(10) + version(4) + hint_len(1).
const HeaderFixedSize = len(Magic) + 4 + 1

// Header describes the parsed fixed prefix of a container.
type Header struct {
	Version uint32
	Hint    []byte
	// Size is the total number of header bytes consumed, including the
	// hint: HeaderFixedSize + len(Hint).
	Size int
}

// WriteHeader writes the magic, version, hint length, and hint bytes to
// w. A hint longer than MaxHintLen is silently truncated; a nil hint
// writes hint_len = 0.
func WriteHeader(w io.Writer, hint []byte) error {
	if len(hint) > MaxHintLen {
		hint = hint[:MaxHintLen]
	}

	buf := make([]byte, 0, HeaderFixedSize+len(hint))
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = append(buf, byte(len(hint)))
	buf = append(buf, hint...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: writing container header: %v", kerr.ErrIO, err)
	}

	return nil
}

// ReadHeader reads and validates the magic and version, then reads the
// hint. It returns kerr.ErrInvalidFormat on a magic mismatch and
// kerr.ErrUnsupportedVersion on any version other than 1, checked in
// that order, a header with a bad magic never even looks at its
// version field's semantics.
func ReadHeader(r io.Reader) (Header, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return Header{}, fmt.Errorf("%w: reading magic: %v", kerr.ErrInvalidFormat, err)
	}
	if string(magic) != Magic {
		return Header{}, fmt.Errorf("%w: magic mismatch", kerr.ErrInvalidFormat)
	}

	var versionBytes [4]byte
	if _, err := io.ReadFull(r, versionBytes[:]); err != nil {
		return Header{}, fmt.Errorf("%w: reading version: %v", kerr.ErrInvalidFormat, err)
	}
	version := binary.LittleEndian.Uint32(versionBytes[:])
	if version != Version {
		return Header{}, fmt.Errorf("%w: got version %d", kerr.ErrUnsupportedVersion, version)
	}

	var hintLenByte [1]byte
	if _, err := io.ReadFull(r, hintLenByte[:]); err != nil {
		return Header{}, fmt.Errorf("%w: reading hint length: %v", kerr.ErrInvalidFormat, err)
	}
	hintLen := int(hintLenByte[0])

	hint := make([]byte, hintLen)
	if hintLen > 0 {
		if _, err := io.ReadFull(r, hint); err != nil {
			return Header{}, fmt.Errorf("%w: reading hint bytes: %v", kerr.ErrInvalidFormat, err)
		}
	}

	return Header{
		Version: version,
		Hint:    hint,
		Size:    HeaderFixedSize + hintLen,
	}, nil
}

// PeekHint parses only the header and returns its hint without touching
// any body bytes or requiring a key, the "Get hint" fast path.
func PeekHint(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	return h.Hint, nil
}
