// Package kerr defines the sentinel error taxonomy shared across the
// container codec, pipeline, and FFI façade.
package kerr

import "errors"

var (
	// ErrInvalidArgument covers malformed input strings, bad password
	// pointers, and other caller-side contract violations.
	ErrInvalidArgument = errors.New("kyrielock: invalid argument")

	// ErrInvalidFormat means the container's magic bytes did not match,
	// or the header ended before all of its fields could be read.
	ErrInvalidFormat = errors.New("kyrielock: invalid container format")

	// ErrUnsupportedVersion means the header's version field is not one
	// this codec understands.
	ErrUnsupportedVersion = errors.New("kyrielock: unsupported container version")

	// ErrTruncatedFrame means a frame's nonce, length, or ciphertext was
	// cut short of what its own length prefix promised.
	ErrTruncatedFrame = errors.New("kyrielock: truncated frame")

	// ErrAuthFail means GCM tag verification failed. This can mean wrong
	// password, wrong file, or tampering; the engine deliberately does not
	// distinguish between these to avoid becoming a decryption oracle.
	ErrAuthFail = errors.New("kyrielock: authentication failed")

	// ErrIO is a generic wrapper for underlying I/O failures.
	ErrIO = errors.New("kyrielock: i/o error")

	// ErrInternalFault marks a bug or unexpected internal state. It must
	// never cross the FFI boundary as such, callers there only ever see
	// the collapsed 0/-1/-2 codes.
	ErrInternalFault = errors.New("kyrielock: internal fault")
)
