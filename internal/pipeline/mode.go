package pipeline

import "github.com/kyrielock/lockcore/internal/tuner"

// Mode is the body layout the pipeline selects for one operation, based
// on the size of the data being processed.
type Mode int

const (
	// SingleShot seals/opens the whole payload under one nonce, no
	// length prefix, ending at EOF.
	SingleShot Mode = iota
	// InMemoryParallel reads the whole body into RAM and processes every
	// frame in one parallel pass.
	InMemoryParallel
	// StreamingBatched reads and processes frames in fixed-size batches,
	// bounding memory use for very large files.
	StreamingBatched
)

// encryptMode selects a mode for an encrypt operation given the
// plaintext size and the active tuner profile.
func encryptMode(plaintextSize int64, p tuner.Profile) Mode {
	switch {
	case plaintextSize <= p.ChunkSize:
		return SingleShot
	case plaintextSize <= p.ParallelThreshold:
		return InMemoryParallel
	default:
		return StreamingBatched
	}
}

// decryptMode selects a mode for a decrypt operation given the total
// encrypted body size (the container minus its header) and the active
// tuner profile. isSingle is computed by the caller (probeDecryptMode)
// from the body size against the profile's chunk size; neither layout
// carries an explicit mode marker.
func decryptMode(bodySize int64, isSingle bool, p tuner.Profile) Mode {
	switch {
	case isSingle:
		return SingleShot
	case bodySize <= p.ParallelThreshold:
		return InMemoryParallel
	default:
		return StreamingBatched
	}
}
