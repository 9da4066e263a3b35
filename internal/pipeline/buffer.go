// Package pipeline implements the central state machine of the engine:
// mode selection between single-shot, in-memory parallel, and streaming
// batched bodies, and the index-ordered parallel chunk dispatch that
// backs every file- and buffer-level operation.
package pipeline

import (
	"context"
	"runtime"

	"github.com/kyrielock/lockcore/internal/primitives"
)

// EncryptBuffer seals plaintext under a key derived from password, using
// the caller-supplied nonce. This is the raw single-shot API used by
// tests and small host calls that already hold the whole payload in
// memory.
//
// The caller owns nonce uniqueness here: this function does not
// generate or track nonces, so reusing one across calls with the same
// password breaks AES-GCM's guarantees.
func EncryptBuffer(password, nonce, plaintext []byte) ([]byte, error) {
	key := primitives.DeriveKey(password)
	return primitives.Seal(key[:], nonce, plaintext)
}

// DecryptBuffer opens ciphertextAndTag under a key derived from password
// and the given nonce, the mirror of EncryptBuffer.
func DecryptBuffer(password, nonce, ciphertextAndTag []byte) ([]byte, error) {
	key := primitives.DeriveKey(password)
	return primitives.Open(key[:], nonce, ciphertextAndTag)
}

// EncryptChunksParallel seals each of chunks[i] under a key derived from
// password and nonces[i], processing every chunk on a bounded worker
// pool and returning results index-ordered to match the input. It backs
// the FFI façade's encrypt_chunks_parallel operation and any host call
// that already has chunk boundaries decided for it.
//
// As with EncryptBuffer, the caller owns nonce uniqueness: nonces are
// used as given, never generated or checked here.
func EncryptChunksParallel(ctx context.Context, password []byte, chunks, nonces [][]byte) ([][]byte, error) {
	key := primitives.DeriveKey(password)
	n := len(chunks)
	limit := runtime.NumCPU()

	return runBatch(ctx, limit, n, func(i int) ([]byte, error) {
		return primitives.Seal(key[:], nonces[i], chunks[i])
	})
}

// DecryptChunksParallel opens each of chunks[i] under a key derived from
// password and nonces[i], the mirror of EncryptChunksParallel.
func DecryptChunksParallel(ctx context.Context, password []byte, chunks, nonces [][]byte) ([][]byte, error) {
	key := primitives.DeriveKey(password)
	n := len(chunks)
	limit := runtime.NumCPU()

	return runBatch(ctx, limit, n, func(i int) ([]byte, error) {
		return primitives.Open(key[:], nonces[i], chunks[i])
	})
}
