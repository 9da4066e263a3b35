// Package primitives implements the cryptographic building blocks of the
// container: key derivation, nonce generation, and the AES-256-GCM AEAD
// wrapper. Nothing in this package touches files or concurrency, it is
// the pure core the rest of the engine is built on.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/kyrielock/lockcore/internal/kerr"
)

// KeySize is the length in bytes of a derived key (AES-256).
const KeySize = 32

// NonceSize is the length in bytes of a GCM nonce.
const NonceSize = 12

// TagSize is the length in bytes of a GCM authentication tag.
const TagSize = 16

// DeriveKey derives a 32-byte key from a password by one pass of SHA-256.
// It is deterministic: the same password always yields the same key.
//
// This is intentionally not a password-hashing function (no PBKDF2,
// scrypt, or Argon2id), a stronger KDF is future work gated behind a
// header version bump that v1 of this format does not implement.
func DeriveKey(password []byte) [KeySize]byte {
	return sha256.Sum256(password)
}

// GenerateNonce draws a fresh 12-byte nonce from the OS CSPRNG. Every
// chunk in a multi-chunk container must call this exactly once; reusing
// a nonce under the same key breaks GCM's authentication guarantees.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", kerr.ErrInternalFault, err)
	}
	return nonce, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", kerr.ErrInvalidArgument, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: constructing AES cipher: %v", kerr.ErrInternalFault, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: constructing GCM mode: %v", kerr.ErrInternalFault, err)
	}

	return gcm, nil
}

// Seal encrypts plaintext under key and nonce with AES-256-GCM and empty
// associated data, returning ciphertext with a 16-byte tag appended.
//
// Callers of this function directly (rather than through the file-level
// pipeline) are responsible for nonce uniqueness: never seal two
// different plaintexts under the same (key, nonce) pair.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", kerr.ErrInvalidArgument, gcm.NonceSize(), len(nonce))
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// Open decrypts and authenticates ciphertext (with its trailing tag)
// under key and nonce. Tag mismatch, wrong key, and wrong nonce are all
// reported identically as kerr.ErrAuthFail, this package does not, and
// must not, distinguish between them.
func Open(key, nonce, ciphertextAndTag []byte) ([]byte, error) {
	gcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", kerr.ErrInvalidArgument, gcm.NonceSize(), len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertextAndTag, nil)
	if err != nil {
		return nil, fmt.Errorf("%w", kerr.ErrAuthFail)
	}

	return plaintext, nil
}
