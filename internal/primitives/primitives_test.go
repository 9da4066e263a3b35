package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyrielock/lockcore/internal/kerr"
	"github.com/kyrielock/lockcore/internal/primitives"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := primitives.DeriveKey([]byte("secure_password"))
	k2 := primitives.DeriveKey([]byte("secure_password"))
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, primitives.KeySize)
}

func TestDeriveKey_DifferentPasswordsDiffer(t *testing.T) {
	k1 := primitives.DeriveKey([]byte("password-a"))
	k2 := primitives.DeriveKey([]byte("password-b"))
	assert.NotEqual(t, k1, k2)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := primitives.DeriveKey([]byte("secure_password"))
	nonce := make([]byte, primitives.NonceSize)
	plaintext := []byte("Hello, World! This is a test message.")

	ciphertext, err := primitives.Seal(key[:], nonce, plaintext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, len(plaintext)+primitives.TagSize)

	decrypted, err := primitives.Open(key[:], nonce, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestSealOpen_EmptyPlaintext(t *testing.T) {
	key := primitives.DeriveKey([]byte("p"))
	nonce := make([]byte, primitives.NonceSize)

	ciphertext, err := primitives.Seal(key[:], nonce, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, primitives.TagSize)

	decrypted, err := primitives.Open(key[:], nonce, ciphertext)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestOpen_WrongPasswordFailsAuth(t *testing.T) {
	key := primitives.DeriveKey([]byte("right_password"))
	wrongKey := primitives.DeriveKey([]byte("wrong_password"))
	nonce := make([]byte, primitives.NonceSize)

	ciphertext, err := primitives.Seal(key[:], nonce, []byte("secret payload"))
	require.NoError(t, err)

	_, err = primitives.Open(wrongKey[:], nonce, ciphertext)
	require.ErrorIs(t, err, kerr.ErrAuthFail)
}

func TestOpen_TamperedCiphertextFailsAuth(t *testing.T) {
	key := primitives.DeriveKey([]byte("p"))
	nonce := make([]byte, primitives.NonceSize)

	ciphertext, err := primitives.Seal(key[:], nonce, []byte("payload data"))
	require.NoError(t, err)

	tampered := append([]byte(nil), ciphertext...)
	tampered[0] ^= 0xFF

	_, err = primitives.Open(key[:], nonce, tampered)
	require.ErrorIs(t, err, kerr.ErrAuthFail)
}

func TestSeal_RejectsBadKeySize(t *testing.T) {
	_, err := primitives.Seal([]byte("too-short"), make([]byte, primitives.NonceSize), []byte("x"))
	require.ErrorIs(t, err, kerr.ErrInvalidArgument)
}

func TestSeal_RejectsBadNonceSize(t *testing.T) {
	key := primitives.DeriveKey([]byte("p"))
	_, err := primitives.Seal(key[:], []byte("short"), []byte("x"))
	require.ErrorIs(t, err, kerr.ErrInvalidArgument)
}

func TestGenerateNonce_ProducesUniqueValues(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		nonce, err := primitives.GenerateNonce()
		require.NoError(t, err)
		require.Len(t, nonce, primitives.NonceSize)
		key := string(nonce)
		assert.False(t, seen[key], "nonce collision detected")
		seen[key] = true
	}
}
