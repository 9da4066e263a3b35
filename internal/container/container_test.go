package container_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyrielock/lockcore/internal/container"
	"github.com/kyrielock/lockcore/internal/kerr"
)

func TestHeader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, []byte("remember: dog name")))

	h, err := container.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, container.Version, h.Version)
	assert.Equal(t, []byte("remember: dog name"), h.Hint)
	assert.Equal(t, container.HeaderFixedSize+len("remember: dog name"), h.Size)
}

func TestHeader_NoHint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, nil))

	h, err := container.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Empty(t, h.Hint)
}

func TestHeader_TruncatesLongHint(t *testing.T) {
	longHint := bytes.Repeat([]byte("x"), 33)

	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, longHint))

	h, err := container.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Len(t, h.Hint, container.MaxHintLen)
}

func TestHeader_ExactlyMaxHint(t *testing.T) {
	hint := bytes.Repeat([]byte("y"), container.MaxHintLen)

	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, hint))

	h, err := container.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, hint, h.Hint)
}

func TestReadHeader_RejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("NOPE______")
	buf.Write([]byte{1, 0, 0, 0, 0})

	_, err := container.ReadHeader(buf)
	require.ErrorIs(t, err, kerr.ErrInvalidFormat)
}

func TestReadHeader_RejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, nil))
	raw := buf.Bytes()
	// Flip the version field (offset 10..14, little-endian) to 2.
	raw[10] = 2

	_, err := container.ReadHeader(bytes.NewReader(raw))
	require.ErrorIs(t, err, kerr.ErrUnsupportedVersion)
}

func TestPeekHint_DoesNotNeedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, container.WriteHeader(&buf, []byte("hint only")))
	buf.WriteString("garbage body that is not valid ciphertext at all")

	hint, err := container.PeekHint(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hint only"), hint)
}

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	nonce := bytes.Repeat([]byte{0x01}, 12)
	ciphertext := []byte("sealed-chunk-bytes-and-tag-1234")

	require.NoError(t, container.WriteFrame(&buf, nonce, ciphertext))

	f, err := container.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, nonce, f.Nonce)
	assert.Equal(t, ciphertext, f.Ciphertext)
}

func TestFrame_MultipleFramesThenCleanEOF(t *testing.T) {
	var buf bytes.Buffer
	nonce := bytes.Repeat([]byte{0x02}, 12)
	require.NoError(t, container.WriteFrame(&buf, nonce, []byte("a")))
	require.NoError(t, container.WriteFrame(&buf, nonce, []byte("b")))

	f1, err := container.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), f1.Ciphertext)

	f2, err := container.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), f2.Ciphertext)

	_, err = container.ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrame_TruncatedLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	nonce := bytes.Repeat([]byte{0x03}, 12)
	require.NoError(t, container.WriteFrame(&buf, nonce, []byte("abcdef")))

	raw := buf.Bytes()
	// Claim a far larger ciphertext than what follows.
	raw[12] = 0x7f

	_, err := container.ReadFrame(bytes.NewReader(raw))
	require.ErrorIs(t, err, kerr.ErrTruncatedFrame)
}

func TestFrame_PartialNonceIsTruncatedNotCleanEOF(t *testing.T) {
	// Five bytes is less than a full 12-byte nonce but more than zero,
	// this must be a truncation error, not a clean end-of-stream.
	_, err := container.ReadFrame(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	require.ErrorIs(t, err, kerr.ErrTruncatedFrame)
}

func TestFrame_ZeroBytesIsCleanEOF(t *testing.T) {
	_, err := container.ReadFrame(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}
