package hashutil_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyrielock/lockcore/internal/hashutil"
	"github.com/kyrielock/lockcore/internal/kerr"
)

func TestHashFile_MatchesDirectDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	want := sha256.Sum256(content)
	got, err := hashutil.HashFile(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestHashFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	want := sha256.Sum256(nil)
	got, err := hashutil.HashFile(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestHashFile_MissingFile(t *testing.T) {
	_, err := hashutil.HashFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, kerr.ErrIO)
}
