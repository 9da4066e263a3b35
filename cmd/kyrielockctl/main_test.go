package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateOpts_KeepsExplicitPassword(t *testing.T) {
	opts := cliOptions{
		Operation:      opEncrypt,
		SourceFilename: "  source.bin  ",
		TargetFilename: "  target.enc  ",
		Password:       "  already-set  ",
	}

	require.NoError(t, validateOpts(&opts))
	require.Equal(t, "source.bin", opts.SourceFilename)
	require.Equal(t, "target.enc", opts.TargetFilename)
	require.Equal(t, "already-set", opts.Password)
}

func TestValidateOpts_HashDoesNotRequirePassword(t *testing.T) {
	opts := cliOptions{Operation: opHash, SourceFilename: "source.bin"}
	require.NoError(t, validateOpts(&opts))
	require.Empty(t, opts.Password)
}

func TestRun_EncryptDecryptHashRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "plain.txt")
	encrypted := filepath.Join(dir, "plain.txt.lock")
	decrypted := filepath.Join(dir, "plain.txt.out")

	require.NoError(t, os.WriteFile(source, []byte("the quick brown fox"), 0o600))

	encryptOpts := cliOptions{
		Operation:      opEncrypt,
		SourceFilename: source,
		TargetFilename: encrypted,
		Password:       "correct horse battery staple",
		Hint:           "animal sentence",
	}
	require.NoError(t, run(&encryptOpts))

	hintOpts := cliOptions{Operation: opHintOnly, SourceFilename: encrypted}
	require.NoError(t, run(&hintOpts))

	decryptOpts := cliOptions{
		Operation:      opDecrypt,
		SourceFilename: encrypted,
		TargetFilename: decrypted,
		Password:       "correct horse battery staple",
	}
	require.NoError(t, run(&decryptOpts))

	got, err := os.ReadFile(decrypted)
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox", string(got))

	hashOpts := cliOptions{Operation: opHash, SourceFilename: source}
	require.NoError(t, run(&hashOpts))
}

func TestRun_DecryptWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "plain.txt")
	encrypted := filepath.Join(dir, "plain.txt.lock")
	decrypted := filepath.Join(dir, "plain.txt.out")

	require.NoError(t, os.WriteFile(source, []byte("payload"), 0o600))

	require.NoError(t, run(&cliOptions{
		Operation:      opEncrypt,
		SourceFilename: source,
		TargetFilename: encrypted,
		Password:       "right",
	}))

	err := run(&cliOptions{
		Operation:      opDecrypt,
		SourceFilename: encrypted,
		TargetFilename: decrypted,
		Password:       "wrong",
	})
	require.Error(t, err)
}
