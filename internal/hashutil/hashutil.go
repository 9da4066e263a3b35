// Package hashutil provides the file-integrity verb: a streamed SHA-256
// digest that never loads a whole file into memory, used independently
// of the encrypt/decrypt pipeline for the --hash host verb.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/kyrielock/lockcore/internal/kerr"
)

// HashFile streams path through SHA-256 and returns its digest as a
// lowercase hex string.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening file for hashing: %v", kerr.ErrIO, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: hashing file: %v", kerr.ErrIO, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
