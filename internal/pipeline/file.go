package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/kyrielock/lockcore/internal/container"
	"github.com/kyrielock/lockcore/internal/kerr"
	"github.com/kyrielock/lockcore/internal/primitives"
	"github.com/kyrielock/lockcore/internal/tuner"
)

// effectiveCores resolves a caller-supplied cpu_cores hint to a usable
// worker-pool width, falling back to the runtime's own count when the
// caller passes 0 or a negative value (see tuner.DetectCPUCores).
func effectiveCores(cpuCores int) int {
	if cpuCores <= 0 {
		return tuner.DetectCPUCores()
	}
	return cpuCores
}

// EncryptFile reads sourcePath, encrypts it under a key derived from
// password, and writes a self-describing container to targetPath. hint
// may be nil; it is truncated to 32 bytes if longer. isMobile and
// cpuCores select the tuner.Profile that drives mode selection and
// batching.
//
// ctx is accepted so a host binding can attach logging/tracing fields
// for the surrounding call, but it is never polled for cancellation or
// deadlines: the operation runs to completion or to its first error.
func EncryptFile(ctx context.Context, sourcePath, targetPath string, password, hint []byte, isMobile bool, cpuCores int) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: opening source file: %v", kerr.ErrIO, err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: statting source file: %v", kerr.ErrIO, err)
	}
	plaintextSize := stat.Size()

	profile := tuner.Resolve(isMobile, effectiveCores(cpuCores))
	key := primitives.DeriveKey(password)

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("%w: creating target file: %v", kerr.ErrIO, err)
	}
	w := bufio.NewWriter(dst)

	if err := container.WriteHeader(w, hint); err != nil {
		dst.Close()
		return err
	}

	mode := encryptMode(plaintextSize, profile)
	log.WithFields(logFields{
		"operation":      "encrypt",
		"mode":           modeName(mode),
		"plaintext_size": plaintextSize,
	}).Debug("kyrielock: starting encrypt")

	switch mode {
	case SingleShot:
		err = encryptSingleShot(w, src, key)
	case InMemoryParallel:
		err = encryptInMemoryParallel(ctx, w, src, key, profile)
	default:
		err = encryptStreamingBatched(ctx, w, src, key, profile)
	}

	if err != nil {
		dst.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		dst.Close()
		return fmt.Errorf("%w: flushing target file: %v", kerr.ErrIO, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: closing target file: %v", kerr.ErrIO, err)
	}

	return nil
}

func encryptSingleShot(w io.Writer, src io.Reader, key [primitives.KeySize]byte) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: reading plaintext: %v", kerr.ErrIO, err)
	}

	nonce, err := primitives.GenerateNonce()
	if err != nil {
		return err
	}

	ciphertext, err := primitives.Seal(key[:], nonce, data)
	if err != nil {
		return err
	}

	if _, err := w.Write(nonce); err != nil {
		return fmt.Errorf("%w: writing single-shot nonce: %v", kerr.ErrIO, err)
	}
	if _, err := w.Write(ciphertext); err != nil {
		return fmt.Errorf("%w: writing single-shot ciphertext: %v", kerr.ErrIO, err)
	}

	return nil
}

func encryptInMemoryParallel(ctx context.Context, w io.Writer, src io.Reader, key [primitives.KeySize]byte, profile tuner.Profile) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: reading plaintext: %v", kerr.ErrIO, err)
	}

	chunks := splitChunks(data, profile.ChunkSize)
	nonces, err := generateNonces(len(chunks))
	if err != nil {
		return err
	}

	ciphertexts, err := runBatch(ctx, effectiveCoresForProfile(profile), len(chunks), func(i int) ([]byte, error) {
		return primitives.Seal(key[:], nonces[i], chunks[i])
	})
	if err != nil {
		return err
	}

	for i, ct := range ciphertexts {
		if err := container.WriteFrame(w, nonces[i], ct); err != nil {
			return err
		}
	}

	return nil
}

func encryptStreamingBatched(ctx context.Context, w io.Writer, src io.Reader, key [primitives.KeySize]byte, profile tuner.Profile) error {
	for {
		chunks, eof, err := readChunkBatch(src, profile.ChunkSize, profile.BatchSize)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}

		nonces, err := generateNonces(len(chunks))
		if err != nil {
			return err
		}

		ciphertexts, err := runBatch(ctx, len(chunks), len(chunks), func(i int) ([]byte, error) {
			return primitives.Seal(key[:], nonces[i], chunks[i])
		})
		if err != nil {
			return err
		}

		for i, ct := range ciphertexts {
			if err := container.WriteFrame(w, nonces[i], ct); err != nil {
				return err
			}
		}

		if eof {
			return nil
		}
	}
}

// DecryptFile is the mirror of EncryptFile: it parses sourcePath's
// header and body, decrypts under a key derived from password, and
// writes the recovered plaintext to targetPath. isMobile/cpuCores only
// affect batching of the read/decrypt work; decryptability never
// depends on which device class decrypts a file.
func DecryptFile(ctx context.Context, sourcePath, targetPath string, password []byte, isMobile bool, cpuCores int) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: opening source file: %v", kerr.ErrIO, err)
	}
	defer src.Close()

	profile := tuner.Resolve(isMobile, effectiveCores(cpuCores))
	header, bodySize, isSingle, err := probeDecryptMode(src, profile)
	if err != nil {
		return err
	}

	key := primitives.DeriveKey(password)
	mode := decryptMode(bodySize, isSingle, profile)

	log.WithFields(logFields{
		"operation":  "decrypt",
		"mode":       modeName(mode),
		"body_size":  bodySize,
		"hint_bytes": len(header.Hint),
	}).Debug("kyrielock: starting decrypt")

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("%w: creating target file: %v", kerr.ErrIO, err)
	}
	w := bufio.NewWriter(dst)

	if err := decryptBody(ctx, w, src, key, profile, mode); err != nil {
		dst.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		dst.Close()
		return fmt.Errorf("%w: flushing target file: %v", kerr.ErrIO, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: closing target file: %v", kerr.ErrIO, err)
	}

	return nil
}

// DecryptFileToMemory behaves like DecryptFile but returns the
// decrypted payload directly instead of writing it to a file, for hosts
// that want the bytes without a second file handle.
func DecryptFileToMemory(ctx context.Context, sourcePath string, password []byte, isMobile bool, cpuCores int) ([]byte, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening source file: %v", kerr.ErrIO, err)
	}
	defer src.Close()

	profile := tuner.Resolve(isMobile, effectiveCores(cpuCores))
	_, bodySize, isSingle, err := probeDecryptMode(src, profile)
	if err != nil {
		return nil, err
	}

	key := primitives.DeriveKey(password)
	mode := decryptMode(bodySize, isSingle, profile)

	var buf bytes.Buffer
	if err := decryptBody(ctx, &buf, src, key, profile, mode); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadHint parses only sourcePath's header and returns its hint, never
// touching body bytes or requiring a key.
func ReadHint(sourcePath string) ([]byte, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening source file: %v", kerr.ErrIO, err)
	}
	defer src.Close()

	return container.PeekHint(src)
}

// probeDecryptMode parses the header, checks that the body holds at
// least one 12-byte nonce, and decides single-shot vs. framed from the
// body size alone: single-shot when the body less one nonce is at most
// profile.ChunkSize plus one tag. It then rewinds to the first byte
// after the header so the caller can read the body from the beginning
// regardless of which mode was detected.
func probeDecryptMode(src *os.File, profile tuner.Profile) (container.Header, int64, bool, error) {
	header, err := container.ReadHeader(src)
	if err != nil {
		return container.Header{}, 0, false, err
	}

	stat, err := src.Stat()
	if err != nil {
		return container.Header{}, 0, false, fmt.Errorf("%w: statting source file: %v", kerr.ErrIO, err)
	}
	bodySize := stat.Size() - int64(header.Size)

	nonceProbe := make([]byte, primitives.NonceSize)
	if _, err := io.ReadFull(src, nonceProbe); err != nil {
		return container.Header{}, 0, false, fmt.Errorf("%w: probing body for mode detection: %v", kerr.ErrTruncatedFrame, err)
	}

	if _, err := src.Seek(int64(header.Size), io.SeekStart); err != nil {
		return container.Header{}, 0, false, fmt.Errorf("%w: rewinding after mode probe: %v", kerr.ErrIO, err)
	}

	remaining := bodySize - int64(primitives.NonceSize)
	isSingle := remaining <= profile.ChunkSize+int64(primitives.TagSize)
	return header, bodySize, isSingle, nil
}

func decryptBody(ctx context.Context, w io.Writer, src *os.File, key [primitives.KeySize]byte, profile tuner.Profile, mode Mode) error {
	switch mode {
	case SingleShot:
		return decryptSingleShot(w, src, key)
	case InMemoryParallel:
		return decryptInMemoryParallel(ctx, w, src, key, profile)
	default:
		return decryptStreamingBatched(ctx, w, src, key, profile)
	}
}

func decryptSingleShot(w io.Writer, src io.Reader, key [primitives.KeySize]byte) error {
	nonce := make([]byte, primitives.NonceSize)
	if _, err := io.ReadFull(src, nonce); err != nil {
		return fmt.Errorf("%w: reading single-shot nonce: %v", kerr.ErrTruncatedFrame, err)
	}

	ciphertext, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: reading single-shot ciphertext: %v", kerr.ErrIO, err)
	}

	plaintext, err := primitives.Open(key[:], nonce, ciphertext)
	if err != nil {
		return err
	}

	if _, err := w.Write(plaintext); err != nil {
		return fmt.Errorf("%w: writing decrypted output: %v", kerr.ErrIO, err)
	}

	return nil
}

func decryptInMemoryParallel(ctx context.Context, w io.Writer, src io.Reader, key [primitives.KeySize]byte, profile tuner.Profile) error {
	var nonces [][]byte
	var ciphertexts [][]byte

	for {
		frame, err := container.ReadFrame(src)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		nonces = append(nonces, frame.Nonce)
		ciphertexts = append(ciphertexts, frame.Ciphertext)
	}

	plaintexts, err := runBatch(ctx, effectiveCoresForProfile(profile), len(ciphertexts), func(i int) ([]byte, error) {
		return primitives.Open(key[:], nonces[i], ciphertexts[i])
	})
	if err != nil {
		return err
	}

	for _, pt := range plaintexts {
		if _, err := w.Write(pt); err != nil {
			return fmt.Errorf("%w: writing decrypted output: %v", kerr.ErrIO, err)
		}
	}

	return nil
}

func decryptStreamingBatched(ctx context.Context, w io.Writer, src io.Reader, key [primitives.KeySize]byte, profile tuner.Profile) error {
	for {
		nonces := make([][]byte, 0, profile.BatchSize)
		ciphertexts := make([][]byte, 0, profile.BatchSize)

		for i := 0; i < profile.BatchSize; i++ {
			frame, err := container.ReadFrame(src)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			nonces = append(nonces, frame.Nonce)
			ciphertexts = append(ciphertexts, frame.Ciphertext)
		}

		if len(ciphertexts) == 0 {
			return nil
		}

		plaintexts, err := runBatch(ctx, len(ciphertexts), len(ciphertexts), func(i int) ([]byte, error) {
			return primitives.Open(key[:], nonces[i], ciphertexts[i])
		})
		if err != nil {
			return err
		}

		for _, pt := range plaintexts {
			if _, err := w.Write(pt); err != nil {
				return fmt.Errorf("%w: writing decrypted output: %v", kerr.ErrIO, err)
			}
		}

		if len(ciphertexts) < profile.BatchSize {
			return nil
		}
	}
}

func effectiveCoresForProfile(p tuner.Profile) int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return runtime.NumCPU()
}

func splitChunks(data []byte, chunkSize int64) [][]byte {
	if len(data) == 0 {
		return nil
	}

	var chunks [][]byte
	for start := int64(0); start < int64(len(data)); start += chunkSize {
		end := start + chunkSize
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}

func generateNonces(n int) ([][]byte, error) {
	nonces := make([][]byte, n)
	for i := range nonces {
		nonce, err := primitives.GenerateNonce()
		if err != nil {
			return nil, err
		}
		nonces[i] = nonce
	}
	return nonces, nil
}

// readChunkBatch reads up to batchSize plaintext chunks of chunkSize
// bytes each from r, returning fewer at EOF. The returned eof flag
// reports whether the stream is exhausted (so the caller knows not to
// start another batch).
func readChunkBatch(r io.Reader, chunkSize int64, batchSize int) ([][]byte, bool, error) {
	chunks := make([][]byte, 0, batchSize)

	for i := 0; i < batchSize; i++ {
		chunk, err := readChunk(r, chunkSize)
		if errors.Is(err, io.EOF) {
			return chunks, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, false, nil
}

// readChunk reads up to chunkSize bytes from r. It returns io.EOF only
// when zero bytes were read; a short final read is returned as a
// successful, shorter chunk.
func readChunk(r io.Reader, chunkSize int64) ([]byte, error) {
	buf := make([]byte, chunkSize)
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("%w: reading plaintext chunk: %v", kerr.ErrIO, err)
	}
}

type logFields = map[string]interface{}
