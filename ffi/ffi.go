// Package ffi is the C-ABI boundary: it exposes the engine's
// file-level and buffer-level operations to a host runtime through
// //export functions built with -buildmode=c-shared.
//
// Every exported function follows the same shape: recover from any
// panic before it can cross into C, map the richer internal error
// taxonomy down to the three-value {0, -1, -2} contract, and never
// allocate host-visible memory, buffers are always supplied, sized,
// and owned by the caller.
//
// The buffer and chunk operations take caller-supplied nonces and do
// not generate or track them: the host is responsible for never reusing
// a nonce with the same password.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"context"
	"errors"
	"unsafe"

	"github.com/kyrielock/lockcore/internal/kerr"
	"github.com/kyrielock/lockcore/internal/pipeline"
	"github.com/kyrielock/lockcore/internal/primitives"
)

const (
	codeOK               = C.int(0)
	codeInvalidArgument  = C.int(-1)
	codeOperationFailure = C.int(-2)
)

// statusFor maps an internal error to the FFI return-code contract.
// InternalFault and every other kind not explicitly called out as an
// argument problem collapse to codeOperationFailure; only
// ErrInvalidArgument surfaces as codeInvalidArgument.
func statusFor(err error) C.int {
	if err == nil {
		return codeOK
	}
	if errors.Is(err, kerr.ErrInvalidArgument) {
		return codeInvalidArgument
	}
	return codeOperationFailure
}

// recoverToStatus converts a panic inside fn into codeOperationFailure
// instead of letting it unwind across the cgo boundary, which would
// crash the host process.
func recoverToStatus(out *C.int) {
	if r := recover(); r != nil {
		*out = codeOperationFailure
	}
}

func goBytes(ptr *C.uchar, length C.size_t) []byte {
	if ptr == nil || length == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(ptr), C.int(length))
}

func goString(ptr *C.char) string {
	if ptr == nil {
		return ""
	}
	return C.GoString(ptr)
}

// writeOut implements the two-call idiom shared by every
// buffer-returning operation: a nil out pointer means the caller only
// wants the required capacity, reported through outLen; with a non-nil
// pointer, *outLen is read as the buffer's capacity and the pointer is
// trusted to hold that many bytes. A capacity below the required size
// returns codeInvalidArgument and writes nothing.
func writeOut(data []byte, out *C.uchar, outLen *C.size_t) C.int {
	if outLen == nil {
		return codeInvalidArgument
	}
	needed := C.size_t(len(data))
	if out == nil {
		*outLen = needed
		return codeOK
	}
	if *outLen < needed {
		return codeInvalidArgument
	}
	if needed > 0 {
		dst := unsafe.Slice(out, int(needed))
		copy(dst, data)
	}
	*outLen = needed
	return codeOK
}

//export kyrielock_derive_key
func kyrielock_derive_key(password *C.uchar, passwordLen C.size_t, out *C.uchar) (status C.int) {
	defer recoverToStatus(&status)

	if out == nil {
		return codeInvalidArgument
	}
	key := primitives.DeriveKey(goBytes(password, passwordLen))
	dst := unsafe.Slice(out, primitives.KeySize)
	copy(dst, key[:])
	return codeOK
}

//export kyrielock_encrypt_buffer
func kyrielock_encrypt_buffer(plaintext *C.uchar, plaintextLen C.size_t, password *C.uchar, passwordLen C.size_t, nonce *C.uchar, nonceLen C.size_t, out *C.uchar, outLen *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	ciphertext, err := pipeline.EncryptBuffer(goBytes(password, passwordLen), goBytes(nonce, nonceLen), goBytes(plaintext, plaintextLen))
	if err != nil {
		return statusFor(err)
	}
	return writeOut(ciphertext, out, outLen)
}

//export kyrielock_decrypt_buffer
func kyrielock_decrypt_buffer(ciphertext *C.uchar, ciphertextLen C.size_t, password *C.uchar, passwordLen C.size_t, nonce *C.uchar, nonceLen C.size_t, out *C.uchar, outLen *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	plaintext, err := pipeline.DecryptBuffer(goBytes(password, passwordLen), goBytes(nonce, nonceLen), goBytes(ciphertext, ciphertextLen))
	if err != nil {
		return statusFor(err)
	}
	return writeOut(plaintext, out, outLen)
}

// splitNonces slices a concatenated nonce buffer (n * primitives.NonceSize
// bytes) into n individual nonces, the layout the chunked operations use
// to avoid an array-of-pointers on the C side for a fixed-width field.
func splitNonces(nonces *C.uchar, n int) [][]byte {
	flat := goBytes(nonces, C.size_t(n*primitives.NonceSize))
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = flat[i*primitives.NonceSize : (i+1)*primitives.NonceSize]
	}
	return out
}

func ptrArray(ptrs **C.uchar, n int) []*C.uchar {
	return unsafe.Slice(ptrs, n)
}

func sizeArray(lens *C.size_t, n int) []C.size_t {
	return unsafe.Slice(lens, n)
}

//export kyrielock_encrypt_chunks_parallel
func kyrielock_encrypt_chunks_parallel(plaintexts **C.uchar, plaintextLens *C.size_t, nChunks C.size_t, password *C.uchar, passwordLen C.size_t, nonces *C.uchar, outBufs **C.uchar, outLens *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	n := int(nChunks)
	if n == 0 {
		return codeOK
	}
	if plaintexts == nil || plaintextLens == nil || nonces == nil || outBufs == nil || outLens == nil {
		return codeInvalidArgument
	}

	inPtrs := ptrArray(plaintexts, n)
	inLens := sizeArray(plaintextLens, n)
	chunks := make([][]byte, n)
	for i := 0; i < n; i++ {
		chunks[i] = goBytes(inPtrs[i], inLens[i])
	}

	results, err := pipeline.EncryptChunksParallel(context.Background(), goBytes(password, passwordLen), chunks, splitNonces(nonces, n))
	if err != nil {
		return statusFor(err)
	}

	outPtrs := ptrArray(outBufs, n)
	outLenCells := sizeArray(outLens, n)
	for i := 0; i < n; i++ {
		if code := writeOut(results[i], outPtrs[i], &outLenCells[i]); code != codeOK {
			return code
		}
	}
	return codeOK
}

//export kyrielock_decrypt_chunks_parallel
func kyrielock_decrypt_chunks_parallel(ciphertexts **C.uchar, ciphertextLens *C.size_t, nChunks C.size_t, password *C.uchar, passwordLen C.size_t, nonces *C.uchar, outBufs **C.uchar, outLens *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	n := int(nChunks)
	if n == 0 {
		return codeOK
	}
	if ciphertexts == nil || ciphertextLens == nil || nonces == nil || outBufs == nil || outLens == nil {
		return codeInvalidArgument
	}

	inPtrs := ptrArray(ciphertexts, n)
	inLens := sizeArray(ciphertextLens, n)
	chunks := make([][]byte, n)
	for i := 0; i < n; i++ {
		chunks[i] = goBytes(inPtrs[i], inLens[i])
	}

	results, err := pipeline.DecryptChunksParallel(context.Background(), goBytes(password, passwordLen), chunks, splitNonces(nonces, n))
	if err != nil {
		return statusFor(err)
	}

	outPtrs := ptrArray(outBufs, n)
	outLenCells := sizeArray(outLens, n)
	for i := 0; i < n; i++ {
		if code := writeOut(results[i], outPtrs[i], &outLenCells[i]); code != codeOK {
			return code
		}
	}
	return codeOK
}

//export kyrielock_encrypt_file
func kyrielock_encrypt_file(inputPath *C.char, outputPath *C.char, password *C.uchar, passwordLen C.size_t, hint *C.char, isMobile C.int, cpuCores C.int) (status C.int) {
	defer recoverToStatus(&status)

	in := goString(inputPath)
	outPath := goString(outputPath)
	if in == "" || outPath == "" {
		return codeInvalidArgument
	}

	var hintBytes []byte
	if hint != nil {
		hintBytes = []byte(goString(hint))
	}

	err := pipeline.EncryptFile(context.Background(), in, outPath, goBytes(password, passwordLen), hintBytes, isMobile != 0, int(cpuCores))
	return statusFor(err)
}

//export kyrielock_decrypt_file
func kyrielock_decrypt_file(inputPath *C.char, outputPath *C.char, password *C.uchar, passwordLen C.size_t, isMobile C.int, cpuCores C.int) (status C.int) {
	defer recoverToStatus(&status)

	in := goString(inputPath)
	outPath := goString(outputPath)
	if in == "" || outPath == "" {
		return codeInvalidArgument
	}

	err := pipeline.DecryptFile(context.Background(), in, outPath, goBytes(password, passwordLen), isMobile != 0, int(cpuCores))
	return statusFor(err)
}

//export kyrielock_decrypt_file_to_memory
func kyrielock_decrypt_file_to_memory(inputPath *C.char, password *C.uchar, passwordLen C.size_t, isMobile C.int, cpuCores C.int, out *C.uchar, outLen *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	in := goString(inputPath)
	if in == "" {
		return codeInvalidArgument
	}

	plaintext, err := pipeline.DecryptFileToMemory(context.Background(), in, goBytes(password, passwordLen), isMobile != 0, int(cpuCores))
	if err != nil {
		return statusFor(err)
	}
	return writeOut(plaintext, out, outLen)
}

//export kyrielock_read_hint
func kyrielock_read_hint(inputPath *C.char, out *C.uchar, outLen *C.size_t) (status C.int) {
	defer recoverToStatus(&status)

	in := goString(inputPath)
	if in == "" {
		return codeInvalidArgument
	}

	hint, err := pipeline.ReadHint(in)
	if err != nil {
		return statusFor(err)
	}
	return writeOut(hint, out, outLen)
}

func main() {}
