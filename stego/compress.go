package stego

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstd frame magic, little-endian 0xFD2FB528.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Compress wraps a payload in a zstd frame so long texts cost fewer
// carrier bits. Extracted payloads are recognized by the frame magic.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("could not create compressor: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		enc.Close()
		return nil, fmt.Errorf("could not compress payload: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("could not finish compressing payload: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress undoes Compress when the payload carries the zstd frame
// magic; any other payload passes through untouched.
func Decompress(payload []byte) ([]byte, error) {
	if !bytes.HasPrefix(payload, zstdMagic) {
		return payload, nil
	}

	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create decompressor: %w", err)
	}
	defer dec.Close()

	plain, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("could not decompress payload: %w", err)
	}
	return plain, nil
}
