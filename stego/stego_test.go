package stego

import (
	"bytes"
	"errors"
	"testing"
)

// buffer returns an RGBA8 test buffer of pixels pixels with non-trivial
// bit patterns in every byte.
func buffer(pixels int) []uint8 {
	pix := make([]uint8, pixels*4)
	for i := range pix {
		pix[i] = uint8(i*37 + 11)
	}
	return pix
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name    string
		pixels  int
		payload string
	}{
		{name: "exact_fit", pixels: 16, payload: "hi"}, // 32+16 bits into 48
		{name: "ascii", pixels: 256, payload: "the quick brown fox"},
		{name: "multibyte_utf8", pixels: 256, payload: "héllo wörld ✓"},
		{name: "single_byte", pixels: 64, payload: "x"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pix := buffer(tc.pixels)
			if truncated := Embed(pix, []byte(tc.payload)); truncated {
				t.Fatalf("Embed reported truncation for a fitting payload")
			}

			got, err := Extract(pix)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !bytes.Equal(got, []byte(tc.payload)) {
				t.Fatalf("round trip: got %q, want %q", got, tc.payload)
			}
		})
	}
}

// The length header is emitted low bit first: length 2 starts with bits
// 0,1,0 which land in the first pixel's R, G and B LSBs.
func TestEmbedHeaderBitOrder(t *testing.T) {
	pix := make([]uint8, 16*4)
	Embed(pix, []byte("hi"))

	if got := [3]uint8{pix[0] & 1, pix[1] & 1, pix[2] & 1}; got != [3]uint8{0, 1, 0} {
		t.Fatalf("first header bits = %v, want [0 1 0]", got)
	}
	// Alpha bytes never carry payload.
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			t.Fatalf("alpha byte %d was written: %#x", i, pix[i])
		}
	}
}

// A 1x1 buffer holds 3 bits. Embedding any payload writes exactly the
// first 3 header bits, leaves all non-LSB bits untouched and reports
// truncation instead of failing.
func TestEmbedCapacityTruncation(t *testing.T) {
	pix := []uint8{0xAA, 0xAB, 0xAC, 0xAD}
	if truncated := Embed(pix, []byte("x")); !truncated {
		t.Fatalf("Embed should report truncation")
	}

	// Length 1, low bit first: 1,0,0.
	want := []uint8{0xAB, 0xAA, 0xAC, 0xAD}
	if !bytes.Equal(pix, want) {
		t.Fatalf("buffer = %#x, want %#x", pix, want)
	}
}

func TestEmbedEmptyPayloadIsNoop(t *testing.T) {
	pix := buffer(8)
	orig := bytes.Clone(pix)

	if truncated := Embed(pix, nil); truncated {
		t.Fatalf("empty payload reported truncation")
	}
	if !bytes.Equal(pix, orig) {
		t.Fatalf("empty payload mutated the buffer")
	}
}

func TestExtractRejectsOversizedLength(t *testing.T) {
	// 16 pixels = 48 bits of capacity. Claim a 100-byte payload by
	// setting the header bits for length 100 = 0b1100100.
	pix := make([]uint8, 16*4)
	for _, bit := range []int{2, 5, 6} {
		pix[(bit/3)*4+bit%3] |= 1
	}

	if _, err := Extract(pix); !errors.Is(err, ErrNoHiddenData) {
		t.Fatalf("Extract = %v, want ErrNoHiddenData", err)
	}
}

func TestExtractRejectsTinyBuffer(t *testing.T) {
	// 2x2 pixels = 12 bits, not even a full length header.
	if _, err := Extract(make([]uint8, 4*4)); !errors.Is(err, ErrNoHiddenData) {
		t.Fatalf("Extract = %v, want ErrNoHiddenData", err)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("steganography "), 64)

	comp, err := Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.HasPrefix(comp, zstdMagic) {
		t.Fatalf("compressed payload lacks the zstd frame magic")
	}
	if len(comp) >= len(payload) {
		t.Fatalf("repetitive payload did not shrink: %d -> %d", len(payload), len(comp))
	}

	plain, err := Decompress(comp)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(plain, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecompressPassesPlainPayloadsThrough(t *testing.T) {
	payload := []byte("just text")
	got, err := Decompress(payload)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("plain payload was altered: %q", got)
	}
}
