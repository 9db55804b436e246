// Package stego hides byte payloads in the least significant bits of an
// RGBA8 pixel buffer's color channels.
//
// Wire format: a 32-bit payload length followed by the payload bytes,
// every value emitted low bit first. Bit i lands in pixel i/3, channel
// i%3 (0=R, 1=G, 2=B); the alpha channel is never a carrier, so capacity
// is 3 bits per pixel.
package stego

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoHiddenData reports that a buffer cannot hold a payload described
// by its own length prefix, i.e. nothing was embedded in it.
var ErrNoHiddenData = errors.New("no hidden data")

const headerBits = 32

// Capacity returns the number of payload-carrying bits in a buffer of
// pixelCount RGBA8 pixels.
func Capacity(pixelCount int) int {
	return pixelCount * 3
}

// Embed writes the length header and payload into pix (an RGBA8 buffer,
// 4 bytes per pixel) in place. A payload that does not fit is truncated
// exactly where capacity runs out, mid-bit if need be, and reported with
// a warning; Embed never fails. Callers wanting a hard guarantee must
// compare the payload against Capacity beforehand.
func Embed(pix []uint8, payload []byte) (truncated bool) {
	if len(payload) == 0 {
		return false
	}

	defer func() {
		if truncated {
			slog.Warn("steganographic payload exceeds carrier capacity, truncated",
				"payloadBytes", len(payload), "capacityBits", Capacity(len(pix)/4))
		}
	}()

	c := cursor{pix: pix}
	if !c.writeBits(uint64(uint32(len(payload))), headerBits) {
		return true
	}
	for _, b := range payload {
		if !c.writeBits(uint64(b), 8) {
			return true
		}
	}
	return false
}

// Extract recovers a payload embedded by Embed. It fails with
// ErrNoHiddenData when the recorded length cannot fit the carrier, which
// is also what random LSBs usually look like.
func Extract(pix []uint8) ([]byte, error) {
	c := cursor{pix: pix}

	length, ok := c.readBits(headerBits)
	if !ok {
		return nil, fmt.Errorf("%w: buffer smaller than the length header", ErrNoHiddenData)
	}
	if headerBits+int(length)*8 > c.limit() {
		return nil, fmt.Errorf("%w: %d bytes recorded, %d payload bits available",
			ErrNoHiddenData, length, c.limit()-headerBits)
	}

	out := make([]byte, length)
	for i := range out {
		b, _ := c.readBits(8)
		out[i] = uint8(b)
	}
	return out, nil
}

// cursor walks the channel LSBs of an interleaved RGBA8 buffer. Values
// cross it low bit first, matching the format's reader side.
type cursor struct {
	pix []uint8
	n   int // bits consumed so far
}

func (c *cursor) limit() int {
	return Capacity(len(c.pix) / 4)
}

func (c *cursor) index() int {
	return (c.n/3)*4 + c.n%3
}

func (c *cursor) writeBit(b uint8) bool {
	if c.n >= c.limit() {
		return false
	}
	i := c.index()
	c.pix[i] = c.pix[i]&^1 | b&1
	c.n++
	return true
}

// writeBits emits the low count bits of v, least significant first, and
// reports whether every bit fit.
func (c *cursor) writeBits(v uint64, count uint) bool {
	for i := range count {
		if !c.writeBit(uint8(v >> i & 1)) {
			return false
		}
	}
	return true
}

func (c *cursor) readBit() (uint8, bool) {
	if c.n >= c.limit() {
		return 0, false
	}
	b := c.pix[c.index()] & 1
	c.n++
	return b, true
}

func (c *cursor) readBits(count uint) (uint64, bool) {
	var v uint64
	for i := range count {
		b, ok := c.readBit()
		if !ok {
			return v, false
		}
		v |= uint64(b) << i
	}
	return v, true
}
