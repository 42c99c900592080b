// Package pngenc encodes RGBA pixel buffers as PNG byte streams.
//
// The output is a pure function of width, height and pixels: a signature, one
// IHDR, one IDAT holding the zlib-compressed unfiltered scanlines, and an IEND.
// No ancillary chunks are written, so identical inputs give identical bytes.
package pngenc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Signature is the fixed 8-byte PNG magic.
const Signature = "\x89PNG\r\n\x1a\n"

const (
	bitDepth        = 8
	colourTypeRGBA  = 6
	compressionZlib = 0
	filterAdaptive  = 0
	interlaceNone   = 0

	filterNone = 0

	// compressionLevel matches zlib's default.
	compressionLevel = 6

	// maxDimension is the largest width or height a PNG may declare.
	maxDimension = 1<<31 - 1
)

// ErrInvalidDimensions is returned for a width or height that is not positive.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Encode returns the PNG encoding of an 8-bit RGBA buffer of width*height pixels.
func Encode(width, height int, pix []byte) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	stride := width * 4
	if len(pix) != stride*height {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%d", len(pix), stride*height, width, height)
	}

	idat, err := compress(pix, stride, height)
	if err != nil {
		return nil, err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = bitDepth
	ihdr[9] = colourTypeRGBA
	ihdr[10] = compressionZlib
	ihdr[11] = filterAdaptive
	ihdr[12] = interlaceNone

	var buf bytes.Buffer
	buf.Grow(len(Signature) + 3*12 + len(ihdr) + len(idat))
	buf.WriteString(Signature)
	writeChunk(&buf, "IHDR", ihdr[:])
	writeChunk(&buf, "IDAT", idat)
	writeChunk(&buf, "IEND", nil)
	return buf.Bytes(), nil
}

// compress prefixes every scanline with filter type 0 and deflates the result.
func compress(pix []byte, stride, height int) ([]byte, error) {
	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}

	filter := []byte{filterNone}
	for y := 0; y < height; y++ {
		if _, err := zw.Write(filter); err != nil {
			return nil, fmt.Errorf("failed to compress scanline %d: %w", y, err)
		}
		if _, err := zw.Write(pix[y*stride : (y+1)*stride]); err != nil {
			return nil, fmt.Errorf("failed to compress scanline %d: %w", y, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish zlib stream: %w", err)
	}
	return out.Bytes(), nil
}

// writeChunk frames payload as length, tag, payload, CRC-32(tag+payload).
func writeChunk(buf *bytes.Buffer, tag string, payload []byte) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(payload)))
	buf.Write(tmp[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(payload)

	buf.WriteString(tag)
	buf.Write(payload)
	binary.BigEndian.PutUint32(tmp[:], crc.Sum32())
	buf.Write(tmp[:])
}
