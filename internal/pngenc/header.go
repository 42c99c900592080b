package pngenc

import "encoding/binary"

// DecodeSize reads the width and height from the IHDR of a PNG payload.
// It reports false unless the payload starts with the PNG signature, is long
// enough to hold the IHDR dimensions, and both dimensions are positive.
func DecodeSize(payload []byte) (width, height uint32, ok bool) {
	if len(payload) < 24 || string(payload[:8]) != Signature {
		return 0, 0, false
	}

	width = binary.BigEndian.Uint32(payload[16:20])
	height = binary.BigEndian.Uint32(payload[20:24])
	if width == 0 || height == 0 {
		return 0, 0, false
	}
	return width, height, true
}
