package testhelpers

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
)

// IHDR field offsets within an encoded PNG.
const (
	ihdrTypeOffset   = 12
	ihdrWidthOffset  = 16
	ihdrHeightOffset = 20
	ihdrCRCOffset    = 29
)

// PNGClaiming returns a tiny PNG whose header declares width x height
// while its pixel data is that of a 1x1 image.
func PNGClaiming(width, height uint32) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	data := buf.Bytes()

	binary.BigEndian.PutUint32(data[ihdrWidthOffset:], width)
	binary.BigEndian.PutUint32(data[ihdrHeightOffset:], height)
	binary.BigEndian.PutUint32(data[ihdrCRCOffset:], crc32.ChecksumIEEE(data[ihdrTypeOffset:ihdrCRCOffset]))
	return data
}
