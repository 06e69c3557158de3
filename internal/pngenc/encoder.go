// Package pngenc is a minimal lossless PNG encoder for 8-bit greyscale
// buffers. It deliberately avoids codec libraries: the zlib stream uses
// stored (uncompressed) deflate blocks, so the only machinery needed is
// chunk framing, CRC-32 and Adler-32. The output decodes with any
// standards-compliant PNG reader. The package is generic and carries no
// gait-domain knowledge.
package pngenc

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"hash/crc32"
	"io"
)

// EncodingError reports a contract violation by the caller (bad
// dimensions or a short pixel buffer). It never occurs for valid input
// and is not a recoverable user error.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "png encode: " + e.Reason
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// storedBlockMax is the deflate stored-block payload limit (LEN is a
// 16-bit field).
const storedBlockMax = 65535

// Encode writes pix as a width×height 8-bit greyscale PNG. pix is
// row-major and must hold exactly width*height bytes.
func Encode(w io.Writer, pix []uint8, width, height int) error {
	if width <= 0 || height <= 0 {
		return &EncodingError{Reason: fmt.Sprintf("invalid dimensions %dx%d", width, height)}
	}
	if len(pix) != width*height {
		return &EncodingError{Reason: fmt.Sprintf("pixel buffer has %d bytes, want %d", len(pix), width*height)}
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}
	if err := writeChunk(w, "IHDR", headerPayload(width, height)); err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", dataPayload(pix, width, height)); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

// headerPayload builds the IHDR payload: 8-bit greyscale, no interlace.
func headerPayload(width, height int) []byte {
	p := make([]byte, 13)
	binary.BigEndian.PutUint32(p[0:4], uint32(width))
	binary.BigEndian.PutUint32(p[4:8], uint32(height))
	p[8] = 8 // bit depth
	p[9] = 0 // color type: greyscale
	// compression method 0, filter method 0, interlace 0
	return p
}

// dataPayload wraps the filtered scanlines in a zlib stream of stored
// deflate blocks: zlib header, stored blocks of at most storedBlockMax
// bytes each (last block flagged final), Adler-32 of the raw data.
func dataPayload(pix []uint8, width, height int) []byte {
	// One filter-type byte (0 = None) prepended per row.
	raw := make([]byte, 0, height*(width+1))
	for y := 0; y < height; y++ {
		raw = append(raw, 0)
		raw = append(raw, pix[y*width:(y+1)*width]...)
	}

	numBlocks := (len(raw) + storedBlockMax - 1) / storedBlockMax
	out := make([]byte, 0, 2+len(raw)+5*numBlocks+4)

	// zlib header: deflate, 32K window, no preset dictionary, fastest.
	out = append(out, 0x78, 0x01)

	for off := 0; off < len(raw); off += storedBlockMax {
		end := off + storedBlockMax
		final := byte(0)
		if end >= len(raw) {
			end = len(raw)
			final = 1
		}
		n := end - off
		// Stored block: BFINAL bit, BTYPE=00, then LEN and its complement
		// little-endian.
		out = append(out, final,
			byte(n), byte(n>>8),
			byte(^n), byte(^n>>8))
		out = append(out, raw[off:end]...)
	}

	var adler [4]byte
	binary.BigEndian.PutUint32(adler[:], adler32.Checksum(raw))
	return append(out, adler[:]...)
}

// writeChunk frames one PNG chunk: length, type, payload, CRC-32 over
// type+payload.
func writeChunk(w io.Writer, typ string, payload []byte) error {
	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], uint32(len(payload)))
	copy(head[4:8], typ)
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}

	crc := crc32.NewIEEE()
	crc.Write(head[4:8])
	crc.Write(payload)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	_, err := w.Write(sum[:])
	return err
}
