// Package bgzf implements a block-gzip container: the input is split
// into bounded chunks, each independently DEFLATE-compressed and
// wrapped in a gzip member whose extra field records the member's
// total size minus one, so downstream tools can index and seek without
// decompressing the whole stream. The stream ends with a canonical
// empty member. Decompressing the concatenation reproduces the input
// byte for byte.
package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// ChunkSize is the maximum uncompressed payload per block. Slightly
// under 64 KiB so a stored-mode DEFLATE stream of a full chunk still
// fits the 16-bit block-size field.
const ChunkSize = 0xFF00

// headerLen is the fixed gzip member header: 10 standard bytes, a
// 2-byte XLEN, and the 6-byte BC extra subfield.
const headerLen = 18

// eofBlock is the canonical empty terminator member.
var eofBlock = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Writer compresses data into a block-gzip stream. Close must be
// called to emit the final partial block and the end-of-file member.
type Writer struct {
	w       io.Writer
	level   int
	pending []byte
	err     error
}

// NewWriter creates a block-gzip writer at the default compression
// level.
func NewWriter(w io.Writer) *Writer {
	return NewWriterLevel(w, flate.DefaultCompression)
}

// NewWriterLevel creates a block-gzip writer with an explicit DEFLATE
// level.
func NewWriterLevel(w io.Writer, level int) *Writer {
	return &Writer{w: w, level: level}
}

// Write buffers p, flushing a block for every full chunk.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.pending = append(w.pending, p...)
	for len(w.pending) >= ChunkSize {
		if err := w.writeBlock(w.pending[:ChunkSize]); err != nil {
			w.err = err
			return 0, err
		}
		w.pending = w.pending[ChunkSize:]
	}
	return len(p), nil
}

// Close flushes any partial block and writes the end-of-file member.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.pending) > 0 {
		if err := w.writeBlock(w.pending); err != nil {
			w.err = err
			return err
		}
		w.pending = nil
	}
	if _, err := w.w.Write(eofBlock); err != nil {
		w.err = err
		return err
	}
	w.err = fmt.Errorf("bgzf: writer closed")
	return nil
}

// writeBlock emits one complete gzip member for chunk.
func (w *Writer) writeBlock(chunk []byte) error {
	var body bytes.Buffer
	fw, err := flate.NewWriter(&body, w.level)
	if err != nil {
		return fmt.Errorf("bgzf: create deflate writer: %w", err)
	}
	if _, err := fw.Write(chunk); err != nil {
		return fmt.Errorf("bgzf: deflate chunk: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("bgzf: close deflate stream: %w", err)
	}

	total := headerLen + body.Len() + 8
	if total-1 > 0xFFFF {
		return fmt.Errorf("bgzf: compressed block size %d exceeds format limit", total)
	}

	// Magic, CM=deflate, FLG=FEXTRA, zero mtime, OS unknown, then the
	// 6-byte BC subfield whose payload is the member size minus one.
	header := [headerLen]byte{
		0x1f, 0x8b, 8, 4,
		0, 0, 0, 0,
		0, 0xff,
		6, 0,
		'B', 'C', 2, 0,
	}
	binary.LittleEndian.PutUint16(header[16:18], uint16(total-1))

	if _, err := w.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(body.Bytes()); err != nil {
		return err
	}

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(chunk))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(chunk)))
	_, err = w.w.Write(trailer[:])
	return err
}

// Compress wraps data in a complete block-gzip stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reads back the original bytes from a block-gzip stream.
// The container is a valid multi-member gzip stream, so a multistream
// gzip reader recovers the concatenated payload.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bgzf: open stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("bgzf: decompress stream: %w", err)
	}
	return out, nil
}
