// Package container wraps template and payload bytes in a compressed
// envelope. The default zlib envelope is byte-compatible with templates
// written by other implementations; the remaining formats trade that
// compatibility for speed (snappy, lz4), density (brotli), or both (zstd).
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// A Format names a compression envelope.
type Format string

const (
	Zlib   Format = "zlib"
	Zstd   Format = "zstd"
	LZ4    Format = "lz4"
	Snappy Format = "snappy"
	Brotli Format = "brotli"
)

// ErrUnknownFormat reports a format name no envelope implements.
var ErrUnknownFormat = errors.New("container: unknown format")

// Formats lists the supported envelope names.
func Formats() []Format {
	return []Format{Zlib, Zstd, LZ4, Snappy, Brotli}
}

// Pack compresses payload into a format envelope. An empty format means
// Zlib.
func Pack(format Format, payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := newWriter(format, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newWriter(format Format, w io.Writer) (io.WriteCloser, error) {
	switch format {
	case Zlib, "":
		return zlib.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Brotli:
		return brotli.NewWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Unpack decompresses an envelope produced by Pack. With an empty format
// the envelope is identified by Sniff; brotli streams carry no magic
// bytes, so they must be named explicitly. A blob that neither sniffs nor
// decompresses cleanly is an error.
func Unpack(format Format, blob []byte) ([]byte, error) {
	if format == "" {
		f, ok := Sniff(blob)
		if !ok {
			return nil, errors.New("container: unrecognized envelope; pass the format explicitly")
		}
		format = f
	}
	br := bytes.NewReader(blob)
	switch format {
	case Zlib:
		r, err := zlib.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case Zstd:
		d, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return io.ReadAll(d)
	case LZ4:
		return io.ReadAll(lz4.NewReader(br))
	case Snappy:
		return io.ReadAll(snappy.NewReader(br))
	case Brotli:
		return io.ReadAll(brotli.NewReader(br))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

var (
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic    = []byte{0x04, 0x22, 0x4d, 0x18}
	snappyMagic = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}
)

// Sniff identifies an envelope from its leading bytes. Brotli is never
// identified: raw brotli streams have no magic number.
func Sniff(blob []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(blob, zstdMagic):
		return Zstd, true
	case bytes.HasPrefix(blob, lz4Magic):
		return LZ4, true
	case bytes.HasPrefix(blob, snappyMagic):
		return Snappy, true
	}
	// Zlib: compression method 8 in the low CMF bits and a header
	// checksum divisible by 31.
	if len(blob) >= 2 && blob[0]&0x0f == 8 && (uint32(blob[0])<<8|uint32(blob[1]))%31 == 0 {
		return Zlib, true
	}
	return "", false
}
