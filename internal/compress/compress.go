// Package compress implements the page-level compressors of spec.md §3/§4.3:
// UNCOMPRESSED, SNAPPY, GZIP, LZ4. The page header records the algorithm
// id so decoder dispatch is a direct switch (spec.md §4.3).
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	kgzip "github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"

	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Compress appends the compressed form of src to a fresh buffer.
func Compress(c fstype.Compression, src []byte) ([]byte, error) {
	switch c {
	case fstype.Uncompressed:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case fstype.Snappy:
		return snappy.Encode(nil, src), nil
	case fstype.Gzip:
		var buf bytes.Buffer
		w, err := kgzip.NewWriterLevel(&buf, kgzip.BestSpeed)
		if err != nil {
			return nil, fmt.Errorf("compress: gzip writer: %w", err)
		}
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("compress: gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compress: gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case fstype.LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("compress: lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compress: lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported compression %s", c)
	}
}

// Decompress inverts Compress. uncompressedSize is a hint used to
// preallocate the output buffer where the algorithm supports it.
func Decompress(c fstype.Compression, src []byte, uncompressedSize int) ([]byte, error) {
	switch c {
	case fstype.Uncompressed:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case fstype.Snappy:
		dst := make([]byte, 0, uncompressedSize)
		return snappy.Decode(dst, src)
	case fstype.Gzip:
		r, err := kgzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("compress: gzip reader: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("compress: gzip read: %w", err)
		}
		return out, nil
	case fstype.LZ4:
		r := lz4.NewReader(bytes.NewReader(src))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4 read: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compress: unsupported compression %s", c)
	}
}
