package chunkio

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/compress"
	"github.com/tsfile-go/tsfile/internal/encoding"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// PageHeader precedes every compressed page body (spec.md §4.6).
type PageHeader struct {
	UncompressedSize uint64
	CompressedSize   uint64
	Stats            Stats
}

// EncodePage encodes times+values (time encoder fixed by timeEncoding,
// value encoder by valueEncoding), concatenates [time_bytes][value_bytes],
// compresses the result, and returns the page header plus compressed body.
// times and values hold only the column's non-null points, one value per
// timestamp; a null row has no entry in either.
func EncodePage(dtype fstype.DataType, timeEncoding, valueEncoding fstype.Encoding, c fstype.Compression, times []int64, values []any, stats Stats) (PageHeader, []byte, error) {
	plain := bytestream.New()
	if err := encoding.EncodeInt64Values(timeEncoding, times, plain); err != nil {
		return PageHeader{}, nil, fmt.Errorf("chunkio: encode page times: %w", err)
	}
	if err := encoding.EncodeColumnValues(dtype, valueEncoding, values, plain); err != nil {
		return PageHeader{}, nil, fmt.Errorf("chunkio: encode page values: %w", err)
	}

	uncompressed := plain.Bytes()
	compressed, err := compress.Compress(c, uncompressed)
	if err != nil {
		return PageHeader{}, nil, fmt.Errorf("chunkio: compress page: %w", err)
	}

	h := PageHeader{
		UncompressedSize: uint64(len(uncompressed)),
		CompressedSize:   uint64(len(compressed)),
		Stats:            stats,
	}
	return h, compressed, nil
}

// WritePageHeader serializes h (not the compressed bytes) onto sink.
func WritePageHeader(sink *bytestream.Stream, dtype fstype.DataType, h PageHeader) error {
	if err := sink.WriteVarint(h.UncompressedSize); err != nil {
		return err
	}
	if err := sink.WriteVarint(h.CompressedSize); err != nil {
		return err
	}
	return WriteStats(sink, dtype, h.Stats)
}

// ReadPageHeader reads a PageHeader from r.
func ReadPageHeader(r *bytestream.Reader, dtype fstype.DataType) (PageHeader, error) {
	var h PageHeader
	var err error
	if h.UncompressedSize, err = r.ReadVarint(); err != nil {
		return h, err
	}
	if h.CompressedSize, err = r.ReadVarint(); err != nil {
		return h, err
	}
	if h.Stats, err = ReadStats(r, dtype); err != nil {
		return h, err
	}
	return h, nil
}

// DecodePage reads a page header, the compressed body, decompresses and
// decodes it, and returns the point count's timestamps and values.
func DecodePage(r *bytestream.Reader, dtype fstype.DataType, timeEncoding, valueEncoding fstype.Encoding, c fstype.Compression) (PageHeader, []int64, []any, error) {
	h, err := ReadPageHeader(r, dtype)
	if err != nil {
		return h, nil, nil, fmt.Errorf("chunkio: read page header: %w", err)
	}
	compressed, err := r.ReadRaw(int(h.CompressedSize))
	if err != nil {
		return h, nil, nil, fmt.Errorf("chunkio: read page body: %w", err)
	}
	plainBytes, err := compress.Decompress(c, compressed, int(h.UncompressedSize))
	if err != nil {
		return h, nil, nil, fmt.Errorf("chunkio: decompress page: %w", err)
	}

	pr := bytestream.NewReader(plainBytes)
	count := int(h.Stats.Count)
	times, err := encoding.DecodeInt64Values(timeEncoding, pr, count)
	if err != nil {
		return h, nil, nil, fmt.Errorf("chunkio: decode page times: %w", err)
	}
	values, err := encoding.DecodeColumnValues(dtype, valueEncoding, pr, count)
	if err != nil {
		return h, nil, nil, fmt.Errorf("chunkio: decode page values: %w", err)
	}
	return h, times, values, nil
}
