package chunkio

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Chunk header markers (spec.md §4.6).
const (
	MarkerChunkGroup = 0x00
	MarkerSinglePage = 0x01
	MarkerMultiPage  = 0x05
)

type chunkState uint8

const (
	stateFresh chunkState = iota
	stateWriting
	stateSealed
)

type sealedPage struct {
	header     PageHeader
	compressed []byte
}

// ChunkWriter buffers one column's points for one chunk group and, on
// demand, seals pages and finally the chunk itself. State machine:
// Fresh → Writing → Sealed, per spec.md §4.6.
type ChunkWriter struct {
	Measurement string
	DataType    fstype.DataType
	Encoding    fstype.Encoding
	Compression fstype.Compression
	TimeEncoding fstype.Encoding

	targetPagePoints int
	targetPageBytes  int

	state chunkState

	curTimes  []int64
	curValues []any

	pages      []sealedPage
	chunkStats Stats
}

// NewChunkWriter constructs a fresh chunk writer for one column.
func NewChunkWriter(measurement string, dtype fstype.DataType, valueEncoding, timeEncoding fstype.Encoding, c fstype.Compression, targetPagePoints, targetPageBytes int) *ChunkWriter {
	return &ChunkWriter{
		Measurement:      measurement,
		DataType:         dtype,
		Encoding:         valueEncoding,
		Compression:      c,
		TimeEncoding:     timeEncoding,
		targetPagePoints: targetPagePoints,
		targetPageBytes:  targetPageBytes,
		state:            stateFresh,
	}
}

// Write appends one non-null point, sealing the current page if the
// writer has crossed its point or byte threshold (spec.md §4.6: "When
// either page_point_count ≥ target_page_points or encoded_bytes ≥
// target_page_bytes, calls seal_page()"). targetPageBytes of 0 disables
// the byte check.
func (w *ChunkWriter) Write(ts int64, value any) error {
	if w.state == stateSealed {
		return fmt.Errorf("chunkio: write to sealed chunk %q", w.Measurement)
	}
	w.state = stateWriting
	w.curTimes = append(w.curTimes, ts)
	w.curValues = append(w.curValues, value)
	if len(w.curTimes) >= w.targetPagePoints || (w.targetPageBytes > 0 && w.PendingBytes() >= w.targetPageBytes) {
		return w.sealPage()
	}
	return nil
}

// PendingBytes estimates the current page buffer's in-memory footprint,
// used both by Write's own byte threshold and by the file writer to
// decide whether memory_threshold has been exceeded (spec.md §4.7).
func (w *ChunkWriter) PendingBytes() int {
	return len(w.curTimes) * 16
}

// FlushPendingPage seals whatever page data is currently buffered without
// closing the chunk, so a caller holding several open chunk writers can
// bound their combined memory footprint (spec.md §4.7's memory_threshold)
// between calls to Write.
func (w *ChunkWriter) FlushPendingPage() error {
	return w.sealPage()
}

// sealPage encodes and compresses the current page buffer and appends it
// to the sealed-page list, per spec.md §4.6's seal_page.
func (w *ChunkWriter) sealPage() error {
	if len(w.curTimes) == 0 {
		return nil
	}
	var pageStats Stats
	for i, t := range w.curTimes {
		pageStats.Observe(w.DataType, t, w.curValues[i])
	}

	h, compressed, err := EncodePage(w.DataType, w.TimeEncoding, w.Encoding, w.Compression, w.curTimes, w.curValues, pageStats)
	if err != nil {
		return fmt.Errorf("chunkio: seal page for %q: %w", w.Measurement, err)
	}
	w.pages = append(w.pages, sealedPage{header: h, compressed: compressed})
	Merge(w.DataType, &w.chunkStats, pageStats)

	w.curTimes = nil
	w.curValues = nil
	return nil
}

// ChunkMeta describes a sealed chunk for the metadata index (spec.md §4.7
// step 1).
type ChunkMeta struct {
	Offset      uint64
	Measurement string
	DataType    fstype.DataType
	Encoding    fstype.Encoding
	Compression fstype.Compression
	Stats       Stats
	NumPages    int
}

// SealChunk flushes any buffered page, writes the chunk header and body
// to sink, and returns the chunk's metadata. offset is the absolute file
// offset of the chunk header's first byte (the caller tracks this; sink
// here is an in-memory staging buffer, the file writer copies it verbatim
// so offsets stay simple to compute).
func (w *ChunkWriter) SealChunk(sink *bytestream.Stream, offset uint64) (ChunkMeta, error) {
	if err := w.sealPage(); err != nil {
		return ChunkMeta{}, err
	}
	w.state = stateSealed

	marker := byte(MarkerSinglePage)
	if len(w.pages) != 1 {
		marker = MarkerMultiPage
	}

	body := bytestream.New()
	for _, p := range w.pages {
		if err := WritePageHeader(body, w.DataType, p.header); err != nil {
			return ChunkMeta{}, err
		}
		if _, err := body.WriteRaw(p.compressed); err != nil {
			return ChunkMeta{}, err
		}
	}
	bodyBytes := body.Bytes()

	if err := sink.WriteU8(marker); err != nil {
		return ChunkMeta{}, err
	}
	if err := sink.WriteBytes([]byte(w.Measurement)); err != nil {
		return ChunkMeta{}, err
	}
	if err := sink.WriteVarint(uint64(len(bodyBytes))); err != nil {
		return ChunkMeta{}, err
	}
	if err := sink.WriteU8(uint8(w.DataType)); err != nil {
		return ChunkMeta{}, err
	}
	if err := sink.WriteU8(uint8(w.Compression)); err != nil {
		return ChunkMeta{}, err
	}
	if err := sink.WriteU8(uint8(w.Encoding)); err != nil {
		return ChunkMeta{}, err
	}
	if _, err := sink.WriteRaw(bodyBytes); err != nil {
		return ChunkMeta{}, err
	}

	return ChunkMeta{
		Offset:      offset,
		Measurement: w.Measurement,
		DataType:    w.DataType,
		Encoding:    w.Encoding,
		Compression: w.Compression,
		Stats:       w.chunkStats,
		NumPages:    len(w.pages),
	}, nil
}

// DecodedChunk holds every page's data for one column, concatenated and
// ready for time-range filtering by the caller.
type DecodedChunk struct {
	Meta   ChunkMeta
	Times  []int64
	Values []any
}

// ReadChunk parses a chunk header and body from r, decoding every page.
// timeEncoding must match the writer's time-column encoding (carried
// out-of-band by the caller, since spec.md §4.6 only frames the value
// encoding in the chunk header).
func ReadChunk(r *bytestream.Reader, timeEncoding fstype.Encoding) (DecodedChunk, error) {
	marker, err := r.ReadU8()
	if err != nil {
		return DecodedChunk{}, err
	}
	if marker != MarkerSinglePage && marker != MarkerMultiPage {
		return DecodedChunk{}, fmt.Errorf("chunkio: unexpected chunk marker 0x%02x", marker)
	}
	measurementBytes, err := r.ReadBytes()
	if err != nil {
		return DecodedChunk{}, err
	}
	totalBodySize, err := r.ReadVarint()
	if err != nil {
		return DecodedChunk{}, err
	}
	dtypeByte, err := r.ReadU8()
	if err != nil {
		return DecodedChunk{}, err
	}
	compressionByte, err := r.ReadU8()
	if err != nil {
		return DecodedChunk{}, err
	}
	encodingByte, err := r.ReadU8()
	if err != nil {
		return DecodedChunk{}, err
	}

	dtype := fstype.DataType(dtypeByte)
	valueEncoding := fstype.Encoding(encodingByte)
	compression := fstype.Compression(compressionByte)

	bodyEnd := r.Pos() + int(totalBodySize)
	var out DecodedChunk
	out.Meta = ChunkMeta{
		Measurement: string(measurementBytes),
		DataType:    dtype,
		Encoding:    valueEncoding,
		Compression: compression,
	}

	for r.Pos() < bodyEnd {
		h, times, values, err := DecodePage(r, dtype, timeEncoding, valueEncoding, compression)
		if err != nil {
			return DecodedChunk{}, fmt.Errorf("chunkio: decode chunk %q: %w", out.Meta.Measurement, err)
		}
		out.Times = append(out.Times, times...)
		out.Values = append(out.Values, values...)
		Merge(dtype, &out.Meta.Stats, h.Stats)
		out.Meta.NumPages++
	}
	if r.Pos() != bodyEnd {
		return DecodedChunk{}, fmt.Errorf("chunkio: chunk %q body size mismatch: %w", out.Meta.Measurement, errInvalidFraming)
	}
	return out, nil
}

var errInvalidFraming = fmt.Errorf("corrupt chunk framing")
