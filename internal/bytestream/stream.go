// Package bytestream implements the growable, append-only write buffer and
// the matching read cursor used throughout the file format: a list of
// fixed-size pages that reads concatenate transparently, plus the
// big-endian / varint helpers the on-disk layout requires.
//
// The page-list growth here mirrors segmentmanager's rotate-on-overflow
// shape, but in memory: instead of closing one on-disk segment file and
// opening the next, Stream closes out one fixed-size page slab and appends
// a new one.
package bytestream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultPageSize is the size of each backing slab, matching spec.md's
// "default 64 KiB" guidance for the byte-stream.
const DefaultPageSize = 64 * 1024

// Stream is a growable, append-only write buffer. Writes never seek; the
// buffer grows by appending fixed-size pages as the current one fills.
type Stream struct {
	pageSize int
	pages    [][]byte
	cur      []byte
}

// New creates a Stream with the default page size.
func New() *Stream {
	return NewSize(DefaultPageSize)
}

// NewSize creates a Stream backed by pages of the given size.
func NewSize(pageSize int) *Stream {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	s := &Stream{pageSize: pageSize}
	s.cur = make([]byte, 0, pageSize)
	return s
}

func (s *Stream) rotate() {
	s.pages = append(s.pages, s.cur)
	s.cur = make([]byte, 0, s.pageSize)
}

// WriteRaw appends bytes verbatim, rotating pages as needed.
func (s *Stream) WriteRaw(b []byte) (int, error) {
	written := 0
	for len(b) > 0 {
		room := cap(s.cur) - len(s.cur)
		if room == 0 {
			s.rotate()
			room = cap(s.cur)
		}
		n := room
		if n > len(b) {
			n = len(b)
		}
		s.cur = append(s.cur, b[:n]...)
		b = b[n:]
		written += n
	}
	return written, nil
}

// Write implements io.Writer.
func (s *Stream) Write(b []byte) (int, error) { return s.WriteRaw(b) }

func (s *Stream) WriteU8(v uint8) error {
	_, err := s.WriteRaw([]byte{v})
	return err
}

func (s *Stream) WriteU16BE(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

func (s *Stream) WriteU32BE(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

func (s *Stream) WriteU64BE(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

func (s *Stream) WriteI64BE(v int64) error { return s.WriteU64BE(uint64(v)) }

// WriteU16LE / WriteU32LE / WriteU64LE support the codec-internal
// little-endian words spec.md §4.1/§6 calls out as an exception to the
// file-level big-endian convention.
func (s *Stream) WriteU16LE(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

func (s *Stream) WriteU32LE(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

func (s *Stream) WriteU64LE(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := s.WriteRaw(b[:])
	return err
}

// WriteVarint writes an unsigned LEB128 varint.
func (s *Stream) WriteVarint(v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := s.WriteRaw(buf[:n])
	return err
}

// WriteZigzag writes a signed value as a zigzag-encoded varint.
func (s *Stream) WriteZigzag(v int64) error {
	return s.WriteVarint(EncodeZigzag(v))
}

// EncodeZigzag maps signed integers to unsigned so that small-magnitude
// values (positive or negative) encode to small varints.
func EncodeZigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// DecodeZigzag is the inverse of EncodeZigzag.
func DecodeZigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// Bytes concatenates all pages into a single contiguous slice. Intended for
// sealing a page/chunk buffer, not for hot-path use on large streams.
func (s *Stream) Bytes() []byte {
	total := s.Len()
	out := make([]byte, 0, total)
	for _, p := range s.pages {
		out = append(out, p...)
	}
	out = append(out, s.cur...)
	return out
}

// Len returns the total number of bytes written so far.
func (s *Stream) Len() int {
	n := len(s.cur)
	for _, p := range s.pages {
		n += len(p)
	}
	return n
}

// Reset discards all buffered bytes, retaining the current page's capacity.
func (s *Stream) Reset() {
	s.pages = s.pages[:0]
	s.cur = s.cur[:0]
}

// WriteTo implements io.WriterTo, streaming pages directly to w without an
// intermediate full-buffer copy.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range s.pages {
		n, err := w.Write(p)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := w.Write(s.cur)
	total += int64(n)
	return total, err
}

// Reader is a forward-only cursor over a byte slice, used to decode the
// framed structures encoded by Stream.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) Len() int { return len(r.buf) - r.pos }

func (r *Reader) ReadInto(out []byte) (int, error) {
	n := copy(out, r.buf[r.pos:])
	r.pos += n
	if n < len(out) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if r.Len() < 1 {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadU16BE() (uint16, error) {
	if r.Len() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32BE() (uint32, error) {
	if r.Len() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64BE() (uint64, error) {
	if r.Len() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadI64BE() (int64, error) {
	v, err := r.ReadU64BE()
	return int64(v), err
}

func (r *Reader) ReadU32LE() (uint32, error) {
	if r.Len() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64LE() (uint64, error) {
	if r.Len() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadVarint reads an unsigned LEB128 varint.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("bytestream: malformed varint")
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadZigzag() (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return DecodeZigzag(v), nil
}

// ReadBytes reads a varint length prefix followed by that many raw bytes
// (the STRING/TEXT/BLOB and dictionary-entry wire shape).
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if uint64(r.Len()) < n {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) Pos() int { return r.pos }

// WriteBytes writes a varint length prefix followed by the raw bytes (the
// STRING/TEXT/BLOB and dictionary-entry wire shape).
func (s *Stream) WriteBytes(b []byte) error {
	if err := s.WriteVarint(uint64(len(b))); err != nil {
		return err
	}
	_, err := s.WriteRaw(b)
	return err
}
