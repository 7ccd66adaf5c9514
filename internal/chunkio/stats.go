// Package chunkio implements the page/chunk/chunk-group framing of
// spec.md §4.6: a chunk writer state machine (Fresh → Writing → Sealed)
// that buffers one column's points, seals pages on a point/byte
// threshold, and seals a chunk by writing its header and concatenated
// page bodies. Heavily grounded on sst/writer.go's appendDataBlock
// and writeIndexBlock/recordIndex sequencing; no size is patched after
// the fact here, since each page and chunk body is built in memory and
// its length written ahead of it.
package chunkio

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Stats accumulates the per-page / per-chunk statistics of spec.md §4.6:
// count, time range, and min/max/sum/first/last. Min/Max/First/Last are
// boxed as the column's native Go type; Sum is always accumulated as
// float64 regardless of column type (a deliberate widening — see
// DESIGN.md — so a long run of INT32/INT64 values can't silently
// overflow a same-width accumulator).
type Stats struct {
	Count  int64
	StartT int64
	EndT   int64
	Min    any
	Max    any
	Sum    float64
	First  any
	Last   any
}

// Observe folds one (t, v) point into the statistics. Must be called in
// increasing-timestamp order, matching the writer's append-only contract.
func (s *Stats) Observe(dtype fstype.DataType, t int64, v any) {
	if s.Count == 0 {
		s.StartT = t
		s.Min = v
		s.Max = v
		s.First = v
	}
	s.EndT = t
	s.Last = v
	s.Count++
	s.Sum += numeric(dtype, v)

	if less(dtype, v, s.Min) {
		s.Min = v
	}
	if less(dtype, s.Max, v) {
		s.Max = v
	}
}

func numeric(dtype fstype.DataType, v any) float64 {
	switch dtype {
	case fstype.Boolean:
		if v.(bool) {
			return 1
		}
		return 0
	case fstype.Int32, fstype.Date:
		return float64(v.(int32))
	case fstype.Int64, fstype.Timestamp:
		return float64(v.(int64))
	case fstype.Float:
		return float64(v.(float32))
	case fstype.Double:
		return v.(float64)
	default:
		return 0
	}
}

func less(dtype fstype.DataType, a, b any) bool {
	switch dtype {
	case fstype.Boolean:
		return !a.(bool) && b.(bool)
	case fstype.Int32, fstype.Date:
		return a.(int32) < b.(int32)
	case fstype.Int64, fstype.Timestamp:
		return a.(int64) < b.(int64)
	case fstype.Float:
		return a.(float32) < b.(float32)
	case fstype.Double:
		return a.(float64) < b.(float64)
	case fstype.String, fstype.Text, fstype.Blob:
		return a.(string) < b.(string)
	default:
		return false
	}
}

// Merge combines child statistics (a page's) into a running total (a
// chunk's), preserving min/max/first/last/count/time-range semantics.
func Merge(dtype fstype.DataType, into *Stats, child Stats) {
	if child.Count == 0 {
		return
	}
	if into.Count == 0 {
		*into = child
		return
	}
	if child.StartT < into.StartT {
		into.StartT = child.StartT
		into.First = child.First
	}
	if child.EndT > into.EndT {
		into.EndT = child.EndT
		into.Last = child.Last
	}
	into.Count += child.Count
	into.Sum += child.Sum
	if less(dtype, child.Min, into.Min) {
		into.Min = child.Min
	}
	if less(dtype, into.Max, child.Max) {
		into.Max = child.Max
	}
}

func writeTyped(sink *bytestream.Stream, dtype fstype.DataType, v any) error {
	switch dtype {
	case fstype.Boolean:
		b := byte(0)
		if v.(bool) {
			b = 1
		}
		return sink.WriteU8(b)
	case fstype.Int32, fstype.Date:
		return sink.WriteZigzag(int64(v.(int32)))
	case fstype.Int64, fstype.Timestamp:
		return sink.WriteZigzag(v.(int64))
	case fstype.Float:
		return sink.WriteU32BE(float32bits(v.(float32)))
	case fstype.Double:
		return sink.WriteU64BE(float64bits(v.(float64)))
	case fstype.String, fstype.Text, fstype.Blob:
		return sink.WriteBytes([]byte(v.(string)))
	default:
		return fmt.Errorf("chunkio: unsupported stats type %s", dtype)
	}
}

func readTyped(r *bytestream.Reader, dtype fstype.DataType) (any, error) {
	switch dtype {
	case fstype.Boolean:
		b, err := r.ReadU8()
		return b != 0, err
	case fstype.Int32, fstype.Date:
		v, err := r.ReadZigzag()
		return int32(v), err
	case fstype.Int64, fstype.Timestamp:
		v, err := r.ReadZigzag()
		return v, err
	case fstype.Float:
		bits, err := r.ReadU32BE()
		return float32frombits(bits), err
	case fstype.Double:
		bits, err := r.ReadU64BE()
		return float64frombits(bits), err
	case fstype.String, fstype.Text, fstype.Blob:
		b, err := r.ReadBytes()
		return string(b), err
	default:
		return nil, fmt.Errorf("chunkio: unsupported stats type %s", dtype)
	}
}

// WriteStats serializes s onto sink for a column of the given type.
func WriteStats(sink *bytestream.Stream, dtype fstype.DataType, s Stats) error {
	if err := sink.WriteVarint(uint64(s.Count)); err != nil {
		return err
	}
	if err := sink.WriteI64BE(s.StartT); err != nil {
		return err
	}
	if err := sink.WriteI64BE(s.EndT); err != nil {
		return err
	}
	if s.Count == 0 {
		return nil
	}
	if err := writeTyped(sink, dtype, s.Min); err != nil {
		return err
	}
	if err := writeTyped(sink, dtype, s.Max); err != nil {
		return err
	}
	if err := sink.WriteU64BE(float64bits(s.Sum)); err != nil {
		return err
	}
	if err := writeTyped(sink, dtype, s.First); err != nil {
		return err
	}
	return writeTyped(sink, dtype, s.Last)
}

// ReadStats inverts WriteStats.
func ReadStats(r *bytestream.Reader, dtype fstype.DataType) (Stats, error) {
	var s Stats
	count, err := r.ReadVarint()
	if err != nil {
		return s, err
	}
	s.Count = int64(count)
	if s.StartT, err = r.ReadI64BE(); err != nil {
		return s, err
	}
	if s.EndT, err = r.ReadI64BE(); err != nil {
		return s, err
	}
	if s.Count == 0 {
		return s, nil
	}
	if s.Min, err = readTyped(r, dtype); err != nil {
		return s, err
	}
	if s.Max, err = readTyped(r, dtype); err != nil {
		return s, err
	}
	sumBits, err := r.ReadU64BE()
	if err != nil {
		return s, err
	}
	s.Sum = float64frombits(sumBits)
	if s.First, err = readTyped(r, dtype); err != nil {
		return s, err
	}
	if s.Last, err = readTyped(r, dtype); err != nil {
		return s, err
	}
	return s, nil
}
