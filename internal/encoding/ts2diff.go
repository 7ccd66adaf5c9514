package encoding

import (
	"github.com/tsfile-go/tsfile/internal/bitpack"
	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// TS_2DIFF (spec.md §4.3): per block of blockSize values, compute
// first-order differences, then delta-of-delta against the per-block
// minimum delta, then bit-pack at ceil(log2(max_delta_of_delta+1)).
// Block layout: varint count, varint bit_width, varint min_delta,
// first_value, packed body.
const ts2diffBlockSize = 128

type ts2diffInt64Encoder struct {
	pending []int64
}

func newTS2DiffInt64Encoder() *ts2diffInt64Encoder { return &ts2diffInt64Encoder{} }

func (e *ts2diffInt64Encoder) Encode(v int64) error {
	e.pending = append(e.pending, v)
	return nil
}

func (e *ts2diffInt64Encoder) Flush(sink *bytestream.Stream) error {
	vals := e.pending
	for start := 0; start < len(vals); start += ts2diffBlockSize {
		end := start + ts2diffBlockSize
		if end > len(vals) {
			end = len(vals)
		}
		if err := encodeTS2DiffBlock(vals[start:end], sink); err != nil {
			return err
		}
	}
	return nil
}

func encodeTS2DiffBlock(block []int64, sink *bytestream.Stream) error {
	n := len(block)
	if err := sink.WriteVarint(uint64(n)); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	firstValue := block[0]

	if n == 1 {
		if err := sink.WriteVarint(0); err != nil { // bit_width
			return err
		}
		if err := sink.WriteZigzag(0); err != nil { // min_delta
			return err
		}
		return sink.WriteZigzag(firstValue)
	}

	deltas := make([]int64, n-1)
	for i := 1; i < n; i++ {
		deltas[i-1] = block[i] - block[i-1]
	}

	minDelta := deltas[0]
	for _, d := range deltas {
		if d < minDelta {
			minDelta = d
		}
	}

	dod := make([]uint64, len(deltas))
	var maxDod uint64
	for i, d := range deltas {
		v := uint64(d - minDelta)
		dod[i] = v
		if v > maxDod {
			maxDod = v
		}
	}

	width := widthFor(maxDod)

	if err := sink.WriteVarint(uint64(width)); err != nil {
		return err
	}
	if err := sink.WriteZigzag(minDelta); err != nil {
		return err
	}
	if err := sink.WriteZigzag(firstValue); err != nil {
		return err
	}

	bb := bitpack.BlockBytes(width)
	for i := 0; i < len(dod); i += 8 {
		var blk [8]uint64
		end := i + 8
		if end > len(dod) {
			end = len(dod)
		}
		copy(blk[:], dod[i:end])
		buf := make([]byte, bb)
		bitpack.Pack8U64(blk, width, buf)
		if _, err := sink.WriteRaw(buf); err != nil {
			return err
		}
	}
	return nil
}

type ts2diffInt64Decoder struct {
	r         *bytestream.Reader
	remaining int
	buf       []int64
	pos       int
}

func newTS2DiffInt64Decoder(r *bytestream.Reader, count int) *ts2diffInt64Decoder {
	return &ts2diffInt64Decoder{r: r, remaining: count}
}

func (d *ts2diffInt64Decoder) HasNext() bool {
	return d.pos < len(d.buf) || d.remaining > 0
}

func (d *ts2diffInt64Decoder) Read() (int64, error) {
	if d.pos >= len(d.buf) {
		block, err := decodeTS2DiffBlock(d.r)
		if err != nil {
			return 0, err
		}
		d.buf = block
		d.pos = 0
		d.remaining -= len(block)
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func decodeTS2DiffBlock(r *bytestream.Reader) ([]int64, error) {
	n64, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	n := int(n64)
	if n == 0 {
		return nil, nil
	}

	widthU, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	width := int(widthU)

	minDelta, err := r.ReadZigzag()
	if err != nil {
		return nil, err
	}
	firstValue, err := r.ReadZigzag()
	if err != nil {
		return nil, err
	}

	out := make([]int64, n)
	out[0] = firstValue
	if n == 1 {
		return out, nil
	}

	dodCount := n - 1
	bb := bitpack.BlockBytes(width)
	dod := make([]uint64, 0, dodCount)
	for len(dod) < dodCount {
		buf, err := r.ReadRaw(bb)
		if err != nil {
			return nil, err
		}
		block := bitpack.Unpack8U64(buf, width)
		take := dodCount - len(dod)
		if take > 8 {
			take = 8
		}
		dod = append(dod, block[:take]...)
	}

	prev := firstValue
	for i, dv := range dod {
		delta := int64(dv) + minDelta
		out[i+1] = prev + delta
		prev = out[i+1]
	}
	return out, nil
}
