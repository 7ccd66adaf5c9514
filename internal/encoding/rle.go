package encoding

import (
	"github.com/tsfile-go/tsfile/internal/bitpack"
	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// RLE (spec.md §4.3): alternates run packs
// (varint (count<<1)|0, zigzag value) and bit-packed packs
// (varint (count<<1)|1, varint width, one group of up to 8 zigzag values
// packed at that width and padded to 8). The encoder buffers every value
// until Flush; a stretch of >=8 equal values is emitted as a run, and
// everything else as bit-packed packs.
//
// Grounded on original_source/tsfile/cpp/test/encoding/int32_rle_codec_test.cc
// and int64_rle_codec_test.cc.
type rleInt64Encoder struct {
	pending []int64
}

func newRLEInt64Encoder() *rleInt64Encoder { return &rleInt64Encoder{} }

func (e *rleInt64Encoder) Encode(v int64) error {
	e.pending = append(e.pending, v)
	return nil
}

const rleGroupSize = 8

func (e *rleInt64Encoder) Flush(sink *bytestream.Stream) error {
	vals := e.pending
	i := 0
	for i < len(vals) {
		runLen := 1
		for i+runLen < len(vals) && vals[i+runLen] == vals[i] {
			runLen++
		}
		if runLen >= rleGroupSize {
			if err := sink.WriteVarint(uint64(runLen)<<1 | 0); err != nil {
				return err
			}
			if err := sink.WriteZigzag(vals[i]); err != nil {
				return err
			}
			i += runLen
			continue
		}

		// Collect bit-packed groups of up to 8 non-run values.
		groupStart := i
		groupVals := make([]int64, 0, rleGroupSize)
		for len(groupVals) < rleGroupSize && i < len(vals) {
			// Stop accumulating into the bit-packed group once a run of
			// >=8 identical values begins, so it can be emitted as its own
			// run pack on the next outer iteration.
			rl := 1
			for i+rl < len(vals) && vals[i+rl] == vals[i] {
				rl++
			}
			if rl >= rleGroupSize && len(groupVals) > 0 {
				break
			}
			groupVals = append(groupVals, vals[i])
			i++
		}
		_ = groupStart

		width := bitWidthForGroup(groupVals)
		if err := sink.WriteVarint(uint64(len(groupVals))<<1 | 1); err != nil {
			return err
		}
		if err := sink.WriteVarint(uint64(width)); err != nil {
			return err
		}

		// Bit-pack the zigzag of each value (so negatives fit in width
		// bits); pad the final partial group to 8 with zeros, decoder
		// only reads back len(groupVals) values.
		var block [8]int64
		for i, v := range groupVals {
			block[i] = int64(bytestream.EncodeZigzag(v))
		}
		buf := make([]byte, bitpack.BlockBytes(width))
		bitpack.Pack8I64(block, width, buf)
		if _, err := sink.WriteRaw(buf); err != nil {
			return err
		}
	}
	return nil
}

func bitWidthForGroup(vals []int64) int {
	var maxZ uint64
	for _, v := range vals {
		z := bytestream.EncodeZigzag(v)
		if z > maxZ {
			maxZ = z
		}
	}
	return widthFor(maxZ)
}

func widthFor(max uint64) int {
	w := 0
	for (uint64(1)<<uint(w)) <= max && w < 64 {
		w++
	}
	if w == 0 {
		w = 1
	}
	return w
}

type rleInt64Decoder struct {
	r         *bytestream.Reader
	remaining int
	buf       []int64
	pos       int
}

func newRLEInt64Decoder(r *bytestream.Reader, count int) *rleInt64Decoder {
	return &rleInt64Decoder{r: r, remaining: count}
}

func (d *rleInt64Decoder) HasNext() bool {
	return d.pos < len(d.buf) || d.remaining > 0
}

func (d *rleInt64Decoder) Read() (int64, error) {
	if d.pos < len(d.buf) {
		v := d.buf[d.pos]
		d.pos++
		return v, nil
	}

	header, err := d.r.ReadVarint()
	if err != nil {
		return 0, err
	}
	n := int(header >> 1)
	isBitPacked := header&1 == 1

	if !isBitPacked {
		v, err := d.r.ReadZigzag()
		if err != nil {
			return 0, err
		}
		d.buf = make([]int64, n)
		for i := range d.buf {
			d.buf[i] = v
		}
	} else {
		widthU, err := d.r.ReadVarint()
		if err != nil {
			return 0, err
		}
		width := int(widthU)
		buf, err := d.r.ReadRaw(bitpack.BlockBytes(width))
		if err != nil {
			return 0, err
		}
		block := bitpack.Unpack8I64(buf, width)
		zz := make([]int64, 8)
		for i, zv := range block {
			zz[i] = bytestream.DecodeZigzag(uint64(zv))
		}
		d.buf = zz[:n]
	}

	d.remaining -= n
	d.pos = 0
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}
