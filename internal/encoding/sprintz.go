package encoding

import (
	"github.com/tsfile-go/tsfile/internal/bitpack"
	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// SPRINTZ (spec.md §4.3): block-oriented, block size 8. For each block,
// compute deltas against the previous block's last value, zigzag them,
// find the max width, and emit `1 byte width` + `width bytes` of
// bit-packed deltas. The first block stores a raw anchor. A trailing
// partial block (< 8 values) is encoded as PLAIN with a sentinel width of
// 0xFF.
//
// Grounded on original_source/tsfile/cpp/test/encoding/sprintz_codec_test.cc.
const sprintzBlockSize = 8
const sprintzPartialSentinel = 0xFF

type sprintzInt64Encoder struct {
	pending []int64
}

func newSprintzInt64Encoder() *sprintzInt64Encoder { return &sprintzInt64Encoder{} }

func (e *sprintzInt64Encoder) Encode(v int64) error {
	e.pending = append(e.pending, v)
	return nil
}

func (e *sprintzInt64Encoder) Flush(sink *bytestream.Stream) error {
	if len(e.pending) == 0 {
		return nil
	}

	anchor := e.pending[0]
	if err := sink.WriteZigzag(anchor); err != nil {
		return err
	}

	prevLast := anchor
	i := 1
	for i < len(e.pending) {
		end := i + sprintzBlockSize
		if end > len(e.pending) {
			end = len(e.pending)
		}
		block := e.pending[i:end]

		if len(block) < sprintzBlockSize {
			if err := sink.WriteU8(sprintzPartialSentinel); err != nil {
				return err
			}
			if err := sink.WriteVarint(uint64(len(block))); err != nil {
				return err
			}
			for _, v := range block {
				if err := sink.WriteZigzag(v); err != nil {
					return err
				}
			}
			i = end
			continue
		}

		zz := make([]uint64, len(block))
		prev := prevLast
		var maxZ uint64
		for j, v := range block {
			d := v - prev
			zz[j] = bytestream.EncodeZigzag(d)
			if zz[j] > maxZ {
				maxZ = zz[j]
			}
			prev = v
		}
		width := widthFor(maxZ)
		if width > 0xFE {
			width = 0xFE
		}

		if err := sink.WriteU8(byte(width)); err != nil {
			return err
		}
		var blk [8]uint64
		copy(blk[:], zz)
		buf := make([]byte, bitpack.BlockBytes(width))
		bitpack.Pack8U64(blk, width, buf)
		if _, err := sink.WriteRaw(buf); err != nil {
			return err
		}

		prevLast = block[len(block)-1]
		i = end
	}
	return nil
}

type sprintzInt64Decoder struct {
	r         *bytestream.Reader
	remaining int
	buf       []int64
	pos       int
	prevLast  int64
	started   bool
}

func newSprintzInt64Decoder(r *bytestream.Reader, count int) *sprintzInt64Decoder {
	return &sprintzInt64Decoder{r: r, remaining: count}
}

func (d *sprintzInt64Decoder) HasNext() bool {
	return d.pos < len(d.buf) || d.remaining > 0
}

func (d *sprintzInt64Decoder) Read() (int64, error) {
	if !d.started {
		anchor, err := d.r.ReadZigzag()
		if err != nil {
			return 0, err
		}
		d.prevLast = anchor
		d.started = true
		d.remaining--
		d.buf = nil
		d.pos = 0
		return anchor, nil
	}

	if d.pos >= len(d.buf) {
		widthB, err := d.r.ReadU8()
		if err != nil {
			return 0, err
		}
		if widthB == sprintzPartialSentinel {
			n, err := d.r.ReadVarint()
			if err != nil {
				return 0, err
			}
			vals := make([]int64, n)
			for i := range vals {
				v, err := d.r.ReadZigzag()
				if err != nil {
					return 0, err
				}
				vals[i] = v
			}
			d.buf = vals
		} else {
			width := int(widthB)
			buf, err := d.r.ReadRaw(bitpack.BlockBytes(width))
			if err != nil {
				return 0, err
			}
			blk := bitpack.Unpack8U64(buf, width)
			vals := make([]int64, 8)
			prev := d.prevLast
			for i, zv := range blk {
				delta := bytestream.DecodeZigzag(zv)
				prev = prev + delta
				vals[i] = prev
			}
			d.buf = vals
		}
		d.pos = 0
		if len(d.buf) > 0 {
			d.prevLast = d.buf[len(d.buf)-1]
		}
	}

	v := d.buf[d.pos]
	d.pos++
	d.remaining--
	return v, nil
}
