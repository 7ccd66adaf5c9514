package encoding

import (
	"math/bits"

	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// GORILLA (spec.md §4.3): the first value is stored raw; each subsequent
// value's XOR with the previous is bit-encoded with a leading/meaningful
// /trailing-zero scheme identical to the Facebook Gorilla paper. Control
// bits:
//
//	0                      -> XOR is zero, value unchanged
//	10 <5 lead><6 len><bits>  -> new window, explicit lead/len
//	11 <bits using prior window> -> reuse previous window
//
// Grounded on original_source/tsfile/cpp/test/encoding/gorilla_codec_test.cc.
type bitWriter struct {
	s       *bytestream.Stream
	cur     byte
	nbits   int
	scratch []byte
}

func newBitWriter(s *bytestream.Stream) *bitWriter { return &bitWriter{s: s} }

func (w *bitWriter) writeBit(b uint8) error {
	w.cur = (w.cur << 1) | (b & 1)
	w.nbits++
	if w.nbits == 8 {
		if err := w.s.WriteU8(w.cur); err != nil {
			return err
		}
		w.cur = 0
		w.nbits = 0
	}
	return nil
}

func (w *bitWriter) writeBits(v uint64, n int) error {
	for i := n - 1; i >= 0; i-- {
		if err := w.writeBit(uint8((v >> uint(i)) & 1)); err != nil {
			return err
		}
	}
	return nil
}

func (w *bitWriter) flush() error {
	if w.nbits == 0 {
		return nil
	}
	w.cur <<= uint(8 - w.nbits)
	if err := w.s.WriteU8(w.cur); err != nil {
		return err
	}
	w.cur = 0
	w.nbits = 0
	return nil
}

type bitReader struct {
	r     *bytestream.Reader
	cur   byte
	nbits int
}

func newBitReader(r *bytestream.Reader) *bitReader { return &bitReader{r: r} }

func (r *bitReader) readBit() (uint8, error) {
	if r.nbits == 0 {
		b, err := r.r.ReadU8()
		if err != nil {
			return 0, err
		}
		r.cur = b
		r.nbits = 8
	}
	bit := (r.cur >> 7) & 1
	r.cur <<= 1
	r.nbits--
	return bit, nil
}

func (r *bitReader) readBits(n int) (uint64, error) {
	var v uint64
	for i := 0; i < n; i++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | uint64(b)
	}
	return v, nil
}

type gorillaInt64Encoder struct {
	vals []int64
}

func newGorillaInt64Encoder() *gorillaInt64Encoder { return &gorillaInt64Encoder{} }

func (e *gorillaInt64Encoder) Encode(v int64) error {
	e.vals = append(e.vals, v)
	return nil
}

func (e *gorillaInt64Encoder) Flush(sink *bytestream.Stream) error {
	if len(e.vals) == 0 {
		return nil
	}
	bw := newBitWriter(sink)

	prev := uint64(e.vals[0])
	if err := bw.writeBits(prev, 64); err != nil {
		return err
	}

	prevLead, prevTrail := -1, -1
	for _, v := range e.vals[1:] {
		cur := uint64(v)
		xor := prev ^ cur
		if xor == 0 {
			if err := bw.writeBit(0); err != nil {
				return err
			}
		} else {
			lead := bits.LeadingZeros64(xor)
			trail := bits.TrailingZeros64(xor)
			if lead > 31 {
				lead = 31
			}
			meaningful := 64 - lead - trail

			if prevLead >= 0 && lead >= prevLead && trail >= prevTrail {
				if err := bw.writeBit(1); err != nil {
					return err
				}
				if err := bw.writeBit(1); err != nil {
					return err
				}
				reuseMeaningful := 64 - prevLead - prevTrail
				if err := bw.writeBits(xor>>uint(prevTrail), reuseMeaningful); err != nil {
					return err
				}
			} else {
				if err := bw.writeBit(1); err != nil {
					return err
				}
				if err := bw.writeBit(0); err != nil {
					return err
				}
				if err := bw.writeBits(uint64(lead), 5); err != nil {
					return err
				}
				if err := bw.writeBits(uint64(meaningful), 6); err != nil {
					return err
				}
				if err := bw.writeBits(xor>>uint(trail), meaningful); err != nil {
					return err
				}
				prevLead, prevTrail = lead, trail
			}
		}
		prev = cur
	}
	return bw.flush()
}

type gorillaInt64Decoder struct {
	br        *bitReader
	remaining int
	prev      uint64
	prevLead  int
	prevTrail int
	started   bool
}

func newGorillaInt64Decoder(r *bytestream.Reader, count int) *gorillaInt64Decoder {
	return &gorillaInt64Decoder{br: newBitReader(r), remaining: count, prevLead: -1, prevTrail: -1}
}

func (d *gorillaInt64Decoder) HasNext() bool { return d.remaining > 0 }

func (d *gorillaInt64Decoder) Read() (int64, error) {
	if !d.started {
		v, err := d.br.readBits(64)
		if err != nil {
			return 0, err
		}
		d.prev = v
		d.started = true
		d.remaining--
		return int64(v), nil
	}

	b0, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	if b0 == 0 {
		d.remaining--
		return int64(d.prev), nil
	}

	b1, err := d.br.readBit()
	if err != nil {
		return 0, err
	}

	var xor uint64
	if b1 == 1 {
		meaningful := 64 - d.prevLead - d.prevTrail
		bitsVal, err := d.br.readBits(meaningful)
		if err != nil {
			return 0, err
		}
		xor = bitsVal << uint(d.prevTrail)
	} else {
		leadU, err := d.br.readBits(5)
		if err != nil {
			return 0, err
		}
		meaningfulU, err := d.br.readBits(6)
		if err != nil {
			return 0, err
		}
		lead := int(leadU)
		meaningful := int(meaningfulU)
		if meaningful == 0 {
			// A 64-bit window does not fit the 6-bit length field and is
			// written as 0; a non-zero XOR always has a meaningful bit.
			meaningful = 64
		}
		trail := 64 - lead - meaningful
		bitsVal, err := d.br.readBits(meaningful)
		if err != nil {
			return 0, err
		}
		xor = bitsVal << uint(trail)
		d.prevLead, d.prevTrail = lead, trail
	}

	cur := d.prev ^ xor
	d.prev = cur
	d.remaining--
	return int64(cur), nil
}
