package encoding

import (
	"math"

	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// --- PLAIN integers: unsigned LEB128 of the zigzag value. ---

type plainInt64Encoder struct{ vals []int64 }

func newPlainInt64Encoder() *plainInt64Encoder { return &plainInt64Encoder{} }

func (e *plainInt64Encoder) Encode(v int64) error {
	e.vals = append(e.vals, v)
	return nil
}

func (e *plainInt64Encoder) Flush(sink *bytestream.Stream) error {
	for _, v := range e.vals {
		if err := sink.WriteZigzag(v); err != nil {
			return err
		}
	}
	return nil
}

type plainInt64Decoder struct {
	r     *bytestream.Reader
	count int
	read  int
}

func newPlainInt64Decoder(r *bytestream.Reader, count int) *plainInt64Decoder {
	return &plainInt64Decoder{r: r, count: count}
}

func (d *plainInt64Decoder) HasNext() bool { return d.read < d.count }

func (d *plainInt64Decoder) Read() (int64, error) {
	v, err := d.r.ReadZigzag()
	if err != nil {
		return 0, err
	}
	d.read++
	return v, nil
}

// --- PLAIN booleans: one byte per value. ---

func EncodeBoolPlain(values []bool, sink *bytestream.Stream) error {
	for _, v := range values {
		b := byte(0)
		if v {
			b = 1
		}
		if err := sink.WriteU8(b); err != nil {
			return err
		}
	}
	return nil
}

func DecodeBoolPlain(r *bytestream.Reader, count int) ([]bool, error) {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		out[i] = b != 0
	}
	return out, nil
}

// --- PLAIN floats: IEEE-754 bit pattern, big-endian (spec.md §6). ---

func EncodeFloat32Plain(values []float32, sink *bytestream.Stream) error {
	for _, v := range values {
		if err := sink.WriteU32BE(math.Float32bits(v)); err != nil {
			return err
		}
	}
	return nil
}

func DecodeFloat32Plain(r *bytestream.Reader, count int) ([]float32, error) {
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		bits, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

func EncodeFloat64Plain(values []float64, sink *bytestream.Stream) error {
	for _, v := range values {
		if err := sink.WriteU64BE(math.Float64bits(v)); err != nil {
			return err
		}
	}
	return nil
}

func DecodeFloat64Plain(r *bytestream.Reader, count int) ([]float64, error) {
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		bits, err := r.ReadU64BE()
		if err != nil {
			return nil, err
		}
		out[i] = math.Float64frombits(bits)
	}
	return out, nil
}

// --- PLAIN strings/bytes: varint length prefix + raw bytes. ---

func EncodeBytesPlain(values [][]byte, sink *bytestream.Stream) error {
	for _, v := range values {
		if err := sink.WriteBytes(v); err != nil {
			return err
		}
	}
	return nil
}

func DecodeBytesPlain(r *bytestream.Reader, count int) ([][]byte, error) {
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		b, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
