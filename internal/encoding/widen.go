package encoding

import (
	"math"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// EncodeInt64Values drives an Int64Encoder over a full slice and flushes it.
func EncodeInt64Values(e fstype.Encoding, values []int64, sink *bytestream.Stream) error {
	enc, err := NewInt64Encoder(e)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return enc.Flush(sink)
}

// DecodeInt64Values decodes count values.
func DecodeInt64Values(e fstype.Encoding, r *bytestream.Reader, count int) ([]int64, error) {
	dec, err := NewInt64Decoder(e, r, count)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, count)
	for dec.HasNext() && len(out) < count {
		v, err := dec.Read()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeInt32Values widens int32 values to int64 and reuses the int64
// codec family (spec.md §4.3: INT32's legal encodings mirror INT64's).
func EncodeInt32Values(e fstype.Encoding, values []int32, sink *bytestream.Stream) error {
	widened := make([]int64, len(values))
	for i, v := range values {
		widened[i] = int64(v)
	}
	return EncodeInt64Values(e, widened, sink)
}

func DecodeInt32Values(e fstype.Encoding, r *bytestream.Reader, count int) ([]int32, error) {
	wide, err := DecodeInt64Values(e, r, count)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(wide))
	for i, v := range wide {
		out[i] = int32(v)
	}
	return out, nil
}

// EncodeFloat32Values reinterprets each float32's IEEE-754 bit pattern as
// an int64 and reuses the integer-domain encodings, per spec.md §4.3's
// "Floats: same scheme over IEEE-754 bit patterns" (stated explicitly for
// GORILLA, extended here to SPRINTZ/TS_2DIFF).
func EncodeFloat32Values(e fstype.Encoding, values []float32, sink *bytestream.Stream) error {
	if e == fstype.Plain {
		return EncodeFloat32Plain(values, sink)
	}
	bitsVals := make([]int64, len(values))
	for i, v := range values {
		bitsVals[i] = int64(math.Float32bits(v))
	}
	return EncodeInt64Values(e, bitsVals, sink)
}

func DecodeFloat32Values(e fstype.Encoding, r *bytestream.Reader, count int) ([]float32, error) {
	if e == fstype.Plain {
		return DecodeFloat32Plain(r, count)
	}
	wide, err := DecodeInt64Values(e, r, count)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(wide))
	for i, v := range wide {
		out[i] = math.Float32frombits(uint32(v))
	}
	return out, nil
}

func EncodeFloat64Values(e fstype.Encoding, values []float64, sink *bytestream.Stream) error {
	if e == fstype.Plain {
		return EncodeFloat64Plain(values, sink)
	}
	bitsVals := make([]int64, len(values))
	for i, v := range values {
		bitsVals[i] = int64(math.Float64bits(v))
	}
	return EncodeInt64Values(e, bitsVals, sink)
}

func DecodeFloat64Values(e fstype.Encoding, r *bytestream.Reader, count int) ([]float64, error) {
	if e == fstype.Plain {
		return DecodeFloat64Plain(r, count)
	}
	wide, err := DecodeInt64Values(e, r, count)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(wide))
	for i, v := range wide {
		out[i] = math.Float64frombits(uint64(v))
	}
	return out, nil
}
