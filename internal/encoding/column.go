package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// EncodeColumnValues dispatches to the typed encoder family for dtype and
// flushes the encoded stream to sink. values holds one native Go value per
// row (bool, int32, int64, float32, float64, or string), never nil — null
// rows are left out of a column's points altogether, and the reader treats
// a timestamp missing from a column as null.
func EncodeColumnValues(dtype fstype.DataType, e fstype.Encoding, values []any, sink *bytestream.Stream) error {
	switch dtype {
	case fstype.Boolean:
		bs := make([]bool, len(values))
		for i, v := range values {
			bs[i] = v.(bool)
		}
		return EncodeBoolPlain(bs, sink)
	case fstype.Int32, fstype.Date:
		vs := make([]int32, len(values))
		for i, v := range values {
			vs[i] = v.(int32)
		}
		return EncodeInt32Values(e, vs, sink)
	case fstype.Int64, fstype.Timestamp:
		vs := make([]int64, len(values))
		for i, v := range values {
			vs[i] = v.(int64)
		}
		return EncodeInt64Values(e, vs, sink)
	case fstype.Float:
		vs := make([]float32, len(values))
		for i, v := range values {
			vs[i] = v.(float32)
		}
		return EncodeFloat32Values(e, vs, sink)
	case fstype.Double:
		vs := make([]float64, len(values))
		for i, v := range values {
			vs[i] = v.(float64)
		}
		return EncodeFloat64Values(e, vs, sink)
	case fstype.String, fstype.Text, fstype.Blob:
		bs := make([][]byte, len(values))
		for i, v := range values {
			bs[i] = []byte(v.(string))
		}
		if e == fstype.Dictionary {
			enc := NewDictionaryBytesEncoder()
			for _, b := range bs {
				if err := enc.Encode(b); err != nil {
					return err
				}
			}
			return enc.Flush(sink)
		}
		return EncodeBytesPlain(bs, sink)
	default:
		return fmt.Errorf("encoding: unsupported data type %s", dtype)
	}
}

// DecodeColumnValues inverts EncodeColumnValues, returning count native Go
// values boxed as any.
func DecodeColumnValues(dtype fstype.DataType, e fstype.Encoding, r *bytestream.Reader, count int) ([]any, error) {
	switch dtype {
	case fstype.Boolean:
		bs, err := DecodeBoolPlain(r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, count)
		for i, v := range bs {
			out[i] = v
		}
		return out, nil
	case fstype.Int32, fstype.Date:
		vs, err := DecodeInt32Values(e, r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = v
		}
		return out, nil
	case fstype.Int64, fstype.Timestamp:
		vs, err := DecodeInt64Values(e, r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = v
		}
		return out, nil
	case fstype.Float:
		vs, err := DecodeFloat32Values(e, r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = v
		}
		return out, nil
	case fstype.Double:
		vs, err := DecodeFloat64Values(e, r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = v
		}
		return out, nil
	case fstype.String, fstype.Text, fstype.Blob:
		if e == fstype.Dictionary {
			dec, err := NewDictionaryBytesDecoder(r)
			if err != nil {
				return nil, err
			}
			out := make([]any, 0, count)
			for dec.HasNext() {
				b, err := dec.Read()
				if err != nil {
					return nil, err
				}
				out = append(out, string(b))
			}
			return out, nil
		}
		bs, err := DecodeBytesPlain(r, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(bs))
		for i, v := range bs {
			out[i] = string(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("encoding: unsupported data type %s", dtype)
	}
}
