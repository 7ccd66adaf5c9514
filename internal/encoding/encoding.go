// Package encoding implements the per-(type, encoding) codec suite of
// spec.md §4.3: PLAIN, DICTIONARY, RLE, TS_2DIFF, GORILLA, SPRINTZ, ZIGZAG.
//
// Every integer-family encoder/decoder is built once, over int64, and
// reused for INT32/DATE by widening/narrowing at the call site — the
// algorithms (RLE run detection, TS_2DIFF delta-of-delta, Gorilla XOR,
// Sprintz block deltas) are identical regardless of the source width, and
// FLOAT/DOUBLE reuse the same int64 machinery over their IEEE-754 bit
// patterns for GORILLA/SPRINTZ/TS_2DIFF, exactly as spec.md §4.3 states for
// GORILLA ("Floats: same scheme over IEEE-754 bit patterns") and by
// extension for the other integer-domain encodings applied to floats.
package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Int64Encoder accepts one value at a time and flushes the encoded stream
// to sink on Flush, per spec.md §4.3's encoder contract.
type Int64Encoder interface {
	Encode(v int64) error
	Flush(sink *bytestream.Stream) error
}

// Int64Decoder exposes has-next/read over an already-framed byte source.
type Int64Decoder interface {
	HasNext() bool
	Read() (int64, error)
}

// NewInt64Encoder returns the encoder for the given encoding tag.
func NewInt64Encoder(e fstype.Encoding) (Int64Encoder, error) {
	switch e {
	case fstype.Plain:
		return newPlainInt64Encoder(), nil
	case fstype.Zigzag:
		return newZigzagInt64Encoder(), nil
	case fstype.RLE:
		return newRLEInt64Encoder(), nil
	case fstype.TS2Diff:
		return newTS2DiffInt64Encoder(), nil
	case fstype.Gorilla:
		return newGorillaInt64Encoder(), nil
	case fstype.Sprintz:
		return newSprintzInt64Encoder(), nil
	default:
		return nil, fmt.Errorf("encoding: unsupported integer encoding %s", e)
	}
}

// NewInt64Decoder returns the decoder for the given encoding tag, reading
// count values from r.
func NewInt64Decoder(e fstype.Encoding, r *bytestream.Reader, count int) (Int64Decoder, error) {
	switch e {
	case fstype.Plain:
		return newPlainInt64Decoder(r, count), nil
	case fstype.Zigzag:
		return newZigzagInt64Decoder(r, count), nil
	case fstype.RLE:
		return newRLEInt64Decoder(r, count), nil
	case fstype.TS2Diff:
		return newTS2DiffInt64Decoder(r, count), nil
	case fstype.Gorilla:
		return newGorillaInt64Decoder(r, count), nil
	case fstype.Sprintz:
		return newSprintzInt64Decoder(r, count), nil
	default:
		return nil, fmt.Errorf("encoding: unsupported integer encoding %s", e)
	}
}
