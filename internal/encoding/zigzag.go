package encoding

import "github.com/tsfile-go/tsfile/internal/bytestream"

// ZIGZAG: varint of the zigzag-encoded value, no further framing
// (spec.md §4.3). Byte-identical to the PLAIN integer encoder; kept as a
// distinct encoder/decoder pair because spec.md lists ZIGZAG as its own
// legal encoding tag for INT32/INT64, independent of PLAIN's tag value in
// the chunk header.

type zigzagInt64Encoder struct{ *plainInt64Encoder }

func newZigzagInt64Encoder() *zigzagInt64Encoder {
	return &zigzagInt64Encoder{newPlainInt64Encoder()}
}

type zigzagInt64Decoder struct{ *plainInt64Decoder }

func newZigzagInt64Decoder(r *bytestream.Reader, count int) *zigzagInt64Decoder {
	return &zigzagInt64Decoder{newPlainInt64Decoder(r, count)}
}
