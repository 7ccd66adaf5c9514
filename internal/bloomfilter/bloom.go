// Package bloomfilter implements the Murmur128-based membership filter
// over (device, measurement) keys described in spec.md §4.4.
//
// Wire format: varint m, varint k, raw bit-array bytes (LSB of byte 0 is
// bit 0). Structurally grounded on sst/writer.go's bloom-filter section
// (a {params, bit-array} block living in a larger footer), but the
// teacher's own dependency, github.com/bits-and-blooms/bloom/v3, cannot
// produce this exact wire format or dual-seed Murmur3-128 hash split — see
// DESIGN.md. We use its lower-level dependency, bits-and-blooms/bitset,
// directly as the backing bit array, and github.com/spaolacci/murmur3 (from
// perkeep-perkeep) for the hash.
package bloomfilter

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/spaolacci/murmur3"

	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// seeds for the two 64-bit Murmur3-128 halves h1, h2 (spec.md §4.4).
const (
	seed1 = uint32(0x9747b28c)
	seed2 = uint32(0xc2b2ae35)
)

// Filter is a Bloom filter sized from an expected entry count and target
// false-positive rate.
type Filter struct {
	m    uint
	k    uint
	bits *bitset.BitSet
}

// NewWithEstimates sizes a filter for n expected entries at false-positive
// rate epsilon, per spec.md §4.4:
//
//	m = ceil(-n*ln(eps) / (ln 2)^2)
//	k = round((m/n)*ln 2)
func NewWithEstimates(n int, epsilon float64) *Filter {
	if n <= 0 {
		n = 1
	}
	if epsilon <= 0 || epsilon >= 1 {
		epsilon = 0.01
	}
	m := uint(math.Ceil(-float64(n) * math.Log(epsilon) / (math.Ln2 * math.Ln2)))
	if m == 0 {
		m = 1
	}
	k := uint(math.Round((float64(m) / float64(n)) * math.Ln2))
	if k == 0 {
		k = 1
	}
	return &Filter{m: m, k: k, bits: bitset.New(m)}
}

func (f *Filter) hashes(key string) (h1, h2 uint64) {
	a, _ := murmur3.Sum128WithSeed([]byte(key), seed1)
	b, _ := murmur3.Sum128WithSeed([]byte(key), seed2)
	return a, b
}

func (f *Filter) positions(key string) []uint {
	h1, h2 := f.hashes(key)
	pos := make([]uint, f.k)
	for i := uint(0); i < f.k; i++ {
		pos[i] = uint((h1 + uint64(i)*h2) % uint64(f.m))
	}
	return pos
}

// Add records key as present.
func (f *Filter) Add(key string) {
	for _, p := range f.positions(key) {
		f.bits.Set(p)
	}
}

// MightContain reports whether key may have been added. False positives
// are allowed; false negatives are never produced for a key that was
// actually Added (spec.md §3 invariant, §8 no-false-negatives property).
func (f *Filter) MightContain(key string) bool {
	for _, p := range f.positions(key) {
		if !f.bits.Test(p) {
			return false
		}
	}
	return true
}

// Serialize writes the wire format: varint m, varint k, raw bits.
func (f *Filter) Serialize(sink *bytestream.Stream) error {
	if err := sink.WriteVarint(uint64(f.m)); err != nil {
		return err
	}
	if err := sink.WriteVarint(uint64(f.k)); err != nil {
		return err
	}
	nbytes := (f.m + 7) / 8
	buf := make([]byte, nbytes)
	for i := uint(0); i < f.m; i++ {
		if f.bits.Test(i) {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	_, err := sink.WriteRaw(buf)
	return err
}

// Deserialize parses the wire format produced by Serialize.
func Deserialize(r *bytestream.Reader) (*Filter, error) {
	mU, err := r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("bloomfilter: read m: %w", err)
	}
	kU, err := r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("bloomfilter: read k: %w", err)
	}
	m := uint(mU)
	k := uint(kU)

	nbytes := (m + 7) / 8
	buf, err := r.ReadRaw(int(nbytes))
	if err != nil {
		return nil, fmt.Errorf("bloomfilter: read bits: %w", err)
	}

	bits := bitset.New(m)
	for i := uint(0); i < m; i++ {
		if buf[i/8]&(1<<(i%8)) != 0 {
			bits.Set(i)
		}
	}

	return &Filter{m: m, k: k, bits: bits}, nil
}

// M returns the bit-array size.
func (f *Filter) M() uint { return f.m }

// K returns the number of hash functions.
func (f *Filter) K() uint { return f.k }
