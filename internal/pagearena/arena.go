// Package pagearena implements the bump allocator described in spec.md
// §4.1: short-lived strings and scratch buffers within a tablet are carved
// out of fixed-size slabs and released all at once on Reset.
//
// Grounded on original_source/tsfile/cpp/src/common/allocator/mem_alloc.cc
// for slab sizing and the module-id-keyed allocation counters, and on
// segmentmanager's rotate-on-overflow shape (here: slabs instead of
// segment files).
package pagearena

import "sync/atomic"

// ModID identifies the subsystem charging an allocation, for the
// process-wide debug counters. Not a correctness feature (spec.md §4.1).
type ModID int

const (
	ModTablet ModID = iota
	ModChunkWriter
	ModBitPacker
	ModMisc
	modCount
)

var allocStats [modCount]struct {
	allocBytes atomic.Int64
	allocCount atomic.Int64
	freeCount  atomic.Int64
}

// AllocStats reports the current alloc/free deltas for a module, for tests
// and diagnostics only.
func AllocStats(m ModID) (allocBytes, allocCount, freeCount int64) {
	s := &allocStats[m]
	return s.allocBytes.Load(), s.allocCount.Load(), s.freeCount.Load()
}

const defaultSlabSize = 4096

// Arena is a bump allocator. Allocations larger than the slab size get
// their own dedicated slab; all other allocations are packed 8-byte
// aligned into the current slab.
type Arena struct {
	modID    ModID
	slabSize int
	slabs    [][]byte
	cur      []byte
	used     int
}

// Init creates an Arena. pageSize of 0 selects the default slab size.
func Init(pageSize int, modID ModID) *Arena {
	if pageSize <= 0 {
		pageSize = defaultSlabSize
	}
	a := &Arena{modID: modID, slabSize: pageSize}
	a.newSlab(pageSize)
	return a
}

func (a *Arena) newSlab(size int) {
	s := make([]byte, size)
	a.slabs = append(a.slabs, s)
	a.cur = s
	a.used = 0
	stats := &allocStats[a.modID]
	stats.allocBytes.Add(int64(size))
	stats.allocCount.Add(1)
}

func align8(n int) int { return (n + 7) &^ 7 }

// Alloc returns n bytes of scratch space, 8-byte aligned. The returned
// slice is only valid until the next Reset.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	if n > a.slabSize {
		// Oversized allocation: dedicated slab, does not become "current".
		s := make([]byte, n)
		a.slabs = append(a.slabs, s)
		stats := &allocStats[a.modID]
		stats.allocBytes.Add(int64(n))
		stats.allocCount.Add(1)
		return s
	}

	start := align8(a.used)
	if start+n > len(a.cur) {
		a.newSlab(a.slabSize)
		start = 0
	}
	out := a.cur[start : start+n]
	a.used = start + n
	return out
}

// AllocString copies s into arena-owned memory and returns it as a string
// header over that memory (interning short-lived tag values, spec.md
// §4.1's stated purpose).
func (a *Arena) AllocString(s string) string {
	buf := a.Alloc(len(s))
	copy(buf, s)
	return string(buf)
}

// Reset releases all slabs. Previously returned slices must not be used
// afterward.
func (a *Arena) Reset() {
	freed := len(a.slabs)
	a.slabs = nil
	a.cur = nil
	a.used = 0
	allocStats[a.modID].freeCount.Add(int64(freed))
	a.newSlab(a.slabSize)
}
