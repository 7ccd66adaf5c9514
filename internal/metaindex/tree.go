// Package metaindex builds and queries the two-level, B+-tree-like
// metadata index of spec.md §4.7 step 2: per table, a root (possibly
// split into several internal levels) over device IDs, each device
// leading to a leaf holding per-measurement offsets into the
// TimeseriesIndex list. Bulk-loaded bottom-up from an already-sorted key
// order, which the file writer obtains by draining a
// memtable.SkipList[string, uint64] — adapted here from
// memtable/skip_list.go as the ordered accumulator so device/measurement
// names collected from Go maps come out in the lexical order the index
// (and the reader's device-lex row ordering) requires.
package metaindex

import (
	"fmt"

	"github.com/tsfile-go/tsfile/internal/bytestream"
)

// NodeLevel tags whether a node is a leaf (holds real offsets) or
// internal (holds child-node offsets), per spec.md §4.7.
type NodeLevel uint8

const (
	Leaf NodeLevel = iota
	Internal
)

// Entry is one (separator key, offset) pair inside a node.
type Entry struct {
	Key    string
	Offset uint64
}

// Node is a parsed leaf or internal node.
type Node struct {
	Level   NodeLevel
	Entries []Entry
}

func writeNode(sink *bytestream.Stream, level NodeLevel, entries []Entry) error {
	if err := sink.WriteU8(uint8(level)); err != nil {
		return err
	}
	if err := sink.WriteVarint(uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := sink.WriteBytes([]byte(e.Key)); err != nil {
			return err
		}
		if err := sink.WriteU64BE(e.Offset); err != nil {
			return err
		}
	}
	return nil
}

// ReadNode parses one node starting at r's current position.
func ReadNode(r *bytestream.Reader) (Node, error) {
	lvl, err := r.ReadU8()
	if err != nil {
		return Node{}, err
	}
	count, err := r.ReadVarint()
	if err != nil {
		return Node{}, err
	}
	entries := make([]Entry, count)
	for i := range entries {
		key, err := r.ReadBytes()
		if err != nil {
			return Node{}, err
		}
		offset, err := r.ReadU64BE()
		if err != nil {
			return Node{}, err
		}
		entries[i] = Entry{Key: string(key), Offset: offset}
	}
	return Node{Level: NodeLevel(lvl), Entries: entries}, nil
}

// ReadNodeAt parses the node at absolute file offset off within data.
func ReadNodeAt(data []byte, off uint64) (Node, error) {
	if off >= uint64(len(data)) {
		return Node{}, fmt.Errorf("metaindex: offset %d out of range", off)
	}
	return ReadNode(bytestream.NewReader(data[off:]))
}

func chunkEntries(entries []Entry, maxDegree int) [][]Entry {
	var groups [][]Entry
	for len(entries) > 0 {
		n := maxDegree
		if n > len(entries) {
			n = len(entries)
		}
		groups = append(groups, entries[:n])
		entries = entries[n:]
	}
	return groups
}

// BuildTree bulk-loads leafEntries (already sorted ascending by Key) into
// a multi-level tree, writing leaves first, then each internal level,
// then the root, onto sink. baseOffset is the absolute file offset that
// corresponds to sink's current write position (byte 0 of what's about
// to be written). Returns the root node's absolute file offset.
func BuildTree(sink *bytestream.Stream, baseOffset uint64, leafEntries []Entry, maxDegree int) (uint64, error) {
	if len(leafEntries) == 0 {
		return 0, fmt.Errorf("metaindex: cannot build a tree from zero entries")
	}
	if maxDegree < 2 {
		maxDegree = 2
	}

	level := Leaf
	current := leafEntries
	for {
		groups := chunkEntries(current, maxDegree)
		next := make([]Entry, 0, len(groups))
		for _, g := range groups {
			offset := baseOffset + uint64(sink.Len())
			if err := writeNode(sink, level, g); err != nil {
				return 0, fmt.Errorf("metaindex: write node: %w", err)
			}
			next = append(next, Entry{Key: g[0].Key, Offset: offset})
		}
		if len(groups) == 1 {
			return next[0].Offset, nil
		}
		current = next
		level = Internal
	}
}

// Lookup descends from rootOffset looking for key, returning its leaf
// offset. found is false if no matching leaf entry exists.
func Lookup(data []byte, rootOffset uint64, key string) (offset uint64, found bool, err error) {
	cur := rootOffset
	for {
		node, err := ReadNodeAt(data, cur)
		if err != nil {
			return 0, false, err
		}
		if node.Level == Leaf {
			for _, e := range node.Entries {
				if e.Key == key {
					return e.Offset, true, nil
				}
			}
			return 0, false, nil
		}
		idx := -1
		for i, e := range node.Entries {
			if e.Key <= key {
				idx = i
			} else {
				break
			}
		}
		if idx == -1 {
			return 0, false, nil
		}
		cur = node.Entries[idx].Offset
	}
}

// AllLeafEntries walks the whole tree rooted at rootOffset and returns
// every leaf entry in key order, used by the reader to enumerate all
// devices under a table root.
func AllLeafEntries(data []byte, rootOffset uint64) ([]Entry, error) {
	node, err := ReadNodeAt(data, rootOffset)
	if err != nil {
		return nil, err
	}
	if node.Level == Leaf {
		return node.Entries, nil
	}
	var out []Entry
	for _, e := range node.Entries {
		children, err := AllLeafEntries(data, e.Offset)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}
