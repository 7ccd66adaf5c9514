package metaindex

import "github.com/tsfile-go/tsfile/memtable"

// SortedEntries drains m in ascending key order into a leaf-entry slice
// ready for BuildTree. m is typically built up from a Go map keyed by
// device or measurement name (insertion order is never reliable); feeding
// the pairs through a skip list before bulk-loading the tree is how the
// writer gets a deterministic, sorted leaf sequence.
func SortedEntries(m *memtable.SkipList[string, uint64]) []Entry {
	var out []Entry
	for rec := range m.Iterator() {
		out = append(out, Entry{Key: rec.Key, Offset: rec.Value})
	}
	return out
}
