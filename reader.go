package tsfile

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tsfile-go/tsfile/internal/bloomfilter"
	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/chunkio"
	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
	"github.com/tsfile-go/tsfile/internal/metaindex"
)

// QueryOrdering selects the row order Query produces. Only the default,
// (device_lex, time_asc), is implemented — spec.md §9 left a
// TableQueryOrdering::TIME variant as an open question, and there is no
// global time-merge across devices built yet to support it.
type QueryOrdering uint8

const (
	OrderDeviceLexTimeAsc QueryOrdering = iota
	OrderTimeAsc
)

// Reader opens an on-disk TsFile for querying. The whole file is held in
// memory: the metadata index's node offsets are absolute file offsets
// into one contiguous byte slice (metaindex.ReadNodeAt's contract), so a
// streaming os.File reader would need its own page cache to answer
// random-offset lookups anyway — reading once up front is simpler and
// was judged acceptable for a format whose writer already holds in
// memory everything it hasn't yet sealed.
type Reader struct {
	data         []byte
	tables       map[string]tableSchemaEntry
	timeEncoding fstype.Encoding
	bloom        *bloomfilter.Filter
}

// Open parses path's footer and validates the leading and trailing magic.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tsfile: open %q: %w", path, errs.ErrOpenErr)
	}
	return openBytes(data)
}

func openBytes(data []byte) (*Reader, error) {
	const trailerSize = 4 // footer_length, big-endian u32
	minSize := 2*len(Magic) + trailerSize
	if len(data) < minSize {
		return nil, fmt.Errorf("tsfile: file too small (%d bytes): %w", len(data), errs.ErrInvalidFile)
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, fmt.Errorf("tsfile: bad leading magic: %w", errs.ErrInvalidFile)
	}
	if !bytes.Equal(data[len(data)-len(Magic):], Magic[:]) {
		return nil, fmt.Errorf("tsfile: bad trailing magic: %w", errs.ErrInvalidFile)
	}

	lenStart := len(data) - len(Magic) - trailerSize
	lenReader := bytestream.NewReader(data[lenStart : lenStart+trailerSize])
	footerLength32, err := lenReader.ReadU32BE()
	if err != nil {
		return nil, fmt.Errorf("tsfile: read footer length: %w", err)
	}
	footerLength := int(footerLength32)

	footerStart := lenStart - footerLength
	if footerStart < len(Magic) || footerStart > lenStart {
		return nil, fmt.Errorf("tsfile: footer length %d out of range: %w", footerLength, errs.ErrInvalidFile)
	}

	r := bytestream.NewReader(data[footerStart:lenStart])
	timeEncByte, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("tsfile: read time encoding: %w", err)
	}
	entries, err := readTableSchemaTable(r)
	if err != nil {
		return nil, fmt.Errorf("tsfile: read table-schema table: %w", err)
	}
	bloom, err := bloomfilter.Deserialize(r)
	if err != nil {
		return nil, fmt.Errorf("tsfile: read bloom filter: %w", err)
	}

	tables := make(map[string]tableSchemaEntry, len(entries))
	for _, e := range entries {
		tables[e.Name] = e
	}

	return &Reader{
		data:         data,
		tables:       tables,
		timeEncoding: fstype.Encoding(timeEncByte),
		bloom:        bloom,
	}, nil
}

// TableNames returns every registered table, in no particular order.
func (r *Reader) TableNames() []string {
	names := make([]string, 0, len(r.tables))
	for n := range r.tables {
		names = append(names, n)
	}
	return names
}

// TableSchema returns the column schema for table, as it was registered
// by the writer.
func (r *Reader) TableSchema(table string) (*TableSchema, error) {
	entry, ok := r.tables[table]
	if !ok {
		return nil, fmt.Errorf("tsfile: table %q: %w", table, errs.ErrTableNotExist)
	}
	cols := make([]ColumnSchema, len(entry.Columns))
	for i, c := range entry.Columns {
		cols[i] = ColumnSchema{Name: c.Name, Type: c.Type, Category: c.Category}
	}
	return &TableSchema{Name: entry.Name, Columns: cols}, nil
}

// DeviceCount returns the number of distinct devices written under table.
func (r *Reader) DeviceCount(table string) (int, error) {
	entry, ok := r.tables[table]
	if !ok {
		return 0, fmt.Errorf("tsfile: table %q: %w", table, errs.ErrTableNotExist)
	}
	if entry.RootOffset == 0 {
		return 0, nil
	}
	devices, err := metaindex.AllLeafEntries(r.data, entry.RootOffset)
	if err != nil {
		return 0, fmt.Errorf("tsfile: device count for %q: %w", table, err)
	}
	return len(devices), nil
}

// BloomFilterM and BloomFilterK return the bit-array size and hash count
// of the file's (device, measurement) bloom filter (spec.md §4.4).
func (r *Reader) BloomFilterM() uint { return r.bloom.M() }
func (r *Reader) BloomFilterK() uint { return r.bloom.K() }

// Query runs a time-range scan over table, returning the rows whose
// timestamp falls in [t0, t1] for the selected columns. columns selects
// which schema columns to return, in the given order; nil means every
// column in schema order. Rows are emitted in (device_lex, time_asc)
// order unless an unsupported ordering is requested.
func (r *Reader) Query(table string, columns []string, t0, t1 int64, ordering ...QueryOrdering) (*ResultSet, error) {
	if len(ordering) > 0 && ordering[0] != OrderDeviceLexTimeAsc {
		return nil, fmt.Errorf("tsfile: ordering %d: %w", ordering[0], errs.ErrUnsupportedOrder)
	}

	entry, ok := r.tables[table]
	if !ok {
		return nil, fmt.Errorf("tsfile: table %q: %w", table, errs.ErrTableNotExist)
	}

	schemaCols := make([]ColumnSchema, len(entry.Columns))
	for i, c := range entry.Columns {
		schemaCols[i] = ColumnSchema{Name: c.Name, Type: c.Type, Category: c.Category}
	}

	selected := schemaCols
	if len(columns) > 0 {
		selected = make([]ColumnSchema, 0, len(columns))
		for _, name := range columns {
			col, found := findColumn(schemaCols, name)
			if !found {
				return nil, fmt.Errorf("tsfile: column %q: %w", name, errs.ErrColumnNotExist)
			}
			selected = append(selected, col)
		}
	}

	var rows []Row
	if entry.RootOffset != 0 {
		devices, err := metaindex.AllLeafEntries(r.data, entry.RootOffset)
		if err != nil {
			return nil, fmt.Errorf("tsfile: read device tree for %q: %w", table, err)
		}
		tagCols := tagColumnsOf(schemaCols)
		for _, de := range devices {
			deviceRows, err := r.queryDevice(de, tagCols, selected, t0, t1)
			if err != nil {
				return nil, err
			}
			rows = append(rows, deviceRows...)
		}
	}

	return &ResultSet{columns: selected, rows: rows, pos: -1}, nil
}

func findColumn(cols []ColumnSchema, name string) (ColumnSchema, bool) {
	for _, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

func tagColumnsOf(cols []ColumnSchema) []ColumnSchema {
	var out []ColumnSchema
	for _, c := range cols {
		if c.Category == fstype.Tag {
			out = append(out, c)
		}
	}
	return out
}

// splitDeviceTags recovers the tag-value tuple RenderDeviceID flattened
// into de.Key: table name, then one "."-separated segment per tag
// column, "null" meaning a null tag. A real tag value containing "." or
// literally equal to "null" is ambiguous here the same way
// RenderDeviceID's encoding is — a known limitation of the flattened
// device-id representation, not something the reader can resolve without
// a richer key format.
func splitDeviceTags(deviceID string, numTags int) []*string {
	parts := strings.SplitN(deviceID, ".", numTags+1)
	tags := make([]*string, numTags)
	for i := 0; i < numTags; i++ {
		if i+1 >= len(parts) {
			break
		}
		v := parts[i+1]
		if v == "null" {
			continue
		}
		tags[i] = &v
	}
	return tags
}

func tagValueFor(col ColumnSchema, tagCols []ColumnSchema, tagValues []*string) any {
	for i, tc := range tagCols {
		if tc.Name == col.Name {
			if tagValues[i] == nil {
				return nil
			}
			return *tagValues[i]
		}
	}
	return nil
}

type fieldColumnData struct {
	col    ColumnSchema
	times  []int64
	values []any
}

// queryDevice decodes every requested field column's chunks for one
// device, then merges them by timestamp to reconstruct rows — the
// read-side half of spec.md §4.8's sparse per-column chunk design: a
// timestamp with no point in a column's chunk means that column is null
// at that row.
func (r *Reader) queryDevice(de metaindex.Entry, tagCols, selected []ColumnSchema, t0, t1 int64) ([]Row, error) {
	tagValues := splitDeviceTags(de.Key, len(tagCols))

	var fields []fieldColumnData
	timeSet := make(map[int64]struct{})

	for _, col := range selected {
		if col.Category == fstype.Tag {
			continue
		}
		if r.bloom != nil && !r.bloom.MightContain(bloomKey(de.Key, col.Name)) {
			continue
		}
		idxOffset, found, err := metaindex.Lookup(r.data, de.Offset, col.Name)
		if err != nil {
			return nil, fmt.Errorf("tsfile: lookup measurement %q: %w", col.Name, err)
		}
		if !found {
			continue
		}
		tsIdx, err := readTimeseriesIndex(bytestream.NewReader(r.data[idxOffset:]))
		if err != nil {
			return nil, fmt.Errorf("tsfile: read timeseries index %q: %w", col.Name, err)
		}

		fd := fieldColumnData{col: col}
		for _, meta := range tsIdx.ChunkMetas {
			if meta.Stats.EndT < t0 || meta.Stats.StartT > t1 {
				continue
			}
			decoded, err := chunkio.ReadChunk(bytestream.NewReader(r.data[meta.Offset:]), r.timeEncoding)
			if err != nil {
				return nil, fmt.Errorf("tsfile: decode chunk %q on device %q: %w", col.Name, de.Key, errs.ErrCorruptChunk)
			}
			for i, t := range decoded.Times {
				if t < t0 || t > t1 {
					continue
				}
				fd.times = append(fd.times, t)
				fd.values = append(fd.values, decoded.Values[i])
			}
		}
		for _, t := range fd.times {
			timeSet[t] = struct{}{}
		}
		fields = append(fields, fd)
	}

	if len(fields) == 0 {
		return nil, nil
	}

	allTimes := make([]int64, 0, len(timeSet))
	for t := range timeSet {
		allTimes = append(allTimes, t)
	}
	sort.Slice(allTimes, func(i, j int) bool { return allTimes[i] < allTimes[j] })

	byTime := make([]map[int64]any, len(fields))
	for i, fd := range fields {
		m := make(map[int64]any, len(fd.times))
		for j, t := range fd.times {
			m[t] = fd.values[j]
		}
		byTime[i] = m
	}

	rows := make([]Row, len(allTimes))
	for i, t := range allTimes {
		rows[i].Time = t
		rows[i].Values = make([]any, len(selected))
		fi := 0
		for ci, col := range selected {
			if col.Category == fstype.Tag {
				rows[i].Values[ci] = tagValueFor(col, tagCols, tagValues)
				continue
			}
			rows[i].Values[ci] = byTime[fi][t]
			fi++
		}
	}
	return rows, nil
}
