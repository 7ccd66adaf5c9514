package tsfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/tsfile-go/tsfile/internal/bloomfilter"
	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/chunkio"
	"github.com/tsfile-go/tsfile/internal/config"
	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
	"github.com/tsfile-go/tsfile/internal/metaindex"
	"github.com/tsfile-go/tsfile/memtable"
	"github.com/tsfile-go/tsfile/tablet"
)

// bloomKey is the (device, measurement) membership key spec.md §4.4
// filters on, joined the same way RenderDeviceID separates tuple parts
// so the reader can rebuild it without a shared struct.
func bloomKey(deviceID, measurement string) string {
	return deviceID + "." + measurement
}

// writeBloomFilter builds one filter over every (device, measurement)
// pair actually written across all tables and serializes it to sink.
func writeBloomFilter(sink *bytestream.Stream, tables map[string]*tableBuilder) error {
	n := 0
	for _, tbl := range tables {
		for _, dev := range tbl.devices {
			n += len(dev.order)
		}
	}
	if n == 0 {
		n = 1
	}
	f := bloomfilter.NewWithEstimates(n, 0.01)
	for _, tbl := range tables {
		for deviceID, dev := range tbl.devices {
			for _, measurement := range dev.order {
				f.Add(bloomKey(deviceID, measurement))
			}
		}
	}
	return f.Serialize(sink)
}

// deviceEntry accumulates every chunk written so far for one device: a
// TimeseriesIndex per measurement, plus the last timestamp seen so
// AddTimestamp-style ordering can be enforced across separate WriteTable
// calls for the same device (spec.md §4.7's append-only chunk groups).
type deviceEntry struct {
	measurements map[string]*TimeseriesIndex
	order        []string
	lastTime     int64
	hasData      bool
}

func newDeviceEntry() *deviceEntry {
	return &deviceEntry{measurements: make(map[string]*TimeseriesIndex)}
}

func (d *deviceEntry) indexFor(measurement string, dtype fstype.DataType) *TimeseriesIndex {
	idx, ok := d.measurements[measurement]
	if !ok {
		idx = &TimeseriesIndex{Measurement: measurement, DataType: dtype}
		d.measurements[measurement] = idx
		d.order = append(d.order, measurement)
	}
	return idx
}

// tableBuilder tracks one registered table's schema and the devices
// written under it so far.
type tableBuilder struct {
	schema  *TableSchema
	devices map[string]*deviceEntry
}

// Writer streams a TsFile to an io.Writer sink, sealing chunks as soon as
// each WriteTable call supplies them rather than buffering the whole file
// (spec.md §4.7's accumulate-then-flush model, collapsed here since the
// sink's length is known incrementally: every structure is built into a
// small temporary bytestream.Stream first, whose length becomes known
// before anything reaches the sink, so there is never a need to seek
// back and patch a length field the way sst/writer.go does).
type Writer struct {
	cfg    config.Config
	sink   io.Writer
	offset uint64

	tableOrder []string
	tables     map[string]*tableBuilder

	closed bool
}

// NewWriter opens a new TsFile writer over sink, writing the leading
// magic immediately.
func NewWriter(sink io.Writer, opts ...Option) (*Writer, error) {
	cfg := config.Default()
	for _, o := range opts {
		o(&cfg)
	}
	w := &Writer{
		cfg:    cfg,
		sink:   sink,
		tables: make(map[string]*tableBuilder),
	}
	if err := w.writeRaw(Magic[:]); err != nil {
		return nil, fmt.Errorf("tsfile: write leading magic: %w", err)
	}
	return w, nil
}

func (w *Writer) writeRaw(b []byte) error {
	n, err := w.sink.Write(b)
	w.offset += uint64(n)
	if err != nil {
		return err
	}
	return nil
}

// RegisterTable declares a table's schema before any rows can be written
// to it. Re-registering the same name returns ErrAlreadyExist.
func (w *Writer) RegisterTable(schema *TableSchema) error {
	if w.closed {
		return fmt.Errorf("tsfile: writer closed: %w", errs.ErrInvalidArg)
	}
	if _, exists := w.tables[schema.Name]; exists {
		return fmt.Errorf("tsfile: table %q: %w", schema.Name, errs.ErrAlreadyExist)
	}
	w.tableOrder = append(w.tableOrder, schema.Name)
	w.tables[schema.Name] = &tableBuilder{schema: schema, devices: make(map[string]*deviceEntry)}
	return nil
}

func schemaMatches(want []ColumnSchema, got []ColumnSchema) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i].Name != got[i].Name || want[i].Type != got[i].Type || want[i].Category != got[i].Category {
			return false
		}
	}
	return true
}

// memoryBudget returns the tighter of the configured chunk-group and
// memory thresholds (spec.md §4.7's memory_threshold, §6's
// chunk_group_size_threshold), or 0 if neither is set.
func (w *Writer) memoryBudget() int64 {
	budget := w.cfg.MemoryThresholdBytes
	if w.cfg.ChunkGroupSizeBytes > 0 && (budget <= 0 || w.cfg.ChunkGroupSizeBytes < budget) {
		budget = w.cfg.ChunkGroupSizeBytes
	}
	return budget
}

func (w *Writer) encodingFor(dtype fstype.DataType) fstype.Encoding {
	switch dtype {
	case fstype.Boolean:
		return w.cfg.BooleanEncoding
	case fstype.Int32, fstype.Date:
		return w.cfg.Int32Encoding
	case fstype.Int64, fstype.Timestamp:
		return w.cfg.Int64Encoding
	case fstype.Float:
		return w.cfg.FloatEncoding
	case fstype.Double:
		return w.cfg.DoubleEncoding
	default:
		return w.cfg.StringEncoding
	}
}

// rowGroup is one contiguous run of tablet rows sharing the same device
// identity tuple.
type rowGroup struct {
	deviceID string
	rows     []int
}

func groupRowsByDevice(tb *tablet.Tablet) ([]rowGroup, error) {
	var groups []rowGroup
	var curID string
	for row := 0; row < tb.RowCount(); row++ {
		parts, err := tb.DeviceID(row)
		if err != nil {
			return nil, err
		}
		id := RenderDeviceID(parts)
		if len(groups) == 0 || id != curID {
			groups = append(groups, rowGroup{deviceID: id})
			curID = id
		}
		groups[len(groups)-1].rows = append(groups[len(groups)-1].rows, row)
	}
	return groups, nil
}

// WriteTable appends every row of tb — which must carry the same schema
// as the table registered under tb.TableName — sealing one chunk per
// FIELD column per contiguous device run. Rows across separate calls for
// the same device must remain non-decreasing in time; a violation
// returns ErrOutOfOrder and leaves the writer's on-disk state untouched
// (validated up front, before any chunk is sealed).
func (w *Writer) WriteTable(tb *tablet.Tablet) error {
	if w.closed {
		return fmt.Errorf("tsfile: writer closed: %w", errs.ErrInvalidArg)
	}
	tbl, ok := w.tables[tb.TableName]
	if !ok {
		return fmt.Errorf("tsfile: table %q: %w", tb.TableName, errs.ErrTableNotExist)
	}
	if !schemaMatches(tbl.schema.Columns, tb.Schema()) {
		return fmt.Errorf("tsfile: tablet schema does not match registered table %q: %w", tb.TableName, errs.ErrInvalidSchema)
	}

	groups, err := groupRowsByDevice(tb)
	if err != nil {
		return err
	}

	// Pre-validate ordering for every group before sealing any chunk, so
	// a rejected write never has partial side effects.
	for _, g := range groups {
		dev, exists := tbl.devices[g.deviceID]
		if !exists || !dev.hasData {
			continue
		}
		first := tb.Time(g.rows[0])
		if first < dev.lastTime {
			return fmt.Errorf("tsfile: device %q: timestamp %d precedes last written %d: %w", g.deviceID, first, dev.lastTime, errs.ErrOutOfOrder)
		}
	}

	for _, g := range groups {
		if err := w.writeDeviceGroup(tbl, tb, g); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeDeviceGroup(tbl *tableBuilder, tb *tablet.Tablet, g rowGroup) error {
	dev, ok := tbl.devices[g.deviceID]
	if !ok {
		dev = newDeviceEntry()
		tbl.devices[g.deviceID] = dev
	}

	buf := bytestream.New()
	if err := chunkio.WriteChunkGroupHeader(buf, g.deviceID); err != nil {
		return err
	}

	for _, cs := range tbl.schema.Columns {
		if cs.Category == fstype.Tag {
			continue
		}
		cw := chunkio.NewChunkWriter(cs.Name, cs.Type, w.encodingFor(cs.Type), w.cfg.TimeEncoding, w.cfg.DefaultCompression, w.cfg.PageWriterMaxPoints, w.cfg.PageWriterMaxBytes)
		any := false
		budget := w.memoryBudget()
		for _, row := range g.rows {
			v, err := tb.GetValue(row, cs.Name)
			if err != nil {
				return err
			}
			if v == nil {
				continue
			}
			if err := cw.Write(tb.Time(row), v); err != nil {
				return err
			}
			any = true
			if budget > 0 && int64(buf.Len()+cw.PendingBytes()) >= budget {
				if err := cw.FlushPendingPage(); err != nil {
					return err
				}
			}
		}
		if !any {
			continue
		}
		chunkOffset := w.offset + uint64(buf.Len())
		meta, err := cw.SealChunk(buf, chunkOffset)
		if err != nil {
			return fmt.Errorf("tsfile: seal chunk %q for device %q: %w", cs.Name, g.deviceID, err)
		}
		tsIdx := dev.indexFor(cs.Name, cs.Type)
		tsIdx.ChunkMetas = append(tsIdx.ChunkMetas, meta)
	}

	if err := w.writeRaw(buf.Bytes()); err != nil {
		return fmt.Errorf("tsfile: write chunk group for device %q: %w", g.deviceID, err)
	}

	dev.hasData = true
	dev.lastTime = tb.Time(g.rows[len(g.rows)-1])
	return nil
}

// WriteTablet is an alias of WriteTable: the flattened device-group model
// here collapses the source's separate path-structured tablet variant
// into the one table-oriented entry point.
func (w *Writer) WriteTablet(tb *tablet.Tablet) error { return w.WriteTable(tb) }

// WriteRecord appends a single-row record.
func (w *Writer) WriteRecord(rec *tablet.TsRecord) error {
	return w.WriteTable(rec.Tablet)
}

// Flush is a no-op: WriteTable already seals and writes every chunk it is
// given immediately, so there is never buffered chunk data to push out
// early. Kept so callers porting code that calls flush between writes
// don't need special-casing.
func (w *Writer) Flush() error { return nil }

// Close writes the metadata index, table-schema table, bloom filter, and
// trailing magic, then marks the writer unusable for further writes.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	sort.Strings(w.tableOrder)

	entries := make([]tableSchemaEntry, 0, len(w.tableOrder))
	for _, name := range w.tableOrder {
		tbl := w.tables[name]
		rootOffset, err := w.writeTableIndex(tbl)
		if err != nil {
			return fmt.Errorf("tsfile: build index for table %q: %w", name, err)
		}

		cols := make([]schemaColumnWire, len(tbl.schema.Columns))
		for i, c := range tbl.schema.Columns {
			cols[i] = schemaColumnWire{
				Name:        c.Name,
				Type:        c.Type,
				Category:    c.Category,
				Encoding:    w.encodingFor(c.Type),
				Compression: w.cfg.DefaultCompression,
			}
		}
		entries = append(entries, tableSchemaEntry{Name: name, Columns: cols, RootOffset: rootOffset})
	}

	footer := bytestream.New()
	footerOffset := w.offset
	// The time column's encoding is a per-writer setting (spec.md §6's
	// Configuration table), not per-chunk, so one byte here is enough for
	// every chunk in the file to be decoded consistently on open.
	if err := footer.WriteU8(uint8(w.cfg.TimeEncoding)); err != nil {
		return fmt.Errorf("tsfile: write time encoding: %w", err)
	}
	if err := writeTableSchemaTable(footer, entries); err != nil {
		return fmt.Errorf("tsfile: write table-schema table: %w", err)
	}
	if err := writeBloomFilter(footer, w.tables); err != nil {
		return fmt.Errorf("tsfile: write bloom filter: %w", err)
	}
	if err := w.writeRaw(footer.Bytes()); err != nil {
		return fmt.Errorf("tsfile: write footer: %w", err)
	}

	footerLength := w.offset - footerOffset
	lenBuf := bytestream.New()
	if err := lenBuf.WriteU32BE(uint32(footerLength)); err != nil {
		return err
	}
	if err := w.writeRaw(lenBuf.Bytes()); err != nil {
		return fmt.Errorf("tsfile: write footer length: %w", err)
	}

	if err := w.writeRaw(Magic[:]); err != nil {
		return fmt.Errorf("tsfile: write trailing magic: %w", err)
	}
	return nil
}

// writeTableIndex writes every device's per-measurement TimeseriesIndex
// list and measurement tree, then the table's device tree, returning the
// device tree's root offset (0 if the table has no written devices).
func (w *Writer) writeTableIndex(tbl *tableBuilder) (uint64, error) {
	if len(tbl.devices) == 0 {
		return 0, nil
	}

	deviceKeys := memtable.NewSkipListMemtable[string, uint64]()
	deviceNames := make([]string, 0, len(tbl.devices))
	for name := range tbl.devices {
		deviceNames = append(deviceNames, name)
	}
	sort.Strings(deviceNames)

	for _, deviceName := range deviceNames {
		dev := tbl.devices[deviceName]

		measurementKeys := memtable.NewSkipListMemtable[string, uint64]()
		for _, measurement := range dev.order {
			idx := dev.measurements[measurement]
			buf := bytestream.New()
			offset := w.offset + uint64(buf.Len())
			if err := writeTimeseriesIndex(buf, *idx); err != nil {
				return 0, err
			}
			if err := w.writeRaw(buf.Bytes()); err != nil {
				return 0, err
			}
			measurementKeys.Put(measurement, offset)
		}

		leafBuf := bytestream.New()
		leafBaseOffset := w.offset
		root, err := metaindex.BuildTree(leafBuf, leafBaseOffset, metaindex.SortedEntries(measurementKeys), w.cfg.MaxDegreeOfIndexNode)
		if err != nil {
			return 0, fmt.Errorf("tsfile: build measurement tree for device %q: %w", deviceName, err)
		}
		if err := w.writeRaw(leafBuf.Bytes()); err != nil {
			return 0, err
		}
		deviceKeys.Put(deviceName, root)
	}

	treeBuf := bytestream.New()
	treeBaseOffset := w.offset
	root, err := metaindex.BuildTree(treeBuf, treeBaseOffset, metaindex.SortedEntries(deviceKeys), w.cfg.MaxDegreeOfIndexNode)
	if err != nil {
		return 0, fmt.Errorf("tsfile: build device tree: %w", err)
	}
	if err := w.writeRaw(treeBuf.Bytes()); err != nil {
		return 0, err
	}
	return root, nil
}
