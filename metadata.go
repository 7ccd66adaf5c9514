package tsfile

import (
	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/chunkio"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

func writeChunkMeta(sink *bytestream.Stream, dtype fstype.DataType, m chunkio.ChunkMeta) error {
	if err := sink.WriteU64BE(m.Offset); err != nil {
		return err
	}
	if err := sink.WriteU8(uint8(m.Encoding)); err != nil {
		return err
	}
	if err := sink.WriteU8(uint8(m.Compression)); err != nil {
		return err
	}
	if err := sink.WriteVarint(uint64(m.NumPages)); err != nil {
		return err
	}
	return chunkio.WriteStats(sink, dtype, m.Stats)
}

func readChunkMeta(r *bytestream.Reader, dtype fstype.DataType) (chunkio.ChunkMeta, error) {
	var m chunkio.ChunkMeta
	var err error
	if m.Offset, err = r.ReadU64BE(); err != nil {
		return m, err
	}
	eb, err := r.ReadU8()
	if err != nil {
		return m, err
	}
	m.Encoding = fstype.Encoding(eb)
	cb, err := r.ReadU8()
	if err != nil {
		return m, err
	}
	m.Compression = fstype.Compression(cb)
	np, err := r.ReadVarint()
	if err != nil {
		return m, err
	}
	m.NumPages = int(np)
	m.DataType = dtype
	if m.Stats, err = chunkio.ReadStats(r, dtype); err != nil {
		return m, err
	}
	return m, nil
}

// TimeseriesIndex groups every chunk written for one (device, measurement)
// column across however many write_table calls touched it (spec.md §4.7
// step 1).
type TimeseriesIndex struct {
	Measurement string
	DataType    fstype.DataType
	ChunkMetas  []chunkio.ChunkMeta
}

func writeTimeseriesIndex(sink *bytestream.Stream, idx TimeseriesIndex) error {
	if err := sink.WriteBytes([]byte(idx.Measurement)); err != nil {
		return err
	}
	if err := sink.WriteU8(uint8(idx.DataType)); err != nil {
		return err
	}
	if err := sink.WriteVarint(uint64(len(idx.ChunkMetas))); err != nil {
		return err
	}
	for _, m := range idx.ChunkMetas {
		if err := writeChunkMeta(sink, idx.DataType, m); err != nil {
			return err
		}
	}
	return nil
}

func readTimeseriesIndex(r *bytestream.Reader) (TimeseriesIndex, error) {
	var idx TimeseriesIndex
	nameBytes, err := r.ReadBytes()
	if err != nil {
		return idx, err
	}
	idx.Measurement = string(nameBytes)
	dtByte, err := r.ReadU8()
	if err != nil {
		return idx, err
	}
	idx.DataType = fstype.DataType(dtByte)
	count, err := r.ReadVarint()
	if err != nil {
		return idx, err
	}
	idx.ChunkMetas = make([]chunkio.ChunkMeta, count)
	for i := range idx.ChunkMetas {
		m, err := readChunkMeta(r, idx.DataType)
		if err != nil {
			return idx, err
		}
		idx.ChunkMetas[i] = m
	}
	return idx, nil
}

// schemaColumnWire carries a column's chosen default encoding/compression
// alongside its name/type/category in the table-schema table (spec.md
// §4.7 step 3). Each chunk header still carries its own authoritative
// data_type/encoding/compression; these are the writer's defaults, kept
// for introspection (cmd/tsfiledump) rather than decode correctness.
type schemaColumnWire struct {
	Name        string
	Type        fstype.DataType
	Category    fstype.Category
	Encoding    fstype.Encoding
	Compression fstype.Compression
}

type tableSchemaEntry struct {
	Name       string
	Columns    []schemaColumnWire
	RootOffset uint64 // 0 means the table has no written devices
}

func writeTableSchemaTable(sink *bytestream.Stream, tables []tableSchemaEntry) error {
	if err := sink.WriteVarint(uint64(len(tables))); err != nil {
		return err
	}
	for _, t := range tables {
		if err := sink.WriteBytes([]byte(t.Name)); err != nil {
			return err
		}
		if err := sink.WriteVarint(uint64(len(t.Columns))); err != nil {
			return err
		}
		for _, c := range t.Columns {
			if err := sink.WriteBytes([]byte(c.Name)); err != nil {
				return err
			}
			if err := sink.WriteU8(uint8(c.Type)); err != nil {
				return err
			}
			if err := sink.WriteU8(uint8(c.Category)); err != nil {
				return err
			}
			if err := sink.WriteU8(uint8(c.Encoding)); err != nil {
				return err
			}
			if err := sink.WriteU8(uint8(c.Compression)); err != nil {
				return err
			}
		}
		if err := sink.WriteU64BE(t.RootOffset); err != nil {
			return err
		}
	}
	return nil
}

func readTableSchemaTable(r *bytestream.Reader) ([]tableSchemaEntry, error) {
	numTables, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tables := make([]tableSchemaEntry, numTables)
	for i := range tables {
		nameBytes, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		numCols, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		cols := make([]schemaColumnWire, numCols)
		for j := range cols {
			colName, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			tByte, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			catByte, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			encByte, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			compByte, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			cols[j] = schemaColumnWire{
				Name:        string(colName),
				Type:        fstype.DataType(tByte),
				Category:    fstype.Category(catByte),
				Encoding:    fstype.Encoding(encByte),
				Compression: fstype.Compression(compByte),
			}
		}
		rootOffset, err := r.ReadU64BE()
		if err != nil {
			return nil, err
		}
		tables[i] = tableSchemaEntry{Name: string(nameBytes), Columns: cols, RootOffset: rootOffset}
	}
	return tables, nil
}
