package tsfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsfile-go/tsfile/internal/bytestream"
	"github.com/tsfile-go/tsfile/internal/chunkio"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

func TestChunkMetaRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		meta chunkio.ChunkMeta
	}{
		{
			name: "int32 chunk",
			meta: chunkio.ChunkMeta{
				Offset:      128,
				DataType:    fstype.Int32,
				Encoding:    fstype.Plain,
				Compression: fstype.Snappy,
				NumPages:    3,
				Stats: chunkio.Stats{
					Count:  10,
					StartT: 1,
					EndT:   20,
					Min:    int32(1),
					Max:    int32(99),
					Sum:    450,
					First:  int32(1),
					Last:   int32(99),
				},
			},
		},
		{
			name: "boolean chunk",
			meta: chunkio.ChunkMeta{
				Offset:      0,
				DataType:    fstype.Boolean,
				Encoding:    fstype.Plain,
				Compression: fstype.Uncompressed,
				NumPages:    1,
				Stats: chunkio.Stats{
					Count:  2,
					StartT: 5,
					EndT:   6,
					Min:    false,
					Max:    true,
					Sum:    1,
					First:  false,
					Last:   true,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := bytestream.New()
			if err := writeChunkMeta(sink, tt.meta.DataType, tt.meta); err != nil {
				t.Fatalf("writeChunkMeta: %v", err)
			}
			got, err := readChunkMeta(bytestream.NewReader(sink.Bytes()), tt.meta.DataType)
			if err != nil {
				t.Fatalf("readChunkMeta: %v", err)
			}
			if diff := cmp.Diff(tt.meta, got); diff != "" {
				t.Errorf("chunk meta round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTimeseriesIndexRoundTrip(t *testing.T) {
	want := TimeseriesIndex{
		Measurement: "temperature",
		DataType:    fstype.Double,
		ChunkMetas: []chunkio.ChunkMeta{
			{
				Offset:      10,
				DataType:    fstype.Double,
				Encoding:    fstype.Plain,
				Compression: fstype.Gzip,
				NumPages:    2,
				Stats: chunkio.Stats{
					Count: 4, StartT: 0, EndT: 30,
					Min: 1.5, Max: 9.25, Sum: 18.0,
					First: 1.5, Last: 9.25,
				},
			},
			{
				Offset:      200,
				DataType:    fstype.Double,
				Encoding:    fstype.Plain,
				Compression: fstype.Gzip,
				NumPages:    1,
				Stats: chunkio.Stats{
					Count: 1, StartT: 40, EndT: 40,
					Min: 2.0, Max: 2.0, Sum: 2.0,
					First: 2.0, Last: 2.0,
				},
			},
		},
	}

	sink := bytestream.New()
	if err := writeTimeseriesIndex(sink, want); err != nil {
		t.Fatalf("writeTimeseriesIndex: %v", err)
	}
	got, err := readTimeseriesIndex(bytestream.NewReader(sink.Bytes()))
	if err != nil {
		t.Fatalf("readTimeseriesIndex: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("timeseries index round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTableSchemaTableRoundTrip(t *testing.T) {
	want := []tableSchemaEntry{
		{
			Name: "sensors",
			Columns: []schemaColumnWire{
				{Name: "region", Type: fstype.String, Category: fstype.Tag, Encoding: fstype.Plain, Compression: fstype.Uncompressed},
				{Name: "temp", Type: fstype.Double, Category: fstype.Field, Encoding: fstype.Plain, Compression: fstype.Gzip},
			},
			RootOffset: 4096,
		},
		{
			Name:       "empty_table",
			Columns:    []schemaColumnWire{{Name: "id", Type: fstype.String, Category: fstype.Tag}},
			RootOffset: 0,
		},
	}

	sink := bytestream.New()
	if err := writeTableSchemaTable(sink, want); err != nil {
		t.Fatalf("writeTableSchemaTable: %v", err)
	}
	got, err := readTableSchemaTable(bytestream.NewReader(sink.Bytes()))
	if err != nil {
		t.Fatalf("readTableSchemaTable: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table schema table round trip mismatch (-want +got):\n%s", diff)
	}
}
