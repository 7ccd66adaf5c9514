// Package config holds the process-wide configuration record spec.md §6/§9
// describes, plus the defaults that the root package's per-writer Option
// functions override. Grounded on segmentmanager/disk.go's functional-option
// pattern (WithMaxSegmentSize) — the per-instance override spec.md §9
// recommends over a pure global.
package config

import "github.com/tsfile-go/tsfile/internal/fstype"

// Config is the process-wide record (spec.md §6's "Configuration" table).
// Tests may mutate the package-level default under the same serial-execution
// assumption spec.md §5 documents for the source's own globals.
type Config struct {
	TimeEncoding Encoding

	Int32Encoding  Encoding
	Int64Encoding  Encoding
	FloatEncoding  Encoding
	DoubleEncoding Encoding

	BooleanEncoding Encoding
	StringEncoding  Encoding

	// DefaultCompression applies to every page: spec.md §4.6 frames one
	// compression tag per page, so there is no separate wire slot for a
	// time-column-specific compressor.
	DefaultCompression  Compression
	PageWriterMaxPoints int
	// PageWriterMaxBytes is the encoded-byte companion to
	// PageWriterMaxPoints (spec.md §4.6's target_page_bytes); 0 disables it.
	PageWriterMaxBytes   int
	ChunkGroupSizeBytes  int64
	MaxDegreeOfIndexNode int
	MemoryThresholdBytes int64
}

type Encoding = fstype.Encoding
type Compression = fstype.Compression

var defaultConfig = Config{
	TimeEncoding: fstype.TS2Diff,

	Int32Encoding:  fstype.TS2Diff,
	Int64Encoding:  fstype.TS2Diff,
	FloatEncoding:  fstype.Gorilla,
	DoubleEncoding: fstype.Gorilla,

	BooleanEncoding: fstype.Plain,
	StringEncoding:  fstype.Plain,

	DefaultCompression:   fstype.LZ4,
	PageWriterMaxPoints:  1024,
	PageWriterMaxBytes:   64 * 1024,
	ChunkGroupSizeBytes:  128 * 1024 * 1024,
	MaxDegreeOfIndexNode: 256,
	MemoryThresholdBytes: 128 * 1024 * 1024,
}

// Default returns a copy of the process-wide default configuration.
func Default() Config { return defaultConfig }

// SetDefault replaces the process-wide default configuration, mirroring
// the source's mutable globals (spec.md §5: "tests mutate it under the
// assumption of serial execution").
func SetDefault(c Config) { defaultConfig = c }
