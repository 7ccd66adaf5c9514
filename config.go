package tsfile

import (
	"github.com/tsfile-go/tsfile/internal/config"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Option configures a Writer at construction time. Grounded on
// segmentmanager/disk.go's DiskSegmentManagerOption / WithMaxSegmentSize
// functional-option shape, threaded per-instance rather than through the
// mutable global spec.md §9 flags as a smell inherited from the source.
type Option func(*config.Config)

// WithTimeEncoding overrides the encoding applied to every chunk's time
// column. Default TS_2DIFF.
func WithTimeEncoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.TimeEncoding = e }
}

// WithInt32Encoding overrides the default encoding for INT32/DATE columns.
func WithInt32Encoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.Int32Encoding = e }
}

// WithInt64Encoding overrides the default encoding for INT64/TIMESTAMP columns.
func WithInt64Encoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.Int64Encoding = e }
}

// WithFloatEncoding overrides the default encoding for FLOAT columns.
func WithFloatEncoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.FloatEncoding = e }
}

// WithDoubleEncoding overrides the default encoding for DOUBLE columns.
func WithDoubleEncoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.DoubleEncoding = e }
}

// WithStringEncoding overrides the default encoding for STRING/TEXT/BLOB columns.
func WithStringEncoding(e fstype.Encoding) Option {
	return func(c *config.Config) { c.StringEncoding = e }
}

// WithCompression overrides the page compressor used across every column.
func WithCompression(c fstype.Compression) Option {
	return func(cfg *config.Config) { cfg.DefaultCompression = c }
}

// WithPageWriterMaxPoints overrides the point-count threshold that seals
// a page. Default 1024.
func WithPageWriterMaxPoints(n int) Option {
	return func(c *config.Config) { c.PageWriterMaxPoints = n }
}

// WithPageWriterMaxBytes overrides the encoded-byte threshold that seals
// a page alongside the point-count threshold (spec.md §4.6's
// target_page_bytes). 0 disables the byte check. Default 64 KiB.
func WithPageWriterMaxBytes(n int) Option {
	return func(c *config.Config) { c.PageWriterMaxBytes = n }
}

// WithChunkGroupSizeThreshold overrides the combined serialized-plus-
// pending byte budget that forces an early page flush while a device
// group is being written (spec.md §6's chunk_group_size_threshold).
// Default 128 MiB.
func WithChunkGroupSizeThreshold(bytes int64) Option {
	return func(c *config.Config) { c.ChunkGroupSizeBytes = bytes }
}

// WithMaxDegreeOfIndexNode overrides the metadata-index node fan-out.
// Default 256.
func WithMaxDegreeOfIndexNode(n int) Option {
	return func(c *config.Config) { c.MaxDegreeOfIndexNode = n }
}

// WithMemoryThreshold overrides the in-memory byte budget that forces an
// implicit flush (spec.md §4.7). Default 128 MiB.
func WithMemoryThreshold(bytes int64) Option {
	return func(c *config.Config) { c.MemoryThresholdBytes = bytes }
}
