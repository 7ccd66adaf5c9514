// Package fstype holds the wire-level type tags shared by every layer of
// the format: data types, encodings, compression algorithms, and column
// categories (spec.md §3). Centralized here so the codec suite, the chunk
// writer/reader, and the public tablet/schema types agree on one set of
// byte values.
package fstype

// DataType is the wire tag for a column's primitive type (spec.md §3).
type DataType uint8

const (
	Boolean DataType = iota
	Int32
	Int64
	Float
	Double
	Text
	String
	Blob
	Date
	Timestamp
)

func (t DataType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Text:
		return "TEXT"
	case String:
		return "STRING"
	case Blob:
		return "BLOB"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// IsVariableLength reports whether the type is length-prefixed bytes on
// the wire (STRING/TEXT/BLOB share a wire representation, spec.md §3).
func (t DataType) IsVariableLength() bool {
	return t == Text || t == String || t == Blob
}

// Encoding is the wire tag for a column's chosen encoding (spec.md §3/§4.3).
type Encoding uint8

const (
	Plain Encoding = iota
	Dictionary
	RLE
	TS2Diff
	Gorilla
	Sprintz
	Zigzag
	Freq
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case Dictionary:
		return "DICTIONARY"
	case RLE:
		return "RLE"
	case TS2Diff:
		return "TS_2DIFF"
	case Gorilla:
		return "GORILLA"
	case Sprintz:
		return "SPRINTZ"
	case Zigzag:
		return "ZIGZAG"
	case Freq:
		return "FREQ"
	default:
		return "UNKNOWN"
	}
}

// Compression is the wire tag for a page's compression algorithm
// (spec.md §3).
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	Gzip
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case LZ4:
		return "LZ4"
	default:
		return "UNKNOWN"
	}
}

// Category distinguishes device-identity columns from measurement columns
// (spec.md §3).
type Category uint8

const (
	Field Category = iota
	Tag
)

func (c Category) String() string {
	if c == Tag {
		return "TAG"
	}
	return "FIELD"
}

// LegalEncodings returns the encodings that are a legal pairing for a data
// type, per the table in spec.md §4.3.
func LegalEncodings(t DataType) []Encoding {
	switch t {
	case Boolean:
		return []Encoding{Plain}
	case Int32, Date:
		return []Encoding{Plain, TS2Diff, Gorilla, RLE, Zigzag, Sprintz}
	case Int64, Timestamp:
		return []Encoding{Plain, TS2Diff, Gorilla, RLE, Zigzag, Sprintz}
	case Float, Double:
		return []Encoding{Plain, Gorilla, Sprintz, TS2Diff}
	case String, Text, Blob:
		return []Encoding{Plain, Dictionary}
	default:
		return nil
	}
}

// IsLegal reports whether (t, e) is a legal (type, encoding) pair.
func IsLegal(t DataType, e Encoding) bool {
	for _, le := range LegalEncodings(t) {
		if le == e {
			return true
		}
	}
	return false
}
