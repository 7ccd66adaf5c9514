// Package tablet implements the in-memory row buffer described in
// spec.md §4.5: a table name, a column schema, typed column arrays, and
// a null bitmap per column. Grounded on memtable/memtable.go's
// Record[K,V] row-carrier shape (generalized here to a fixed schema of
// heterogeneous typed columns rather than one K/V pair) and
// original_source/.../tablet.cc for the validation rules.
package tablet

import "github.com/tsfile-go/tsfile/internal/fstype"

// ColumnSchema names one column of a Tablet: its wire type and whether it
// identifies the device (TAG) or is an observed value (FIELD).
type ColumnSchema struct {
	Name     string
	Type     fstype.DataType
	Category fstype.Category
}
