package tsfile

import (
	"fmt"
	"strings"

	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
	"github.com/tsfile-go/tsfile/tablet"
)

// ColumnSchema names one column: its wire type and TAG/FIELD category.
// An alias of tablet.ColumnSchema so a Tablet's own schema can be passed
// straight through to RegisterTable without conversion.
type ColumnSchema = tablet.ColumnSchema

// TableSchema is a named, validated column list, the unit register_table
// accepts (spec.md §4.7).
type TableSchema struct {
	Name    string
	Columns []ColumnSchema
}

// NewTableSchema validates name/columns per spec.md §4.7's register_table
// rules: duplicate column names (case-insensitive) and tag columns whose
// type isn't STRING are both rejected with ErrInvalidSchema (matching
// scenario 5 of spec.md §8).
func NewTableSchema(name string, columns []ColumnSchema) (*TableSchema, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("tsfile: duplicate column %q in table %q: %w", c.Name, name, errs.ErrInvalidSchema)
		}
		seen[key] = struct{}{}
		if c.Category == fstype.Tag && c.Type != fstype.String {
			return nil, fmt.Errorf("tsfile: tag column %q must be STRING, got %s: %w", c.Name, c.Type, errs.ErrInvalidSchema)
		}
	}
	cols := make([]ColumnSchema, len(columns))
	copy(cols, columns)
	return &TableSchema{Name: name, Columns: cols}, nil
}

func (s *TableSchema) column(name string) (ColumnSchema, bool) {
	key := strings.ToLower(name)
	for _, c := range s.Columns {
		if strings.ToLower(c.Name) == key {
			return c, true
		}
	}
	return ColumnSchema{}, false
}
