package tsfile

import (
	"fmt"
	"strings"

	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

// Row is one reconstructed row: a timestamp plus one value per selected
// column (nil meaning that column is null at this timestamp).
type Row struct {
	Time   int64
	Values []any
}

// ResultSet iterates the rows produced by Reader.Query, cursor-style:
// call Next before the first GetValue, the same way database/sql's
// *Rows works.
type ResultSet struct {
	columns []ColumnSchema
	rows    []Row
	pos     int
}

// Next advances the cursor and reports whether a row is available.
func (rs *ResultSet) Next() bool {
	rs.pos++
	return rs.pos < len(rs.rows)
}

// Time returns the current row's timestamp.
func (rs *ResultSet) Time() int64 {
	return rs.rows[rs.pos].Time
}

// resolve maps a column selector to an index into the spec.md §4.8
// convention: 0 is the synthetic time column, 1..len(rs.columns) are the
// selected tag/field columns in Metadata order.
func (rs *ResultSet) resolve(col any) (int, error) {
	switch v := col.(type) {
	case int:
		if v < 0 || v > len(rs.columns) {
			return 0, fmt.Errorf("tsfile: column index %d: %w", v, errs.ErrColumnNotExist)
		}
		return v, nil
	case string:
		if strings.EqualFold(v, "time") {
			return 0, nil
		}
		for i, c := range rs.columns {
			if strings.EqualFold(c.Name, v) {
				return i + 1, nil
			}
		}
		return 0, fmt.Errorf("tsfile: column %q: %w", v, errs.ErrColumnNotExist)
	default:
		return 0, fmt.Errorf("tsfile: column selector must be int or string, got %T: %w", col, errs.ErrInvalidArg)
	}
}

// GetValue returns the current row's value for col (an int index or a
// column name), or nil if the value is null. Index/name 0/"time" returns
// the row's timestamp (spec.md §4.8).
func (rs *ResultSet) GetValue(col any) (any, error) {
	idx, err := rs.resolve(col)
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return rs.rows[rs.pos].Time, nil
	}
	return rs.rows[rs.pos].Values[idx-1], nil
}

// IsNull reports whether the current row's value for col is null.
func (rs *ResultSet) IsNull(col any) (bool, error) {
	v, err := rs.GetValue(col)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// Metadata returns every result column's schema, column 0 being the
// synthetic time:INT64 column, followed by the selected tag/field
// columns in result order (spec.md §4.8's "column 0 being time: INT64,
// columns 1..k the tag columns, columns k+1..n the field columns").
func (rs *ResultSet) Metadata() []ColumnSchema {
	out := make([]ColumnSchema, len(rs.columns)+1)
	out[0] = ColumnSchema{Name: "time", Type: fstype.Int64, Category: fstype.Field}
	copy(out[1:], rs.columns)
	return out
}

// RowCount returns the total number of rows in the result set.
func (rs *ResultSet) RowCount() int {
	return len(rs.rows)
}
