package tablet

import (
	"fmt"
	"strings"

	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
	"github.com/tsfile-go/tsfile/internal/pagearena"
)

// column is the typed backing array for one schema column. Exactly one of
// the slices is populated, selected by the schema's declared DataType;
// this mirrors the teacher's preference for a small closed set of
// concrete shapes over a boxed interface{} per value.
type column struct {
	dtype fstype.DataType
	bools []bool
	i32   []int32
	i64   []int64
	f32   []float32
	f64   []float64
	strs  []string
	nulls nullBitmap
}

func newColumn(t fstype.DataType, n int) column {
	c := column{dtype: t, nulls: newNullBitmap(n)}
	switch t {
	case fstype.Boolean:
		c.bools = make([]bool, n)
	case fstype.Int32, fstype.Date:
		c.i32 = make([]int32, n)
	case fstype.Int64, fstype.Timestamp:
		c.i64 = make([]int64, n)
	case fstype.Float:
		c.f32 = make([]float32, n)
	case fstype.Double:
		c.f64 = make([]float64, n)
	case fstype.String, fstype.Text, fstype.Blob:
		c.strs = make([]string, n)
	}
	return c
}

// Tablet is the row-oriented typed buffer of spec.md §4.5: one per write
// call, holding up to N rows across a fixed column schema.
type Tablet struct {
	TableName string

	schema     []ColumnSchema
	byLowerName map[string]int

	capacity int
	curRow   int

	times []int64
	cols  []column

	arena *pagearena.Arena
}

// New constructs a Tablet with the given schema and row capacity.
// Duplicate column names (case-insensitive) return ErrInvalidArg.
func New(tableName string, schema []ColumnSchema, capacity int) (*Tablet, error) {
	byLower := make(map[string]int, len(schema))
	for i, c := range schema {
		key := strings.ToLower(c.Name)
		if _, dup := byLower[key]; dup {
			return nil, fmt.Errorf("tablet: duplicate column name %q: %w", c.Name, errs.ErrInvalidArg)
		}
		byLower[key] = i
	}

	cols := make([]column, len(schema))
	for i, c := range schema {
		cols[i] = newColumn(c.Type, capacity)
	}

	return &Tablet{
		TableName:   tableName,
		schema:      schema,
		byLowerName: byLower,
		capacity:    capacity,
		times:       make([]int64, capacity),
		cols:        cols,
		arena:       pagearena.Init(0, pagearena.ModTablet),
	}, nil
}

// Schema returns the tablet's column schema.
func (t *Tablet) Schema() []ColumnSchema { return t.schema }

// RowCount returns the high-water mark of rows written so far.
func (t *Tablet) RowCount() int { return t.curRow }

// Capacity returns N, the tablet's maximum row count.
func (t *Tablet) Capacity() int { return t.capacity }

// resolveColumn accepts either an int index or a string name (matched
// case-insensitively) and returns the column index.
func (t *Tablet) resolveColumn(col any) (int, error) {
	switch v := col.(type) {
	case int:
		if v < 0 || v >= len(t.cols) {
			return 0, fmt.Errorf("tablet: column index %d: %w", v, errs.ErrColumnNotExist)
		}
		return v, nil
	case string:
		idx, ok := t.byLowerName[strings.ToLower(v)]
		if !ok {
			return 0, fmt.Errorf("tablet: column %q: %w", v, errs.ErrInvalidArg)
		}
		return idx, nil
	default:
		return 0, fmt.Errorf("tablet: column selector must be int or string, got %T: %w", col, errs.ErrInvalidArg)
	}
}

// AddTimestamp records the timestamp for row and advances cur_row. Rows
// must be filled with non-decreasing timestamps within a single tablet;
// a decrease returns ErrOutOfOrder without mutating the tablet.
func (t *Tablet) AddTimestamp(row int, ts int64) error {
	if row < 0 || row >= t.capacity {
		return fmt.Errorf("tablet: row %d: %w", row, errs.ErrOutOfRange)
	}
	if row > 0 && ts < t.times[row-1] && t.rowFilled(row-1) {
		return fmt.Errorf("tablet: timestamp %d at row %d precedes row %d's %d: %w", ts, row, row-1, t.times[row-1], errs.ErrOutOfOrder)
	}
	t.times[row] = ts
	if row+1 > t.curRow {
		t.curRow = row + 1
	}
	return nil
}

func (t *Tablet) rowFilled(row int) bool {
	return row < t.curRow
}

// Time returns the timestamp stored at row.
func (t *Tablet) Time(row int) int64 { return t.times[row] }

func (t *Tablet) checkRow(row int) error {
	if row < 0 || row >= t.capacity {
		return fmt.Errorf("tablet: row %d: %w", row, errs.ErrOutOfRange)
	}
	return nil
}

func (t *Tablet) typeMismatch(col int, want fstype.DataType) error {
	return fmt.Errorf("tablet: column %q is %s, not %s: %w", t.schema[col].Name, t.schema[col].Type, want, errs.ErrTypeNotMatch)
}

// AddBool sets a BOOLEAN value at (row, col).
func (t *Tablet) AddBool(row int, col any, v bool) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	if t.cols[idx].dtype != fstype.Boolean {
		return t.typeMismatch(idx, fstype.Boolean)
	}
	t.cols[idx].bools[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// AddInt32 sets an INT32 or DATE value at (row, col).
func (t *Tablet) AddInt32(row int, col any, v int32) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	dt := t.cols[idx].dtype
	if dt != fstype.Int32 && dt != fstype.Date {
		return t.typeMismatch(idx, fstype.Int32)
	}
	t.cols[idx].i32[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// AddInt64 sets an INT64 or TIMESTAMP value at (row, col).
func (t *Tablet) AddInt64(row int, col any, v int64) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	dt := t.cols[idx].dtype
	if dt != fstype.Int64 && dt != fstype.Timestamp {
		return t.typeMismatch(idx, fstype.Int64)
	}
	t.cols[idx].i64[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// AddFloat32 sets a FLOAT value at (row, col).
func (t *Tablet) AddFloat32(row int, col any, v float32) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	if t.cols[idx].dtype != fstype.Float {
		return t.typeMismatch(idx, fstype.Float)
	}
	t.cols[idx].f32[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// AddFloat64 sets a DOUBLE value at (row, col).
func (t *Tablet) AddFloat64(row int, col any, v float64) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	if t.cols[idx].dtype != fstype.Double {
		return t.typeMismatch(idx, fstype.Double)
	}
	t.cols[idx].f64[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// AddString sets a STRING, TEXT, or BLOB value at (row, col).
func (t *Tablet) AddString(row int, col any, v string) error {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	dt := t.cols[idx].dtype
	if dt != fstype.String && dt != fstype.Text && dt != fstype.Blob {
		return t.typeMismatch(idx, fstype.String)
	}
	if t.schema[idx].Category == fstype.Tag {
		v = t.arena.AllocString(v)
	}
	t.cols[idx].strs[row] = v
	t.cols[idx].nulls.clearNull(row)
	return nil
}

// IsNull reports whether (row, col) has never been set.
func (t *Tablet) IsNull(row int, col any) (bool, error) {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return false, err
	}
	if err := t.checkRow(row); err != nil {
		return false, err
	}
	return t.cols[idx].nulls.isNull(row), nil
}

// GetValue returns the value at (row, col) as its native Go type, or
// (nil, nil) if the value is null.
func (t *Tablet) GetValue(row int, col any) (any, error) {
	idx, err := t.resolveColumn(col)
	if err != nil {
		return nil, err
	}
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	c := &t.cols[idx]
	if c.nulls.isNull(row) {
		return nil, nil
	}
	switch c.dtype {
	case fstype.Boolean:
		return c.bools[row], nil
	case fstype.Int32, fstype.Date:
		return c.i32[row], nil
	case fstype.Int64, fstype.Timestamp:
		return c.i64[row], nil
	case fstype.Float:
		return c.f32[row], nil
	case fstype.Double:
		return c.f64[row], nil
	default:
		return c.strs[row], nil
	}
}

// DeviceID builds [table_name, tag_1_value_or_sentinel, …] for row: the
// table name followed by one entry per TAG column in schema order, nil
// for a null tag and a pointer to "" for a present-but-empty tag.
func (t *Tablet) DeviceID(row int) ([]*string, error) {
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	out := make([]*string, 0, 1+len(t.schema))
	name := t.TableName
	out = append(out, &name)
	for i, cs := range t.schema {
		if cs.Category != fstype.Tag {
			continue
		}
		c := &t.cols[i]
		if c.nulls.isNull(row) {
			out = append(out, nil)
			continue
		}
		v := c.strs[row]
		out = append(out, &v)
	}
	return out, nil
}
