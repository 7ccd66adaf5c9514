package tablet

// TsRecord is sugar over a 1-row Tablet: a single (device, timestamp,
// [(column, value)]) tuple (spec.md §3).
type TsRecord struct {
	*Tablet
}

// NewRecord builds a 1-row Tablet for tableName under schema, with
// timestamp ts pre-filled at row 0.
func NewRecord(tableName string, schema []ColumnSchema, ts int64) (*TsRecord, error) {
	tb, err := New(tableName, schema, 1)
	if err != nil {
		return nil, err
	}
	if err := tb.AddTimestamp(0, ts); err != nil {
		return nil, err
	}
	return &TsRecord{Tablet: tb}, nil
}
