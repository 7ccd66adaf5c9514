package tablet

import (
	"errors"
	"testing"

	"github.com/tsfile-go/tsfile/internal/errs"
	"github.com/tsfile-go/tsfile/internal/fstype"
)

func basicSchema() []ColumnSchema {
	return []ColumnSchema{
		{Name: "id", Type: fstype.String, Category: fstype.Tag},
		{Name: "s", Type: fstype.Int32, Category: fstype.Field},
	}
}

func TestNewRejectsDuplicateNamesCaseInsensitive(t *testing.T) {
	schema := []ColumnSchema{
		{Name: "Id", Type: fstype.String, Category: fstype.Tag},
		{Name: "id", Type: fstype.Int32, Category: fstype.Field},
	}
	if _, err := New("t", schema, 10); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("expected ErrInvalidArg, got %v", err)
	}
}

func TestAddValueRoundTrip(t *testing.T) {
	tb, err := New("T", basicSchema(), 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for row := 0; row < 5; row++ {
		if err := tb.AddTimestamp(row, int64(row)); err != nil {
			t.Fatalf("AddTimestamp(%d): %v", row, err)
		}
		if err := tb.AddString(row, "id", "d"); err != nil {
			t.Fatalf("AddString(%d): %v", row, err)
		}
		if err := tb.AddInt32(row, "s", int32(row)); err != nil {
			t.Fatalf("AddInt32(%d): %v", row, err)
		}
	}
	if tb.RowCount() != 5 {
		t.Fatalf("RowCount = %d, want 5", tb.RowCount())
	}
	for row := 0; row < 5; row++ {
		v, err := tb.GetValue(row, "s")
		if err != nil {
			t.Fatalf("GetValue: %v", err)
		}
		if v.(int32) != int32(row) {
			t.Fatalf("row %d: got %v want %d", row, v, row)
		}
	}
}

func TestAddValueTypeMismatchLeavesNullBit(t *testing.T) {
	tb, err := New("T", basicSchema(), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tb.AddInt64(0, "s", 5); !errors.Is(err, errs.ErrTypeNotMatch) {
		t.Fatalf("expected ErrTypeNotMatch, got %v", err)
	}
	isNull, err := tb.IsNull(0, "s")
	if err != nil {
		t.Fatalf("IsNull: %v", err)
	}
	if !isNull {
		t.Fatalf("expected null bit to remain set after failed type-mismatched write")
	}
}

func TestAddValueUnknownColumnIsInvalidArg(t *testing.T) {
	tb, _ := New("T", basicSchema(), 1)
	if err := tb.AddInt32(0, "nope", 1); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("expected ErrInvalidArg, got %v", err)
	}
}

func TestAddTimestampOutOfRange(t *testing.T) {
	tb, _ := New("T", basicSchema(), 2)
	if err := tb.AddTimestamp(2, 0); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestAddTimestampOutOfOrder(t *testing.T) {
	tb, _ := New("T", basicSchema(), 3)
	if err := tb.AddTimestamp(0, 10); err != nil {
		t.Fatalf("AddTimestamp(0): %v", err)
	}
	if err := tb.AddTimestamp(1, 5); !errors.Is(err, errs.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestColumnResolutionCaseInsensitive(t *testing.T) {
	tb, _ := New("T", basicSchema(), 1)
	if err := tb.AddTimestamp(0, 0); err != nil {
		t.Fatalf("AddTimestamp: %v", err)
	}
	if err := tb.AddInt32(0, "S", 42); err != nil {
		t.Fatalf("AddInt32 via uppercase name: %v", err)
	}
	v, err := tb.GetValue(0, "s")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if v.(int32) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestDeviceIDSentinels(t *testing.T) {
	schema := []ColumnSchema{
		{Name: "a", Type: fstype.String, Category: fstype.Tag},
		{Name: "b", Type: fstype.String, Category: fstype.Tag},
		{Name: "v", Type: fstype.Int32, Category: fstype.Field},
	}
	tb, _ := New("T", schema, 1)
	if err := tb.AddTimestamp(0, 0); err != nil {
		t.Fatalf("AddTimestamp: %v", err)
	}
	if err := tb.AddString(0, "a", ""); err != nil {
		t.Fatalf("AddString a: %v", err)
	}
	// b left null.
	ids, err := tb.DeviceID(0)
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}
	if *ids[0] != "T" {
		t.Fatalf("table name = %q", *ids[0])
	}
	if ids[1] == nil || *ids[1] != "" {
		t.Fatalf("empty tag should be a non-nil pointer to \"\", got %v", ids[1])
	}
	if ids[2] != nil {
		t.Fatalf("null tag should be nil, got %v", *ids[2])
	}
}

func TestTsRecordIsOneRowTablet(t *testing.T) {
	rec, err := NewRecord("T", basicSchema(), 7)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.Time(0) != 7 {
		t.Fatalf("Time(0) = %d, want 7", rec.Time(0))
	}
	if err := rec.AddString(0, "id", "d1"); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	if err := rec.AddInt32(0, "s", 99); err != nil {
		t.Fatalf("AddInt32: %v", err)
	}
	if rec.Capacity() != 1 {
		t.Fatalf("Capacity() = %d, want 1", rec.Capacity())
	}
}
