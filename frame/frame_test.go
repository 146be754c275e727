package frame

import (
	"testing"
	"time"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := New(
		NewIntColumn("id", []int64{1, 2, 3, 4}, nil),
		NewStringColumn("city", []string{"Dayton", "Dayton", "Akron", ""}, []bool{false, false, false, true}),
		NewFloatColumn("temp", []float64{36.9, 36.9, 0, 42.1}, []bool{false, false, true, false}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		NewIntColumn("a", []int64{1, 2}, nil),
		NewIntColumn("b", []int64{1}, nil),
	)
	if err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		NewIntColumn("a", []int64{1}, nil),
		NewFloatColumn("a", []float64{1}, nil),
	)
	if err == nil {
		t.Fatal("expected error for duplicate column name")
	}
}

func TestDrop(t *testing.T) {
	table := testTable(t)

	out, err := table.Drop("city")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.HasColumn("city") {
		t.Error("city still present after drop")
	}
	if !table.HasColumn("city") {
		t.Error("drop mutated the input table")
	}

	if _, err := table.Drop("no_such_column"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestDropIfPresent(t *testing.T) {
	table := testTable(t)
	out := table.DropIfPresent("city", "no_such_column")
	if out.HasColumn("city") {
		t.Error("city still present")
	}
	if out.NumCols() != 2 {
		t.Errorf("expected 2 columns, got %d", out.NumCols())
	}
}

func TestFilter(t *testing.T) {
	table := testTable(t)
	out := table.Filter([]bool{true, false, false, true})
	if out.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.NumRows())
	}
	ids, _ := out.Column("id")
	if ids.Ints[0] != 1 || ids.Ints[1] != 4 {
		t.Errorf("unexpected rows kept: %v", ids.Ints)
	}
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	table, err := New(
		NewIntColumn("a", []int64{1, 1, 2, 1}, nil),
		NewStringColumn("b", []string{"x", "x", "x", "y"}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := table.DropDuplicates()
	if out.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.NumRows())
	}
	// Running again is a no-op.
	if again := out.DropDuplicates(); again.NumRows() != 3 {
		t.Errorf("dedup not idempotent: %d rows", again.NumRows())
	}
}

func TestDropDuplicatesDistinguishesNullFromEmpty(t *testing.T) {
	table, err := New(
		NewStringColumn("a", []string{"", ""}, []bool{true, false}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := table.DropDuplicates(); out.NumRows() != 2 {
		t.Errorf("null and empty string collapsed: %d rows", out.NumRows())
	}
}

func TestNUniqueIgnoresNulls(t *testing.T) {
	table := testTable(t)
	n, err := table.NUnique("city")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 unique cities, got %d", n)
	}
}

func TestMissingFraction(t *testing.T) {
	table := testTable(t)
	f, err := table.MissingFraction("temp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != 0.25 {
		t.Errorf("expected 0.25, got %f", f)
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	table := testTable(t)
	err := table.Replace("city", NewStringColumn("city", []string{"a", "b", "c", "d"}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.ColumnNames()[1] != "city" {
		t.Errorf("column order changed: %v", table.ColumnNames())
	}
}

func TestTakePreservesOrder(t *testing.T) {
	table := testTable(t)
	out := table.Take([]int{2, 0})
	ids, _ := out.Column("id")
	if ids.Ints[0] != 3 || ids.Ints[1] != 1 {
		t.Errorf("unexpected order: %v", ids.Ints)
	}
}

func TestConcat(t *testing.T) {
	a := testTable(t)
	b := testTable(t)
	out, err := Concat(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.NumRows() != 8 {
		t.Errorf("expected 8 rows, got %d", out.NumRows())
	}

	other, _ := New(NewIntColumn("id", []int64{1}, nil))
	if _, err := Concat(a, other); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}

func TestCellString(t *testing.T) {
	ts := time.Date(2021, 3, 1, 8, 30, 0, 0, time.Local)
	table, err := New(
		NewTimeColumn("when", []time.Time{ts}, nil),
		NewBoolColumn("flag", []bool{true}, nil),
		NewFloatColumn("x", []float64{1.25}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		column string
		want   string
	}{
		{"when", "2021-03-01 08:30:00"},
		{"flag", "True"},
		{"x", "1.25"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			c, _ := table.Column(tt.column)
			if got := c.CellString(0); got != tt.want {
				t.Errorf("CellString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	table := testTable(t)
	summaries := table.Describe()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 numeric summaries, got %d", len(summaries))
	}
	temp := summaries[1]
	if temp.Column != "temp" || temp.Count != 3 {
		t.Errorf("unexpected summary: %+v", temp)
	}
	if temp.Min != 36.9 || temp.Max != 42.1 {
		t.Errorf("unexpected min/max: %+v", temp)
	}
}
