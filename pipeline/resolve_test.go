package pipeline

import (
	"context"
	"testing"

	"accidentprep/frame"
)

// resolveInput: 10 rows. Street has one null (10% missing, below the
// 20% test threshold, so that row is deleted); Precipitation(in) has
// three nulls and is median-imputed; the last row duplicates the
// first.
func resolveInput(t *testing.T) *frame.Table {
	t.Helper()
	table, err := frame.New(
		frame.NewFloatColumn("Number", []float64{1, 0, 0, 4, 0, 0, 0, 0, 0, 1},
			[]bool{false, true, true, false, true, true, true, true, true, false}),
		frame.NewStringColumn("Street", []string{"Main St", "Oak Ave", "Main St", "Elm St", "High St", "", "Oak Ave", "Pine Rd", "Main St", "Main St"},
			[]bool{false, false, false, false, false, true, false, false, false, false}),
		frame.NewFloatColumn("Precipitation(in)", []float64{0.0, 0.25, 0, 0.5, 0, 0.1, 0.75, 0, 1.0, 0.0},
			[]bool{false, false, true, false, true, false, false, true, false, false}),
		frame.NewIntColumn("Severity", []int64{2, 2, 3, 4, 4, 2, 3, 2, 4, 2}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func resolveConfig() ResolveConfig {
	return ResolveConfig{
		ExcludeColumns:      []string{"Number"},
		LowMissingThreshold: 0.2,
		MedianImpute:        []string{"Precipitation(in)"},
	}
}

func TestResolverGuarantees(t *testing.T) {
	resolver := NewResolver(resolveConfig(), nopLogger())
	out, err := resolver.Apply(context.Background(), resolveInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.HasColumn("Number") {
		t.Error("excluded column survived")
	}
	// Row 5 (null Street) and row 9 (duplicate of row 0) are gone.
	if out.NumRows() != 8 {
		t.Errorf("expected 8 rows, got %d", out.NumRows())
	}
	for _, name := range out.ColumnNames() {
		f, err := out.MissingFraction(name)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f != 0 {
			t.Errorf("column %q still has nulls", name)
		}
	}
	if dedup := out.DropDuplicates(); dedup.NumRows() != out.NumRows() {
		t.Error("duplicate rows remain")
	}
}

func TestResolverMedianImputation(t *testing.T) {
	resolver := NewResolver(resolveConfig(), nopLogger())
	out, err := resolver.Apply(context.Background(), resolveInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// After the Street row-drop the non-null values are
	// 0.0, 0.25, 0.5, 0.75, 1.0, 0.0; their median is 0.375.
	precip, _ := out.Column("Precipitation(in)")
	count := 0
	for i := 0; i < precip.Len(); i++ {
		if precip.IsNull(i) {
			t.Fatalf("null precipitation at row %d", i)
		}
		if precip.Floats[i] == 0.375 {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 cells imputed with median 0.375, got %d", count)
	}
}

func TestResolverIdempotent(t *testing.T) {
	resolver := NewResolver(resolveConfig(), nopLogger())
	once, err := resolver.Apply(context.Background(), resolveInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := resolver.Apply(context.Background(), once)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if twice.NumRows() != once.NumRows() {
		t.Errorf("second pass changed row count: %d -> %d", once.NumRows(), twice.NumRows())
	}
	if twice.NumCols() != once.NumCols() {
		t.Errorf("second pass changed column count: %d -> %d", once.NumCols(), twice.NumCols())
	}
}

func TestResolverFailsOnResidualNulls(t *testing.T) {
	// 30% missing in a column that is neither excluded nor imputed.
	table, err := frame.New(
		frame.NewFloatColumn("Wind_Chill(F)", []float64{30.1, 0, 0, 0, 28.5, 27.0, 26.2, 31.9, 33.3, 25.4},
			[]bool{false, true, true, true, false, false, false, false, false, false}),
		frame.NewFloatColumn("Precipitation(in)", []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := resolveConfig()
	resolver := NewResolver(cfg, nopLogger())
	if _, err := resolver.Apply(context.Background(), table); err == nil {
		t.Fatal("expected error for residual nulls")
	}
}
