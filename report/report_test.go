package report

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"accidentprep/frame"
)

func reportInput(t *testing.T) *frame.Table {
	t.Helper()
	table, err := frame.New(
		frame.NewIntColumn("Month", []int64{1, 1, 2, 2, 12, 12}, nil),
		frame.NewStringColumn("Timezone", []string{"US/Eastern", "US/Pacific", "US/Eastern", "US/Eastern", "US/Pacific", "US/Eastern"}, nil),
		frame.NewStringColumn("Street", []string{"a", "b", "c", "d", "e", "f"}, nil),
		frame.NewIntColumn("Severity4", []int64{0, 1, 0, 1, 0, 1}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestGroupCounts(t *testing.T) {
	groups, err := GroupCounts(reportInput(t), "Month", "Severity4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(groups))
	}
	// Numeric categories sort numerically: 12 after 2.
	if groups[0].Category != "1" || groups[1].Category != "2" || groups[2].Category != "12" {
		t.Errorf("unexpected category order: %+v", groups)
	}
	if groups[0].Normal != 1 || groups[0].Serious != 1 {
		t.Errorf("unexpected counts for month 1: %+v", groups[0])
	}
}

func TestGroupCountsSkipsNulls(t *testing.T) {
	table, err := frame.New(
		frame.NewStringColumn("Side", []string{"R", ""}, []bool{false, true}),
		frame.NewIntColumn("Severity4", []int64{0, 1}, nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	groups, err := GroupCounts(table, "Side", "Severity4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("null category not skipped: %+v", groups)
	}
}

func TestRenderWritesPlots(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.Features = []string{"Month", "Timezone", "Street"}

	reporter := NewReporter(cfg, zap.NewNop().Sugar())
	if err := reporter.Render(reportInput(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Month.png", "Timezone.png"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("missing plot %s: %v", want, err)
		}
	}
	// Street is a high-cardinality column and is trimmed, not plotted.
	if _, err := os.Stat(filepath.Join(dir, "Street.png")); err == nil {
		t.Error("high-cardinality column was plotted")
	}
}
