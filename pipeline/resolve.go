package pipeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// ResolveConfig controls missing-data and duplicate resolution.
type ResolveConfig struct {
	// ExcludeColumns are dropped outright for excessive missingness
	// (street number in the reference data). Already-absent names are
	// skipped so resolving twice is a no-op.
	ExcludeColumns []string `yaml:"exclude_columns"`
	// LowMissingThreshold bounds the joint row-drop: rows are deleted
	// when null in any column whose missing fraction is strictly
	// between zero and this value.
	LowMissingThreshold float64 `yaml:"low_missing_threshold"`
	// MedianImpute names the skewed continuous columns whose nulls are
	// filled with the column median. These columns never participate
	// in the row-drop, whatever their missing fraction.
	MedianImpute []string `yaml:"median_impute"`
}

func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		ExcludeColumns:      []string{"Number"},
		LowMissingThreshold: 0.06,
		MedianImpute:        []string{"Precipitation(in)", "Wind_Chill(F)"},
	}
}

// Resolver drops the excluded columns, deletes rows null in any
// low-missingness column, median-imputes the configured continuous
// columns, and removes exact duplicate rows. Afterwards the table has
// zero nulls and zero duplicates; anything less is an error.
type Resolver struct {
	cfg ResolveConfig
	log *zap.SugaredLogger
}

func NewResolver(cfg ResolveConfig, log *zap.SugaredLogger) *Resolver {
	return &Resolver{cfg: cfg, log: log}
}

func (r *Resolver) Name() string { return "resolve" }

func (r *Resolver) Apply(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	out := t.DropIfPresent(r.cfg.ExcludeColumns...)

	imputed := make(map[string]bool, len(r.cfg.MedianImpute))
	for _, name := range r.cfg.MedianImpute {
		imputed[name] = true
	}

	// Joint row-drop across the low-missingness columns: a row goes if
	// it is null in any of them.
	var lowCols []string
	for _, name := range out.ColumnNames() {
		if imputed[name] {
			continue
		}
		f, err := out.MissingFraction(name)
		if err != nil {
			return nil, err
		}
		if f > 0 && f < r.cfg.LowMissingThreshold {
			lowCols = append(lowCols, name)
		}
	}
	if len(lowCols) > 0 {
		keep := make([]bool, out.NumRows())
		for i := range keep {
			keep[i] = true
		}
		for _, name := range lowCols {
			col, _ := out.Column(name)
			for i := 0; i < col.Len(); i++ {
				if col.IsNull(i) {
					keep[i] = false
				}
			}
		}
		before := out.NumRows()
		out = out.Filter(keep)
		r.log.Infow("dropped rows with sparse nulls",
			"columns", lowCols, "rows_dropped", before-out.NumRows())
	}

	for _, name := range r.cfg.MedianImpute {
		col, ok := out.Column(name)
		if !ok {
			return nil, columnMissing(name)
		}
		filled, err := imputeMedian(col)
		if err != nil {
			return nil, err
		}
		if err := out.Replace(name, filled); err != nil {
			return nil, err
		}
	}

	for _, name := range out.ColumnNames() {
		f, err := out.MissingFraction(name)
		if err != nil {
			return nil, err
		}
		if f > 0 {
			return nil, fmt.Errorf("column %q still has missing values after resolution", name)
		}
	}

	before := out.NumRows()
	out = out.DropDuplicates()
	if dropped := before - out.NumRows(); dropped > 0 {
		r.log.Infow("dropped duplicate rows", "rows_dropped", dropped)
	}
	return out, nil
}

// imputeMedian fills nulls in a float column with the median of its
// non-null values.
func imputeMedian(col *frame.Column) (*frame.Column, error) {
	if col.Kind != frame.Float {
		return nil, columnKindMismatch(col.Name, col.Kind, frame.Float)
	}
	var values []float64
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			values = append(values, col.Floats[i])
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("column %q has no values to take a median from", col.Name)
	}
	median := calculateMedian(values)

	filled := make([]float64, col.Len())
	copy(filled, col.Floats)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			filled[i] = median
		}
	}
	return frame.NewFloatColumn(col.Name, filled, nil), nil
}

func calculateMedian(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}
