// Package report renders descriptive count plots of the balanced
// dataset against the binary severity label. Presentation only; the
// cleaning pipeline does not depend on it.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// Config controls which features are plotted and which columns are
// trimmed from the analysis copy first.
type Config struct {
	Dir string `yaml:"dir"`
	// HighCardinality columns explode into too many dummy categories
	// to chart or encode usefully.
	HighCardinality []string `yaml:"high_cardinality"`
	// WeakFeatures showed no class separation during exploration.
	WeakFeatures []string `yaml:"weak_features"`
	Features     []string `yaml:"features"`
	Label        string   `yaml:"label"`
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:             dir,
		HighCardinality: []string{"Street", "City", "County", "Zipcode", "Airport_Code", "State"},
		WeakFeatures:    []string{"Heavy_Rain", "Heavy_Snow", "Fog", "Wind_Direction"},
		Features: []string{
			"Year", "Month", "Weekday", "Hour",
			"Sunrise_Sunset", "Civil_Twilight", "Nautical_Twilight", "Astronomical_Twilight",
			"Timezone", "Side",
			"Clear", "Cloud", "Rain", "Snow",
		},
		Label: "Severity4",
	}
}

// GroupCount holds the per-class row counts for one category of a
// feature.
type GroupCount struct {
	Category string
	Normal   int // label == 0
	Serious  int // label == 1
}

// GroupCounts tabulates a feature against the binary label, skipping
// null cells. Categories are returned in sorted order.
func GroupCounts(t *frame.Table, feature, label string) ([]GroupCount, error) {
	fc, ok := t.Column(feature)
	if !ok {
		return nil, fmt.Errorf("column %q not found", feature)
	}
	lc, ok := t.Column(label)
	if !ok {
		return nil, fmt.Errorf("column %q not found", label)
	}
	if lc.Kind != frame.Int {
		return nil, fmt.Errorf("label column %q is %s, want int", label, lc.Kind)
	}

	byCategory := make(map[string]*GroupCount)
	for i := 0; i < fc.Len(); i++ {
		if fc.IsNull(i) || lc.IsNull(i) {
			continue
		}
		category := fc.CellString(i)
		gc, ok := byCategory[category]
		if !ok {
			gc = &GroupCount{Category: category}
			byCategory[category] = gc
		}
		if lc.Ints[i] == 1 {
			gc.Serious++
		} else {
			gc.Normal++
		}
	}

	out := make([]GroupCount, 0, len(byCategory))
	for _, gc := range byCategory {
		out = append(out, *gc)
	}
	sort.Slice(out, func(i, j int) bool {
		return categoryLess(out[i].Category, out[j].Category)
	})
	return out, nil
}

// categoryLess orders categories numerically when both parse as
// numbers, lexically otherwise.
func categoryLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}

// Reporter writes one grouped bar chart per configured feature.
type Reporter struct {
	cfg Config
	log *zap.SugaredLogger
}

func NewReporter(cfg Config, log *zap.SugaredLogger) *Reporter {
	return &Reporter{cfg: cfg, log: log}
}

// Render trims the analysis copy and writes the plot set as PNGs.
func (r *Reporter) Render(t *frame.Table) error {
	if err := os.MkdirAll(r.cfg.Dir, 0o755); err != nil {
		return err
	}
	analysis := t.DropIfPresent(r.cfg.HighCardinality...)
	analysis = analysis.DropIfPresent(r.cfg.WeakFeatures...)

	for _, feature := range r.cfg.Features {
		if !analysis.HasColumn(feature) {
			r.log.Debugw("skipping absent feature", "feature", feature)
			continue
		}
		groups, err := GroupCounts(analysis, feature, r.cfg.Label)
		if err != nil {
			return err
		}
		path := filepath.Join(r.cfg.Dir, plotFileName(feature))
		if err := renderCountPlot(fmt.Sprintf("Count of Accidents by %s", feature), feature, groups, path); err != nil {
			return fmt.Errorf("plot %s: %w", feature, err)
		}
	}
	r.log.Infow("rendered count plots", "dir", r.cfg.Dir)
	return nil
}

func plotFileName(feature string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, feature)
	return clean + ".png"
}
