package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"accidentprep/frame"
)

// cumDays is the cumulative day count at the start of each month for a
// non-leap year. Day-of-year is computed from this table literally, so
// dates after February in a leap year come out one low. Downstream
// consumers were trained on that convention; LeapAware opts out.
var cumDays = [12]int64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// TemporalConfig controls calendar/clock feature extraction.
type TemporalConfig struct {
	StartColumn         string `yaml:"start_column"`
	ObservationColumn   string `yaml:"observation_column"`
	DropObservationTime bool   `yaml:"drop_observation_time"`
	LeapAware           bool   `yaml:"leap_aware"`
}

func DefaultTemporalConfig() TemporalConfig {
	return TemporalConfig{
		StartColumn:         "Start_Time",
		ObservationColumn:   "Weather_Timestamp",
		DropObservationTime: true,
	}
}

// TemporalExtractor derives Year, Month, Weekday, Day, Hour and Minute
// from the accident start time, and drops the weather observation
// timestamp after logging its mean offset from the start time.
type TemporalExtractor struct {
	cfg TemporalConfig
	log *zap.SugaredLogger
}

func NewTemporalExtractor(cfg TemporalConfig, log *zap.SugaredLogger) *TemporalExtractor {
	return &TemporalExtractor{cfg: cfg, log: log}
}

func (e *TemporalExtractor) Name() string { return "temporal" }

func (e *TemporalExtractor) Apply(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	out := t.DropIfPresent()

	start, ok := out.Column(e.cfg.StartColumn)
	if !ok {
		return nil, columnMissing(e.cfg.StartColumn)
	}
	if start.Kind != frame.Time {
		return nil, columnKindMismatch(e.cfg.StartColumn, start.Kind, frame.Time)
	}

	if obs, ok := out.Column(e.cfg.ObservationColumn); ok {
		e.logObservationDelta(start, obs)
		if e.cfg.DropObservationTime {
			var err error
			out, err = out.Drop(e.cfg.ObservationColumn)
			if err != nil {
				return nil, err
			}
		}
	}

	n := start.Len()
	years := make([]int64, n)
	months := make([]int64, n)
	weekdays := make([]int64, n)
	days := make([]int64, n)
	hours := make([]int64, n)
	minutes := make([]float64, n)
	for i := 0; i < n; i++ {
		if start.IsNull(i) {
			// Loader contract: declared timestamp columns parse fully.
			return nil, fmt.Errorf("null %s at row %d", e.cfg.StartColumn, i)
		}
		ts := start.Times[i]
		years[i] = int64(ts.Year())
		months[i] = int64(ts.Month())
		weekdays[i] = int64((int(ts.Weekday()) + 6) % 7) // Monday = 0
		if e.cfg.LeapAware {
			days[i] = int64(ts.YearDay())
		} else {
			days[i] = cumDays[ts.Month()-1] + int64(ts.Day())
		}
		hours[i] = int64(ts.Hour())
		minutes[i] = float64(ts.Hour())*60 + float64(ts.Minute())
	}

	derived := []*frame.Column{
		frame.NewIntColumn("Year", years, nil),
		frame.NewIntColumn("Month", months, nil),
		frame.NewIntColumn("Weekday", weekdays, nil),
		frame.NewIntColumn("Day", days, nil),
		frame.NewIntColumn("Hour", hours, nil),
		frame.NewFloatColumn("Minute", minutes, nil),
	}
	for _, c := range derived {
		if err := out.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// logObservationDelta reports the mean offset between the weather
// observation and the accident start, for inspection. Dropping the
// observation column is configuration, not a computed gate.
func (e *TemporalExtractor) logObservationDelta(start, obs *frame.Column) {
	if obs.Kind != frame.Time {
		return
	}
	var deltas []float64
	for i := 0; i < obs.Len(); i++ {
		if obs.IsNull(i) || start.IsNull(i) {
			continue
		}
		deltas = append(deltas, obs.Times[i].Sub(start.Times[i]).Seconds())
	}
	if len(deltas) == 0 {
		return
	}
	mean := time.Duration(stat.Mean(deltas, nil) * float64(time.Second))
	e.log.Infow("weather observation offset from start time",
		"mean", mean, "samples", len(deltas))
}
